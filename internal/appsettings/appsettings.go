// Package appsettings defines the settings document of the photo library
// application: image conversion for thumbnails and previews, and the
// exiftool process pool.
package appsettings

import (
	"github.com/thoreinstein/settler/internal/schema"
)

// SchemaVersion is the application version whose shape Settings describes.
// It is used as the current version when the build carries no usable one.
const SchemaVersion = "0.2.0"

// Settings is the typed settings document.
type Settings struct {
	Version  string   `json:"version"`
	Image    Image    `json:"image"`
	Exiftool Exiftool `json:"exiftool"`
}

// Image holds the conversion settings per rendition.
type Image struct {
	Thumbnail Conversion `json:"thumbnail"`
	Preview   Conversion `json:"preview"`
}

// Conversion controls how one rendition is produced.
type Conversion struct {
	DisableResize bool        `json:"disableResize"`
	Resolution    Resolution  `json:"resolution"`
	WebpOptions   WebpOptions `json:"webpOptions"`
}

// Resolution is the bounding box a rendition is resized into.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WebpOptions are passed to the WebP encoder. Unset fields use the
// encoder's defaults.
type WebpOptions struct {
	Force          *bool    `json:"force,omitempty"`
	Loop           *float64 `json:"loop,omitempty"`
	Delay          any      `json:"delay,omitempty"`
	Quality        *float64 `json:"quality,omitempty"`
	AlphaQuality   *float64 `json:"alphaQuality,omitempty"`
	Lossless       *bool    `json:"lossless,omitempty"`
	NearLossless   *bool    `json:"nearLossless,omitempty"`
	SmartSubsample *bool    `json:"smartSubsample,omitempty"`
	Effort         *float64 `json:"effort,omitempty"`
	MinSize        *float64 `json:"minSize,omitempty"`
	Mixed          *bool    `json:"mixed,omitempty"`
}

// Exiftool sizes the exiftool worker pool.
type Exiftool struct {
	MaxProcs int `json:"maxProcs"`
}

// Defaults returns the factory settings stamped with version.
func Defaults(version string) Settings {
	nearLossless := true
	return Settings{
		Version: version,
		Image: Image{
			Thumbnail: Conversion{
				Resolution: Resolution{Width: 256, Height: 256},
			},
			Preview: Conversion{
				Resolution:  Resolution{Width: 1200, Height: 1200},
				WebpOptions: WebpOptions{NearLossless: &nearLossless},
			},
		},
		Exiftool: Exiftool{MaxProcs: 2},
	}
}

func webpOptionsNode() schema.Node {
	return schema.Object(
		schema.Opt("force", schema.Bool()),
		schema.Opt("loop", schema.Integer().Min(0)),
		schema.Opt("delay", schema.Union(schema.Number().Min(0), schema.Array(schema.Number().Min(0)))),
		schema.Opt("quality", schema.Number().Min(1).Max(100)),
		schema.Opt("alphaQuality", schema.Number().Min(0).Max(100)),
		schema.Opt("lossless", schema.Bool()),
		schema.Opt("nearLossless", schema.Bool()),
		schema.Opt("smartSubsample", schema.Bool()),
		schema.Opt("effort", schema.Integer().Min(0).Max(6)),
		schema.Opt("minSize", schema.Number()),
		schema.Opt("mixed", schema.Bool()),
	)
}

func conversionNode() schema.Node {
	return schema.Object(
		schema.F("disableResize", schema.Bool()),
		schema.F("resolution", schema.Object(
			schema.F("width", schema.Integer().Min(1)),
			schema.F("height", schema.Integer().Min(1)),
		)),
		schema.F("webpOptions", webpOptionsNode()),
	)
}

// Node describes the current document shape.
func Node() *schema.ObjectNode {
	return schema.Object(
		schema.F("version", schema.String()),
		schema.F("image", schema.Object(
			schema.F("thumbnail", conversionNode()),
			schema.F("preview", conversionNode()),
		)),
		schema.F("exiftool", schema.Object(
			schema.F("maxProcs", schema.Integer().Min(1).Max(64)),
		)),
	)
}

// Schema returns the strict schema for Settings.
func Schema() *schema.Typed[Settings] {
	return schema.New[Settings](Node())
}
