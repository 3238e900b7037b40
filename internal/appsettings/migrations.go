package appsettings

import (
	"github.com/thoreinstein/settler/internal/document"
	"github.com/thoreinstein/settler/internal/migrate"
)

// Migrations returns the table of shape changes between releases.
//
//	0.1.0  adds the exiftool pool size
//	0.2.0  replaces the square "size" of each rendition with a resolution box
func Migrations() *migrate.Table {
	return migrate.MustTable(
		migrate.Migration{
			Version: "0.1.0",
			Up:      addExiftool,
			Down:    removeExiftool,
		},
		migrate.Migration{
			Version: "0.2.0",
			Up:      sizeToResolution,
			Down:    resolutionToSize,
		},
	)
}

func addExiftool(d document.Document) document.Document {
	if _, ok := d["exiftool"]; !ok {
		d["exiftool"] = map[string]any{"maxProcs": 2.0}
	}
	return d
}

func removeExiftool(d document.Document) document.Document {
	delete(d, "exiftool")
	return d
}

var renditions = []string{"thumbnail", "preview"}

func renditionsOf(d document.Document) map[string]any {
	img, _ := d["image"].(map[string]any)
	return img
}

func sizeToResolution(d document.Document) document.Document {
	img := renditionsOf(d)
	for _, name := range renditions {
		conv, ok := img[name].(map[string]any)
		if !ok {
			continue
		}
		if size, ok := conv["size"].(float64); ok {
			conv["resolution"] = map[string]any{"width": size, "height": size}
			delete(conv, "size")
		}
	}
	return d
}

func resolutionToSize(d document.Document) document.Document {
	img := renditionsOf(d)
	for _, name := range renditions {
		conv, ok := img[name].(map[string]any)
		if !ok {
			continue
		}
		res, ok := conv["resolution"].(map[string]any)
		if !ok {
			continue
		}
		w, _ := res["width"].(float64)
		h, _ := res["height"].(float64)
		conv["size"] = max(w, h)
		delete(conv, "resolution")
	}
	return d
}
