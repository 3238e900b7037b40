// Package document defines the untyped settings document shared by the
// schema, migration and store packages.
package document

import (
	"encoding/json"
	"maps"

	"github.com/thoreinstein/settler/internal/errors"
)

// Reserved top-level keys.
const (
	// VersionKey holds the semantic version the document was written at.
	VersionKey = "version"

	// ErrorKey marks the failure sentinel returned by the migration engine.
	// It is never persisted.
	ErrorKey = "error"

	// SentinelVersion is the version carried by the failure sentinel.
	SentinelVersion = "x.x.x"
)

// Document is a decoded JSON object. Values are the types produced by
// encoding/json: string, float64, bool, nil, []any and map[string]any.
type Document map[string]any

// Sentinel returns the failure marker {version: "x.x.x", error: true}.
func Sentinel() Document {
	return Document{VersionKey: SentinelVersion, ErrorKey: true}
}

// IsSentinel reports whether d is the migration failure marker.
func (d Document) IsSentinel() bool {
	failed, _ := d[ErrorKey].(bool)
	return failed
}

// Version returns the document's version, or "" when absent or not a string.
func (d Document) Version() string {
	v, _ := d[VersionKey].(string)
	return v
}

// WithVersion returns d with its version set. d is modified in place.
func (d Document) WithVersion(v string) Document {
	if d == nil {
		d = Document{}
	}
	d[VersionKey] = v
	return d
}

// Clone returns a deep copy of d. Nested objects and arrays are copied so
// the clone can be mutated without affecting d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Document:
		return Document(cloneValue(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// Parse decodes raw JSON into a Document. The top-level value must be an
// object.
func Parse(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "decoding settings JSON")
	}
	if d == nil {
		return nil, errors.New("settings JSON is not an object")
	}
	return d, nil
}

// FromValue converts any JSON-encodable value (typically the application's
// settings struct) into a Document.
func FromValue(v any) (Document, error) {
	if d, ok := v.(Document); ok {
		return d.Clone(), nil
	}
	if m, ok := v.(map[string]any); ok {
		return Document(m).Clone(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding settings value")
	}
	return Parse(data)
}

// Merge returns a copy of d with the top-level keys of patch applied.
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	if out == nil {
		out = Document{}
	}
	maps.Copy(out, patch.Clone())
	return out
}
