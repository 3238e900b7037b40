package fileutil

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/thoreinstein/settler/internal/errors"
)

// MarshalJSON encodes v for a settings file.
//
// With prettify and numSpaces > 0 the output is indented by numSpaces
// spaces; otherwise it is compact. HTML characters are not escaped and the
// output always ends with a newline.
func MarshalJSON(v any, prettify bool, numSpaces int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if prettify && numSpaces > 0 {
		enc.SetIndent("", strings.Repeat(" ", numSpaces))
	}
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return buf.Bytes(), nil
}
