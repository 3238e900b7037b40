package commands

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/pkg/fileutil"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// render writes v in the requested format. TOML cannot encode a bare
// scalar or list, so those fall back to JSON.
func render(w io.Writer, v any, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case formatJSON, "":
		data, err = fileutil.MarshalJSON(v, true, 2)
	case formatYAML:
		data, err = yaml.Marshal(v)
	case formatTOML:
		if _, ok := v.(map[string]any); !ok {
			return render(w, v, formatJSON)
		}
		data, err = toml.Marshal(v)
	default:
		return errors.NewUserError(
			errors.Newf("unknown format %q", format),
			"Use --format json, yaml or toml",
		)
	}
	if err != nil {
		return errors.Wrapf(err, "encoding %s", format)
	}

	_, err = fmt.Fprint(w, string(data))
	return errors.Wrap(err, "writing output")
}
