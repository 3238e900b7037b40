package schema

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/thoreinstein/settler/internal/document"
	"github.com/thoreinstein/settler/internal/errors"
	"github.com/thoreinstein/settler/internal/validator"
)

// Schema validates an untyped value and produces its typed form.
// Parse never panics; a failed validation returns an error matching
// errors.ErrValidation whose issues are available via validator.ResultFrom.
type Schema[T any] interface {
	Parse(value any) (T, error)
	Check(value any) *validator.Result
}

// Typed is a Schema that checks a Node and decodes the normalized value
// into T using the json field tags of T.
type Typed[T any] struct {
	root Node
}

// New returns a Schema for T described by root.
func New[T any](root Node) *Typed[T] {
	return &Typed[T]{root: root}
}

// Check validates value and returns every issue found.
func (s *Typed[T]) Check(value any) *validator.Result {
	res := &validator.Result{}
	s.root.parse("", normalize(value), res)
	return res
}

// Parse validates value and decodes it into T.
func (s *Typed[T]) Parse(value any) (T, error) {
	var out T

	res := &validator.Result{}
	parsed := s.root.parse("", normalize(value), res)
	if err := res.Err(); err != nil {
		return out, err
	}

	if err := decode(parsed, &out); err != nil {
		res.AddError("", err.Error(), nil)
		return out, res.Err()
	}
	return out, nil
}

func normalize(value any) any {
	if d, ok := value.(document.Document); ok {
		return map[string]any(d)
	}
	return value
}

func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return errors.Wrap(err, "creating decoder")
	}
	return errors.Wrap(dec.Decode(in), "decoding settings")
}

// VersionedNode is the loose shape every persisted document must have: an
// object with a string "version" whose other keys hold any JSON value.
func VersionedNode() *ObjectNode {
	return Object(F(document.VersionKey, String())).Catchall(JSON())
}

// Versioned returns the loose schema used after loading and before every
// write.
func Versioned() *Typed[document.Document] {
	return New[document.Document](VersionedNode())
}
