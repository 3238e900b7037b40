package settings

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/thoreinstein/settler/internal/document"
	"github.com/thoreinstein/settler/internal/errors"
)

// writer is the validated write path a Ref persists through.
type writer interface {
	write(ctx context.Context, doc Document) (Document, bool, error)
}

// snapshot is the JSON root shared by a Handle and every Ref derived from it.
type snapshot struct {
	mu   sync.RWMutex
	data []byte
}

func newSnapshot(doc Document) (*snapshot, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encoding settings snapshot")
	}
	return &snapshot{data: data}, nil
}

func (s *snapshot) load() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *snapshot) store(doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding settings snapshot")
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Handle is the entry point returned by Store.Ref.
type Handle[T any] struct {
	store *Store[T]
	snap  *snapshot
}

// Ref loads the settings (with the same read-repair as Load) and returns a
// Handle over them.
func (s *Store[T]) Ref(ctx context.Context) (*Handle[T], error) {
	doc, err := s.LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := newSnapshot(doc)
	if err != nil {
		return nil, err
	}
	return &Handle[T]{store: s, snap: snap}, nil
}

// Settings returns a Ref to the document root.
func (h *Handle[T]) Settings() *Ref {
	return &Ref{w: h.store, snap: h.snap}
}

// Value decodes the current snapshot into T.
func (h *Handle[T]) Value() (T, error) {
	var out T
	doc, err := document.Parse(h.snap.load())
	if err != nil {
		return out, err
	}
	return h.store.schema.Parse(doc)
}

// SetSettings replaces the whole document. It reports whether the value
// was accepted; rejected values are logged and leave both the file and the
// snapshot untouched.
func (h *Handle[T]) SetSettings(ctx context.Context, v T) (bool, error) {
	doc, err := document.FromValue(v)
	if err != nil {
		return false, errors.Wrap(err, "encoding settings")
	}
	return h.Settings().Set(ctx, doc)
}

// Ref is a view of one location in a settings document. Reads resolve the
// path against the shared snapshot; writes rebuild the whole document with
// the change applied and send it through the store's validated write path.
// On acceptance the snapshot advances, so every Ref from the same Handle
// observes the change.
type Ref struct {
	w    writer
	snap *snapshot
	path []string
}

// Get returns a Ref to the named field below r.
func (r *Ref) Get(key string) *Ref {
	return r.child(key)
}

// Index returns a Ref to the i-th element below r.
func (r *Ref) Index(i int) *Ref {
	return r.child(strconv.Itoa(i))
}

// At returns a Ref for a dotted path such as "image.preview.resolution".
func (r *Ref) At(dotted string) *Ref {
	out := r
	for _, key := range SplitPath(dotted) {
		out = out.child(key)
	}
	return out
}

func (r *Ref) child(key string) *Ref {
	p := make([]string, len(r.path), len(r.path)+1)
	copy(p, r.path)
	return &Ref{w: r.w, snap: r.snap, path: append(p, key)}
}

// Path returns the dotted path of r, "" for the root. Dots and
// backslashes inside keys are escaped, so At(r.Path()) addresses r.
func (r *Ref) Path() string {
	return JoinPath(r.path...)
}

func (r *Ref) query() string {
	escaped := make([]string, len(r.path))
	for i, key := range r.path {
		escaped[i] = gjson.Escape(key)
	}
	return strings.Join(escaped, ".")
}

func (r *Ref) result() gjson.Result {
	data := r.snap.load()
	if len(r.path) == 0 {
		return gjson.ParseBytes(data)
	}
	return gjson.GetBytes(data, r.query())
}

// Exists reports whether the location holds a value.
func (r *Ref) Exists() bool { return r.result().Exists() }

// Value returns the value at r as decoded JSON, or nil when missing.
func (r *Ref) Value() any { return r.result().Value() }

// String returns the value at r as a string.
func (r *Ref) String() string { return r.result().String() }

// Int returns the value at r as an integer.
func (r *Ref) Int() int64 { return r.result().Int() }

// Float returns the value at r as a float.
func (r *Ref) Float() float64 { return r.result().Float() }

// Bool returns the value at r as a boolean.
func (r *Ref) Bool() bool { return r.result().Bool() }

// IsObject reports whether r holds an object.
func (r *Ref) IsObject() bool { return r.result().IsObject() }

// IsArray reports whether r holds an array.
func (r *Ref) IsArray() bool { return r.result().IsArray() }

// Raw returns the JSON encoding of the value at r.
func (r *Ref) Raw() string { return r.result().Raw }

// Keys returns the field names of an object, in document order.
func (r *Ref) Keys() []string {
	res := r.result()
	if !res.IsObject() {
		return nil
	}
	var keys []string
	res.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// Decode unmarshals the value at r into v.
func (r *Ref) Decode(v any) error {
	res := r.result()
	if !res.Exists() {
		return errors.Wrapf(errors.ErrNotFound, "settings path %q", r.Path())
	}
	return errors.Wrapf(json.Unmarshal([]byte(res.Raw), v), "decoding %q", r.Path())
}

// Set replaces the value at r and persists the whole document. It reports
// whether the store accepted the result.
func (r *Ref) Set(ctx context.Context, value any) (bool, error) {
	return r.update(ctx, r.setter(value))
}

// Preview returns the document Set would submit, without validating or
// writing it.
func (r *Ref) Preview(value any) (Document, error) {
	data, err := r.setter(value)(r.snap.load())
	if err != nil {
		return nil, errors.Wrapf(err, "updating %q", r.Path())
	}
	return document.Parse(data)
}

func (r *Ref) setter(value any) func([]byte) ([]byte, error) {
	return func(data []byte) ([]byte, error) {
		if len(r.path) == 0 {
			return json.Marshal(value)
		}
		return sjson.SetBytes(data, r.query(), value)
	}
}

// Delete removes the field at r and persists the whole document.
func (r *Ref) Delete(ctx context.Context) (bool, error) {
	if len(r.path) == 0 {
		return false, errors.New("cannot delete the settings root")
	}
	return r.update(ctx, func(data []byte) ([]byte, error) {
		return sjson.DeleteBytes(data, r.query())
	})
}

func (r *Ref) update(ctx context.Context, edit func([]byte) ([]byte, error)) (bool, error) {
	data, err := edit(r.snap.load())
	if err != nil {
		return false, errors.Wrapf(err, "updating %q", r.Path())
	}

	doc, err := document.Parse(data)
	if err != nil {
		return false, errors.Wrapf(err, "updating %q", r.Path())
	}

	saved, ok, err := r.w.write(ctx, doc)
	if err != nil || !ok {
		return false, err
	}
	return true, r.snap.store(saved)
}

// JoinPath is the inverse of SplitPath.
func JoinPath(keys ...string) string {
	escaped := make([]string, len(keys))
	for i, key := range keys {
		escaped[i] = pathEscaper.Replace(key)
	}
	return strings.Join(escaped, ".")
}

var pathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`)

// SplitPath splits a dotted path into keys. A backslash escapes a literal
// dot, so `a\.b.c` yields ["a.b", "c"]. An empty path yields no keys.
func SplitPath(dotted string) []string {
	if dotted == "" {
		return nil
	}
	var (
		keys []string
		cur  strings.Builder
	)
	for i := 0; i < len(dotted); i++ {
		switch c := dotted[i]; {
		case c == '\\' && i+1 < len(dotted):
			i++
			cur.WriteByte(dotted[i])
		case c == '.':
			keys = append(keys, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(keys, cur.String())
}
