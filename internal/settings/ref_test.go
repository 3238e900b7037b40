package settings

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/settler/internal/logging"
	"github.com/thoreinstein/settler/internal/schema"
)

type size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type nestedSettings struct {
	Version string   `json:"version"`
	Image   size     `json:"image"`
	Tags    []string `json:"tags"`
}

func nestedStore(t *testing.T) (*Store[nestedSettings], afero.Fs) {
	t.Helper()
	sch := schema.New[nestedSettings](schema.Object(
		schema.F("version", schema.String()),
		schema.F("image", schema.Object(
			schema.F("width", schema.Integer().Min(1)),
			schema.F("height", schema.Integer().Min(1)),
		)),
		schema.F("tags", schema.Array(schema.String())),
	))

	fsys := afero.NewMemMapFs()
	s, err := New(nestedSettings{
		Version: "1.0.0",
		Image:   size{Width: 256, Height: 128},
		Tags:    []string{"a", "b"},
	}, sch, nil,
		WithFs(fsys),
		WithDir(testDir),
		WithAtomicSave(false),
		WithLogger(logging.ForTest(t)),
	)
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	return s, fsys
}

func TestRef_Reads(t *testing.T) {
	s, _ := nestedStore(t)
	h, err := s.Ref(context.Background())
	require.NoError(t, err)

	root := h.Settings()
	assert.Equal(t, "", root.Path())
	assert.True(t, root.IsObject())
	assert.Equal(t, []string{"image", "tags", "version"}, root.Keys())

	img := root.Get("image")
	assert.Equal(t, "image", img.Path())
	assert.Equal(t, int64(256), img.Get("width").Int())
	assert.Equal(t, 128.0, img.Get("height").Float())
	assert.Equal(t, "1.0.0", root.Get("version").String())

	tags := root.Get("tags")
	assert.True(t, tags.IsArray())
	assert.Equal(t, "b", tags.Index(1).String())
	assert.Equal(t, "tags.1", tags.Index(1).Path())

	assert.False(t, root.Get("missing").Exists())
	assert.Nil(t, root.Get("missing").Value())

	var got size
	require.NoError(t, img.Decode(&got))
	assert.Equal(t, size{Width: 256, Height: 128}, got)

	assert.Error(t, root.Get("missing").Decode(&got))
	assert.Equal(t, int64(128), root.At("image.height").Int())
}

func TestRef_NestedWritePersistsWholeDocument(t *testing.T) {
	s, fsys := nestedStore(t)
	ctx := context.Background()

	h, err := s.Ref(ctx)
	require.NoError(t, err)

	width := h.Settings().Get("image").Get("width")
	ok, err := width.Set(ctx, 512)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, Document{
		"version": "1.0.0",
		"image":   map[string]any{"width": 512.0, "height": 128.0},
		"tags":    []any{"a", "b"},
	}, readDoc(t, fsys))

	// Sibling refs from the same handle observe the write.
	assert.Equal(t, int64(512), h.Settings().At("image.width").Int())
	assert.Equal(t, int64(512), width.Int())

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 512, got.Image.Width)
}

func TestRef_RejectsIntegerOverflow(t *testing.T) {
	s, fsys := nestedStore(t)
	ctx := context.Background()

	h, err := s.Ref(ctx)
	require.NoError(t, err)

	before, err := afero.ReadFile(fsys, s.Path())
	require.NoError(t, err)

	ok, err := h.Settings().At("image.width").Set(ctx, 1e19)
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := afero.ReadFile(fsys, s.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, int64(256), h.Settings().At("image.width").Int())

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 256, got.Image.Width)
}

func TestRef_ArrayElementWrite(t *testing.T) {
	s, fsys := nestedStore(t)
	ctx := context.Background()

	h, err := s.Ref(ctx)
	require.NoError(t, err)

	ok, err := h.Settings().Get("tags").Index(0).Set(ctx, "z")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []any{"z", "b"}, readDoc(t, fsys)["tags"])
}

func TestRef_ObjectWrite(t *testing.T) {
	s, fsys := nestedStore(t)
	ctx := context.Background()

	h, err := s.Ref(ctx)
	require.NoError(t, err)

	ok, err := h.Settings().Get("image").Set(ctx, size{Width: 10, Height: 20})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"width": 10.0, "height": 20.0}, readDoc(t, fsys)["image"])
}

func TestRef_RejectedWriteLeavesDiskAndSnapshot(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, r *Ref) (bool, error)
	}{
		{
			name: "below minimum",
			write: func(ctx context.Context, r *Ref) (bool, error) {
				return r.At("image.width").Set(ctx, 0)
			},
		},
		{
			name: "wrong type",
			write: func(ctx context.Context, r *Ref) (bool, error) {
				return r.Get("tags").Set(ctx, "not a list")
			},
		},
		{
			name: "delete required field",
			write: func(ctx context.Context, r *Ref) (bool, error) {
				return r.Get("version").Delete(ctx)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fsys := nestedStore(t)
			ctx := context.Background()

			before, err := afero.ReadFile(fsys, testPath)
			require.NoError(t, err)

			h, err := s.Ref(ctx)
			require.NoError(t, err)
			snapBefore := h.Settings().Raw()

			ok, err := tt.write(ctx, h.Settings())
			require.NoError(t, err)
			assert.False(t, ok)

			after, err := afero.ReadFile(fsys, testPath)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
			assert.Equal(t, snapBefore, h.Settings().Raw())
		})
	}
}

func TestRef_PreviewDoesNotWrite(t *testing.T) {
	s, fsys := nestedStore(t)
	ctx := context.Background()

	before, err := afero.ReadFile(fsys, testPath)
	require.NoError(t, err)

	h, err := s.Ref(ctx)
	require.NoError(t, err)

	doc, err := h.Settings().At("image.width").Preview(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, doc["image"].(map[string]any)["width"])

	res := s.Check(doc)
	require.True(t, res.HasErrors())
	assert.Equal(t, "image.width", res.Errors()[0].Field)

	after, err := afero.ReadFile(fsys, testPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.EqualValues(t, 256, h.Settings().At("image.width").Int())
}

func TestRef_DeleteDropsUnknownField(t *testing.T) {
	s, _ := nestedStore(t)
	ctx := context.Background()

	h, err := s.Ref(ctx)
	require.NoError(t, err)

	_, err = h.Settings().Delete(ctx)
	assert.Error(t, err)

	// Unknown keys are stripped on write, so adding one is accepted but
	// does not survive.
	ok, err := h.Settings().Get("extra").Set(ctx, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, h.Settings().Get("extra").Exists())
}

func TestHandle_SetSettingsAndValue(t *testing.T) {
	s, fsys := nestedStore(t)
	ctx := context.Background()

	h, err := s.Ref(ctx)
	require.NoError(t, err)

	next := nestedSettings{Version: "1.0.0", Image: size{Width: 1, Height: 1}, Tags: []string{}}
	ok, err := h.SetSettings(ctx, next)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := h.Value()
	require.NoError(t, err)
	assert.Equal(t, next, got)
	assert.Equal(t, []any{}, readDoc(t, fsys)["tags"])

	ok, err = h.SetSettings(ctx, nestedSettings{Version: "1.0.0"})
	require.NoError(t, err)
	assert.False(t, ok, "zero image size is below the minimum")
}

func TestRef_KeysWithDots(t *testing.T) {
	s, err := New(Document{"version": "1.0.0", "ext": map[string]any{"a.b": "dotted"}}, schema.Versioned(), nil,
		WithFs(afero.NewMemMapFs()),
		WithDir(testDir),
		WithAtomicSave(false),
		WithLogger(logging.ForTest(t)),
	)
	require.NoError(t, err)
	ctx := context.Background()

	h, err := s.Ref(ctx)
	require.NoError(t, err)

	ref := h.Settings().Get("ext").Get("a.b")
	assert.Equal(t, "dotted", ref.String())
	assert.Equal(t, `ext.a\.b`, ref.Path())
	assert.Equal(t, "dotted", h.Settings().At(`ext.a\.b`).String())

	ok, err := ref.Set(ctx, "changed")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "changed", ref.String())
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a.b.c", []string{"a", "b", "c"}},
		{`a\.b.c`, []string{"a.b", "c"}},
		{"tags.0", []string{"tags", "0"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitPath(tt.in), "SplitPath(%q)", tt.in)
	}
}

func TestJoinPath_RoundTrip(t *testing.T) {
	tests := [][]string{
		{"image", "preview"},
		{"a.b", "c"},
		{`back\slash`, "x.y.z"},
		{"tags", "0"},
	}
	for _, keys := range tests {
		joined := JoinPath(keys...)
		assert.Equal(t, keys, SplitPath(joined), "joined %q", joined)
	}
	assert.Equal(t, "", JoinPath())
}
