package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinel(t *testing.T) {
	s := Sentinel()
	assert.True(t, s.IsSentinel())
	assert.Equal(t, SentinelVersion, s.Version())

	assert.False(t, Document{VersionKey: "1.0.0"}.IsSentinel())
	assert.False(t, Document{VersionKey: "1.0.0", ErrorKey: "yes"}.IsSentinel())
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "0.1.0", Document{VersionKey: "0.1.0"}.Version())
	assert.Equal(t, "", Document{VersionKey: 1.0}.Version())
	assert.Equal(t, "", Document{}.Version())

	var nilDoc Document
	assert.Equal(t, "2.0.0", nilDoc.WithVersion("2.0.0").Version())
}

func TestClone_IsDeep(t *testing.T) {
	orig := Document{
		"version": "0.1.0",
		"image": map[string]any{
			"sizes": []any{map[string]any{"w": 1.0}},
		},
	}

	c := orig.Clone()
	c["image"].(map[string]any)["sizes"].([]any)[0].(map[string]any)["w"] = 2.0
	c["version"] = "9.9.9"

	assert.Equal(t, 1.0, orig["image"].(map[string]any)["sizes"].([]any)[0].(map[string]any)["w"])
	assert.Equal(t, "0.1.0", orig.Version())
	assert.Nil(t, Document(nil).Clone())
}

func TestParse(t *testing.T) {
	d, err := Parse([]byte(`{"version":"0.0.0","hasMigrated":false}`))
	require.NoError(t, err)
	assert.Equal(t, Document{"version": "0.0.0", "hasMigrated": false}, d)

	_, err = Parse([]byte(`{"version":`))
	assert.Error(t, err)

	_, err = Parse([]byte(`null`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestFromValue(t *testing.T) {
	type inner struct {
		Width int `json:"width"`
	}
	type settings struct {
		Version string `json:"version"`
		Inner   inner  `json:"inner"`
	}

	d, err := FromValue(settings{Version: "1.2.3", Inner: inner{Width: 256}})
	require.NoError(t, err)
	assert.Equal(t, Document{"version": "1.2.3", "inner": map[string]any{"width": 256.0}}, d)

	src := Document{"version": "1.0.0", "nested": map[string]any{"a": 1.0}}
	d, err = FromValue(src)
	require.NoError(t, err)
	d["nested"].(map[string]any)["a"] = 2.0
	assert.Equal(t, 1.0, src["nested"].(map[string]any)["a"], "FromValue must not alias its input")

	_, err = FromValue(make(chan int))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := Document{"version": "1.0.0", "a": 1.0}
	out := base.Merge(Document{"a": 2.0, "b": true})

	assert.Equal(t, Document{"version": "1.0.0", "a": 2.0, "b": true}, out)
	assert.Equal(t, 1.0, base["a"])
}
