package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thoreinstein/settler/internal/errors"
)

func TestSelect_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader(""), &buf)

	_, err := p.Select("Choose", nil)
	if !errors.Is(err, ErrNoChoices) {
		t.Fatalf("expected ErrNoChoices, got: %v", err)
	}
}

func TestSelect_SingleItem(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader(""), &buf)

	idx, err := p.Select("Choose", []string{"only"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected 0, got %d", idx)
	}
	if buf.Len() > 0 {
		t.Errorf("expected no output for single item, got: %s", buf.String())
	}
}

func TestSelect_ValidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantIdx int
	}{
		{name: "explicit first", input: "1\n", wantIdx: 0},
		{name: "second", input: "2\n", wantIdx: 1},
		{name: "last", input: "3\n", wantIdx: 2},
		{name: "empty defaults to first", input: "\n", wantIdx: 0},
		{name: "whitespace trimmed", input: "  2  \n", wantIdx: 1},
		{name: "no trailing newline", input: "3", wantIdx: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &buf)

			idx, err := p.Select("Choose a snapshot", []string{"a", "b", "c"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if idx != tt.wantIdx {
				t.Errorf("expected %d, got %d", tt.wantIdx, idx)
			}

			out := buf.String()
			if !strings.Contains(out, "Choose a snapshot:") {
				t.Errorf("expected title in output, got: %s", out)
			}
			if !strings.Contains(out, "[3] c") {
				t.Errorf("expected numbered choices, got: %s", out)
			}
		})
	}
}

func TestSelect_InvalidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "zero", input: "0\n"},
		{name: "out of range", input: "4\n"},
		{name: "negative", input: "-1\n"},
		{name: "not a number", input: "abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &buf)

			_, err := p.Select("Choose", []string{"a", "b", "c"})
			if !errors.Is(err, ErrInvalidSelection) {
				t.Errorf("expected ErrInvalidSelection, got: %v", err)
			}
		})
	}
}

func TestSelect_EOF(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader(""), &buf)

	_, err := p.Select("Choose", []string{"a", "b"})
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("expected ErrSelectionCancelled, got: %v", err)
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    bool
		wantErr error
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "maybe\n", want: false},
		{input: "", wantErr: ErrSelectionCancelled},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &buf)

			got, err := p.Confirm("Reset settings?")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(buf.String(), "Reset settings? [y/N]: ") {
				t.Errorf("unexpected prompt: %q", buf.String())
			}
		})
	}
}
