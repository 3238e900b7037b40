package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestTee(t *testing.T) {
	var text, js bytes.Buffer
	h := Tee(
		NewHandler(&text, HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("store", "app").WithGroup("g")

	logger.Debug("only json", "k", 1)
	logger.Warn("both", "k", 2)

	if strings.Contains(text.String(), "only json") {
		t.Errorf("text handler got a debug record: %q", text.String())
	}
	if !strings.Contains(text.String(), "store=app g.k=2") {
		t.Errorf("text output = %q", text.String())
	}

	lines := strings.Split(strings.TrimSpace(js.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("json handler got %d records, want 2: %q", len(lines), js.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["store"] != "app" {
		t.Errorf("json record missing WithAttrs value: %v", rec)
	}
}

func TestTee_Enabled(t *testing.T) {
	h := Tee(
		NewHandler(&bytes.Buffer{}, HandlerOptions{Level: slog.LevelError}),
		NewHandler(&bytes.Buffer{}, HandlerOptions{Level: slog.LevelInfo}),
	)
	if !h.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected Info to be enabled by the second handler")
	}
	if h.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("expected Debug to be disabled")
	}
}

func TestTee_Flattens(t *testing.T) {
	a := NewHandler(&bytes.Buffer{}, HandlerOptions{})
	b := NewHandler(&bytes.Buffer{}, HandlerOptions{})

	if got := Tee(a, nil); got != a {
		t.Error("a single handler should be returned unwrapped")
	}
	if got, ok := Tee(Tee(a, b), a).(tee); !ok || len(got) != 3 {
		t.Errorf("nested tee not flattened: %#v", got)
	}
	if Tee() != slog.DiscardHandler {
		t.Error("an empty tee should discard")
	}
}
