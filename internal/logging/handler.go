package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// timeLayout is the clock shown at the start of each text line.
const timeLayout = "15:04:05"

// HandlerOptions configure a text Handler.
type HandlerOptions struct {
	// Level is the minimum level handled. Nil means Info.
	Level slog.Leveler
	// Color enables ANSI colours.
	Color bool
	// Home, when set, is shortened to "~" in attribute values that are
	// paths below it.
	Home string
}

// Handler writes one line per record for people reading a terminal:
//
//	14:02:11 WRN discarding invalid settings path=~/.local/share/settler/settings.json
type Handler struct {
	opts   HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
	pal    *palette
}

type palette struct {
	time, key, trace, debug, info, warn, err *color.Color
}

func newPalette() *palette {
	p := &palette{
		time:  color.New(color.FgHiBlack),
		key:   color.New(color.FgCyan),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
	}
	// The caller decided; ignore fatih/color's own terminal detection.
	for _, c := range []*color.Color{p.time, p.key, p.trace, p.debug, p.info, p.warn, p.err} {
		c.EnableColor()
	}
	return p
}

// NewHandler creates a text handler writing to out.
func NewHandler(out io.Writer, opts HandlerOptions) *Handler {
	h := &Handler{
		opts: opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
	if opts.Color {
		h.pal = newPalette()
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r as a single line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(h.paint(h.timeColor(), r.Time.Format(timeLayout)))
		b.WriteByte(' ')
	}
	b.WriteString(h.paint(h.levelColor(r.Level), levelLabel(r.Level)))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range h.attrs {
		h.appendAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// levelLabel is a fixed-width name for level.
func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERR"
	case level >= slog.LevelWarn:
		return "WRN"
	case level >= slog.LevelInfo:
		return "INF"
	case level >= slog.LevelDebug:
		return "DBG"
	default:
		return "TRC"
	}
}

func (h *Handler) levelColor(level slog.Level) *color.Color {
	if h.pal == nil {
		return nil
	}
	switch {
	case level >= slog.LevelError:
		return h.pal.err
	case level >= slog.LevelWarn:
		return h.pal.warn
	case level >= slog.LevelInfo:
		return h.pal.info
	case level >= slog.LevelDebug:
		return h.pal.debug
	default:
		return h.pal.trace
	}
}

func (h *Handler) timeColor() *color.Color {
	if h.pal == nil {
		return nil
	}
	return h.pal.time
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			h.appendAttr(b, prefix, ga)
		}
		return
	}

	key := prefix + a.Key
	if h.pal != nil {
		key = h.pal.key.Sprint(key)
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(h.formatValue(a.Key, a.Value))
}

func (h *Handler) formatValue(key string, v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindDuration:
		s = v.Duration().String()
	case slog.KindTime:
		s = v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}

	switch {
	case shouldMask(key), containsTokenPrefix(s):
		return maskValue(s)
	case h.opts.Home != "":
		s = shortenHome(s, h.opts.Home)
	}

	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

// shortenHome replaces a leading home directory with "~".
func shortenHome(s, home string) string {
	home = filepath.Clean(home)
	if s == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(s, home+string(filepath.Separator)); ok {
		return "~" + string(filepath.Separator) + rest
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' || r > '~' {
			return true
		}
	}
	return false
}

// WithAttrs returns a Handler that adds attrs, qualified by the current
// groups, to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	newH := *h
	newH.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newH.attrs, h.attrs)
	for _, a := range attrs {
		a.Key = prefix + a.Key
		newH.attrs = append(newH.attrs, a)
	}
	return &newH
}

// WithGroup returns a Handler that qualifies later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	newH.groups = append(append([]string(nil), h.groups...), name)
	return &newH
}
