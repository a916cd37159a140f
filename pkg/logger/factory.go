package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the record encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Option configures New.
type Option func(*settings)

type settings struct {
	level   slog.Level
	format  Format
	out     io.Writer
	attrs   []slog.Attr
	extract []ContextExtractor
}

// WithLevel sets the minimum level.
func WithLevel(l slog.Level) Option {
	return func(s *settings) { s.level = l }
}

// WithLevelName sets the level by name. Unknown names are ignored.
func WithLevelName(name string) Option {
	return func(s *settings) {
		if l, ok := ParseLevel(name); ok {
			s.level = l
		}
	}
}

// WithFormat sets the encoding. It panics on anything but FormatJSON or
// FormatText; callers reading the format from config validate it first.
func WithFormat(f Format) Option {
	return func(s *settings) {
		if f != FormatJSON && f != FormatText {
			panic(fmt.Sprintf("logger: unsupported format %q", f))
		}
		s.format = f
	}
}

// WithOutput redirects records. A nil writer is ignored.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(s *settings) { s.attrs = append(s.attrs, attrs...) }
}

// WithContextExtractors adds per-record attributes taken from the context,
// such as requestid.LoggerExtractor.
func WithContextExtractors(fns ...ContextExtractor) Option {
	return func(s *settings) {
		for _, fn := range fns {
			if fn != nil {
				s.extract = append(s.extract, fn)
			}
		}
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a level.
// An empty name is info.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// New builds a logger. Defaults: JSON, info level, stderr (stdout belongs
// to the host app).
func New(opts ...Option) *slog.Logger {
	s := &settings{level: slog.LevelInfo, format: FormatJSON, out: os.Stderr}
	for _, opt := range opts {
		opt(s)
	}

	ho := &slog.HandlerOptions{Level: s.level}
	var h slog.Handler = slog.NewJSONHandler(s.out, ho)
	if s.format == FormatText {
		h = slog.NewTextHandler(s.out, ho)
	}
	if len(s.attrs) > 0 {
		h = h.WithAttrs(s.attrs)
	}
	if len(s.extract) > 0 {
		h = contextHandler{Handler: h, extract: s.extract}
	}
	return slog.New(h)
}
