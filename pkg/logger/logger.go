// Package logger configures the process-wide slog logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

const modulePrefix = "github.com/openinterpreter/oi"

var (
	defaultLogger *slog.Logger
	level         = new(slog.LevelVar)
)

// ParseLevel converts a string log level to slog.Level
// Valid levels: debug, info, warn, error. Anything else is warn.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// SetLevel changes the level of the logger installed by Init.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Level returns the current level.
func Level() slog.Level {
	return level.Level()
}

// moduleFilter drops records from outside this module unless the level is
// debug.
type moduleFilter struct {
	handler slog.Handler
}

func (h *moduleFilter) Enabled(ctx context.Context, l slog.Level) bool {
	return h.handler.Enabled(ctx, l)
}

func (h *moduleFilter) Handle(ctx context.Context, record slog.Record) error {
	if level.Level() <= slog.LevelDebug || fromModule(record.PC) {
		return h.handler.Handle(ctx, record)
	}
	return nil
}

func (h *moduleFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &moduleFilter{handler: h.handler.WithAttrs(attrs)}
}

func (h *moduleFilter) WithGroup(name string) slog.Handler {
	return &moduleFilter{handler: h.handler.WithGroup(name)}
}

func fromModule(pc uintptr) bool {
	if pc == 0 {
		return false
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return false
	}
	return strings.HasPrefix(fn.Name(), modulePrefix)
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "\033[31m"
	case l >= slog.LevelWarn:
		return "\033[33m"
	case l >= slog.LevelInfo:
		return "\033[36m"
	default:
		return "\033[90m"
	}
}

// lineHandler writes "LEVEL message key=value ..." lines, optionally
// prefixed with a timestamp and coloured.
type lineHandler struct {
	base      slog.Handler
	writer    io.Writer
	color     bool
	timestamp bool
	attrs     []slog.Attr
}

func (h *lineHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.base.Enabled(ctx, l)
}

func (h *lineHandler) Handle(_ context.Context, record slog.Record) error {
	var buf strings.Builder

	if h.timestamp && !record.Time.IsZero() {
		buf.WriteString(record.Time.Format("2006/01/02 15:04:05 "))
	}

	name := strings.ToUpper(record.Level.String())
	if h.color {
		buf.WriteString(levelColor(record.Level))
		buf.WriteString(name)
		buf.WriteString("\033[0m")
	} else {
		buf.WriteString(name)
	}
	buf.WriteString(" ")
	buf.WriteString(record.Message)

	write := func(a slog.Attr) bool {
		buf.WriteString(" ")
		buf.WriteString(a.Key)
		buf.WriteString("=")
		buf.WriteString(a.Value.String())
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	record.Attrs(write)
	buf.WriteString("\n")

	_, err := io.WriteString(h.writer, buf.String())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.base = h.base.WithAttrs(attrs)
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.base = h.base.WithGroup(name)
	return &next
}

// Init installs the default logger.
// format: "simple" (level + message + attributes, the default), "verbose"
// (adds a timestamp) or "json". Output to a terminal is coloured.
func Init(l slog.Level, output *os.File, format string) *slog.Logger {
	level.Set(l)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "", "simple", "verbose":
		handler = &lineHandler{
			base:      slog.NewTextHandler(output, opts),
			writer:    output,
			color:     term.IsTerminal(int(output.Fd())),
			timestamp: format == "verbose",
		}
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(&moduleFilter{handler: handler})
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

// OpenLogFile opens or creates a log file at the specified path
// Returns the file handle and a cleanup function, or an error
func OpenLogFile(path string) (*os.File, func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}

// GetLogger returns the default logger, initialising it on first use.
func GetLogger() *slog.Logger {
	if defaultLogger == nil {
		Init(slog.LevelWarn, os.Stderr, "simple")
	}
	return defaultLogger
}
