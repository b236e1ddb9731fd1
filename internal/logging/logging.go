package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// StdoutLogger is the structured logger used by the CLI. It prints one JSON
// object per line. Despite the name it writes to stderr by default so that
// stdout stays free for artifact output.
type StdoutLogger struct {
	component string
	handler   slog.Handler
	fields    []Field
}

// Options configure NewStdoutLoggerWithOptions.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// NewStdoutLogger creates a logger at info level. component is included on
// every line and can be replaced through With(Field{Key: "component", ...}).
func NewStdoutLogger(component string) *StdoutLogger {
	return NewStdoutLoggerWithOptions(component, Options{})
}

func NewStdoutLoggerWithOptions(component string, opts Options) *StdoutLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	h := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	return &StdoutLogger{component: component, handler: h}
}

// ParseLevel maps a level name onto slog levels. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *StdoutLogger) log(level slog.Level, msg string, fields ...Field) {
	ctx := context.Background()
	if !s.handler.Enabled(ctx, level) {
		return
	}
	attrs := make([]any, 0, len(s.fields)+len(fields)+1)
	if s.component != "" {
		attrs = append(attrs, slog.String("component", s.component))
	}
	for _, f := range s.fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	if len(fields) > 0 {
		group := make([]any, 0, len(fields))
		for _, f := range fields {
			group = append(group, slog.Any(f.Key, fieldValue(f.Value)))
		}
		attrs = append(attrs, slog.Group("fields", group...))
	}
	slog.New(s.handler).Log(ctx, level, msg, attrs...)
}

// errors marshal to {} through the JSON handler.
func fieldValue(v any) any {
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return v
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.log(slog.LevelDebug, msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.log(slog.LevelInfo, msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.log(slog.LevelWarn, msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.log(slog.LevelError, msg, fields...)
}

// With returns a child logger. A "component" field replaces the component
// name; any other field is carried on every line the child writes.
func (s *StdoutLogger) With(fields ...Field) Logger {
	child := &StdoutLogger{
		component: s.component,
		handler:   s.handler,
		fields:    append([]Field(nil), s.fields...),
	}
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
				continue
			}
		}
		child.fields = append(child.fields, f)
	}
	return child
}
