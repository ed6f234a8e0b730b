// Package log configures the process-wide slog logger. Warnings and errors
// go to stderr; with a debug directory every level is also appended to a
// daily JSONL file so failed builds can be diagnosed after the fact.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var (
	logger  *slog.Logger
	logFile *DailyFile
)

// Options configures the logger.
type Options struct {
	// Verbose lowers the stderr level to debug.
	Verbose bool
	// JSON switches stderr output to JSON.
	JSON bool
	// DebugDir receives daily JSONL files. Empty disables file logging.
	DebugDir string
	// RetentionDays prunes older files from DebugDir (0 keeps everything).
	RetentionDays int
	// Stderr overrides os.Stderr.
	Stderr io.Writer
}

// Init installs the logger described by opts as the package and slog
// default.
func Init(opts Options) error {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	stderrOpts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if opts.JSON {
		handlers = append(handlers, slog.NewJSONHandler(stderr, stderrOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(stderr, stderrOpts))
	}

	if opts.DebugDir != "" {
		if opts.RetentionDays > 0 {
			Prune(opts.DebugDir, opts.RetentionDays)
		}
		f, err := OpenDailyFile(opts.DebugDir)
		if err != nil {
			return err
		}
		Close()
		logFile = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	setLogger(slog.New(&fanout{handlers: handlers}))
	return nil
}

// Close flushes and closes the debug file, if any.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// SetCommand tags subsequent records with the running subcommand.
func SetCommand(name string) {
	setLogger(logger.With(slog.String("command", name)))
}

// SetOutput sends every level to w as text (for tests).
func SetOutput(w io.Writer) {
	setLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func setLogger(l *slog.Logger) {
	logger = l
	slog.SetDefault(l)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { logger.Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { logger.Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { logger.Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { logger.Error(msg, args...) }

// With returns a logger carrying args.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

// fanout sends each record to every handler enabled for its level.
type fanout struct {
	handlers []slog.Handler
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *fanout) derive(fn func(slog.Handler) slog.Handler) *fanout {
	out := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		out[i] = fn(h)
	}
	return &fanout{handlers: out}
}

func init() {
	logger = slog.Default()
}
