// Package logging wraps log/slog with the defaults and attribute
// vocabulary used across rebackup.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Level aliases so callers configure logging without importing slog.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	defaultLogger *slog.Logger
	defaultOnce   sync.Once
)

// Options configures logger construction.
type Options struct {
	// Level is the minimum level that will be emitted.
	Level slog.Level
	// Output receives the log stream. Defaults to os.Stderr.
	Output io.Writer
	// JSON switches from the text handler to the JSON handler.
	JSON bool
	// AddSource annotates records with file and line information.
	AddSource bool
}

// DefaultOptions returns the options used when nothing else is
// configured: text output to stderr at Info level.
func DefaultOptions() Options {
	return Options{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// New builds a logger from opts.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	ho := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, ho))
	}
	return slog.New(slog.NewTextHandler(out, ho))
}

// Default returns the process-wide logger, building one from
// DefaultOptions on first use.
func Default() *slog.Logger {
	defaultOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New(DefaultOptions())
		}
	})
	return defaultLogger
}

// SetDefault installs logger as the process-wide default, both for
// this package and for slog itself. Later Default calls return it.
func SetDefault(logger *slog.Logger) {
	defaultOnce.Do(func() {})
	defaultLogger = logger
	slog.SetDefault(logger)
}

// With returns a child of the default logger carrying args.
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}

// WithContext returns the logger attached to ctx, or the default
// logger when the context carries none.
func WithContext(ctx context.Context) *slog.Logger {
	if l := FromContext(ctx); l != nil {
		return l
	}
	return Default()
}

// Debug logs msg at debug level on the default logger.
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info logs msg at info level on the default logger.
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs msg at warn level on the default logger.
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs msg at error level on the default logger.
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

type loggerKey struct{}

// NewContext attaches logger to ctx for retrieval with FromContext.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx, or nil.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return nil
}

// Attribute keys shared by every package that logs, so records stay
// greppable across the codebase.
const (
	// KeySource identifies the source directory being mirrored.
	KeySource = "source"
	// KeyDest identifies the destination directory.
	KeyDest = "dest"
	// KeyPath identifies a file path.
	KeyPath = "path"
	// KeyOperation identifies the operation being performed.
	KeyOperation = "operation"
	// KeyCycle carries the sync cycle sequence number.
	KeyCycle = "cycle"
	// KeyCount provides a count of items.
	KeyCount = "count"
	// KeyError attaches an error value.
	KeyError = "error"
	// KeyDuration records operation duration.
	KeyDuration = "duration"
)

// Source returns a slog attribute for the source directory.
func Source(dir string) slog.Attr {
	return slog.String(KeySource, dir)
}

// Dest returns a slog attribute for the destination directory.
func Dest(dir string) slog.Attr {
	return slog.String(KeyDest, dir)
}

// Path returns a slog attribute for file path logging.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Operation returns a slog attribute for operation logging.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Cycle returns a slog attribute for the cycle counter.
func Cycle(n uint64) slog.Attr {
	return slog.Uint64(KeyCycle, n)
}

// Err returns a slog attribute for error logging. A nil error yields
// an empty attribute that the handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// Count returns a slog attribute for item counts.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Duration returns a slog attribute for elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Timer logs the elapsed time of an operation at debug level.
// Use as: defer logging.Timer("cycle")()
func Timer(operation string) func() {
	start := time.Now()
	return func() {
		Debug("operation completed",
			Operation(operation),
			Duration(time.Since(start)),
		)
	}
}
