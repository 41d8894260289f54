// Package log wraps slog with the board's -v verbosity levels and a single
// rewritable progress line on stderr.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Verbosity levels
const (
	LevelQuiet = iota // warnings and errors only
	LevelInfo         // -v: run stages, counts, progress line
	LevelDebug        // -vv: per pull request decisions, API paging
	LevelTrace        // -vvv: resolved authors, rate limit headers
)

const slogLevelTrace = slog.Level(-8)

var (
	mu         sync.Mutex // guards output and inProgress
	verbosity  int
	logger     *slog.Logger
	output     io.Writer
	inProgress bool
)

// Initialize sets up the global logger with the specified verbosity level.
func Initialize(level int, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	verbosity = level
	output = w
	inProgress = false
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel(level),
	}))
}

func slogLevel(level int) slog.Level {
	switch {
	case level >= LevelTrace:
		return slogLevelTrace
	case level >= LevelDebug:
		return slog.LevelDebug
	case level >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func emit(min int, level slog.Level, msg string, args []any) {
	if verbosity < min {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	breakProgress()
	logger.Log(context.Background(), level, msg, args...)
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	emit(LevelInfo, slog.LevelInfo, msg, args)
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	emit(LevelDebug, slog.LevelDebug, msg, args)
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	emit(LevelTrace, slogLevelTrace, msg, args)
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	emit(LevelQuiet, slog.LevelWarn, msg, args)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	emit(LevelQuiet, slog.LevelError, msg, args)
}

// Progress rewrites the progress line. Only shown at info level or higher.
func Progress(format string, args ...any) {
	if verbosity < LevelInfo {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	inProgress = true
	_, _ = fmt.Fprintf(output, "\r"+format, args...)
}

// ProgressDone completes the progress line with "done".
func ProgressDone() {
	mu.Lock()
	defer mu.Unlock()
	if verbosity >= LevelInfo && inProgress {
		_, _ = fmt.Fprintln(output, " done")
		inProgress = false
	}
}

// ProgressClear erases the progress line.
func ProgressClear() {
	mu.Lock()
	defer mu.Unlock()
	if inProgress {
		_, _ = fmt.Fprint(output, "\r\033[K")
		inProgress = false
	}
}

// breakProgress ends a pending progress line so a log record starts on its
// own line. Callers hold mu.
func breakProgress() {
	if inProgress {
		_, _ = fmt.Fprintln(output)
		inProgress = false
	}
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool {
	return verbosity >= LevelInfo
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	return verbosity >= LevelDebug
}

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool {
	return verbosity >= LevelTrace
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	return verbosity
}

func init() {
	Initialize(LevelQuiet, os.Stderr)
}
