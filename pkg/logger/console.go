// Package logger provides the leveled console logger used to report
// filesystem failures under the "log and continue" error policy.
//
// Output lines have the form "[HH:MM:SS] [LEVEL] message". When writing to a
// terminal the level tag is colored; any other writer gets plain text.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the logging surface the rest of the toolkit depends on.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// ConsoleLogger writes leveled messages to a writer. It is safe for
// concurrent use.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    NormalizeLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// NewStderrLogger is the logger used when callers do not supply one.
func NewStderrLogger() *ConsoleLogger {
	return NewConsoleLogger(os.Stderr, "info")
}

// Discard returns a logger that drops every message.
func Discard() *ConsoleLogger {
	return NewConsoleLogger(nil, "error")
}

// NormalizeLevel lowercases a level name and falls back to "info" when it is
// not one of the known levels.
func NormalizeLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

// Level returns the configured minimum level.
func (cl *ConsoleLogger) Level() string {
	return cl.logLevel
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}

	if logLevelToInt(strings.ToLower(level)) < logLevelToInt(cl.logLevel) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := time.Now().Format("15:04:05")

	tag := level
	if cl.colorOutput {
		tag = colorFor(level).Sprint(level)
	}

	_, _ = fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, tag, message)
}

func colorFor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// isTerminal reports whether w is stdout/stderr attached to a TTY.
// color.NoColor already accounts for NO_COLOR.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok || (file != os.Stdout && file != os.Stderr) {
		return false
	}

	fd := file.Fd()

	return !color.NoColor && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}
