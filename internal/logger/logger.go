// Package logger is the process-wide diagnostic log for sercha-rag.
//
// Output is line oriented and goes to stderr so that stdout stays clean for
// answers and --json streams. Debug, Info and Warn lines only appear once
// --verbose is set; errors are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level orders log lines by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose toggles Debug, Info, Warn and Section output.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects all log lines. Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// Enabled reports whether a line at level would be written.
func Enabled(level Level) bool {
	return level >= LevelError || IsVerbose()
}

func logf(level Level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if level < LevelError && !verbose {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(output, "[%s] %s\n", level, msg)
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args) }

func Info(format string, args ...any) { logf(LevelInfo, format, args) }

func Warn(format string, args ...any) { logf(LevelWarn, format, args) }

func Error(format string, args ...any) { logf(LevelError, format, args) }

// Section writes a banner separating phases such as wiring and an ask run.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
