package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"
)

// capture redirects output for the duration of a test.
func capture(t *testing.T, v bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(v)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func(string, ...any)
		want    string
	}{
		{name: "debug verbose", verbose: true, log: Debug, want: "[DEBUG] chunk 3 of pets\n"},
		{name: "debug quiet", verbose: false, log: Debug, want: ""},
		{name: "info verbose", verbose: true, log: Info, want: "[INFO] chunk 3 of pets\n"},
		{name: "info quiet", verbose: false, log: Info, want: ""},
		{name: "warn verbose", verbose: true, log: Warn, want: "[WARN] chunk 3 of pets\n"},
		{name: "warn quiet", verbose: false, log: Warn, want: ""},
		{name: "error quiet", verbose: false, log: Error, want: "[ERROR] chunk 3 of pets\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)

			tt.log("chunk %d of %s", 3, "pets")

			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrailingNewlineIsNotDoubled(t *testing.T) {
	buf := capture(t, true)

	Info("loaded\n")

	if got := buf.String(); got != "[INFO] loaded\n" {
		t.Errorf("got %q", got)
	}
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Ask")
	if got := buf.String(); got != "\n=== Ask ===\n" {
		t.Errorf("got %q", got)
	}

	buf = capture(t, false)
	Section("Ask")
	if buf.Len() != 0 {
		t.Errorf("expected no section output when quiet, got %q", buf.String())
	}
}

func TestEnabled(t *testing.T) {
	capture(t, false)
	if Enabled(LevelDebug) || Enabled(LevelWarn) {
		t.Error("debug and warn should be disabled when quiet")
	}
	if !Enabled(LevelError) {
		t.Error("error should always be enabled")
	}

	SetVerbose(true)
	if !IsVerbose() || !Enabled(LevelDebug) {
		t.Error("debug should be enabled when verbose")
	}
}

func TestLevelString(t *testing.T) {
	for level, want := range map[Level]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
	} {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Debug("worker %d", i)
			_ = IsVerbose()
		}()
	}
	wg.Wait()
}
