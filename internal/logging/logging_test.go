package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lockdash.log")

	logger, closer, err := New(Options{Level: "debug", Format: "json", File: path, Quiet: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info().Str("component", "test").Msg("hello")
	logger.Debug().Msg("detail")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"message":"hello"`) || !strings.Contains(out, `"component":"test"`) {
		t.Fatalf("log output missing fields: %s", out)
	}
	if !strings.Contains(out, `"message":"detail"`) {
		t.Fatalf("debug line missing at debug level: %s", out)
	}
}

func TestNew_QuietWithoutFileDiscards(t *testing.T) {
	logger, closer, err := New(Options{Quiet: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if closer == nil {
		t.Fatal("closer should never be nil")
	}
	logger.Info().Msg("dropped")
}
