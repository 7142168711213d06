package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		" trace ": zerolog.TraceLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitWithOptions_File(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	path := filepath.Join(t.TempDir(), "logs", "chessinsight.log")

	log, err := InitWithOptions(Options{File: path})
	if err != nil {
		t.Fatalf("InitWithOptions failed: %v", err)
	}
	log.Info().Str("provider", "openai").Msg("hello")
	log.Debug().Msg("filtered")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"message":"hello"`) || !strings.Contains(out, `"provider":"openai"`) {
		t.Errorf("Expected JSON log line, got %s", out)
	}
	if strings.Contains(out, "filtered") {
		t.Error("Debug output should be filtered at info level")
	}
}

func TestInitWithOptions_Discard(t *testing.T) {
	log, err := InitWithOptions(Options{Discard: true})
	if err != nil {
		t.Fatalf("InitWithOptions failed: %v", err)
	}
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("Expected disabled logger, got %v", log.GetLevel())
	}
}
