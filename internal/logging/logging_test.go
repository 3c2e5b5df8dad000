package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewWritesJSONWithServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "auto", &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("episode", "2024-03-01-morning-brief.mp3").Msg("registered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single line at info level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output for non-terminal writer: %v", err)
	}
	if entry["service"] != "morning-brief" || entry["episode"] != "2024-03-01-morning-brief.mp3" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "console", &buf)
	logger.Warn().Msg("placeholder section")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected console output, got JSON: %q", out)
	}
	if !strings.Contains(out, "placeholder section") {
		t.Fatalf("expected message in console output, got %q", out)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	var buf bytes.Buffer
	logger := FromEnv(&buf)
	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "dropped") || !strings.Contains(out, `"message":"kept"`) {
		t.Fatalf("unexpected output %q", out)
	}
}
