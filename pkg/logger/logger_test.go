package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConsoleWriterUsesStderr(t *testing.T) {
	if w := consoleWriter(); w.Out != os.Stderr {
		t.Errorf("Expected console logs on stderr, got %v", w.Out)
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"release", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		SetLevel(tt.in)
		if got := Log.GetLevel(); got != tt.want {
			t.Errorf("SetLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestNewLogger_WritesToGivenOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf)
	l.Info().Str("sku", "A-1").Msg("hello")

	if !strings.Contains(buf.String(), `"sku":"A-1"`) {
		t.Errorf("Expected structured output, got %q", buf.String())
	}
}
