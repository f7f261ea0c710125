package debug_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/davidfrivas/RandomWalkSeq/debug"
)

func TestLogWritesCategoryAndMessage(t *testing.T) {
	var buf bytes.Buffer
	debug.EnableWriter(&buf)
	defer debug.Disable()
	debug.Log("midi", "sent %d events", 3)
	line := buf.String()
	if !strings.Contains(line, "midi") || !strings.HasSuffix(line, "sent 3 events\n") {
		t.Fatalf("unexpected log line %q", line)
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	debug.EnableWriter(&buf)
	defer debug.Disable()
	for i := 0; i < 10; i++ {
		debug.LogEvery(5, "audio", "block")
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("expected 2 lines for 10 calls every 5, got %d: %q", n, buf.String())
	}
}

func TestDisabledLogIsSilent(t *testing.T) {
	var buf bytes.Buffer
	debug.EnableWriter(&buf)
	debug.Disable()
	debug.Log("midi", "dropped")
	if buf.Len() != 0 || debug.Enabled() {
		t.Fatalf("log written while disabled: %q", buf.String())
	}
}
