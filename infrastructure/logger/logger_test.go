package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

type bufferCloser struct {
	sync.Mutex
	bytes.Buffer
}

func (b *bufferCloser) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.Write(p)
}

func (b *bufferCloser) Close() error { return nil }

func (b *bufferCloser) String() string {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.String()
}

func TestLoggerLevelFiltering(t *testing.T) {
	backend := NewBackend()
	out := &bufferCloser{}
	err := backend.AddLogWriter(out, LevelTrace)
	if err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	err = backend.Run()
	if err != nil {
		t.Fatalf("Run: %s", err)
	}

	log := backend.Logger("TEST")
	log.Infof("dropped while off")
	log.SetLevel(LevelInfo)
	log.Debugf("dropped below level")
	log.Infof("kept %d", 1)
	log.Warn("kept", " ", 2)
	backend.Close()

	output := out.String()
	if strings.Contains(output, "dropped") {
		t.Fatalf("filtered messages were written: %q", output)
	}
	if !strings.Contains(output, "[INF] TEST: kept 1") {
		t.Fatalf("missing info line in %q", output)
	}
	if !strings.Contains(output, "[WRN] TEST: kept 2") {
		t.Fatalf("missing warn line in %q", output)
	}
}

func TestParseAndSetLogLevels(t *testing.T) {
	log := RegisterSubSystem("TPLS")
	err := ParseAndSetLogLevels("TPLS=debug")
	if err != nil {
		t.Fatalf("ParseAndSetLogLevels: %s", err)
	}
	if log.Level() != LevelDebug {
		t.Fatalf("expected level %s, got %s", LevelDebug, log.Level())
	}

	err = ParseAndSetLogLevels("NOPE=debug")
	if err == nil {
		t.Fatalf("expected an error for an unknown subsystem")
	}
	err = ParseAndSetLogLevels("loud")
	if err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
