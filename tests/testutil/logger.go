package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/systmms/keyvault-middleware/internal/logging"
)

// TestLogger captures log output so tests can check what was (and was
// not) logged.
//
//	tl := NewTestLogger(t, true)
//	handler := function.NewHandler(cfg, secrets) // cfg.Logger = tl.Logger
//	...
//	tl.AssertNotContains(t, "s3cr3t")
type TestLogger struct {
	*logging.Logger
	buf *syncBuffer
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewTestLogger creates a logger writing uncolored records to memory.
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	buf := &syncBuffer{}
	return &TestLogger{
		Logger: logging.NewWithWriter(buf, debug, true),
		buf:    buf,
	}
}

// Output returns everything logged so far
func (l *TestLogger) Output() string {
	return l.buf.String()
}

// AssertContains fails the test if the log output lacks substr
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	if !strings.Contains(l.Output(), substr) {
		t.Errorf("log output does not contain %q:\n%s", substr, l.Output())
	}
}

// AssertNotContains fails the test if the log output contains substr
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	if strings.Contains(l.Output(), substr) {
		t.Errorf("log output unexpectedly contains %q:\n%s", substr, l.Output())
	}
}
