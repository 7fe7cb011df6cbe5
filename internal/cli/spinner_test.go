package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer for the spinner goroutine.
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

func TestSpinnerDrawsFrames(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Computing slope")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Computing slope") {
		t.Errorf("spinner output missing message: %q", out.String())
	}
}

func TestSpinnerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, io.Discard, "Testing")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), io.Discard, "Testing")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Working")
	s.Start()
	s.StopWithSuccess("Done")
	if !strings.Contains(out.String(), "Done") {
		t.Errorf("missing success message: %q", out.String())
	}

	s = newSpinner(context.Background(), &out, "Working")
	s.Start()
	s.StopWithError("Failed")
	if !strings.Contains(out.String(), "Failed") {
		t.Errorf("missing error message: %q", out.String())
	}
}

func TestStartSpinnerNonInteractive(t *testing.T) {
	var out syncBuffer
	c := New(&out, LogInfo)
	c.interactive = false

	stop := c.startSpinner(context.Background(), "quiet")
	time.Sleep(100 * time.Millisecond)
	stop()

	if out.String() != "" {
		t.Errorf("non-interactive spinner wrote %q", out.String())
	}
}
