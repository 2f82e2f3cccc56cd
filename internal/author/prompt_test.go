package author

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestIOPrompter_Ask(t *testing.T) {
	var out strings.Builder
	p := NewIOPrompter(strings.NewReader("  first \nlast"), &out)
	ctx := context.Background()

	for _, want := range []string{"first", "last"} {
		got, err := p.Ask(ctx, "? ")
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		if got != want {
			t.Errorf("Ask() = %q, want %q", got, want)
		}
	}
	if _, err := p.Ask(ctx, "? "); !errors.Is(err, io.EOF) {
		t.Errorf("Ask() after input error = %v, want io.EOF", err)
	}
	if out.String() != "? ? ? " {
		t.Errorf("output = %q", out.String())
	}
}

func TestIOPrompter_CancelWhileWaiting(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := NewIOPrompter(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Ask(ctx, "? ")
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Ask() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Ask() still blocked after cancel")
	}

	// A line typed after the cancel goes to the next question.
	go w.Write([]byte("later\n"))
	got, err := p.Ask(context.Background(), "? ")
	if err != nil || got != "later" {
		t.Errorf("next Ask() = %q, %v, want %q", got, err, "later")
	}
}
