package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestExecDispatcher(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	d := NewExecDispatcher("/bin/sh", "", testLogger())

	if err := d.Dispatch(context.Background(), "echo hello > "+out); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(b)) != "hello" {
		t.Errorf("output = %q", b)
	}

	t.Run("failure surfaces", func(t *testing.T) {
		if err := d.Dispatch(context.Background(), "exit 3"); err == nil {
			t.Error("expected error from failing command")
		}
	})
}

func TestExecDispatcherPrefix(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	d := NewExecDispatcher("/bin/sh", "echo", testLogger())
	// The prefix turns the command into an echo, proving it is prepended.
	if err := d.Dispatch(context.Background(), "say hi > "+out); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(b)) != "say hi" {
		t.Errorf("output = %q", b)
	}
}

func TestNoopDispatcher(t *testing.T) {
	d := NewNoopDispatcher(testLogger())
	if err := d.Dispatch(context.Background(), "anything"); err != nil {
		t.Errorf("Dispatch: %v", err)
	}
}
