package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	w := New([]string{
		filepath.Join(dir, "a", "LATEST_COMMIT"),
		filepath.Join(dir, "b", "LATEST_COMMIT"),
		filepath.Join(dir, "a", "LATEST_COMMIT"),
	}, func(context.Context) {}, Options{})

	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
	if got := len(w.Files()); got != 2 {
		t.Errorf("Files = %d, want 2", got)
	}
	if got := len(w.dirs); got != 2 {
		t.Errorf("dirs = %d, want 2", got)
	}
}

func TestLoop_Debounce(t *testing.T) {
	clock := clockz.NewFakeClock()
	var runs atomic.Int32
	w := New(nil, func(context.Context) { runs.Add(1) }, Options{
		Debounce: 100 * time.Millisecond,
		Clock:    clock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 10)
	done := make(chan struct{})
	go func() {
		w.loop(ctx, changes)
		close(done)
	}()

	// Send rapid changes
	changes <- "a"
	changes <- "a"
	changes <- "b"

	// Allow goroutine to receive changes
	time.Sleep(10 * time.Millisecond)

	if runs.Load() != 0 {
		t.Errorf("expected 0 runs while debouncing, got %d", runs.Load())
	}

	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()
	time.Sleep(10 * time.Millisecond)

	if runs.Load() != 1 {
		t.Errorf("expected 1 run after debounce, got %d", runs.Load())
	}

	// Timer firing again without a new change does nothing
	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()
	time.Sleep(10 * time.Millisecond)

	if runs.Load() != 1 {
		t.Errorf("expected still 1 run, got %d", runs.Load())
	}

	// A second burst runs again
	changes <- "a"
	time.Sleep(10 * time.Millisecond)
	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()
	time.Sleep(10 * time.Millisecond)

	if runs.Load() != 2 {
		t.Errorf("expected 2 runs after second burst, got %d", runs.Load())
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit on cancel")
	}
}

func TestLoop_FlushesPendingOnClose(t *testing.T) {
	clock := clockz.NewFakeClock()
	var runs atomic.Int32
	w := New(nil, func(context.Context) { runs.Add(1) }, Options{
		Debounce: time.Minute,
		Clock:    clock,
	})

	changes := make(chan string, 1)
	changes <- "a"
	close(changes)

	w.loop(context.Background(), changes)

	if runs.Load() != 1 {
		t.Errorf("expected pending change flushed on close, got %d runs", runs.Load())
	}
}

func TestLoop_CancelWithPending(t *testing.T) {
	clock := clockz.NewFakeClock()
	var runs atomic.Int32
	w := New(nil, func(context.Context) { runs.Add(1) }, Options{
		Debounce: 100 * time.Millisecond,
		Clock:    clock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		w.loop(ctx, changes)
		close(done)
	}()

	changes <- "a"
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit on cancel")
	}
	if runs.Load() != 0 {
		t.Errorf("expected no run after cancel, got %d", runs.Load())
	}
}

func TestWatch_FileChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "LATEST_COMMIT")
	other := filepath.Join(dir, "README")

	ran := make(chan struct{}, 10)
	w := New([]string{target}, func(context.Context) { ran <- struct{}{} }, Options{
		Debounce: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx) }()

	// Give the watcher time to register
	time.Sleep(50 * time.Millisecond)

	// Unrelated file is ignored
	if err := os.WriteFile(other, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ran:
		t.Fatal("unexpected run for unwatched file")
	case <-time.After(150 * time.Millisecond):
	}

	if err := os.WriteFile(target, []byte("abc1234\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for run after write")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Watch error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	w := New([]string{filepath.Join(t.TempDir(), "gone", "LATEST_COMMIT")}, func(context.Context) {}, Options{})
	if err := w.Watch(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
