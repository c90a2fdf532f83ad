package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xmhha/nofus/pkg/logger"
)

func TestNew(t *testing.T) {
	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if w == nil {
		t.Error("New() returned nil watcher")
	}

	if closeErr := w.Close(); closeErr != nil {
		t.Errorf("Close() error = %v", closeErr)
	}
}

func TestStartNoMountPoints(t *testing.T) {
	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	}()

	if startErr := w.Start(context.Background(), nil); !errors.Is(startErr, ErrNoMountPoints) {
		t.Errorf("Start() error = %v, want ErrNoMountPoints", startErr)
	}

	// A rejected Start must not leave the watcher marked as running.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mountPoint := filepath.Join(t.TempDir(), "mnt")
	if startErr := w.Start(ctx, []string{mountPoint}); startErr != nil {
		t.Errorf("Start() after rejected input error = %v, want nil", startErr)
	}
}

func TestCloseWithPendingDebounce(t *testing.T) {
	// Close racing a firing debounce timer must never send on the
	// closed events channel.
	for i := 0; i < 100; i++ {
		w, err := New(Config{
			DebounceInterval: time.Millisecond,
		}, logger.Noop())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		ww := w.(*watcher)
		ww.debounceEvent(Event{
			Path:      "/mnt/a",
			Op:        OpRemove,
			Timestamp: time.Now(),
		})

		// Vary the delay so Close lands before, during, and after the
		// timer fires across iterations.
		time.Sleep(time.Duration(i%3) * 500 * time.Microsecond)

		if closeErr := w.Close(); closeErr != nil {
			t.Fatalf("Close() error = %v", closeErr)
		}
	}
}

func TestStartAlreadyStarted(t *testing.T) {
	tmpDir := t.TempDir()
	mountPoint := filepath.Join(tmpDir, "mnt")

	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if startErr := w.Start(ctx, []string{mountPoint}); startErr != nil {
		t.Fatalf("Start() error = %v", startErr)
	}

	if startErr := w.Start(ctx, []string{mountPoint}); !errors.Is(startErr, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", startErr)
	}
}

func TestStopNotStarted(t *testing.T) {
	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	}()

	if stopErr := w.Stop(); !errors.Is(stopErr, ErrNotStarted) {
		t.Errorf("Stop() error = %v, want ErrNotStarted", stopErr)
	}
}

func TestUseAfterClose(t *testing.T) {
	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("Close() error = %v", closeErr)
	}

	if startErr := w.Start(context.Background(), []string{"/mnt/a"}); !errors.Is(startErr, ErrWatcherClosed) {
		t.Errorf("Start() after Close error = %v, want ErrWatcherClosed", startErr)
	}
	if ensureErr := w.EnsureWatches(); !errors.Is(ensureErr, ErrWatcherClosed) {
		t.Errorf("EnsureWatches() after Close error = %v, want ErrWatcherClosed", ensureErr)
	}
	if closeErr := w.Close(); closeErr != nil {
		t.Errorf("second Close() error = %v, want nil", closeErr)
	}
}

func TestMountPointEventDelivered(t *testing.T) {
	tmpDir := t.TempDir()
	mountPoint := filepath.Join(tmpDir, "mnt")

	w, err := New(Config{
		DebounceInterval: 20 * time.Millisecond,
	}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if startErr := w.Start(ctx, []string{mountPoint}); startErr != nil {
		t.Fatalf("Start() error = %v", startErr)
	}

	// Creating the mount point's directory entry simulates a mount
	// appearing under the watched parent.
	if mkErr := os.Mkdir(mountPoint, 0755); mkErr != nil {
		t.Fatal(mkErr)
	}

	select {
	case event := <-w.Events():
		if event.Path != mountPoint {
			t.Errorf("event.Path = %q, want %q", event.Path, mountPoint)
		}
		if event.Op != OpCreate {
			t.Errorf("event.Op = %v, want OpCreate", event.Op)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mount point event")
	}
}

func TestSiblingActivityIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	mountPoint := filepath.Join(tmpDir, "mnt")

	w, err := New(Config{
		DebounceInterval: 20 * time.Millisecond,
	}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if startErr := w.Start(ctx, []string{mountPoint}); startErr != nil {
		t.Fatalf("Start() error = %v", startErr)
	}

	// Activity on an unmonitored sibling in the same parent directory.
	sibling := filepath.Join(tmpDir, "unrelated")
	if writeErr := os.WriteFile(sibling, []byte("x"), 0600); writeErr != nil {
		t.Fatal(writeErr)
	}

	select {
	case event := <-w.Events():
		t.Errorf("unexpected event for sibling activity: %+v", event)
	case <-time.After(300 * time.Millisecond):
		// No event: sibling activity filtered out.
	}
}

func TestDuplicateEventsDebounced(t *testing.T) {
	tmpDir := t.TempDir()
	mountPoint := filepath.Join(tmpDir, "mnt")

	w, err := New(Config{
		DebounceInterval: 100 * time.Millisecond,
	}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if startErr := w.Start(ctx, []string{mountPoint}); startErr != nil {
		t.Fatalf("Start() error = %v", startErr)
	}

	// A rapid create/chmod/remove/create burst on the same entry.
	if mkErr := os.Mkdir(mountPoint, 0755); mkErr != nil {
		t.Fatal(mkErr)
	}
	if chErr := os.Chmod(mountPoint, 0700); chErr != nil {
		t.Fatal(chErr)
	}
	if rmErr := os.Remove(mountPoint); rmErr != nil {
		t.Fatal(rmErr)
	}
	if mkErr := os.Mkdir(mountPoint, 0755); mkErr != nil {
		t.Fatal(mkErr)
	}

	// The burst should collapse into a single debounced event.
	received := 0
	deadline := time.After(time.Second)
	for done := false; !done; {
		select {
		case <-w.Events():
			received++
		case <-deadline:
			done = true
		}
	}

	if received != 1 {
		t.Errorf("received %d events for burst, want 1", received)
	}
}

func TestSubscriptionFailureNonFatal(t *testing.T) {
	// The mount point's parent does not exist, so fsnotify.Add fails.
	missingParent := filepath.Join(t.TempDir(), "does", "not", "exist")
	mountPoint := filepath.Join(missingParent, "mnt")

	w, err := New(Config{}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if startErr := w.Start(ctx, []string{mountPoint}); startErr != nil {
		t.Fatalf("Start() error = %v, want nil (subscription failure is non-fatal)", startErr)
	}

	select {
	case watchErr := <-w.Errors():
		if !errors.Is(watchErr, ErrSubscriptionFailed) {
			t.Errorf("error = %v, want ErrSubscriptionFailed", watchErr)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription error")
	}
}

func TestEnsureWatchesRecovers(t *testing.T) {
	tmpDir := t.TempDir()
	parent := filepath.Join(tmpDir, "later")
	mountPoint := filepath.Join(parent, "mnt")

	w, err := New(Config{
		DebounceInterval: 20 * time.Millisecond,
	}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			t.Logf("Close() error = %v", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Parent missing: subscription fails but Start succeeds.
	if startErr := w.Start(ctx, []string{mountPoint}); startErr != nil {
		t.Fatalf("Start() error = %v", startErr)
	}

	// Parent appears later; EnsureWatches picks it up.
	if mkErr := os.MkdirAll(parent, 0755); mkErr != nil {
		t.Fatal(mkErr)
	}
	if ensureErr := w.EnsureWatches(); ensureErr != nil {
		t.Fatalf("EnsureWatches() error = %v", ensureErr)
	}

	if mkErr := os.Mkdir(mountPoint, 0755); mkErr != nil {
		t.Fatal(mkErr)
	}

	select {
	case event := <-w.Events():
		if event.Path != mountPoint {
			t.Errorf("event.Path = %q, want %q", event.Path, mountPoint)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event after EnsureWatches")
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
		{Op(0), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}
