package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/objc2dart/objc2dart/internal/testrunner/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		in      fsnotify.Op
		want    Op
		changed bool
	}{
		{fsnotify.Create, OpCreate, true},
		{fsnotify.Write, OpWrite, true},
		{fsnotify.Create | fsnotify.Write, OpCreate | OpWrite, true},
		{fsnotify.Remove, OpRemove, false},
		{fsnotify.Rename, OpRename, false},
		{fsnotify.Chmod, OpChmod, false},
	}
	for _, tt := range tests {
		ev := translate(fsnotify.Event{Name: "dir/../a.json", Op: tt.in})
		assert.Equal(t, ev.Path, "a.json")
		assert.Equal(t, ev.Op, tt.want)
		assert.Equal(t, ev.Changed(), tt.changed)
	}
}

func TestRunReportsWatchedFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "a.json")
	if err := os.WriteFile(watched, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New([]string{watched})
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan []string, 1)
	go func() {
		_ = w.Run(ctx, 20*time.Millisecond, func(changed []string) {
			select {
			case got <- changed:
			default:
			}
		})
	}()

	_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644)
	_ = os.WriteFile(watched, []byte(`{"decls": []}`), 0o644)

	select {
	case changed := <-got:
		assert.Len(t, changed, 1)
		assert.Equal(t, changed[0], watched)
	case <-ctx.Done():
		t.Fatal("timeout waiting for change")
	}
}

func TestDebounceWaitsForLastEvent(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const quiet = 200 * time.Millisecond
	calls := make(chan []string, 4)
	done := make(chan error, 1)
	accept := func(ev Event) bool { return ev.Path != "skip.json" && ev.Changed() }
	go func() {
		done <- debounce(ctx, events, errs, accept, quiet, func(changed []string) { calls <- changed })
	}()

	// Each event lands well inside the quiet period of the one before, so
	// the batch stays open until the last.
	for _, name := range []string{"c.json", "skip.json", "a.json", "b.json", "a.json"} {
		events <- fsnotify.Event{Name: name, Op: fsnotify.Write}
		time.Sleep(quiet / 10)
	}
	events <- fsnotify.Event{Name: "d.json", Op: fsnotify.Chmod}

	select {
	case changed := <-calls:
		assert.Len(t, changed, 3)
		assert.Equal(t, strings.Join(changed, ","), "a.json,b.json,c.json")
	case <-ctx.Done():
		t.Fatal("timeout waiting for batch")
	}
	select {
	case extra := <-calls:
		t.Fatalf("unexpected second batch %v", extra)
	case <-time.After(2 * quiet):
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestDebounceReturnsWatcherError(t *testing.T) {
	errs := make(chan error, 1)
	errs <- errors.New("overflow")
	err := debounce(context.Background(), make(chan fsnotify.Event), errs,
		func(Event) bool { return true }, time.Second, func([]string) {})
	assert.Error(t, err)
	assert.Equal(t, err.Error(), "overflow")
}
