// Package watch reports changes to a set of input files using OS-native
// notifications.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is a bit set of file operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event is one notification about a watched file.
type Event struct {
	Path string
	Op   Op
}

// Changed reports whether the file's contents may differ afterwards.
func (e Event) Changed() bool { return e.Op&(OpCreate|OpWrite) != 0 }

func translate(ev fsnotify.Event) Event {
	var op Op
	if ev.Op&fsnotify.Create != 0 {
		op |= OpCreate
	}
	if ev.Op&fsnotify.Write != 0 {
		op |= OpWrite
	}
	if ev.Op&fsnotify.Remove != 0 {
		op |= OpRemove
	}
	if ev.Op&fsnotify.Rename != 0 {
		op |= OpRename
	}
	if ev.Op&fsnotify.Chmod != 0 {
		op |= OpChmod
	}
	return Event{Path: filepath.Clean(ev.Name), Op: op}
}

// Watcher watches the directories holding a set of files and reports
// events for those files only. Watching the directory keeps files that an
// editor replaces by rename in view.
type Watcher struct {
	w     *fsnotify.Watcher
	files map[string]bool
}

// New starts watching files.
func New(files []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{w: fw, files: make(map[string]bool, len(files))}
	dirs := make(map[string]bool)
	for _, f := range files {
		f = filepath.Clean(f)
		w.files[f] = true
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error { return w.w.Close() }

// Run calls fn with the sorted set of changed files once no further change
// has arrived for quiet. It returns when ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context, quiet time.Duration, fn func(changed []string)) error {
	accept := func(ev Event) bool { return w.files[ev.Path] && ev.Changed() }
	return debounce(ctx, w.w.Events, w.w.Errors, accept, quiet, fn)
}

// debounce collects accepted events and flushes them to fn when quiet has
// passed since the most recent one.
func debounce(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	accept func(Event) bool, quiet time.Duration, fn func(changed []string)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(quiet)
	stop(timer)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return err
		case raw, ok := <-events:
			if !ok {
				return nil
			}
			ev := translate(raw)
			if !accept(ev) {
				continue
			}
			stop(timer)
			timer.Reset(quiet)
			pending[ev.Path] = true
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			fn(changed)
		}
	}
}

// stop halts t and discards a tick that fired but was not received.
func stop(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
