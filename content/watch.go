package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Holder publishes the current Site. Readers always see a complete snapshot.
type Holder struct {
	site atomic.Pointer[Site]
}

// NewHolder returns a Holder publishing s.
func NewHolder(s *Site) *Holder {
	h := &Holder{}
	h.site.Store(s)
	return h
}

// Get returns the current snapshot. Callers must not modify it.
func (h *Holder) Get() *Site { return h.site.Load() }

// Replace publishes s.
func (h *Holder) Replace(s *Site) { h.site.Store(s) }

const debounce = 200 * time.Millisecond

// Watch reloads the content file at path, and its projects directory,
// whenever either changes. A successful reload is published to h; onReload is
// called after every attempt with the error, if any, so a broken edit keeps
// the previous snapshot. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, h *Holder, onReload func(*Site, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("content: watch %s: %w", dir, err)
	}
	projects := filepath.Join(dir, ProjectsDir)
	if info, err := os.Stat(projects); err == nil && info.IsDir() {
		if err := w.Add(projects); err != nil {
			return fmt.Errorf("content: watch %s: %w", projects, err)
		}
	}

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, path, projects) {
				continue
			}
			if ev.Has(fsnotify.Create) && ev.Name == projects {
				_ = w.Add(projects)
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			s, err := Load(path)
			if err == nil {
				h.Replace(s)
			}
			if onReload != nil {
				onReload(s, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(nil, fmt.Errorf("content: watcher: %w", err))
			}
		}
	}
}

func relevant(ev fsnotify.Event, path, projects string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	switch {
	case name == filepath.Clean(path), name == projects:
		return true
	case filepath.Dir(name) == projects && filepath.Ext(name) == ".md":
		return true
	}
	return false
}
