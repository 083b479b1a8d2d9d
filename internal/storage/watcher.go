// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/askdesk/internal/logging"
)

// =============================================================================
// STORE WATCHER
// =============================================================================

// DefaultDebounce coalesces the burst of events an atomic write produces.
const DefaultDebounce = 150 * time.Millisecond

// Watcher signals when a file-backed key changes on disk, for example when
// another askdesk process saves a session.
//
// The parent directory is watched rather than the file itself, because an
// atomic rename replaces the watched inode.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *log.Logger

	changes chan struct{}
	done    chan struct{}

	mu    sync.Mutex
	timer *time.Timer
	once  sync.Once
}

// NewWatcher watches path. A debounce of 0 uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		watcher:  fw,
		debounce: debounce,
		log:      logging.OrDiscard(logger),
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

// WatchStore returns a watcher for store when it is file-backed.
// ok is false for other backends.
func WatchStore(store *SessionStore, logger *log.Logger) (w *Watcher, ok bool, err error) {
	fb, isFile := store.Backend().(*FileBackend)
	if !isFile {
		return nil, false, nil
	}
	w, err = NewWatcher(fb.Path(store.Key()), 0, logger)
	if err != nil {
		return nil, false, err
	}
	return w, true, nil
}

// Changes delivers one value per debounced burst of changes. Signals are
// coalesced when the receiver is slow.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Done is closed once the watcher is closed.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("Store watcher error", "path", w.path, "err", err)
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
