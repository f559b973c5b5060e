// Package watcher reacts to local edits of synced documents and pushes the
// edited notes field back to the remote service.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keepsync/keepsync/internal/logger"
	"github.com/keepsync/keepsync/internal/vault"
)

const (
	// Quiet window before an edit burst is processed. Each new event resets
	// the pending timer, so only the most recent edit in a burst fires.
	defaultDebounce = 2 * time.Second

	// Delay before the original_note marker is confirmed and rewritten.
	defaultWriteBack = 5 * time.Second
)

// NoteClient is the single remote operation the watcher needs.
type NoteClient interface {
	UpdateNote(ctx context.Context, bookmarkID, note string) bool
}

// Watcher subscribes to change notifications for markdown files under the
// sync folder. It owns two single-slot timers: the debounce timer and the
// delayed baseline write-back timer. Both are cancelled on Stop.
type Watcher struct {
	fsw    *fsnotify.Watcher
	dir    string
	store  vault.FileStore
	client NoteClient
	log    logger.Logger
	notify func(msg string)

	debounce  time.Duration
	writeBack time.Duration

	mu            sync.Mutex
	debounceTimer *time.Timer
	baselineTimer *time.Timer
	pendingPath   string
	lastPushed    string
	havePushed    bool

	done chan struct{}
	wg   sync.WaitGroup
}

func New(dir string, store vault.FileStore, client NoteClient, log logger.Logger, notify func(msg string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if notify == nil {
		notify = func(string) {}
	}
	return &Watcher{
		fsw:       fsw,
		dir:       dir,
		store:     store,
		client:    client,
		log:       log,
		notify:    notify,
		debounce:  defaultDebounce,
		writeBack: defaultWriteBack,
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the sync folder.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop()
	w.log.Infof("watching %s for note edits", w.dir)
	return nil
}

// Stop shuts the watcher down and cancels any pending timers so no callback
// fires against a torn-down instance.
func (w *Watcher) Stop() {
	close(w.done)
	w.fsw.Close()

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	if w.baselineTimer != nil {
		w.baselineTimer.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watch error: %v", err)
		}
	}
}

// schedule resets the single pending debounce timer. Earlier pending edits
// are dropped; only the most recent one within a burst is processed.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pendingPath = path
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		pending := w.pendingPath
		w.mu.Unlock()
		w.handleEdit(pending)
	})
}

func (w *Watcher) handleEdit(path string) {
	content, err := w.store.ReadFile(path)
	if err != nil {
		w.log.Warnf("reading edited file %s: %v", path, err)
		return
	}

	current, ok := vault.ExtractNotes(content)
	if !ok {
		return
	}

	w.mu.Lock()
	ownEcho := w.havePushed && current == w.lastPushed
	w.mu.Unlock()
	if ownEcho {
		// Reacting to our own reconciliation write-back would loop forever.
		return
	}

	fm, ok := vault.ParseFrontmatter(content)
	if !ok || fm.BookmarkID == "" {
		// Cannot reconcile without an id.
		return
	}

	if current == fm.OriginalNote {
		return
	}

	if !w.client.UpdateNote(context.Background(), fm.BookmarkID, current) {
		return
	}

	w.mu.Lock()
	w.lastPushed = current
	w.havePushed = true
	if w.baselineTimer != nil {
		w.baselineTimer.Stop()
	}
	w.baselineTimer = time.AfterFunc(w.writeBack, func() {
		w.confirmBaseline(path, current)
	})
	w.mu.Unlock()

	w.log.Infof("bookmark %s: pushed edited note to remote", fm.BookmarkID)
	w.notify("Note synced to Karakeep")
}

// confirmBaseline re-reads the file after the quiet period and, if the notes
// are still the pushed value, rewrites only the original_note marker so the
// document becomes the new reconciliation baseline.
func (w *Watcher) confirmBaseline(path, pushed string) {
	content, err := w.store.ReadFile(path)
	if err != nil {
		w.log.Warnf("re-reading %s for baseline update: %v", path, err)
		return
	}

	current, ok := vault.ExtractNotes(content)
	if !ok || current != pushed {
		return
	}

	updated, ok := vault.UpdateOriginalNote(content, pushed)
	if !ok {
		return
	}
	if err := w.store.WriteFile(path, updated); err != nil {
		w.log.Warnf("writing baseline marker to %s: %v", path, err)
	}
}
