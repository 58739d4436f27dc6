package composer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 200 * time.Millisecond

// RuleFileHandler receives the editor state after the rule file changed
type RuleFileHandler func(editor *RuleEditor)

// RuleFileWatcher reparses a rule file, one rule per line, whenever it is written.
// The parent directory is watched so editors that save by renaming are picked up.
type RuleFileWatcher struct {
	Path     string
	Debounce time.Duration
	handler  RuleFileHandler
}

// NewRuleFileWatcher creates a watcher for path
func NewRuleFileWatcher(path string, handler RuleFileHandler) *RuleFileWatcher {
	return &RuleFileWatcher{Path: path, Debounce: DefaultDebounce, handler: handler}
}

// Load reads and parses the rule file once
func (w *RuleFileWatcher) Load() (*RuleEditor, error) {
	data, err := os.ReadFile(w.Path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return NewRuleEditor(string(data)), nil
}

// Run calls the handler with the current file, then again after every change, until ctx
// is done
func (w *RuleFileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	path, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("resolve rule file: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	log.Printf("👀 Watching %s", path)

	w.reload()

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("⚠️  Watcher error: %v", err)
		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

func (w *RuleFileWatcher) reload() {
	editor, err := w.Load()
	if err != nil {
		// the file may be briefly missing while an editor replaces it
		log.Printf("⚠️  %v", err)
		return
	}
	if w.handler != nil {
		w.handler(editor)
	}
}
