package content

import (
	"fmt"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
)

// Debounce groups bursts of editor writes into one reload.
const Debounce = 150 * time.Millisecond

// ReloadMsg carries a freshly loaded pack, or the error that stopped it.
type ReloadMsg struct {
	Catalog *Catalog
	Err     error
}

// Watcher reports changes to a content pack file. The parent directory is
// watched so editors that replace the file on save are seen.
type Watcher struct {
	path    string
	fw      *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

// NewWatcher starts watching path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		path:    abs,
		fw:      fw,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.changes)
	var timer <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer = time.After(Debounce)
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		case <-timer:
			timer = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case <-w.done:
			return
		}
	}
}

// Changes delivers one value per debounced burst of changes. It is closed
// when the watcher stops.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Wait returns a command that blocks until the next change and reloads
// the pack. It returns nil once the watcher is closed.
func (w *Watcher) Wait() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.changes; !ok {
			return nil
		}
		c, err := Load(w.path)
		return ReloadMsg{Catalog: c, Err: err}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	return w.fw.Close()
}
