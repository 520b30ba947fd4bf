// Package watcher reports changes to the files in the global config directory.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ofsd-io/ofsd/internal/config"
)

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventSettingsChanged EventType = iota
	EventSettingsRemoved
	EventPluginChanged // plugin.yaml written (plugin started)
	EventPluginRemoved // plugin.yaml removed (plugin stopped)
)

func (t EventType) String() string {
	switch t {
	case EventSettingsChanged:
		return "settings-changed"
	case EventSettingsRemoved:
		return "settings-removed"
	case EventPluginChanged:
		return "plugin-changed"
	case EventPluginRemoved:
		return "plugin-removed"
	default:
		return "unknown"
	}
}

// DefaultDebounce is how long a path must be quiet before its event fires.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a file system change event.
type Event struct {
	Type EventType
	Path string
}

// Watcher watches the global config directory.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	logger     *zap.Logger

	delay      time.Duration
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a new file system watcher.
func New(logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		fsWatcher:  fsWatcher,
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
		logger:     logger,
		delay:      DefaultDebounce,
		debounce:   make(map[string]*time.Timer),
	}, nil
}

// SetDebounce changes the debounce delay. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.delay = d
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start creates the global directory if needed and starts watching it.
func (w *Watcher) Start() error {
	if err := config.EnsureGlobalDir(); err != nil {
		return err
	}
	globalDir, err := config.GlobalDir()
	if err != nil {
		return err
	}
	if err := w.fsWatcher.Add(globalDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", globalDir, err)
	}
	w.logger.Debug("watching", zap.String("dir", globalDir))

	go w.processEvents()
	return nil
}

// Stop stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Atomic saves (write tmp, rename over target) show up as Create or
	// Rename on the target, not Write.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	switch filepath.Base(event.Name) {
	case config.SettingsFileName, config.PluginFileName:
	default:
		return
	}

	w.debounceEvent(event.Name, func() {
		w.processFileChange(event.Name)
	})
}

// debounceEvent debounces events for the same path.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(w.delay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}

// processFileChange emits an event for a debounced change. The file's
// existence after the quiet period decides between changed and removed.
func (w *Watcher) processFileChange(path string) {
	exists := config.FileExists(path)

	var ev Event
	switch filepath.Base(path) {
	case config.SettingsFileName:
		ev = Event{Type: EventSettingsChanged, Path: path}
		if !exists {
			ev.Type = EventSettingsRemoved
		}
	case config.PluginFileName:
		ev = Event{Type: EventPluginChanged, Path: path}
		if !exists {
			ev.Type = EventPluginRemoved
		}
	default:
		return
	}

	w.logger.Debug("file changed", zap.Stringer("type", ev.Type), zap.String("path", path))
	select {
	case w.eventsChan <- ev:
	case <-w.done:
	}
}
