package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resource-dispatcher/internal/manifest"
	"resource-dispatcher/pkg/logging"
)

// DefaultDebounceInterval is how long the watcher waits for further changes
// before validating the manifest folder.
const DefaultDebounceInterval = 500 * time.Millisecond

// ManifestWatcher validates the manifest folder whenever its content changes.
//
// It never caches anything: sync requests keep reading the folder themselves.
// The watcher only surfaces broken manifests early through logs and the
// resource_dispatcher_manifests_valid gauge.
type ManifestWatcher struct {
	mu sync.Mutex

	// folder is the watched manifest folder
	folder string

	// source validates the folder content
	source manifest.Source

	// debounceInterval is how long to wait for additional changes
	debounceInterval time.Duration

	// timer is the pending debounced validation, if any
	timer *time.Timer

	// onValidate is called with the result of every validation
	onValidate func(error)
}

// NewManifestWatcher creates a watcher for folder.
func NewManifestWatcher(folder string, source manifest.Source, debounceInterval time.Duration) *ManifestWatcher {
	if debounceInterval == 0 {
		debounceInterval = DefaultDebounceInterval
	}
	return &ManifestWatcher{
		folder:           folder,
		source:           source,
		debounceInterval: debounceInterval,
	}
}

// OnValidate registers a callback receiving the result of every validation.
func (w *ManifestWatcher) OnValidate(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onValidate = fn
}

// Run validates the folder once and then after every burst of changes, until
// ctx is done.
func (w *ManifestWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.setupWatches(watcher); err != nil {
		return err
	}
	logging.Info("ManifestWatcher", "Started watching %s for manifest changes", w.folder)

	w.validate()

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			logging.Info("ManifestWatcher", "Stopped watching %s", w.folder)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleFsEvent(watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("ManifestWatcher", err, "Filesystem watcher error")
		}
	}
}

// setupWatches watches the folder and each of its direct subdirectories.
func (w *ManifestWatcher) setupWatches(watcher *fsnotify.Watcher) error {
	if err := watcher.Add(w.folder); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.folder)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		w.addWatch(watcher, filepath.Join(w.folder, entry.Name()))
	}
	return nil
}

func (w *ManifestWatcher) addWatch(watcher *fsnotify.Watcher, dir string) {
	if err := watcher.Add(dir); err != nil {
		logging.Warn("ManifestWatcher", "Failed to watch %s: %v", dir, err)
		return
	}
	logging.Debug("ManifestWatcher", "Watching directory: %s", dir)
}

// handleFsEvent schedules a validation for any change below the folder and
// starts watching subdirectories created at its root.
func (w *ManifestWatcher) handleFsEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == filepath.Clean(w.folder) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addWatch(watcher, event.Name)
		}
	}

	logging.Debug("ManifestWatcher", "Change detected: %s %s", event.Op, event.Name)
	w.debounce()
}

// debounce restarts the pending validation timer.
func (w *ManifestWatcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceInterval, w.validate)
}

func (w *ManifestWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// validate checks the folder and publishes the result.
func (w *ManifestWatcher) validate() {
	err := w.source.Validate()
	RecordManifestsValid(err == nil)
	if err != nil {
		logging.Error("ManifestWatcher", err, "Manifest folder %s is invalid", w.folder)
	} else {
		logging.Info("ManifestWatcher", "Manifest folder %s is valid", w.folder)
	}

	w.mu.Lock()
	fn := w.onValidate
	w.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
