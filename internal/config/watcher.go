package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"frostadvisor/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// SettingsWatcher is an AISettingsProvider backed by the config file.
// It watches the file for changes and reloads the AI settings block, so
// an admin edit to daily limits or mode takes effect without a restart.
type SettingsWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	current     AISettings
	lastReload  time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewSettingsWatcher loads the config once and prepares a watcher on its
// parent directory (editors replace files, so watching the file itself
// misses renames).
func NewSettingsWatcher(path string) (*SettingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cfg, err := Load(path)
	if err != nil {
		w.Close()
		return nil, err
	}

	sw := &SettingsWatcher{
		watcher:     w,
		path:        path,
		current:     cfg.AI,
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	return sw, nil
}

// Settings returns the most recently loaded AI settings snapshot.
func (sw *SettingsWatcher) Settings() AISettings {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.current
}

// Start begins watching the config file's directory. Non-blocking.
func (sw *SettingsWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil
	}
	sw.running = true
	sw.mu.Unlock()

	dir := filepath.Dir(sw.path)
	if err := sw.watcher.Add(dir); err != nil {
		logging.Get(logging.CategoryBoot).Warn("SettingsWatcher: watch failed on %s: %v", dir, err)
	}

	go sw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the goroutine to exit.
func (sw *SettingsWatcher) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopCh)
	<-sw.doneCh
	sw.watcher.Close()
}

func (sw *SettingsWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopCh:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(sw.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			sw.reload()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryBoot).Warn("SettingsWatcher: watch error: %v", err)
		}
	}
}

func (sw *SettingsWatcher) reload() {
	sw.mu.Lock()
	if time.Since(sw.lastReload) < sw.debounceDur {
		sw.mu.Unlock()
		return
	}
	sw.lastReload = time.Now()
	sw.mu.Unlock()

	cfg, err := Load(sw.path)
	if err != nil {
		logging.Get(logging.CategoryBoot).Warn("SettingsWatcher: reload failed: %v", err)
		return
	}

	sw.mu.Lock()
	sw.current = cfg.AI
	sw.mu.Unlock()

	logging.Boot("SettingsWatcher: AI settings reloaded (mode=%s)", cfg.AI.Mode)
}
