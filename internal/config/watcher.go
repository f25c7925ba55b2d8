package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// Watcher reloads the configuration when its files change. Only settings
// that are safe to change at runtime are handed to callbacks; everything
// else takes effect on the next cold start.
type Watcher struct {
	loader *Loader
	logger *zap.Logger

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	stopped sync.Once
}

// NewWatcher starts watching the loader's directory. Outside development it
// returns a watcher that never reloads.
func NewWatcher(loader *Loader, initial *Config, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		loader: loader,
		logger: logger.Named("config"),
		config: initial,
		stopCh: make(chan struct{}),
	}
	if initial.Environment != Development {
		w.logger.Debug("configuration hot reloading disabled",
			zap.String("environment", string(initial.Environment)))
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(loader.basePath); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.basePath, err)
	}
	w.watcher = fsw
	go w.watchLoop()

	w.logger.Info("configuration hot reloading enabled", zap.String("dir", loader.basePath))
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer w.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}
			w.logger.Debug("configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()))
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

// reload re-runs the loader. An invalid configuration is logged and the
// previous one kept.
func (w *Watcher) reload() {
	next, err := w.loader.Load()
	if err != nil {
		w.logger.Error("invalid configuration after reload, keeping previous", zap.Error(err))
		return
	}

	w.mu.Lock()
	prev := w.config
	if prev.Logging == next.Logging {
		w.mu.Unlock()
		return
	}
	// Only the reloadable section moves; the rest stays as started.
	merged := *prev
	merged.Logging = next.Logging
	w.config = &merged
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("configuration reloaded",
		zap.String("log_level", merged.Logging.Level),
		zap.String("previous_log_level", prev.Logging.Level))
	for _, cb := range callbacks {
		w.notify(cb, &merged)
	}
}

func (w *Watcher) notify(cb func(*Config), cfg *Config) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("configuration callback panicked", zap.Any("panic", r))
		}
	}()
	cb(cfg)
}

// OnChange registers a callback run after each effective reload.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Current returns the configuration in effect.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopped.Do(func() { close(w.stopCh) })
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
