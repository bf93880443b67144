package scenario

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store holds the active scenario and reloads it when its file changes.
type Store struct {
	mu      sync.RWMutex
	current *Scenario
	path    string
	logger  *zap.Logger
}

// NewStore loads path (or the embedded default when empty).
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{current: sc, path: path, logger: logger}, nil
}

// NewStaticStore wraps an already loaded scenario.
func NewStaticStore(sc *Scenario) *Store {
	return &Store{current: sc, logger: zap.NewNop()}
}

// Current returns the active scenario.
func (s *Store) Current() *Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads the scenario file. A file that fails to parse leaves the
// previous scenario active.
func (s *Store) Reload() error {
	sc, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = sc
	s.mu.Unlock()
	return nil
}

// Watch reloads the scenario on writes to its file until ctx is done. It is a
// no-op for the embedded default.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("scenario watcher: %w", err)
	}
	// Editors often replace files, so watch the directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", s.path, err)
	}
	target := filepath.Clean(s.path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				if err := s.Reload(); err != nil {
					s.logger.Warn("scenario reload failed, keeping previous", zap.String("path", s.path), zap.Error(err))
					continue
				}
				s.logger.Info("scenario reloaded", zap.String("path", s.path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("scenario watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
