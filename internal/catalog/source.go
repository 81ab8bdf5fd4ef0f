package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const reloadDebounce = 200 * time.Millisecond

// Load decodes the cached catalog document at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewSnapshot(doc.Data), nil
}

// Source holds the current catalog snapshot. Readers always see a complete
// snapshot; reloads swap the pointer.
type Source struct {
	path    string
	logger  *zap.Logger
	current atomic.Pointer[Snapshot]
}

// NewSource loads the catalog at path. A missing or unreadable file yields
// an empty snapshot so the application can still start.
func NewSource(path string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{path: path, logger: logger}
	s.current.Store(Empty())
	if err := s.Reload(); err != nil {
		logger.Warn("catalog unavailable, starting empty", zap.String("path", path), zap.Error(err))
	}
	return s
}

// NewStaticSource wraps a fixed snapshot. Reload and Watch are no-ops.
func NewStaticSource(snap *Snapshot) *Source {
	s := &Source{logger: zap.NewNop()}
	if snap == nil {
		snap = Empty()
	}
	s.current.Store(snap)
	return s
}

// Current returns the latest snapshot. It is never nil.
func (s *Source) Current() *Snapshot {
	return s.current.Load()
}

// Reload re-reads the catalog file. The previous snapshot is kept on error.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}
	snap, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(snap)
	s.logger.Info("catalog loaded", zap.String("path", s.path), zap.Int("items", snap.Len()))
	return nil
}

// Watch reloads the catalog whenever its file is written or replaced. It
// blocks until ctx is cancelled.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// The cache writer may replace the file, so watch the directory.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch catalog dir: %w", err)
	}
	target := filepath.Clean(s.path)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
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
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := s.Reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
					s.logger.Warn("catalog reload failed, keeping previous snapshot", zap.Error(err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
