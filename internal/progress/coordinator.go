package progress

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Start launches the refresh and flush loops. They run until ctx is done or
// Stop is called.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.cancel != nil {
		return errors.New("engine already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	if e.syncEnabled {
		g.Go(func() error {
			e.refreshLoop(gctx)
			return nil
		})
	}
	g.Go(func() error {
		e.flushLoop(gctx)
		return nil
	})
	e.cancel = cancel
	e.group = g
	e.logger.Info("sync coordinator started",
		zap.Bool("sync_enabled", e.syncEnabled),
		zap.Duration("flush_interval", e.flushInterval),
		zap.Duration("refresh_interval", e.refreshInterval))
	return nil
}

// Stop cancels the loops, waits for them to exit and saves local state.
// An in-flight push may be abandoned; its change stays queued on disk.
func (e *Engine) Stop() {
	e.runMu.Lock()
	cancel, g := e.cancel, e.group
	e.cancel, e.group = nil, nil
	e.runMu.Unlock()

	if cancel != nil {
		cancel()
		_ = g.Wait()
		e.logger.Info("sync coordinator stopped")
	}
	e.save()
}

func (e *Engine) refreshLoop(ctx context.Context) {
	if err := e.Refresh(ctx, true); err != nil && ctx.Err() == nil {
		e.logger.Warn("initial refresh failed", zap.Error(err))
	}
	ticker := e.clock.NewTicker(e.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if err := e.Refresh(ctx, false); err != nil && ctx.Err() == nil {
				e.logger.Warn("refresh failed", zap.Error(err))
			}
		}
	}
}

func (e *Engine) flushLoop(ctx context.Context) {
	ticker := e.clock.NewTicker(e.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			e.Flush(ctx)
		}
	}
}
