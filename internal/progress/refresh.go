package progress

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/raidtrack/internal/catalog"
	"github.com/five82/raidtrack/internal/tracker"
)

// Refresh fetches remote progress and replaces the snapshot, then reapplies
// every queued or in-flight local change on top in the same critical
// section, so an unflushed edit is never lost.
// Unforced refreshes are skipped within the minimum interval.
func (e *Engine) Refresh(ctx context.Context, force bool) error {
	if !e.syncEnabled {
		return ErrSyncDisabled
	}
	now := e.clock.Now()
	e.mu.Lock()
	fresh := !e.lastRefresh.IsZero() && now.Sub(e.lastRefresh) < e.refreshMinInterval
	e.mu.Unlock()
	if fresh && !force {
		return nil
	}

	progress, err := e.remote.FetchProgress(ctx)
	if err != nil {
		if tracker.IsRateLimited(err) {
			e.mu.Lock()
			e.lastRateLimited = e.clock.Now()
			e.mu.Unlock()
		}
		e.recordSyncError(err)
		return fmt.Errorf("refresh progress: %w", err)
	}

	snap := e.catalog.Current()
	e.mu.Lock()
	e.remoteSnap = newRemoteSnapshot(progress)
	e.lastRefresh = e.clock.Now()
	e.loaded = true
	unsynced := e.unsyncedLocked()
	for _, obj := range unsynced {
		e.reapplyLocked(snap, obj)
	}
	e.mu.Unlock()

	e.recordSyncError(nil)
	e.logger.Info("remote progress refreshed",
		zap.Int("objectives", len(progress.TaskObjectivesProgress)),
		zap.Int("pending", len(unsynced)))
	return nil
}

// reapplyLocked writes an unconfirmed change back onto the refreshed
// snapshot against the catalog's current target. Callers hold mu.
func (e *Engine) reapplyLocked(snap *catalog.Snapshot, obj TrackedObjective) {
	e.writeObjectiveLocked(resolveTarget(snap, obj))
}
