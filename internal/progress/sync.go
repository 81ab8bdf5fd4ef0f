package progress

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// IncrementAndSync applies +1 locally and pushes it immediately.
func (e *Engine) IncrementAndSync(ctx context.Context, itemID string) (TrackedObjective, error) {
	return e.ChangeAndSync(ctx, itemID, 1)
}

// DecrementAndSync applies -1 locally and pushes it immediately.
func (e *Engine) DecrementAndSync(ctx context.Context, itemID string) (TrackedObjective, error) {
	return e.ChangeAndSync(ctx, itemID, -1)
}

// ChangeAndSync applies delta locally, then attempts one remote push. A
// failed push returns an UpdateError wrapping ErrAPI; the local change
// stays applied and queued for the next flush.
func (e *Engine) ChangeAndSync(ctx context.Context, itemID string, delta int) (TrackedObjective, error) {
	if e.syncEnabled {
		if err := e.Refresh(ctx, false); err != nil && !errors.Is(err, ErrSyncDisabled) {
			e.logger.Warn("refresh before sync failed", zap.Error(err))
		}
	}

	obj, changed, err := e.applyTask(itemID, delta)
	if err != nil || !changed {
		return obj, err
	}

	snap := e.catalog.Current()
	e.mu.Lock()
	_, busy := e.inflight[obj.ObjectiveID]
	claimed, ok := e.claimLocked(snap, obj.ObjectiveID)
	e.mu.Unlock()
	if !ok {
		if busy {
			e.logger.Debug("push already in flight, left queued",
				zap.String("objective_id", obj.ObjectiveID))
			return obj, &UpdateError{Reason: ErrAPI, Objective: obj, Cause: ErrPushInFlight}
		}
		// A concurrent flush already delivered it.
		return obj, nil
	}

	if err := e.push(ctx, claimed); err != nil {
		e.settle(claimed, false)
		e.recordSyncError(err)
		e.logger.Warn("immediate push failed, left queued",
			zap.String("objective_id", obj.ObjectiveID),
			zap.Error(err))
		return obj, &UpdateError{Reason: ErrAPI, Objective: obj, Cause: err}
	}

	e.settle(claimed, true)
	e.recordSyncError(nil)
	e.saveTasks()
	e.logger.Info("objective synced",
		zap.String("objective_id", claimed.ObjectiveID),
		zap.Int("count", claimed.CurrentCount))
	return obj, nil
}
