package progress

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/raidtrack/internal/catalog"
	"github.com/five82/raidtrack/internal/tracker"
)

// FlushReport summarises one flush cycle.
type FlushReport struct {
	Attempted int
	Succeeded int
	Failed    int
}

// push delivers a single claimed objective. It fails fast without I/O when
// sync is disabled or a 429 was seen within the cooldown window.
func (e *Engine) push(ctx context.Context, obj TrackedObjective) error {
	if !e.syncEnabled {
		return ErrSyncDisabled
	}
	now := e.clock.Now()
	e.mu.Lock()
	limited := !e.lastRateLimited.IsZero() && now.Before(e.lastRateLimited.Add(e.rateLimitCooldown))
	e.mu.Unlock()
	if limited {
		return ErrRateLimited
	}

	err := e.remote.UpdateObjective(ctx, obj.ObjectiveID, obj.CurrentCount, tracker.StateFor(obj.CurrentCount, obj.RequiredCount))
	if err != nil {
		if tracker.IsRateLimited(err) {
			e.mu.Lock()
			e.lastRateLimited = e.clock.Now()
			e.mu.Unlock()
		}
		return fmt.Errorf("update objective %s: %w", obj.ObjectiveID, err)
	}
	return nil
}

// Flush claims every queued entry, pushes each one, and re-queues failures
// unless a fresher local change arrived meanwhile. Entries already being
// pushed elsewhere stay queued for the next cycle. Local state is saved
// after every cycle.
func (e *Engine) Flush(ctx context.Context) FlushReport {
	var report FlushReport
	defer e.save()

	if !e.syncEnabled {
		return report
	}

	snap := e.catalog.Current()
	e.mu.Lock()
	queued := sortedObjectives(e.pending)
	batch := make([]TrackedObjective, 0, len(queued))
	for _, q := range queued {
		if obj, ok := e.claimLocked(snap, q.ObjectiveID); ok {
			batch = append(batch, obj)
		}
	}
	e.mu.Unlock()

	var lastErr error
	for i, obj := range batch {
		if ctx.Err() != nil {
			for _, rest := range batch[i:] {
				e.settle(rest, false)
			}
			report.Failed += len(batch) - i
			break
		}
		report.Attempted++
		if err := e.push(ctx, obj); err != nil {
			e.settle(obj, false)
			report.Failed++
			lastErr = err
			e.logger.Warn("objective push failed, requeued",
				zap.String("objective_id", obj.ObjectiveID),
				zap.Error(err))
			continue
		}
		report.Succeeded++
		e.settle(obj, true)
		e.logger.Info("objective synced",
			zap.String("objective_id", obj.ObjectiveID),
			zap.Int("count", obj.CurrentCount))
	}

	if len(batch) > 0 {
		e.recordSyncError(lastErr)
		e.logger.Debug("flush cycle complete",
			zap.Int("attempted", report.Attempted),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", report.Failed))
	}
	return report
}

// claimLocked moves the queued entry for id into the in-flight set, with its
// target re-read from snap. It reports false when nothing is queued for id
// or a push for it is already running. Callers hold mu.
func (e *Engine) claimLocked(snap *catalog.Snapshot, id string) (TrackedObjective, bool) {
	obj, ok := e.pending[id]
	if !ok {
		return TrackedObjective{}, false
	}
	if _, busy := e.inflight[id]; busy {
		return TrackedObjective{}, false
	}
	obj = resolveTarget(snap, obj)
	delete(e.pending, id)
	e.inflight[id] = obj
	return obj, true
}

// settle releases a claimed entry. A failed push goes back to the queue and
// a delivered one is recorded in the overlay, unless a newer local change
// is already queued.
func (e *Engine) settle(obj TrackedObjective, delivered bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, obj.ObjectiveID)
	if _, ok := e.pending[obj.ObjectiveID]; ok {
		return
	}
	if !delivered {
		e.pending[obj.ObjectiveID] = obj
	}
	e.writeObjectiveLocked(obj)
}
