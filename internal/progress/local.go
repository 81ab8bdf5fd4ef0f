package progress

import "go.uber.org/zap"

// ApplyLocalChange moves the task objective itemID feeds by delta. It
// performs no network I/O: the new count lands in the overlay and the
// pending queue in one critical section, then local state is saved.
func (e *Engine) ApplyLocalChange(itemID string, delta int) (TrackedObjective, error) {
	obj, _, err := e.applyTask(itemID, delta)
	return obj, err
}

// ApplyLocalHideoutChange moves the hideout requirement itemID feeds by
// delta. Hideout progress is local only and never queued for the remote.
func (e *Engine) ApplyLocalHideoutChange(itemID string, delta int) (TrackedObjective, error) {
	snap := e.catalog.Current()

	e.mu.Lock()
	obj, changed, err := e.computeDelta(hideoutCandidates(snap, itemID, e.hideout), delta)
	if err == nil && changed {
		if obj.CurrentCount > 0 {
			e.hideout[obj.ObjectiveID] = obj.CurrentCount
		} else {
			delete(e.hideout, obj.ObjectiveID)
		}
	}
	e.mu.Unlock()

	if err != nil {
		return obj, err
	}
	if changed {
		e.logger.Debug("hideout progress changed",
			zap.String("objective_id", obj.ObjectiveID),
			zap.String("item_id", itemID),
			zap.Int("count", obj.CurrentCount))
		e.saveHideout()
	}
	return obj, nil
}

// applyTask reports whether the overlay actually changed so the sync
// variants can skip pushing no-ops.
func (e *Engine) applyTask(itemID string, delta int) (TrackedObjective, bool, error) {
	item, ok := e.catalog.Current().Item(itemID)

	e.mu.Lock()
	if !ok || !e.loaded {
		e.mu.Unlock()
		return TrackedObjective{}, false, &UpdateError{Reason: ErrNoObjectiveForItem}
	}
	obj, changed, err := e.computeDelta(taskCandidates(item, e.remoteSnap, e.pending), delta)
	if err == nil && changed {
		e.writeObjectiveLocked(obj)
		e.pending[obj.ObjectiveID] = obj
	}
	e.mu.Unlock()

	if err != nil {
		return obj, false, err
	}
	if changed {
		e.logger.Debug("objective queued",
			zap.String("objective_id", obj.ObjectiveID),
			zap.String("item_id", itemID),
			zap.Int("count", obj.CurrentCount))
		e.saveTasks()
	}
	return obj, changed, nil
}

// computeDelta picks the target among candidates and clamps the new count.
// A decrement with nothing to undo is a silent no-op unless strict mode is
// on. Callers hold mu.
func (e *Engine) computeDelta(candidates []TrackedObjective, delta int) (TrackedObjective, bool, error) {
	if delta == 0 || len(candidates) == 0 {
		return TrackedObjective{}, false, &UpdateError{Reason: ErrNoObjectiveForItem}
	}
	target, ok := pickForDelta(candidates, delta)
	if !ok {
		if delta > 0 {
			last := candidates[len(candidates)-1]
			return last, false, &UpdateError{Reason: ErrAlreadyCompleted, Objective: last}
		}
		first := candidates[0]
		if e.strictDecrement {
			return first, false, &UpdateError{Reason: ErrNoProgressToRemove, Objective: first}
		}
		return first, false, nil
	}
	updated := target.withCount(target.CurrentCount + delta)
	return updated, updated.CurrentCount != target.CurrentCount, nil
}
