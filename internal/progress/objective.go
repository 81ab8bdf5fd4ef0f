package progress

import (
	"errors"
	"fmt"
)

// Kind distinguishes remote-owned task objectives from local-only hideout
// requirements. Their id spaces never collide.
type Kind int

const (
	KindTask Kind = iota
	KindHideout
)

func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindHideout:
		return "hideout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TrackedObjective is a unit of progress toward an item target.
// 0 <= CurrentCount <= RequiredCount always holds.
type TrackedObjective struct {
	ObjectiveID   string
	ItemID        string
	Kind          Kind
	RequiredCount int
	CurrentCount  int
}

// Remaining returns how many more items the objective needs.
func (o TrackedObjective) Remaining() int {
	return o.RequiredCount - o.CurrentCount
}

// Complete reports whether the target has been reached.
func (o TrackedObjective) Complete() bool {
	return o.CurrentCount >= o.RequiredCount
}

func (o TrackedObjective) withCount(n int) TrackedObjective {
	o.CurrentCount = clamp(n, 0, o.RequiredCount)
	return o
}

var (
	// ErrNoObjectiveForItem means the item feeds no qualifying objective.
	ErrNoObjectiveForItem = errors.New("no objective for item")
	// ErrAlreadyCompleted means an increment hit the required count.
	ErrAlreadyCompleted = errors.New("objective already completed")
	// ErrNoProgressToRemove means a decrement hit zero in strict mode.
	ErrNoProgressToRemove = errors.New("no progress to remove")
	// ErrAPI means the local change was applied but the remote push failed.
	// The change stays queued for the next flush.
	ErrAPI = errors.New("remote update failed")
	// ErrPushInFlight means another push for the objective is running. The
	// newer change waits in the queue for the next flush.
	ErrPushInFlight = errors.New("push already in flight")

	// ErrSyncDisabled means remote sync is off or no API key is configured.
	ErrSyncDisabled = errors.New("remote sync disabled")
	// ErrRateLimited means a push was skipped during the 429 cooldown.
	ErrRateLimited = errors.New("rate limit cooldown in effect")
)

// UpdateError carries the objective a failed change targeted so the UI can
// still display it.
type UpdateError struct {
	Reason    error
	Objective TrackedObjective
	Cause     error
}

func (e *UpdateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Reason, e.Objective.ObjectiveID, e.Cause)
	}
	if e.Objective.ObjectiveID != "" {
		return fmt.Sprintf("%v: %s", e.Reason, e.Objective.ObjectiveID)
	}
	return e.Reason.Error()
}

func (e *UpdateError) Unwrap() []error {
	errs := []error{e.Reason}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// ObjectiveOf extracts the objective carried by an UpdateError.
func ObjectiveOf(err error) (TrackedObjective, bool) {
	var updateErr *UpdateError
	if errors.As(err, &updateErr) && updateErr.Objective.ObjectiveID != "" {
		return updateErr.Objective, true
	}
	return TrackedObjective{}, false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
