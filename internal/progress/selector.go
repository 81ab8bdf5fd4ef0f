package progress

import (
	"math"
	"sort"

	"github.com/five82/raidtrack/internal/catalog"
	"github.com/five82/raidtrack/internal/tracker"
)

// remoteSnapshot is the last fetched remote progress with local task
// writes overlaid onto its objective map.
type remoteSnapshot struct {
	tasksComplete map[string]bool
	objectives    map[string]objectiveProgress
}

type objectiveProgress struct {
	Count    int
	Complete bool
}

func newRemoteSnapshot(p *tracker.Progress) remoteSnapshot {
	snap := remoteSnapshot{
		tasksComplete: make(map[string]bool),
		objectives:    make(map[string]objectiveProgress),
	}
	if p == nil {
		return snap
	}
	for _, task := range p.TasksProgress {
		if task.ID != "" && task.Complete {
			snap.tasksComplete[task.ID] = true
		}
	}
	for _, obj := range p.TaskObjectivesProgress {
		if obj.ID == "" {
			continue
		}
		snap.objectives[obj.ID] = objectiveProgress{Count: obj.Count, Complete: obj.Complete}
	}
	return snap
}

// currentFor resolves the count of a task objective: a pending local value
// wins, then remote completion, then the remote count.
func (r remoteSnapshot) currentFor(objectiveID string, required int, pending map[string]TrackedObjective) int {
	if p, ok := pending[objectiveID]; ok {
		return clamp(p.CurrentCount, 0, required)
	}
	progress, ok := r.objectives[objectiveID]
	if !ok {
		return 0
	}
	if progress.Complete {
		return required
	}
	return clamp(progress.Count, 0, required)
}

// taskCandidates lists the found-in-raid hand-in objectives for item in
// unlock order: ascending task minimum player level, unknown level last,
// catalog order otherwise. Tasks already complete remotely are skipped.
func taskCandidates(item catalog.Item, remote remoteSnapshot, pending map[string]TrackedObjective) []TrackedObjective {
	tasks := make([]catalog.Task, 0, len(item.UsedInTasks))
	for _, task := range item.UsedInTasks {
		if len(task.Objectives) == 0 || remote.tasksComplete[task.ID] {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return levelKey(tasks[i].MinPlayerLevel) < levelKey(tasks[j].MinPlayerLevel)
	})

	seen := make(map[string]bool)
	var out []TrackedObjective
	for _, task := range tasks {
		for _, obj := range task.Objectives {
			if obj.ID == "" || seen[obj.ID] {
				continue
			}
			if obj.Type != catalog.ObjectiveTypeGiveItem || !obj.FoundInRaid || !obj.Consumes(item.ID) {
				continue
			}
			seen[obj.ID] = true
			required := max(obj.Count, 0)
			out = append(out, TrackedObjective{
				ObjectiveID:   obj.ID,
				ItemID:        item.ID,
				Kind:          KindTask,
				RequiredCount: required,
				CurrentCount:  remote.currentFor(obj.ID, required, pending),
			})
		}
	}
	return out
}

// hideoutCandidates lists every station level requirement consuming
// itemID, ordered by station level ascending.
func hideoutCandidates(snap *catalog.Snapshot, itemID string, hideout map[string]int) []TrackedObjective {
	refs := snap.RequirementsForItem(itemID)
	sort.SliceStable(refs, func(i, j int) bool {
		return levelKey(refs[i].Level) < levelKey(refs[j].Level)
	})
	out := make([]TrackedObjective, 0, len(refs))
	for _, ref := range refs {
		required := max(ref.RequiredCount, 0)
		out = append(out, TrackedObjective{
			ObjectiveID:   ref.ID,
			ItemID:        itemID,
			Kind:          KindHideout,
			RequiredCount: required,
			CurrentCount:  clamp(hideout[ref.ID], 0, required),
		})
	}
	return out
}

// resolveTarget re-reads a task objective's required count from the catalog
// and clamps its count to it. Objectives missing from the catalog keep the
// target they were recorded with.
func resolveTarget(snap *catalog.Snapshot, obj TrackedObjective) TrackedObjective {
	if info, ok := snap.Objective(obj.ObjectiveID); ok {
		obj.RequiredCount = info.RequiredCount
	}
	return obj.withCount(obj.CurrentCount)
}

// pickForDelta fills the earliest unfinished candidate on increments and
// undoes the latest progressed candidate on decrements.
func pickForDelta(candidates []TrackedObjective, delta int) (TrackedObjective, bool) {
	if delta > 0 {
		for _, c := range candidates {
			if c.CurrentCount < c.RequiredCount {
				return c, true
			}
		}
		return TrackedObjective{}, false
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		if candidates[i].CurrentCount > 0 {
			return candidates[i], true
		}
	}
	return TrackedObjective{}, false
}

func levelKey(level *int) int {
	if level == nil {
		return math.MaxInt
	}
	return *level
}
