package tracker

// ObjectiveState is the completion state sent with an objective update.
type ObjectiveState string

const (
	StateCompleted   ObjectiveState = "completed"
	StateUncompleted ObjectiveState = "uncompleted"
)

// StateFor derives the update state from a count and its target.
func StateFor(current, required int) ObjectiveState {
	if current >= required {
		return StateCompleted
	}
	return StateUncompleted
}

// ProgressResponse mirrors the payload returned by GET /progress.
type ProgressResponse struct {
	Data Progress `json:"data"`
	Meta Meta     `json:"meta"`
}

// Meta carries response metadata.
type Meta struct {
	Self string `json:"self"`
}

// Progress is the per-user progress document.
type Progress struct {
	UserID                 string              `json:"userId"`
	DisplayName            string              `json:"displayName"`
	PlayerLevel            int                 `json:"playerLevel"`
	GameEdition            int                 `json:"gameEdition"`
	PMCFaction             string              `json:"pmcFaction"`
	TasksProgress          []TaskProgress      `json:"tasksProgress"`
	TaskObjectivesProgress []ObjectiveProgress `json:"taskObjectivesProgress"`
}

// TaskProgress reports completion of a whole task.
type TaskProgress struct {
	ID       string `json:"id"`
	Complete bool   `json:"complete"`
	Invalid  bool   `json:"invalid,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// ObjectiveProgress reports progress of a single task objective.
type ObjectiveProgress struct {
	ID       string `json:"id"`
	Count    int    `json:"count"`
	Complete bool   `json:"complete"`
}

// ObjectiveUpdate is the body of POST /progress/task/objective/{id}.
type ObjectiveUpdate struct {
	Count int            `json:"count"`
	State ObjectiveState `json:"state"`
}
