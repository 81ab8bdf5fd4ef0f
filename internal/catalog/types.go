package catalog

// ObjectiveTypeGiveItem marks objectives that consume items handed to a trader.
const ObjectiveTypeGiveItem = "giveItem"

// Document mirrors the cached catalog response on disk.
type Document struct {
	Data Data `json:"data"`
}

// Data holds the catalog graph.
type Data struct {
	Items           []Item           `json:"items"`
	HideoutStations []HideoutStation `json:"hideoutStations"`
}

// Item is a catalog item and the tasks that reference it.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"shortName"`
	UsedInTasks []Task `json:"usedInTasks"`
}

// Task is a quest that references an item through one or more objectives.
type Task struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	MinPlayerLevel *int        `json:"minPlayerLevel"`
	Objectives     []Objective `json:"objectives"`
}

// Objective is a task sub-goal.
type Objective struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	FoundInRaid bool      `json:"foundInRaid"`
	Count       int       `json:"count"`
	Items       []ItemRef `json:"items"`
}

// Consumes reports whether the objective hands in itemID.
func (o Objective) Consumes(itemID string) bool {
	for _, ref := range o.Items {
		if ref.ID == itemID {
			return true
		}
	}
	return false
}

// ItemRef is a lightweight item reference inside objectives and requirements.
type ItemRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HideoutStation is a base station with upgrade levels.
type HideoutStation struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Levels []Level `json:"levels"`
}

// Level is one upgrade level of a station.
type Level struct {
	Level            *int              `json:"level"`
	ItemRequirements []ItemRequirement `json:"itemRequirements"`
}

// ItemRequirement is an item quantity needed to build a station level.
type ItemRequirement struct {
	ID    string  `json:"id"`
	Count int     `json:"count"`
	Item  ItemRef `json:"item"`
}
