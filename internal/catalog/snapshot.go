package catalog

import "sort"

// Snapshot is an immutable, indexed view of the catalog. The engine only
// reads it; a reload produces a new Snapshot.
type Snapshot struct {
	items    []Item
	stations []HideoutStation

	itemsByID    map[string]int
	objectives   map[string]ObjectiveInfo
	requirements map[string]RequirementInfo
}

// ObjectiveInfo names a task objective and carries its current target.
type ObjectiveInfo struct {
	TaskID        string
	TaskName      string
	Description   string
	RequiredCount int
}

// RequirementInfo locates a hideout item requirement.
type RequirementInfo struct {
	StationID     string
	StationName   string
	StationLevel  *int
	ItemID        string
	ItemName      string
	RequiredCount int
}

// RequirementRef is a hideout requirement flattened with its level.
type RequirementRef struct {
	ID            string
	StationName   string
	Level         *int
	RequiredCount int
}

// NewSnapshot indexes data. The first occurrence of a duplicated id wins.
func NewSnapshot(data Data) *Snapshot {
	s := &Snapshot{
		items:        data.Items,
		stations:     data.HideoutStations,
		itemsByID:    make(map[string]int, len(data.Items)),
		objectives:   make(map[string]ObjectiveInfo),
		requirements: make(map[string]RequirementInfo),
	}
	for i, item := range data.Items {
		if item.ID == "" {
			continue
		}
		if _, ok := s.itemsByID[item.ID]; !ok {
			s.itemsByID[item.ID] = i
		}
		for _, task := range item.UsedInTasks {
			for _, obj := range task.Objectives {
				if obj.ID == "" {
					continue
				}
				if _, ok := s.objectives[obj.ID]; !ok {
					s.objectives[obj.ID] = ObjectiveInfo{
						TaskID:        task.ID,
						TaskName:      task.Name,
						Description:   obj.Description,
						RequiredCount: max(obj.Count, 0),
					}
				}
			}
		}
	}
	for _, station := range data.HideoutStations {
		for _, level := range station.Levels {
			for _, req := range level.ItemRequirements {
				if req.ID == "" {
					continue
				}
				if _, ok := s.requirements[req.ID]; ok {
					continue
				}
				s.requirements[req.ID] = RequirementInfo{
					StationID:     station.ID,
					StationName:   station.Name,
					StationLevel:  level.Level,
					ItemID:        req.Item.ID,
					ItemName:      req.Item.Name,
					RequiredCount: req.Count,
				}
			}
		}
	}
	return s
}

// Empty returns a snapshot with no items.
func Empty() *Snapshot {
	return NewSnapshot(Data{})
}

// Item looks up an item by id.
func (s *Snapshot) Item(id string) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	idx, ok := s.itemsByID[id]
	if !ok {
		return Item{}, false
	}
	return s.items[idx], true
}

// ItemName returns the display name for id, or "" when unknown.
func (s *Snapshot) ItemName(id string) string {
	item, ok := s.Item(id)
	if !ok {
		return ""
	}
	return item.Name
}

// Items returns the items sorted by name. The slice is a copy.
func (s *Snapshot) Items() []Item {
	if s == nil {
		return nil
	}
	out := make([]Item, 0, len(s.itemsByID))
	for _, idx := range s.itemsByID {
		out = append(out, s.items[idx])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Objective returns display info for a task objective id.
func (s *Snapshot) Objective(id string) (ObjectiveInfo, bool) {
	if s == nil {
		return ObjectiveInfo{}, false
	}
	info, ok := s.objectives[id]
	return info, ok
}

// Requirement returns location info for a hideout requirement id.
func (s *Snapshot) Requirement(id string) (RequirementInfo, bool) {
	if s == nil {
		return RequirementInfo{}, false
	}
	info, ok := s.requirements[id]
	return info, ok
}

// RequirementsForItem flattens every station level requirement that
// consumes itemID, in catalog order.
func (s *Snapshot) RequirementsForItem(itemID string) []RequirementRef {
	if s == nil {
		return nil
	}
	var refs []RequirementRef
	for _, station := range s.stations {
		for _, level := range station.Levels {
			for _, req := range level.ItemRequirements {
				if req.ID == "" || req.Item.ID != itemID {
					continue
				}
				refs = append(refs, RequirementRef{
					ID:            req.ID,
					StationName:   station.Name,
					Level:         level.Level,
					RequiredCount: req.Count,
				})
			}
		}
	}
	return refs
}

// Len returns the number of distinct items.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.itemsByID)
}
