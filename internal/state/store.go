package state

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	tasksFileName   = "pending-tasks.toml"
	hideoutFileName = "hideout.toml"
)

// PendingObjective is a task objective change not yet confirmed remotely.
// The name fields are informational and ignored on load.
type PendingObjective struct {
	ObjectiveID          string `toml:"objective_id"`
	ItemID               string `toml:"item_id"`
	RequiredCount        int    `toml:"required_count"`
	CurrentCount         int    `toml:"current_count"`
	TaskName             string `toml:"task_name,omitempty"`
	ObjectiveDescription string `toml:"objective_description,omitempty"`
	ItemName             string `toml:"item_name,omitempty"`
}

// HideoutRequirement is the local count toward a hideout item requirement.
type HideoutRequirement struct {
	RequirementID string `toml:"requirement_id"`
	Count         int    `toml:"count"`
	StationName   string `toml:"station_name,omitempty"`
	StationLevel  int    `toml:"station_level,omitempty"`
	ItemID        string `toml:"item_id,omitempty"`
	ItemName      string `toml:"item_name,omitempty"`
	RequiredCount int    `toml:"required_count,omitempty"`
}

type tasksDocument struct {
	Objectives []PendingObjective `toml:"objectives"`
}

type hideoutDocument struct {
	Requirements []HideoutRequirement `toml:"requirements"`
}

// Store reads and writes the local progress documents in a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating it when missing.
func NewStore(dir string) (*Store, error) {
	resolved, err := expandPath(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: resolved}, nil
}

// Dir returns the resolved state directory.
func (s *Store) Dir() string {
	return s.dir
}

// TasksPath returns the pending task changes document path.
func (s *Store) TasksPath() string {
	return filepath.Join(s.dir, tasksFileName)
}

// HideoutPath returns the hideout counts document path.
func (s *Store) HideoutPath() string {
	return filepath.Join(s.dir, hideoutFileName)
}

// LoadTasks reads pending task changes. A missing file is empty state.
// Entries without an id are dropped and counts are clamped to their target.
func (s *Store) LoadTasks() ([]PendingObjective, error) {
	var doc tasksDocument
	found, err := readDocument(s.TasksPath(), &doc)
	if err != nil || !found {
		return nil, err
	}
	out := make([]PendingObjective, 0, len(doc.Objectives))
	for _, o := range doc.Objectives {
		o.ObjectiveID = strings.TrimSpace(o.ObjectiveID)
		if o.ObjectiveID == "" || o.RequiredCount < 0 {
			continue
		}
		o.CurrentCount = clamp(o.CurrentCount, 0, o.RequiredCount)
		out = append(out, o)
	}
	return out, nil
}

// SaveTasks replaces the pending task changes document.
func (s *Store) SaveTasks(objectives []PendingObjective) error {
	return writeDocument(s.TasksPath(), tasksDocument{Objectives: objectives})
}

// LoadHideout reads local hideout counts. A missing file is empty state.
// Entries without an id or with a non-positive count are dropped.
func (s *Store) LoadHideout() ([]HideoutRequirement, error) {
	var doc hideoutDocument
	found, err := readDocument(s.HideoutPath(), &doc)
	if err != nil || !found {
		return nil, err
	}
	out := make([]HideoutRequirement, 0, len(doc.Requirements))
	for _, r := range doc.Requirements {
		r.RequirementID = strings.TrimSpace(r.RequirementID)
		if r.RequirementID == "" || r.Count <= 0 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveHideout replaces the hideout counts document.
func (s *Store) SaveHideout(requirements []HideoutRequirement) error {
	return writeDocument(s.HideoutPath(), hideoutDocument{Requirements: requirements})
}

func readDocument(path string, dest any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeDocument writes through a temp file so a crash never leaves a
// truncated document behind.
func writeDocument(path string, doc any) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
