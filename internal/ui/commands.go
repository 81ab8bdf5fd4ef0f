package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/raidtrack/internal/logtail"
	"github.com/five82/raidtrack/internal/progress"
)

type tickMsg time.Time

type activityMsg []logtail.Entry

type changeResultMsg struct {
	label  string
	itemID string
	obj    progress.TrackedObjective
	err    error
}

type refreshResultMsg struct {
	err error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func readActivityCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, activityLineLimit)
		if err != nil {
			return activityMsg(nil)
		}
		return activityMsg(entries)
	}
}

func changeAndSyncCmd(ctx context.Context, tracker Tracker, itemID string, delta int) tea.Cmd {
	return func() tea.Msg {
		obj, err := tracker.ChangeAndSync(ctx, itemID, delta)
		return changeResultMsg{label: labelTask, itemID: itemID, obj: obj, err: err}
	}
}

func refreshCmd(ctx context.Context, tracker Tracker) tea.Cmd {
	return func() tea.Msg {
		return refreshResultMsg{err: tracker.Refresh(ctx, true)}
	}
}
