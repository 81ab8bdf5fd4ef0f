package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/raidtrack/internal/progress"
)

const (
	labelTask    = "task"
	labelHideout = "hideout"

	detailLines   = 4
	activityLines = 6
	paneChrome    = 2
)

type messageLevel int

const (
	levelInfo messageLevel = iota
	levelSuccess
	levelWarn
	levelError
)

func (m *Model) setMessage(level messageLevel, text string) {
	m.messageLevel = level
	m.message = text
}

func (m *Model) showResult(label, itemID string, obj progress.TrackedObjective, err error) {
	level, text := describeResult(label, m.catalogSnap.ItemName(itemID), obj, err)
	m.setMessage(level, text)
}

// describeResult turns a change outcome into a status line.
func describeResult(label, itemName string, obj progress.TrackedObjective, err error) (messageLevel, string) {
	if itemName == "" {
		itemName = obj.ItemID
	}
	counts := fmt.Sprintf("%d/%d", obj.CurrentCount, obj.RequiredCount)
	switch {
	case err == nil:
		return levelSuccess, fmt.Sprintf("%s %s %s (%s)", label, itemName, counts, obj.ObjectiveID)
	case errors.Is(err, progress.ErrAlreadyCompleted):
		return levelWarn, fmt.Sprintf("%s %s already complete at %s", label, itemName, counts)
	case errors.Is(err, progress.ErrNoProgressToRemove):
		return levelWarn, fmt.Sprintf("%s %s has no progress to remove", label, itemName)
	case errors.Is(err, progress.ErrNoObjectiveForItem):
		return levelWarn, fmt.Sprintf("no open %s objective for %s", label, itemName)
	case errors.Is(err, progress.ErrAPI):
		cause := err
		var updateErr *progress.UpdateError
		if errors.As(err, &updateErr) && updateErr.Cause != nil {
			cause = updateErr.Cause
		}
		return levelWarn, fmt.Sprintf("%s %s %s saved locally, sync queued: %v", label, itemName, counts, cause)
	default:
		return levelError, err.Error()
	}
}

func (m Model) listHeight() int {
	fixed := 3 + detailLines + paneChrome
	if m.showActivity {
		fixed += activityLines + paneChrome
	}
	if m.searching || m.filter != nil {
		fixed++
	}
	return max(m.height-fixed, 1)
}

func (m Model) renderMain() string {
	styles := m.theme.Styles()
	sections := []string{m.renderHeader(styles)}
	if m.searching || m.filter != nil {
		sections = append(sections, m.search.View())
	}
	sections = append(sections, m.renderList(styles), m.renderDetail(styles))
	if m.showActivity {
		sections = append(sections, m.renderActivity(styles))
	}
	sections = append(sections, m.renderMessage(styles), m.renderFooter(styles))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(styles Styles) string {
	var sync string
	switch {
	case !m.status.SyncEnabled:
		sync = styles.Muted.Render("sync off")
	case !m.status.CooldownUntil.IsZero() && time.Now().Before(m.status.CooldownUntil):
		sync = styles.Warning.Render("rate limited")
	case m.status.Loaded:
		sync = styles.Success.Render("synced " + m.status.LastRefresh.Local().Format("15:04:05"))
	default:
		sync = styles.Info.Render("connecting")
	}
	parts := []string{
		styles.Accent.Bold(true).Render("raidtrack"),
		sync,
		styles.Text.Render(fmt.Sprintf("pending %d", m.status.Pending)),
		styles.Muted.Render(fmt.Sprintf("%d items", len(m.items))),
	}
	if m.status.LastError != "" {
		parts = append(parts, styles.Danger.Render(truncate(m.status.LastError, 48)))
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderList(styles Styles) string {
	rows := m.listHeight()
	lines := make([]string, 0, rows)
	end := min(m.offset+rows, len(m.items))
	for i := m.offset; i < end; i++ {
		item := m.items[i]
		line := fmt.Sprintf("%-36s %-10s %-10s", truncate(item.Name, 36), m.taskBadge(item.ID), m.hideoutBadge(item.ID))
		if i == m.selected {
			lines = append(lines, styles.Selected.Width(m.width).Render(line))
			continue
		}
		lines = append(lines, styles.Text.Render(line))
	}
	if len(m.items) == 0 {
		lines = append(lines, styles.Muted.Render("no items; check catalog_path"))
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) taskBadge(itemID string) string {
	if m.tracker == nil {
		return ""
	}
	if obj, ok := m.tracker.CurrentTaskObjective(itemID); ok {
		return fmt.Sprintf("T %d/%d", obj.CurrentCount, obj.RequiredCount)
	}
	return ""
}

func (m Model) hideoutBadge(itemID string) string {
	if m.tracker == nil {
		return ""
	}
	if obj, ok := m.tracker.CurrentHideoutRequirement(itemID); ok {
		return fmt.Sprintf("H %d/%d", obj.CurrentCount, obj.RequiredCount)
	}
	return ""
}

func (m Model) renderDetail(styles Styles) string {
	lines := make([]string, 0, detailLines)
	item, ok := m.selectedItem()
	if !ok || m.tracker == nil {
		lines = append(lines, styles.Muted.Render("nothing selected"))
	} else {
		lines = append(lines, styles.Accent.Bold(true).Render(item.Name))
		if obj, ok := m.tracker.CurrentTaskObjective(item.ID); ok {
			info, _ := m.catalogSnap.Objective(obj.ObjectiveID)
			lines = append(lines, styles.Text.Render(fmt.Sprintf("Task     %s: %s  %d/%d", info.TaskName, truncate(info.Description, 40), obj.CurrentCount, obj.RequiredCount)))
		} else {
			lines = append(lines, styles.Muted.Render("Task     none open"))
		}
		if obj, ok := m.tracker.CurrentHideoutRequirement(item.ID); ok {
			info, _ := m.catalogSnap.Requirement(obj.ObjectiveID)
			lvl := "?"
			if info.StationLevel != nil {
				lvl = fmt.Sprint(*info.StationLevel)
			}
			lines = append(lines, styles.Text.Render(fmt.Sprintf("Hideout  %s L%s  %d/%d", info.StationName, lvl, m.tracker.LocalHideoutExtraCount(obj.ObjectiveID), obj.RequiredCount)))
		} else {
			lines = append(lines, styles.Muted.Render("Hideout  none open"))
		}
	}
	for len(lines) < detailLines {
		lines = append(lines, "")
	}
	return styles.Pane.Width(max(m.width-2, 10)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderActivity(styles Styles) string {
	start := max(len(m.activity)-activityLines, 0)
	lines := make([]string, 0, activityLines)
	for _, entry := range m.activity[start:] {
		line := truncate(entry.Format(), max(m.width-6, 20))
		switch entry.Level {
		case "ERROR":
			lines = append(lines, styles.Danger.Render(line))
		case "WARN":
			lines = append(lines, styles.Warning.Render(line))
		default:
			lines = append(lines, styles.Faint.Render(line))
		}
	}
	for len(lines) < activityLines {
		lines = append(lines, "")
	}
	return styles.Pane.Width(max(m.width-2, 10)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderMessage(styles Styles) string {
	switch m.messageLevel {
	case levelSuccess:
		return styles.Success.Render(m.message)
	case levelWarn:
		return styles.Warning.Render(m.message)
	case levelError:
		return styles.Danger.Render(m.message)
	default:
		return styles.Info.Render(m.message)
	}
}

func (m Model) renderFooter(styles Styles) string {
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(styles.Key.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.Faint.Render("press any key to close"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.Pane.Render(b.String()))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
