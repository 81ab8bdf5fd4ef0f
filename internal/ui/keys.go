package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Confirm    key.Binding

	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Search key.Binding

	TaskAdd        key.Binding
	TaskRemove     key.Binding
	HideoutAdd     key.Binding
	HideoutRemove  key.Binding
	SyncAdd        key.Binding
	SyncRemove     key.Binding
	Refresh        key.Binding
	ToggleActivity key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Clear search"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Apply search"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search items"),
		),

		TaskAdd: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Task +1"),
		),
		TaskRemove: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Task -1"),
		),
		HideoutAdd: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Hideout +1"),
		),
		HideoutRemove: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Hideout -1"),
		),
		SyncAdd: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Task +1 and sync now"),
		),
		SyncRemove: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Task -1 and sync now"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh from tracker"),
		),
		ToggleActivity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Toggle activity"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TaskAdd, k.TaskRemove, k.HideoutAdd, k.HideoutRemove, k.SyncAdd, k.Search, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Search, k.Escape},
		{k.TaskAdd, k.TaskRemove, k.HideoutAdd, k.HideoutRemove},
		{k.SyncAdd, k.SyncRemove, k.Refresh},
		{k.ToggleActivity, k.CycleTheme, k.Help, k.Quit},
	}
}
