package ui

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/raidtrack/internal/catalog"
	"github.com/five82/raidtrack/internal/logtail"
	"github.com/five82/raidtrack/internal/prefs"
	"github.com/five82/raidtrack/internal/progress"
)

// Tracker is the progress engine surface the UI drives.
type Tracker interface {
	ApplyLocalChange(itemID string, delta int) (progress.TrackedObjective, error)
	ApplyLocalHideoutChange(itemID string, delta int) (progress.TrackedObjective, error)
	ChangeAndSync(ctx context.Context, itemID string, delta int) (progress.TrackedObjective, error)
	Refresh(ctx context.Context, force bool) error
	CurrentTaskObjective(itemID string) (progress.TrackedObjective, bool)
	CurrentHideoutRequirement(itemID string) (progress.TrackedObjective, bool)
	LocalHideoutExtraCount(requirementID string) int
	Status() progress.Status
}

// CatalogSource supplies the item list.
type CatalogSource interface {
	Current() *catalog.Snapshot
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Tracker      Tracker
	Catalog      CatalogSource
	LogPath      string
	PrefsPath    string
	ThemeName    string
	ShowActivity bool
	Tick         time.Duration
}

const (
	defaultTick       = time.Second
	activityLineLimit = 200
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	tracker   Tracker
	catalog   CatalogSource
	logPath   string
	prefsPath string
	tick      time.Duration

	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool

	catalogSnap *catalog.Snapshot
	items       []catalog.Item
	selected    int
	offset      int

	searching bool
	search    textinput.Model
	filter    *regexp.Regexp

	status       progress.Status
	message      string
	messageLevel messageLevel

	showActivity bool
	activity     []logtail.Entry

	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "filter items (regex)"
	search.CharLimit = 64

	m := Model{
		ctx:          ctx,
		tracker:      opts.Tracker,
		catalog:      opts.Catalog,
		logPath:      opts.LogPath,
		prefsPath:    opts.PrefsPath,
		tick:         tick,
		theme:        GetTheme(opts.ThemeName),
		keys:         defaultKeyMap(),
		help:         help.New(),
		search:       search,
		showActivity: opts.ShowActivity,
	}
	m.reloadItems()
	if m.tracker != nil {
		m.status = m.tracker.Status()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.showActivity {
		cmds = append(cmds, readActivityCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.clampSelection()
		return m, nil

	case tickMsg:
		if m.tracker != nil {
			m.status = m.tracker.Status()
		}
		m.reloadItems()
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.showActivity {
			cmds = append(cmds, readActivityCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case activityMsg:
		m.activity = msg
		return m, nil

	case changeResultMsg:
		m.showResult(msg.label, msg.itemID, msg.obj, msg.err)
		if m.tracker != nil {
			m.status = m.tracker.Status()
		}
		return m, nil

	case refreshResultMsg:
		if msg.err != nil {
			m.setMessage(levelError, "refresh failed: "+msg.err.Error())
		} else {
			m.setMessage(levelInfo, "refreshed from tracker")
		}
		if m.tracker != nil {
			m.status = m.tracker.Status()
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
	case key.Matches(msg, m.keys.ToggleActivity):
		m.showActivity = !m.showActivity
		m.savePrefs()
		if m.showActivity {
			return m, readActivityCmd(m.logPath)
		}
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
		m.clampSelection()
	case key.Matches(msg, m.keys.Bottom):
		m.selected = len(m.items) - 1
		m.clampSelection()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Escape):
		m.clearSearch()

	case key.Matches(msg, m.keys.TaskAdd):
		m.applyLocal(labelTask, 1)
	case key.Matches(msg, m.keys.TaskRemove):
		m.applyLocal(labelTask, -1)
	case key.Matches(msg, m.keys.HideoutAdd):
		m.applyLocal(labelHideout, 1)
	case key.Matches(msg, m.keys.HideoutRemove):
		m.applyLocal(labelHideout, -1)
	case key.Matches(msg, m.keys.SyncAdd):
		return m, m.changeAndSync(1)
	case key.Matches(msg, m.keys.SyncRemove):
		return m, m.changeAndSync(-1)
	case key.Matches(msg, m.keys.Refresh):
		if m.tracker == nil {
			return m, nil
		}
		m.setMessage(levelInfo, "refreshing...")
		return m, refreshCmd(m.ctx, m.tracker)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.clearSearch()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter(m.search.Value())
	return m, cmd
}

// applyLocal runs a local-only change. It never blocks on I/O, so it runs
// inline rather than as a command.
func (m *Model) applyLocal(label string, delta int) {
	item, ok := m.selectedItem()
	if !ok || m.tracker == nil {
		return
	}
	var (
		obj progress.TrackedObjective
		err error
	)
	if label == labelHideout {
		obj, err = m.tracker.ApplyLocalHideoutChange(item.ID, delta)
	} else {
		obj, err = m.tracker.ApplyLocalChange(item.ID, delta)
	}
	m.showResult(label, item.ID, obj, err)
	m.status = m.tracker.Status()
}

func (m *Model) changeAndSync(delta int) tea.Cmd {
	item, ok := m.selectedItem()
	if !ok || m.tracker == nil {
		return nil
	}
	m.setMessage(levelInfo, "syncing "+item.Name+"...")
	return changeAndSyncCmd(m.ctx, m.tracker, item.ID, delta)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, ShowActivity: m.showActivity}); err != nil {
		m.setMessage(levelError, err.Error())
	}
}

func (m *Model) reloadItems() {
	if m.catalog == nil {
		return
	}
	snap := m.catalog.Current()
	if snap == m.catalogSnap && m.items != nil {
		return
	}
	m.catalogSnap = snap
	m.refilter()
}

func (m *Model) applyFilter(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		m.filter = nil
		m.refilter()
		return
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return
	}
	m.filter = re
	m.refilter()
}

func (m *Model) clearSearch() {
	m.searching = false
	m.search.Blur()
	m.search.SetValue("")
	m.filter = nil
	m.refilter()
}

func (m *Model) refilter() {
	var selectedID string
	if item, ok := m.selectedItem(); ok {
		selectedID = item.ID
	}
	m.items = filterItems(m.catalogSnap.Items(), m.filter)
	m.selected = 0
	for i, item := range m.items {
		if item.ID == selectedID {
			m.selected = i
			break
		}
	}
	m.clampSelection()
}

func filterItems(items []catalog.Item, re *regexp.Regexp) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if re == nil || re.MatchString(item.Name) || re.MatchString(item.ShortName) {
			out = append(out, item)
		}
	}
	return out
}

func (m Model) selectedItem() (catalog.Item, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return catalog.Item{}, false
	}
	return m.items[m.selected], true
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.items) {
		m.selected = len(m.items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	rows := m.listHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if rows > 0 && m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or
// the context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	return err
}
