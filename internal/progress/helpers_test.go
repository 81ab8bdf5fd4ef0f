package progress

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/five82/raidtrack/internal/catalog"
	"github.com/five82/raidtrack/internal/state"
	"github.com/five82/raidtrack/internal/tracker"
)

func level(n int) *int { return &n }

func giveItem(id, itemID string, count int, fir bool) catalog.Objective {
	return catalog.Objective{
		ID:          id,
		Type:        catalog.ObjectiveTypeGiveItem,
		Description: "Hand over " + itemID,
		FoundInRaid: fir,
		Count:       count,
		Items:       []catalog.ItemRef{{ID: itemID}},
	}
}

func testCatalog() *catalog.Snapshot {
	return catalog.NewSnapshot(testCatalogData())
}

// catalogWithLedxTarget is testCatalog with obj-ledx requiring n items.
func catalogWithLedxTarget(n int) *catalog.Snapshot {
	data := testCatalogData()
	data.Items[1].UsedInTasks[0].Objectives[0].Count = n
	return catalog.NewSnapshot(data)
}

func testCatalogData() catalog.Data {
	return catalog.Data{
		Items: []catalog.Item{
			{
				ID: "gpu", Name: "Graphics card",
				UsedInTasks: []catalog.Task{
					{ID: "task-nolevel", Name: "No level", Objectives: []catalog.Objective{giveItem("obj-nil", "gpu", 1, true)}},
					{ID: "task-high", Name: "High", MinPlayerLevel: level(20), Objectives: []catalog.Objective{giveItem("obj-high", "gpu", 5, true)}},
					{ID: "task-low", Name: "Low", MinPlayerLevel: level(10), Objectives: []catalog.Objective{giveItem("obj-low", "gpu", 2, true)}},
					{ID: "task-nonfir", Name: "Any condition", MinPlayerLevel: level(1), Objectives: []catalog.Objective{giveItem("obj-nonfir", "gpu", 3, false)}},
				},
			},
			{
				ID: "ledx", Name: "LEDX",
				UsedInTasks: []catalog.Task{
					{ID: "task-ledx", Name: "Ledx task", MinPlayerLevel: level(15), Objectives: []catalog.Objective{giveItem("obj-ledx", "ledx", 5, true)}},
				},
			},
			{
				ID: "wires", Name: "Wires",
				UsedInTasks: []catalog.Task{
					{ID: "task-w1", MinPlayerLevel: level(1), Objectives: []catalog.Objective{giveItem("obj-w1", "wires", 1, true)}},
					{ID: "task-w2", MinPlayerLevel: level(2), Objectives: []catalog.Objective{giveItem("obj-w2", "wires", 1, true)}},
					{ID: "task-w3", MinPlayerLevel: level(3), Objectives: []catalog.Objective{giveItem("obj-w3", "wires", 1, true)}},
				},
			},
			{ID: "bolts", Name: "Bolts"},
		},
		HideoutStations: []catalog.HideoutStation{
			{
				ID: "workbench", Name: "Workbench",
				Levels: []catalog.Level{
					{Level: level(2), ItemRequirements: []catalog.ItemRequirement{{ID: "req-bolts-2", Count: 4, Item: catalog.ItemRef{ID: "bolts", Name: "Bolts"}}}},
					{Level: level(1), ItemRequirements: []catalog.ItemRequirement{{ID: "req-bolts-1", Count: 10, Item: catalog.ItemRef{ID: "bolts", Name: "Bolts"}}}},
				},
			},
		},
	}
}

// swapSource is a catalog source whose snapshot a test can replace, like a
// hot reload.
type swapSource struct {
	snap atomic.Pointer[catalog.Snapshot]
}

func newSwapSource(snap *catalog.Snapshot) *swapSource {
	s := &swapSource{}
	s.snap.Store(snap)
	return s
}

func (s *swapSource) Current() *catalog.Snapshot { return s.snap.Load() }

type fakeTicker struct {
	d       time.Duration
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{d: d, ch: make(chan time.Time, 1)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// tick fires every live ticker created with interval d.
func (c *fakeClock) tick(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tickers {
		if t.d != d {
			continue
		}
		select {
		case t.ch <- c.now:
		default:
		}
	}
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *fakeClock) allStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tickers {
		t.mu.Lock()
		stopped := t.stopped
		t.mu.Unlock()
		if !stopped {
			return false
		}
	}
	return true
}

type updateCall struct {
	ID    string
	Count int
	State tracker.ObjectiveState
}

type fakeRemote struct {
	mu       sync.Mutex
	progress tracker.Progress
	fetchErr error
	fetches  int
	calls    []updateCall
	failFor  map[string]error
	onUpdate func(objectiveID string)

	// persist makes successful updates visible to later fetches.
	persist     bool
	active      map[string]int
	maxInFlight int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{failFor: make(map[string]error), active: make(map[string]int)}
}

func (r *fakeRemote) FetchProgress(context.Context) (*tracker.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	p := r.progress
	p.TasksProgress = append([]tracker.TaskProgress(nil), r.progress.TasksProgress...)
	p.TaskObjectivesProgress = append([]tracker.ObjectiveProgress(nil), r.progress.TaskObjectivesProgress...)
	return &p, nil
}

func (r *fakeRemote) UpdateObjective(_ context.Context, objectiveID string, count int, st tracker.ObjectiveState) error {
	r.mu.Lock()
	r.calls = append(r.calls, updateCall{ID: objectiveID, Count: count, State: st})
	r.active[objectiveID]++
	r.maxInFlight = max(r.maxInFlight, r.active[objectiveID])
	hook := r.onUpdate
	err := r.failFor[objectiveID]
	r.mu.Unlock()
	if hook != nil {
		hook(objectiveID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[objectiveID]--
	if err == nil && r.persist {
		r.storeLocked(tracker.ObjectiveProgress{ID: objectiveID, Count: count, Complete: st == tracker.StateCompleted})
	}
	return err
}

func (r *fakeRemote) storeLocked(obj tracker.ObjectiveProgress) {
	for i, existing := range r.progress.TaskObjectivesProgress {
		if existing.ID == obj.ID {
			r.progress.TaskObjectivesProgress[i] = obj
			return
		}
	}
	r.progress.TaskObjectivesProgress = append(r.progress.TaskObjectivesProgress, obj)
}

func (r *fakeRemote) updateCalls() []updateCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]updateCall(nil), r.calls...)
}

func (r *fakeRemote) peakInFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxInFlight
}

func (r *fakeRemote) setObjectives(objs ...tracker.ObjectiveProgress) {
	r.mu.Lock()
	r.progress.TaskObjectivesProgress = objs
	r.mu.Unlock()
}

func (r *fakeRemote) setTasks(tasks ...tracker.TaskProgress) {
	r.mu.Lock()
	r.progress.TasksProgress = tasks
	r.mu.Unlock()
}

func (r *fakeRemote) fail(objectiveID string, err error) {
	r.mu.Lock()
	if err == nil {
		delete(r.failFor, objectiveID)
	} else {
		r.failFor[objectiveID] = err
	}
	r.mu.Unlock()
}

func (r *fakeRemote) callIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		ids = append(ids, c.ID)
	}
	return ids
}

func (r *fakeRemote) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

type harness struct {
	engine *Engine
	clock  *fakeClock
	remote *fakeRemote
	store  *state.Store
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	store, err := state.NewStore(t.TempDir())
	require.NoError(t, err)
	return newHarnessWithStore(t, store, newFakeRemote(), mutate...)
}

func newHarnessWithStore(t *testing.T, store *state.Store, remote *fakeRemote, mutate ...func(*Options)) *harness {
	t.Helper()
	clock := newFakeClock()
	opts := Options{
		Catalog:            catalog.NewStaticSource(testCatalog()),
		Remote:             remote,
		Store:              store,
		Clock:              clock,
		Logger:             zaptest.NewLogger(t),
		SyncEnabled:        true,
		FlushInterval:      30 * time.Second,
		RefreshInterval:    60 * time.Second,
		RefreshMinInterval: 10 * time.Second,
		RateLimitCooldown:  5 * time.Second,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	return &harness{engine: New(opts), clock: clock, remote: remote, store: store}
}

// loaded performs the first forced refresh so task selection is enabled.
func (h *harness) loaded(t *testing.T) *harness {
	t.Helper()
	require.NoError(t, h.engine.Refresh(context.Background(), true))
	return h
}

func pendingIDs(objs []TrackedObjective) []string {
	ids := make([]string, 0, len(objs))
	for _, o := range objs {
		ids = append(ids, o.ObjectiveID)
	}
	return ids
}
