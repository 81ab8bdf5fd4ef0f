package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/raidtrack/internal/catalog"
	"github.com/five82/raidtrack/internal/state"
	"github.com/five82/raidtrack/internal/tracker"
)

const (
	defaultFlushInterval      = 30 * time.Second
	defaultRefreshInterval    = 60 * time.Second
	defaultRefreshMinInterval = 30 * time.Second
	defaultRateLimitCooldown  = 5 * time.Second
)

// CatalogSource supplies the current catalog snapshot.
type CatalogSource interface {
	Current() *catalog.Snapshot
}

// StateStore persists pending task changes and hideout counts.
type StateStore interface {
	LoadTasks() ([]state.PendingObjective, error)
	SaveTasks([]state.PendingObjective) error
	LoadHideout() ([]state.HideoutRequirement, error)
	SaveHideout([]state.HideoutRequirement) error
}

// Options configure an Engine.
type Options struct {
	Catalog CatalogSource
	Remote  tracker.ProgressService
	Store   StateStore
	Clock   Clock
	Logger  *zap.Logger

	// SyncEnabled gates every remote call. A nil Remote also disables sync.
	SyncEnabled bool
	// StrictDecrement turns decrement-at-zero into ErrNoProgressToRemove
	// instead of a silent no-op.
	StrictDecrement bool

	FlushInterval      time.Duration
	RefreshInterval    time.Duration
	RefreshMinInterval time.Duration
	RateLimitCooldown  time.Duration
}

// Status summarises sync state for display.
type Status struct {
	SyncEnabled   bool
	Loaded        bool
	LastRefresh   time.Time
	Pending       int
	CooldownUntil time.Time
	LastError     string
}

// Engine owns the local progress overlay, the pending change queue and
// the remote snapshot. Every read or write of them holds mu, and mu is
// never held across I/O.
type Engine struct {
	catalog CatalogSource
	remote  tracker.ProgressService
	store   StateStore
	clock   Clock
	logger  *zap.Logger

	syncEnabled     bool
	strictDecrement bool

	flushInterval      time.Duration
	refreshInterval    time.Duration
	refreshMinInterval time.Duration
	rateLimitCooldown  time.Duration

	mu              sync.Mutex
	remoteSnap      remoteSnapshot
	loaded          bool
	lastRefresh     time.Time
	pending         map[string]TrackedObjective
	inflight        map[string]TrackedObjective // claimed by a push, one per objective
	hideout         map[string]int
	lastRateLimited time.Time
	lastSyncErr     string

	// saveMu orders disk writes so an older snapshot never lands last.
	saveMu sync.Mutex

	runMu  sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds an Engine and loads persisted local state. Unreadable state
// files are logged and treated as empty.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	src := opts.Catalog
	if src == nil {
		src = catalog.NewStaticSource(nil)
	}
	e := &Engine{
		catalog:            src,
		remote:             opts.Remote,
		store:              opts.Store,
		clock:              clock,
		logger:             logger,
		syncEnabled:        opts.SyncEnabled && opts.Remote != nil,
		strictDecrement:    opts.StrictDecrement,
		flushInterval:      orDefault(opts.FlushInterval, defaultFlushInterval),
		refreshInterval:    orDefault(opts.RefreshInterval, defaultRefreshInterval),
		refreshMinInterval: orDefault(opts.RefreshMinInterval, defaultRefreshMinInterval),
		rateLimitCooldown:  orDefault(opts.RateLimitCooldown, defaultRateLimitCooldown),
		remoteSnap:         newRemoteSnapshot(nil),
		pending:            make(map[string]TrackedObjective),
		inflight:           make(map[string]TrackedObjective),
		hideout:            make(map[string]int),
	}
	e.loadState()
	return e
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (e *Engine) loadState() {
	if e.store == nil {
		return
	}
	tasks, err := e.store.LoadTasks()
	if err != nil {
		e.logger.Error("load pending tasks failed, starting empty", zap.Error(err))
		tasks = nil
	}
	hideout, err := e.store.LoadHideout()
	if err != nil {
		e.logger.Error("load hideout state failed, starting empty", zap.Error(err))
		hideout = nil
	}

	// The persisted required_count only covers objectives the catalog no
	// longer lists.
	snap := e.catalog.Current()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range tasks {
		e.pending[t.ObjectiveID] = resolveTarget(snap, TrackedObjective{
			ObjectiveID:   t.ObjectiveID,
			ItemID:        t.ItemID,
			Kind:          KindTask,
			RequiredCount: t.RequiredCount,
			CurrentCount:  t.CurrentCount,
		})
	}
	for _, r := range hideout {
		e.hideout[r.RequirementID] = r.Count
	}
	e.logger.Info("local state loaded", zap.Int("pending", len(e.pending)), zap.Int("hideout", len(e.hideout)))
}

// save writes both local documents. Failures are logged, never returned:
// in-memory state stays authoritative.
func (e *Engine) save() {
	e.saveTasks()
	e.saveHideout()
}

func (e *Engine) saveTasks() {
	if e.store == nil {
		return
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	snap := e.catalog.Current()
	pending := e.unsynced(snap)
	docs := make([]state.PendingObjective, 0, len(pending))
	for _, o := range pending {
		info, _ := snap.Objective(o.ObjectiveID)
		docs = append(docs, state.PendingObjective{
			ObjectiveID:          o.ObjectiveID,
			ItemID:               o.ItemID,
			RequiredCount:        o.RequiredCount,
			CurrentCount:         o.CurrentCount,
			TaskName:             info.TaskName,
			ObjectiveDescription: info.Description,
			ItemName:             snap.ItemName(o.ItemID),
		})
	}
	if err := e.store.SaveTasks(docs); err != nil {
		e.logger.Error("save pending tasks failed", zap.Error(err))
	}
}

func (e *Engine) saveHideout() {
	if e.store == nil {
		return
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	counts := make(map[string]int, len(e.hideout))
	for id, n := range e.hideout {
		if n > 0 {
			counts[id] = n
		}
	}
	e.mu.Unlock()

	snap := e.catalog.Current()
	docs := make([]state.HideoutRequirement, 0, len(counts))
	for id, n := range counts {
		doc := state.HideoutRequirement{RequirementID: id, Count: n}
		if info, ok := snap.Requirement(id); ok {
			doc.StationName = info.StationName
			if info.StationLevel != nil {
				doc.StationLevel = *info.StationLevel
			}
			doc.ItemID = info.ItemID
			doc.ItemName = info.ItemName
			doc.RequiredCount = info.RequiredCount
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].RequirementID < docs[j].RequirementID })
	if err := e.store.SaveHideout(docs); err != nil {
		e.logger.Error("save hideout state failed", zap.Error(err))
	}
}

// Pending returns a copy of the pending change queue sorted by objective id.
func (e *Engine) Pending() []TrackedObjective {
	snap := e.catalog.Current()
	e.mu.Lock()
	defer e.mu.Unlock()
	return resolveAll(snap, sortedObjectives(e.pending))
}

// unsynced returns every task change the remote has not confirmed, queued
// or in flight. A queued entry is newer than an in-flight one.
func (e *Engine) unsynced(snap *catalog.Snapshot) []TrackedObjective {
	e.mu.Lock()
	defer e.mu.Unlock()
	return resolveAll(snap, e.unsyncedLocked())
}

func (e *Engine) unsyncedLocked() []TrackedObjective {
	merged := make(map[string]TrackedObjective, len(e.pending)+len(e.inflight))
	for id, o := range e.inflight {
		merged[id] = o
	}
	for id, o := range e.pending {
		merged[id] = o
	}
	return sortedObjectives(merged)
}

func resolveAll(snap *catalog.Snapshot, objs []TrackedObjective) []TrackedObjective {
	for i, o := range objs {
		objs[i] = resolveTarget(snap, o)
	}
	return objs
}

func sortedObjectives(m map[string]TrackedObjective) []TrackedObjective {
	out := make([]TrackedObjective, 0, len(m))
	for _, o := range m {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectiveID < out[j].ObjectiveID })
	return out
}

// Status reports the current sync state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		SyncEnabled: e.syncEnabled,
		Loaded:      e.loaded,
		LastRefresh: e.lastRefresh,
		Pending:     len(e.pending),
		LastError:   e.lastSyncErr,
	}
	if !e.lastRateLimited.IsZero() {
		st.CooldownUntil = e.lastRateLimited.Add(e.rateLimitCooldown)
	}
	return st
}

// LocalHideoutExtraCount returns the local count toward a hideout
// requirement.
func (e *Engine) LocalHideoutExtraCount(requirementID string) int {
	if requirementID == "" {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hideout[requirementID]
}

// CurrentTaskObjective returns the objective an increment of itemID would
// target.
func (e *Engine) CurrentTaskObjective(itemID string) (TrackedObjective, bool) {
	item, ok := e.catalog.Current().Item(itemID)
	if !ok {
		return TrackedObjective{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return TrackedObjective{}, false
	}
	return pickForDelta(taskCandidates(item, e.remoteSnap, e.pending), +1)
}

// CurrentHideoutRequirement returns the requirement an increment of itemID
// would target.
func (e *Engine) CurrentHideoutRequirement(itemID string) (TrackedObjective, bool) {
	snap := e.catalog.Current()
	e.mu.Lock()
	defer e.mu.Unlock()
	return pickForDelta(hideoutCandidates(snap, itemID, e.hideout), +1)
}

// writeObjectiveLocked stores obj's count in the overlay. Callers hold mu.
func (e *Engine) writeObjectiveLocked(obj TrackedObjective) {
	e.remoteSnap.objectives[obj.ObjectiveID] = objectiveProgress{
		Count:    obj.CurrentCount,
		Complete: obj.CurrentCount >= obj.RequiredCount,
	}
}

func (e *Engine) recordSyncError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		e.lastSyncErr = ""
		return
	}
	e.lastSyncErr = err.Error()
}
