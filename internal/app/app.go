package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/raidtrack/internal/catalog"
	"github.com/five82/raidtrack/internal/config"
	"github.com/five82/raidtrack/internal/logging"
	"github.com/five82/raidtrack/internal/prefs"
	"github.com/five82/raidtrack/internal/progress"
	"github.com/five82/raidtrack/internal/state"
	"github.com/five82/raidtrack/internal/tracker"
	"github.com/five82/raidtrack/internal/ui"
)

// Options configure the raidtrack application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/raidtrack/prefs.toml
}

type components struct {
	cfg     config.Config
	logger  *zap.Logger
	catalog *catalog.Source
	engine  *progress.Engine
}

func setup(opts Options) (*components, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	store, err := state.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init state store: %w", err)
	}

	var remote tracker.ProgressService
	if cfg.SyncEnabled() {
		client, err := tracker.NewClient(cfg.TrackerBaseURL, cfg.TrackerAPIKey)
		if err != nil {
			return nil, fmt.Errorf("init tracker client: %w", err)
		}
		remote = client
	} else {
		logger.Info("tracker sync disabled", zap.Bool("use_tracker_api", cfg.UseTrackerAPI))
	}

	src := catalog.NewSource(cfg.CatalogPath, logger.Named("catalog"))
	engine := progress.New(progress.Options{
		Catalog:            src,
		Remote:             remote,
		Store:              store,
		Logger:             logger.Named("progress"),
		SyncEnabled:        cfg.SyncEnabled(),
		StrictDecrement:    cfg.StrictDecrement,
		FlushInterval:      cfg.FlushInterval,
		RefreshInterval:    cfg.RefreshInterval,
		RefreshMinInterval: cfg.RefreshMinInterval,
		RateLimitCooldown:  cfg.RateLimitCooldown,
	})
	return &components{cfg: cfg, logger: logger, catalog: src, engine: engine}, nil
}

// Run boots the TUI and the sync coordinator until the user quits or the
// context is cancelled. Local state is saved on the way out.
func Run(ctx context.Context, opts Options) error {
	c, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = c.logger.Sync() }()

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.catalog.Watch(gctx); err != nil {
			c.logger.Warn("catalog watch stopped", zap.Error(err))
		}
		return nil
	})
	if err := c.engine.Start(gctx); err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("start sync: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	uiErr := ui.Run(ui.Options{
		Context:      gctx,
		Tracker:      c.engine,
		Catalog:      c.catalog,
		LogPath:      c.cfg.LogPath(),
		PrefsPath:    prefsPath,
		ThemeName:    userPrefs.Theme,
		ShowActivity: userPrefs.ShowActivity,
	})

	cancel()
	c.engine.Stop()
	_ = g.Wait()

	if uiErr != nil && !(errors.Is(uiErr, tea.ErrProgramKilled) && parent.Err() != nil) {
		return fmt.Errorf("run ui: %w", uiErr)
	}
	return nil
}

// FlushOnce pushes every queued change a single time without starting the
// UI, for use from scripts.
func FlushOnce(ctx context.Context, opts Options) (progress.FlushReport, error) {
	c, err := setup(opts)
	if err != nil {
		return progress.FlushReport{}, err
	}
	defer func() { _ = c.logger.Sync() }()

	if !c.cfg.SyncEnabled() {
		return progress.FlushReport{}, progress.ErrSyncDisabled
	}
	report := c.engine.Flush(ctx)
	c.logger.Info("one-shot flush finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report, nil
}
