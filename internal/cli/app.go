package cli

import (
	"context"
	"fmt"

	"bysel/config"
	"bysel/internal/dashboard"
	"bysel/internal/render"
	"bysel/internal/repository"
	"bysel/internal/trading"
	"bysel/logger"
	"bysel/pkg/bysel"
	"bysel/pkg/storage/cache"

	"go.uber.org/zap"
)

// App is everything a command needs once configuration is loaded.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Repo      *repository.Repository
	Dashboard *dashboard.Model
	Markdown  *render.Markdown

	closers []func() error
}

// Factory builds the App for a config path. debug forces debug logging.
type Factory func(ctx context.Context, cfgPath string, debug bool) (*App, error)

// NewApp loads configuration and wires the logger, REST client, cache and
// preferences.
func NewApp(ctx context.Context, cfgPath string, debug bool) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if err := config.ResolveToken(ctx, cfg, nil); err != nil {
		log.Warn("api token unavailable", zap.Error(err))
	}

	store, err := cache.Open(cfg.Cache)
	if err != nil {
		log.Warn("local cache unavailable, continuing without it", zap.Error(err))
		store = nil
	}

	board, err := dashboard.Open(cfg.Prefs.Dir)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	api := bysel.NewRESTClient(bysel.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Retries: cfg.API.Retries,
		UserID:  cfg.API.UserID,
		Token:   cfg.API.Token,
	})

	md, err := render.NewMarkdown("", 100)
	if err != nil {
		log.Debug("markdown rendering disabled", zap.Error(err))
	}

	app := &App{
		Config:    cfg,
		Logger:    log,
		Repo:      repository.New(api, store, log),
		Dashboard: board,
		Markdown:  md,
	}
	if store != nil {
		app.closers = append(app.closers, store.Close)
	}
	app.closers = append(app.closers, func() error {
		_ = log.Sync()
		return nil
	})
	return app, nil
}

// AddCloser registers fn to run on Close.
func (a *App) AddCloser(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in registration order.
func (a *App) Close() error {
	var first error
	for _, fn := range a.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// Model builds a trading model over the app's repository.
func (a *App) Model() *trading.Model {
	return trading.New(a.Repo, trading.Options{
		Symbols:  a.Config.Refresh.Symbols,
		Interval: a.Config.Refresh.Interval,
		Logger:   a.Logger,
	})
}
