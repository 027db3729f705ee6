package panelapp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CodeCommander07/flat-studios-sub002/internal/config"
	"github.com/CodeCommander07/flat-studios-sub002/internal/panel"
)

// App is the dashboard sync process. It holds no database connections; the
// staff API is its only upstream.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	syncer *panel.Syncer
}

func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	client, err := panel.NewClient(panel.Config{
		BaseURL: cfg.Panel.APIBase,
		Token:   cfg.Panel.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("init panel api client: %w", err)
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		syncer: panel.NewSyncer(client, logger),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("panel app started")

	interval := a.cfg.Panel.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	if err := a.syncer.Sync(ctx); err != nil {
		a.logger.Warn("initial fleet sync failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("panel app stopped")
			return nil
		case <-ticker.C:
			if err := a.syncer.Sync(ctx); err != nil {
				a.logger.Warn("fleet sync failed", zap.Error(err))
				continue
			}
			a.logger.Info("fleet sync completed", zap.Int("servers", len(a.syncer.Views())))
		}
	}
}

func (a *App) Syncer() *panel.Syncer {
	return a.syncer
}
