package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/CodeCommander07/flat-studios-sub002/internal/app/panelapp"
	"github.com/CodeCommander07/flat-studios-sub002/internal/config"
	"github.com/CodeCommander07/flat-studios-sub002/internal/infra/logger"
)

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := panelapp.New(cfg, log)
	if err != nil {
		log.Fatal("create panel app", zap.Error(err))
	}

	if err := app.Run(ctx); err != nil {
		log.Fatal("panel app failed", zap.Error(err))
	}
}
