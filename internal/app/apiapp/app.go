package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/CodeCommander07/flat-studios-sub002/internal/config"
	robloxinfra "github.com/CodeCommander07/flat-studios-sub002/internal/infra/roblox"
	s3infra "github.com/CodeCommander07/flat-studios-sub002/internal/infra/s3"
	"github.com/CodeCommander07/flat-studios-sub002/internal/jobs/redeliver"
	"github.com/CodeCommander07/flat-studios-sub002/internal/jobs/sweeper"
	pgrepo "github.com/CodeCommander07/flat-studios-sub002/internal/repo/postgres"
	redrepo "github.com/CodeCommander07/flat-studios-sub002/internal/repo/redis"
	dispatchsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/dispatch"
	enforcesvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/enforcement"
	evidencesvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/evidence"
	ingestsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/ingest"
	profilesvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/profiles"
	ratesvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler

	sweeperJob   *sweeper.Job
	redeliverJob *redeliver.Job
	jobsCancel   context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	profileCacheRepo := redrepo.NewProfileCacheRepo(redisClient)

	serverRepo := pgrepo.NewServerRepo(pool)
	chatRepo := pgrepo.NewChatRepo(pool)
	rosterRepo := pgrepo.NewRosterRepo(pool)
	commandRepo := pgrepo.NewCommandRepo(pool)
	auditRepo := pgrepo.NewAuditRepo(pool)
	outboxRepo := pgrepo.NewOutboxRepo(pool)
	ledgerRepo := pgrepo.NewModerationLogRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	robloxClient, err := robloxinfra.NewClient(robloxinfra.Config{
		UsersURL:      cfg.Roblox.UsersURL,
		ThumbnailsURL: cfg.Roblox.ThumbnailsURL,
		GroupsURL:     cfg.Roblox.GroupsURL,
		OpenCloudURL:  cfg.Roblox.OpenCloudURL,
		APIKey:        cfg.Roblox.APIKey,
		Timeout:       cfg.Roblox.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create roblox client: %w", err)
	}

	chatLimiter := ratesvc.NewLimiter(rateRepo, cfg.Ingest.ChatPerMinute)
	ingestService := ingestsvc.NewService(serverRepo, chatRepo, rosterRepo, auditRepo, outboxRepo, chatLimiter, ingestsvc.Config{
		ChatWindow: cfg.Ingest.ChatWindow,
	})
	if s3Client != nil {
		ingestService.AttachSnapshotter(evidencesvc.NewService(s3Client, cfg.S3.Bucket))
	}

	dispatchService := dispatchsvc.NewService(commandRepo, chatRepo, auditRepo, dispatchsvc.Config{
		DeliveryTTL: cfg.Dispatch.DeliveryTTL,
		ChatWindow:  cfg.Ingest.ChatWindow,
	})
	enforcementService := enforcesvc.NewService(robloxClient, ledgerRepo, enforcesvc.Config{
		UniverseID: cfg.Roblox.UniverseID,
	})
	dispatchService.AttachRecorder(enforcementService)
	profileService := profilesvc.NewService(profileCacheRepo, robloxClient, log, profilesvc.Config{
		TTL:     cfg.Roblox.ProfileTTL,
		GroupID: cfg.Roblox.GroupID,
	})

	RegisterRoutes(r, Dependencies{
		IngestService:      ingestService,
		DispatchService:    dispatchService,
		EnforcementService: enforcementService,
		ProfileService:     profileService,
		Logger:             log,
		Config:             cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:          cfg,
		logger:       log,
		server:       server,
		postgres:     pool,
		redis:        redisClient,
		s3:           s3Client,
		httpRouter:   r,
		sweeperJob:   sweeper.New(serverRepo, cfg.Retention.MaxAge, cfg.Retention.FlaggedMaxAge, log),
		redeliverJob: redeliver.New(dispatchService, log),
	}, nil
}

func (a *App) Run() error {
	jobsCtx, cancel := context.WithCancel(context.Background())
	a.jobsCancel = cancel
	go a.runJobLoop(jobsCtx, "retention sweep", a.cfg.Retention.SweepInterval, a.sweeperJob.Run)
	go a.runJobLoop(jobsCtx, "command redelivery", a.cfg.Dispatch.RequeueInterval, a.redeliverJob.Run)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) runJobLoop(ctx context.Context, name string, interval time.Duration, run func(context.Context) error) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := run(ctx); err != nil {
				a.logger.Warn("background job failed", zap.String("job", name), zap.Error(err))
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.jobsCancel != nil {
		a.jobsCancel()
	}
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
