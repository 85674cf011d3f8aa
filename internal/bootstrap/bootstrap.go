// Package bootstrap assembles the server: config, logger, stores, queue,
// hub, services, and the HTTP surface, in dependency order.
package bootstrap

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/worklane/worklane/internal/pkg/notify"
	"github.com/worklane/worklane/internal/pkg/queue"
	"github.com/worklane/worklane/internal/server/conf"
	"github.com/worklane/worklane/internal/server/repo"
	"github.com/worklane/worklane/internal/server/router"
	"github.com/worklane/worklane/internal/server/service"
	"github.com/worklane/worklane/pkg/cache"
	"github.com/worklane/worklane/pkg/database"
	"github.com/worklane/worklane/pkg/log"
	"github.com/worklane/worklane/pkg/ws"
)

type App struct {
	cfg conf.AppConfig

	fiber       *fiber.App
	redis       *redis.Client
	sweeper     *service.Sweeper
	queueServer *queue.Server
}

// New wires the whole server. Redis is optional: without it the cache
// degrades to pass-through, sessions are token-only, and side effects run
// in-process instead of on the asynq queue. MySQL is required.
func New(cfg conf.AppConfig) (*App, error) {
	log.MustInit(&cfg.Log)

	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		var err error
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			log.Warnw("redis unavailable, running degraded", "err", err)
			redisClient = nil
		}
	}

	gormDB, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db := database.NewGormDB(gormDB)

	var c cache.ICache
	if redisClient != nil {
		c = cache.NewRedisCache(redisClient)
	}

	requestRepo := repo.NewAdminRequestRepo(db)
	userRepo := repo.NewUserRepo(db, c)
	orgRepo := repo.NewOrganizationRepo(db, c)
	notificationRepo := repo.NewNotificationRepo(db)
	leaveRepo := repo.NewLeaveRepo(db, c)

	hub := ws.NewHub()
	mailer := notify.NewEmailChannel(cfg.Smtp)

	adminCountService := service.NewAdminCountService(userRepo, orgRepo)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	invalidator := service.NewCacheInvalidator(c)

	registry := queue.NewRegistry()
	service.NewEffects(adminCountService, invalidator, notificationService, mailer).Register(registry)

	var (
		dispatcher  queue.Dispatcher
		queueServer *queue.Server
	)
	if redisClient != nil {
		dispatcher = queue.NewAsynqDispatcher(redisClient, cfg.Queue)
		queueServer = queue.NewServer(redisClient, registry, cfg.Queue)
	} else {
		dispatcher = queue.NewInline(registry)
	}

	requestService := service.NewAdminRequestService(
		requestRepo, userRepo, orgRepo, adminCountService, dispatcher, hub, cfg.Http.BaseURL)
	approvalService := service.NewApprovalService(requestRepo, userRepo, dispatcher, hub)
	authService := service.NewAuthService(userRepo, c, cfg.Http.Auth)
	userService := service.NewUserService(userRepo)
	leaveService := service.NewLeaveService(leaveRepo)
	orgService := service.NewOrgService(orgRepo)

	rt := router.NewRouter(&cfg.Http, redisClient, hub,
		authService, userService, requestService, approvalService, notificationService, leaveService, orgService)

	return &App{
		cfg:         cfg,
		fiber:       rt.App(),
		redis:       redisClient,
		sweeper:     service.NewSweeper(requestRepo),
		queueServer: queueServer,
	}, nil
}

// Run starts the queue consumer, the expiry sweeper, and the HTTP listener,
// then blocks until SIGINT or SIGTERM and shuts everything down in reverse.
func (a *App) Run() error {
	if a.queueServer != nil {
		if err := a.queueServer.Start(); err != nil {
			return fmt.Errorf("start queue server: %w", err)
		}
	}
	if err := a.sweeper.Start(); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Http.Host, a.cfg.Http.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "addr", addr)
		errCh <- a.fiber.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.shutdown()
		return err
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
		a.shutdown()
		return nil
	}
}

func (a *App) shutdown() {
	timeout := time.Duration(a.cfg.Http.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := a.fiber.ShutdownWithTimeout(timeout); err != nil {
		log.Errorw("http shutdown failed", "err", err)
	}
	a.sweeper.Stop()
	if a.queueServer != nil {
		a.queueServer.Shutdown()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	log.Sync()
}
