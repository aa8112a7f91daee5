package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"repairdesk/config"
	"repairdesk/internal/auth"
	"repairdesk/internal/cache"
	"repairdesk/internal/db"
	"repairdesk/internal/health"
	"repairdesk/internal/logs"
	"repairdesk/internal/messaging"
	"repairdesk/internal/metrics"
	"repairdesk/internal/middleware"
	"repairdesk/internal/repair"
	"repairdesk/internal/repairctl"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	redis      *redis.Client
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) error {
	a.cfg = cfg

	/* 1) Логи */
	if err := logs.Init(logs.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}); err != nil {
		return err
	}
	log := logs.Logger

	/* 2) DB (опционально) */
	if drv := cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("db open failed: %w", err)
		}
		if err := db.Migrate(d); err != nil {
			return fmt.Errorf("db migrate failed: %w", err)
		}
		a.db = d
	} else {
		log.Warn("database.driver is empty: using in-memory store")
	}

	/* 3) Redis-кэш снапшотов (опционально) */
	rc, err := cache.Open(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	a.redis = rc

	/* 4) Сообщения клиентам */
	var msgr messaging.Messenger = messaging.Noop{}
	if cfg.Messaging.Provider == "greenapi" {
		g, err := messaging.NewGreenAPI(messaging.GreenAPIOptions{
			BaseURL:     cfg.Messaging.APIURL,
			InstanceID:  cfg.Messaging.InstanceID,
			Token:       cfg.Messaging.APIToken,
			CountryCode: cfg.Messaging.CountryCode,
			Timeout:     cfg.Messaging.Timeout,
		})
		if err != nil {
			return err
		}
		msgr = g
	}

	/* 5) Сервис ремонта */
	deps := newBackends(a.db).deps()
	deps.Messenger = msgr
	opts := []repair.Option{repair.WithSignature(cfg.Messaging.Signature), repair.WithLogger(log)}
	var snapshots *cache.SnapshotCache
	if a.redis != nil {
		snapshots = cache.NewSnapshotCache(a.redis, cfg.Redis.TTL)
		opts = append(opts, repair.WithCache(snapshots))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, repair.WithObserver(metrics.NewRecorder()))
	}
	svc, err := repair.New(deps, opts...)
	if err != nil {
		return err
	}

	/* 6) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.AccessLog,
	)

	var checks []health.Check
	if a.db != nil {
		checks = append(checks, health.Check{Name: "database", Ping: db.Ping(a.db)})
	}
	if snapshots != nil {
		checks = append(checks, health.Check{Name: "redis", Ping: snapshots.Ping})
	}
	health.RegisterRoutes(a.Router, checks...)
	if cfg.Metrics.Enabled {
		a.Router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	authMW := auth.NewMiddleware([]byte(cfg.Auth.JWTSecret))
	repairctl.RegisterRoutes(a.Router, repairctl.NewHandler(svc), authMW.Wrap, middleware.CaptureUser)

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := rt.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Debugf("route: %-6v %s", methods, path)
		return nil
	})
	return nil
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-a.ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	return nil
}
