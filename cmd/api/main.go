package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaign-platform/internal/audit"
	"campaign-platform/internal/auth"
	"campaign-platform/internal/calllog"
	"campaign-platform/internal/campaign"
	"campaign-platform/internal/config"
	"campaign-platform/internal/dialer"
	"campaign-platform/internal/httpapi"
	"campaign-platform/internal/testdial"
	"campaign-platform/pkg/logger"
	"campaign-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	// Call history and audit storage: Postgres when configured, in-memory
	// otherwise.
	var (
		callLogRepo calllog.Repository
		auditRepo   audit.Repository
	)
	if cfg.DB.Host != "" {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		callLogRepo = calllog.NewPostgresRepo(db)
		auditRepo = audit.NewPostgresRepo(db)
	} else {
		log.Warn("no postgres configured, using in-memory call history and audit")
		callLogRepo = calllog.NewMemoryRepo()
		auditRepo = audit.NewMemoryRepo()
	}

	// Draft store and session lease: Redis when configured.
	var (
		draftStore campaign.Store
		lease      testdial.Lease
	)
	if cfg.Redis.Host != "" {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		draftStore, err = campaign.NewRedisStore(rdb)
		if err != nil {
			log.Error("draft store init failed", "err", err)
			os.Exit(1)
		}
		lease = testdial.NewRedisLease(rdb, 0)
	} else {
		log.Warn("no redis configured, using in-memory draft store")
		draftStore = campaign.NewMemoryStore()
	}

	auditSvc := audit.NewService(auditRepo)
	campaignSvc := campaign.NewService(draftStore, auditSvc)

	sessionOpts := testdial.DefaultOptions()
	sessionOpts.DialTimeout = cfg.Dialer.Timeout
	sessions := testdial.NewManager(dialer.NewSimulated(cfg.Dialer.Latency), sessionOpts, lease)

	h := httpapi.Handlers{
		Auth:      authManager,
		Campaigns: campaignSvc,
		Sessions:  sessions,
		CallLogs:  calllog.NewService(callLogRepo),
		Audit:     auditSvc,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Dial requests block for the full simulated latency and may queue
		// behind the concurrency bound; give them room.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
