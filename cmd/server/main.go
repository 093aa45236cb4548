// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/attestation-tracker/internal/apiclient"
	"github.com/unclebandit/attestation-tracker/internal/config"
	"github.com/unclebandit/attestation-tracker/internal/controller"
	"github.com/unclebandit/attestation-tracker/internal/db"
	"github.com/unclebandit/attestation-tracker/internal/handler"
	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/middleware"
	"github.com/unclebandit/attestation-tracker/internal/prefs"
	"github.com/unclebandit/attestation-tracker/internal/queue"
	"github.com/unclebandit/attestation-tracker/internal/repository"
	"github.com/unclebandit/attestation-tracker/internal/service"
)

func main() {
	cfg, envLoaded := config.Load()
	logger.Init(cfg.LogLevel)
	if !envLoaded {
		logger.Log.Info("No .env file found, relying on OS environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Action log
	var actionRepo repository.ActionLogRepositoryInterface
	var conn *sql.DB
	if cfg.ActionLogEnabled() {
		var err error
		conn, err = db.Open(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to open action log database")
		}
		defer conn.Close()
		actionRepo = &repository.ActionLogRepository{DB: conn}
	}

	// Action events go to RabbitMQ when configured, otherwise stay in process.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		aq, err := queue.DialAMQP(cfg.AMQPURL)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer aq.Close()
		q = aq
	} else {
		mq := queue.NewInMemoryQueue()
		if actionRepo != nil {
			if err := queue.StartActionLogSubscriber(mq, cfg.ActionsQueue, actionRepo); err != nil {
				logger.Log.WithError(err).Fatal("Failed to subscribe action log")
			}
		}
		q = mq
	}

	var store prefs.Store = prefs.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs := prefs.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rs.Ping(ctx); err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, keeping preferences in memory")
			rs.Close()
		} else {
			defer rs.Close()
			store = rs
		}
	}

	api := apiclient.New(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout)

	registry := service.NewRegistry(ctx, api)
	registry.Queue = q
	registry.Topic = cfg.ActionsQueue
	registry.Prefs = store
	registry.RefreshInterval = cfg.RefreshInterval
	defer registry.Close()

	dashboardController := &controller.DashboardController{Dashboards: registry}
	actionLogHandler := handler.NewActionLogHandler(actionRepo)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: routes(dashboardController, actionLogHandler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.WithField("port", cfg.ServerPort).Info("Server running")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.WithError(err).Fatal("Server failed")
	}
}

func routes(dc *controller.DashboardController, ah *handler.ActionLogHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recovery)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity)
		r.Use(middleware.RequireDashboardRole)
		r.Route("/campaigns/{id}", func(r chi.Router) {
			dc.Routes(r)
			r.Get("/actions", ah.ListActionsHandler)
		})
	})
	return r
}
