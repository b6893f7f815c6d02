package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/gold-savings/internal/config"
	"github.com/Dan9191/gold-savings/internal/handler"
	"github.com/Dan9191/gold-savings/internal/integrations/ratefeed"
	"github.com/Dan9191/gold-savings/internal/middleware"
	"github.com/Dan9191/gold-savings/internal/notify"
	"github.com/Dan9191/gold-savings/internal/repository"
	"github.com/Dan9191/gold-savings/internal/service"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	var strategies []notify.Strategy
	if cfg.SMTPEnabled() {
		strategies = append(strategies, notify.NewEmail(cfg))
	}
	strategies = append(strategies, notify.DatabaseStrategies(repo)...)
	notifier := notify.NewChain(logger, strategies...)
	feed := ratefeed.NewClient(cfg, logger)
	svc := service.NewService(repo, feed, notifier, logger, cfg)
	h := handler.NewHandler(svc, logger, cfg.HMACSecret)

	// Rate sync job
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.RateSyncSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := svc.SyncRates(ctx); err != nil {
			logger.Errorf("Scheduled rate sync failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("Invalid RATE_SYNC_SCHEDULE %q: %v", cfg.RateSyncSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	// Public routes
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/retailers/{retailerID}").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg, logger))
	authRouter.HandleFunc("/analytics", h.GetAnalytics).Methods("GET")
	authRouter.HandleFunc("/rates/current", h.CurrentRates).Methods("GET")
	authRouter.HandleFunc("/rates/sync", h.SyncRates).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
