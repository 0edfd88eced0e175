package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cloudmesa/console-backend-go/internal/api"
	"github.com/cloudmesa/console-backend-go/internal/config"
	"github.com/cloudmesa/console-backend-go/internal/core/alerts"
	"github.com/cloudmesa/console-backend-go/internal/core/autoscaling"
	"github.com/cloudmesa/console-backend-go/internal/core/controls"
	"github.com/cloudmesa/console-backend-go/internal/core/dashboard"
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/core/refresh"
	"github.com/cloudmesa/console-backend-go/internal/database"
	"github.com/cloudmesa/console-backend-go/internal/websocket"
	"github.com/cloudmesa/console-backend-go/pkg/logger"
	"github.com/cloudmesa/console-backend-go/pkg/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.WithField("version", version.String()).Info("Console backend starting up")

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	repos := database.NewRepositories(db)

	if err := database.Seed(context.Background(), repos, cfg.Database.SeedPath, log); err != nil {
		log.WithError(err).Warn("Failed to seed dataset")
	}

	seed := cfg.Metrics.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := metrics.NewGenerator(rand.New(rand.NewSource(seed)))
	provider := metrics.NewSimulatedProvider(gen,
		time.Duration(cfg.Metrics.MinLatencyMs)*time.Millisecond,
		time.Duration(cfg.Metrics.MaxLatencyMs)*time.Millisecond,
		rand.New(rand.NewSource(seed+1)), log)

	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	scheduler := refresh.NewScheduler(log)
	dash := dashboard.NewService(provider, scheduler, wsHub, log)
	defer dash.Stop()

	prefStore := database.NewPreferenceStore(repos.Preference)
	controllers := map[metrics.Kind]*controls.Controller{
		metrics.KindVM: controls.NewController(metrics.KindVM, prefStore, controls.Overrides{}, log),
		metrics.KindLB: controls.NewController(metrics.KindLB, prefStore, controls.Overrides{}, log),
	}
	for _, ctrl := range controllers {
		dash.Bind(ctrl)
		// Resume auto-refresh for a persisted resource selection.
		if active := ctrl.Active(); active.Resource != "" {
			dash.Apply(ctrl.Kind(), active)
		}
	}

	alertSvc := alerts.NewService(repos.Alert, repos.Triggered, prefStore, log)
	asgSvc := autoscaling.NewService(repos.AutoScaling, log)

	var sweepCron *cron.Cron
	if cfg.Alerting.Enabled {
		sweeper := alerts.NewSweeper(repos.Alert, repos.Triggered, gen,
			cfg.Alerting.WindowMinutes, rand.New(rand.NewSource(seed+2)), log,
			wsHub.BroadcastTriggeredAlert)

		sweepCron = cron.New()
		if _, err := sweepCron.AddFunc(cfg.Alerting.EvaluationSpec, func() {
			sweeper.Run(context.Background())
		}); err != nil {
			log.Fatal("Invalid alert evaluation spec: ", err)
		}
		if _, err := sweepCron.AddFunc("@daily", func() {
			sweeper.Prune(context.Background(), cfg.Alerting.RetentionDays)
		}); err != nil {
			log.Fatal("Failed to schedule history pruning: ", err)
		}
		sweepCron.Start()
		defer sweepCron.Stop()
		log.WithField("spec", cfg.Alerting.EvaluationSpec).Info("Alert evaluation sweep scheduled")
	}

	router := api.NewRouter(cfg, log, dash, controllers, alertSvc, asgSvc, wsHub)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Starting console backend on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Info("Server exited")
}
