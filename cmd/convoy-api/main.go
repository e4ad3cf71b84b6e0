// README: Composition root: config, infra, module wiring, HTTP server, sweep.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"convoy/internal/config"
	convoyhttp "convoy/internal/http"
	"convoy/internal/http/handlers"
	"convoy/internal/infra"
	"convoy/internal/maps"
	"convoy/internal/modules/audit"
	"convoy/internal/modules/fleet"
	"convoy/internal/modules/ledger"
	"convoy/internal/modules/maintenance"
	"convoy/internal/modules/safety"
	"convoy/internal/modules/telemetry"
	"convoy/internal/modules/trip"
	"convoy/internal/modules/waypoint"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	rdb := infra.NewRedis(cfg.Redis.Addr)
	defer rdb.Close()

	auditStore := audit.NewStore(pool, log)
	fleetStore := fleet.NewStore(pool)
	fleetSvc := fleet.NewService(fleetStore, auditStore, log)

	safetySvc := safety.NewService(safety.NewStore(pool))

	var estimator trip.DistanceEstimator
	if cfg.Maps.APIKey != "" {
		route, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.WithError(err).Fatal("init maps client")
		}
		estimator = route
	} else {
		log.Warn("no maps api key configured; trips require an explicit estimated distance")
	}

	tripSvc := trip.NewService(trip.NewStore(pool), fleetStore, safetySvc, estimator, auditStore, log)
	waypointSvc := waypoint.NewService(waypoint.NewStore(pool), auditStore)
	ledgerSvc := ledger.NewService(ledger.NewStore(pool), auditStore)
	maintenanceSvc := maintenance.NewService(maintenance.NewStore(pool), auditStore)
	telemetrySvc := telemetry.NewService(telemetry.NewStore(pool, rdb), log)

	go fleetSvc.RunLicenseSweep(ctx,
		time.Duration(cfg.Sweep.TickMinutes)*time.Minute,
		time.Duration(cfg.Sweep.LicenseWarnHours)*time.Hour)

	router := convoyhttp.NewRouter(convoyhttp.RouterConfig{
		Logger:      log,
		JWTSecret:   cfg.Auth.JWTSecret,
		Pool:        pool,
		Trips:       handlers.NewTripHandler(tripSvc, ledgerSvc),
		Fleet:       handlers.NewFleetHandler(fleetSvc, safetySvc, auditStore),
		Waypoints:   handlers.NewWaypointHandler(waypointSvc),
		Maintenance: handlers.NewMaintenanceHandler(maintenanceSvc),
		Ledger:      handlers.NewLedgerHandler(ledgerSvc),
		Telemetry:   handlers.NewTelemetryHandler(telemetrySvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
