// skyglyde-server serves the Sky-Glyde booking flow over HTTP. Clients
// create a session, drive it with events and stream in-flight telemetry
// over a WebSocket once the flight departs.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/yegors/skyglyde/internal/api"
	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/clock"
	"github.com/yegors/skyglyde/internal/config"
	"github.com/yegors/skyglyde/internal/groundcontrol"
	"github.com/yegors/skyglyde/internal/session"
	"github.com/yegors/skyglyde/internal/storage/sqlite"
	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, listenAddr string

	flagSet := pflag.NewFlagSet("skyglyde-server", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a TOML config file (default: built-in defaults)")
	flagSet.StringVar(&listenAddr, "listen", "", "listen address, overrides server.listen_addr")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Dependencies{
		GroundControl: groundcontrol.NewService(cfg.GroundControl, log),
	}
	controllerCfg := booking.ControllerConfig{Pricing: cfg.Pricing}

	if cfg.Storage.Enabled {
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		store, err := sqlite.NewBookingStorage(db, log)
		if err != nil {
			return err
		}
		controllerCfg.Submitter = store
		deps.Bookings = store
		log.Info("Booking ledger opened", logger.String("path", cfg.Storage.SQLitePath))
	} else {
		log.Warn("Storage disabled, confirmed bookings are not persisted")
	}

	clk := clock.Real()
	deps.Sessions = session.NewManager(ctx, session.Config{
		Controller:    controllerCfg,
		Simulator:     telemetry.NewSimulator(cfg.SimulatorConfig(), clk, log),
		IdleTimeout:   cfg.IdleTimeout(),
		SweepInterval: cfg.SweepInterval(),
		MaxSessions:   cfg.Sessions.MaxSessions,
	}, clk, log)
	deps.Sessions.Start()
	defer deps.Sessions.Stop()

	router := api.NewRouter(deps, cfg, log)
	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Sky-Glyde API listening", logger.String("addr", cfg.Server.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, failed := <-serveErr:
		if failed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
