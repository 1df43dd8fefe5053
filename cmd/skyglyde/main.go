// skyglyde runs the Sky-Glyde booking flow in the terminal, from
// choosing a destination to the live in-flight dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/yegors/skyglyde/internal/booking"
	"github.com/yegors/skyglyde/internal/clock"
	"github.com/yegors/skyglyde/internal/config"
	"github.com/yegors/skyglyde/internal/groundcontrol"
	"github.com/yegors/skyglyde/internal/session"
	"github.com/yegors/skyglyde/internal/storage/sqlite"
	"github.com/yegors/skyglyde/internal/telemetry"
	"github.com/yegors/skyglyde/internal/tui"
	"github.com/yegors/skyglyde/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, logFile, receiptDir, dbPath string
	var noStorage bool

	flagSet := pflag.NewFlagSet("skyglyde", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a TOML config file (default: built-in defaults)")
	flagSet.StringVar(&logFile, "log-file", "skyglyde.log", "write logs to this file, the terminal belongs to the UI")
	flagSet.StringVar(&receiptDir, "receipt-dir", "receipts", "save a PDF receipt per confirmed booking here (empty disables)")
	flagSet.StringVar(&dbPath, "db", "", "booking ledger path, overrides storage.sqlite_path")
	flagSet.BoolVar(&noStorage, "no-storage", false, "do not persist confirmed bookings")
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
	if dbPath != "" {
		cfg.Storage.SQLitePath = dbPath
	}
	if noStorage {
		cfg.Storage.Enabled = false
	}
	cfg.Logging.Output = logFile
	cfg.Logging.Format = "json"

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

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
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clock.Real()
	sessions := session.NewManager(ctx, session.Config{
		Controller:  controllerCfg,
		Simulator:   telemetry.NewSimulator(cfg.SimulatorConfig(), clk, log),
		MaxSessions: 1,
	}, clk, log)
	defer sessions.Stop()

	s, err := sessions.Create()
	if err != nil {
		return err
	}
	log.Info("Booking flow started", logger.String("session_id", s.ID))

	model := tui.NewModel(tui.Options{
		Session:       s,
		GroundControl: groundcontrol.NewService(cfg.GroundControl, log),
		ReceiptDir:    receiptDir,
		Logger:        log,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
