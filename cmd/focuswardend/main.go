package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/SoarinFerret/FocusWarden/internal/alarm"
	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/inhibit"
	"github.com/SoarinFerret/FocusWarden/internal/ipc"
	"github.com/SoarinFerret/FocusWarden/internal/journal"
	"github.com/SoarinFerret/FocusWarden/internal/loginctl"
	"github.com/SoarinFerret/FocusWarden/internal/metrics"
	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/state"
	"github.com/SoarinFerret/FocusWarden/internal/systemd"
)

const appName = "FocusWarden"

func main() {
	// check for argument to determine config location
	configPath := config.DefaultPath()
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfigFromFile(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg.Logging)
	logger.Info().Str("path", configPath).Msg("Using config file")

	if err := run(cfg, configPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("focuswardend failed")
	}
	logger.Info().Msg("Shutdown complete")
}

func run(cfg config.Config, configPath string, logger zerolog.Logger) error {
	stateMgr, err := state.NewManager(cfg.Storage.StateFile, cfg.Timer.Settings(), pomodoro.RealClock{}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize state manager: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.JournalFile), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	store, err := journal.Open(cfg.Storage.JournalFile)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer store.Close()

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	notifier := buildNotifier(alarm.NewDesktopNotifier(conn, appName), os.Stdout)

	eng := engine.NewEngine(stateMgr, cfg, engine.Deps{
		Notifier:   notifier,
		Inhibitor:  inhibit.New(conn, appName),
		Journal:    store,
		ConfigPath: configPath,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if cfg.Metrics.Listen != "" {
		srv := metrics.NewServer(cfg.Metrics.Listen, logger)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer srv.Stop()
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := eng.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Engine error")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		opts := loginctl.Options{
			OnSleep: *cfg.Idle.PauseOnSleep,
			OnLock:  *cfg.Idle.PauseOnLock,
		}
		if err := loginctl.Watch(ctx, eng, opts, logger); err != nil {
			logger.Warn().Err(err).Msg("logind watcher stopped")
		}
	}()

	watcher, err := config.NewWatcher(configPath, eng.ApplyConfig, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Config hot reload disabled")
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("Config watcher error")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		systemd.Watchdog(ctx, logger)
	}()

	if err := ipc.Register(conn, eng); err != nil {
		cancel()
		wg.Wait()
		return err
	}
	logger.Info().Str("name", ipc.ServiceName).Msg("Serving on the session bus")
	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify systemd")
	}

	<-ctx.Done()
	_ = systemd.NotifyStopping()
	_, _ = conn.ReleaseName(ipc.ServiceName)
	wg.Wait()
	return nil
}

// buildNotifier adds the terminal bell only when out is a terminal, so a
// daemon under systemd does not write BEL into the journal.
func buildNotifier(desktop alarm.Notifier, out *os.File) alarm.Multi {
	notifier := alarm.Multi{desktop}
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		notifier = append(notifier, alarm.Bell{W: out})
	}
	return notifier
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
