package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/minutemind/internal/config"
	"github.com/sadopc/minutemind/internal/dashboard"
	"github.com/sadopc/minutemind/internal/observability"
	"github.com/sadopc/minutemind/internal/store"
	"github.com/sadopc/minutemind/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	logFile, err := observability.OpenLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := observability.NewLogger(logFile, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error("metrics server stopped", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
	}

	// Settings always live in the local database, whichever backend holds
	// the entries and tasks.
	local, err := store.NewLocal(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer local.Close()

	backend, err := openBackend(ctx, cfg, local)
	if err != nil {
		return err
	}
	if remote, ok := backend.(*store.RemoteStore); ok {
		defer remote.Close()
	}
	log.Info("starting", "backend", cfg.Backend, "db", cfg.DBPath, "owner", cfg.OwnerID)

	ctrl := dashboard.New(store.Instrument(backend, metrics), cfg.OwnerID, log, metrics, time.Now)
	tasks := store.InstrumentTasks(backend, metrics)
	p := tea.NewProgram(tui.NewApp(ctrl, local, tasks, cfg.ExportDir), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, local *store.LocalStore) (store.Backend, error) {
	if cfg.Backend != store.BackendRemote {
		return local, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	remote, err := store.NewRemote(connectCtx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	if err := remote.Migrate(connectCtx); err != nil {
		remote.Close()
		return nil, err
	}
	return remote, nil
}
