package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/oralable/oralable/internal/auth"
	"github.com/oralable/oralable/internal/config"
	"github.com/oralable/oralable/internal/database"
	"github.com/oralable/oralable/internal/database/repository"
	"github.com/oralable/oralable/internal/logging"
	"github.com/oralable/oralable/internal/prefs"
	"github.com/oralable/oralable/internal/sensor"
	"github.com/oralable/oralable/internal/sensor/sim"
	"github.com/oralable/oralable/internal/subscription"
	"github.com/oralable/oralable/internal/tui"
)

// version is stamped by the release build.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "oralable",
		Short:        "Companion app for the Oralable PPG oral health sensor",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("oralable", version)
		},
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}

	if err := database.RunMigrations(cfg.Database.Path, "internal/database/migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	// repositories
	sessionRepo := repository.NewSessionRepo(db)
	subRepo := repository.NewSubscriptionRepo(db)
	deviceRepo := repository.NewDeviceRepo(db)

	if err := subRepo.EnsureDefault(ctx); err != nil {
		return fmt.Errorf("seed subscription: %w", err)
	}

	// restore remembered sensors exported by a previous install
	if devices, err := prefs.LoadDevices(); err == nil && len(devices) > 0 {
		for _, d := range devices {
			_ = deviceRepo.Upsert(ctx, d)
		}
	}

	// the TUI owns the terminal, so structured logs go to a file
	logger, closeLog := fileLogger(cfg.Database.Path)
	defer closeLog()

	accountID := repository.AnonymousAccountID
	authMgr, err := auth.NewManager(ctx, sessionRepo, auth.SecretsTokenStore{}, logger)
	if err != nil {
		return fmt.Errorf("auth manager: %w", err)
	}
	if st := authMgr.State(); st.Authenticated {
		accountID = st.UserID
	}

	subMgr, err := subscription.NewManager(ctx, subRepo, accountID, logger)
	if err != nil {
		return fmt.Errorf("subscription manager: %w", err)
	}

	transport, err := buildTransport(cfg)
	if err != nil {
		return err
	}
	devMgr := sensor.NewManager(ctx, transport, deviceRepo, cfg.Device.Name, logger)
	defer devMgr.Disconnect()

	app := tui.New(ctx, cfg, tui.Managers{
		Auth:         authMgr,
		Subscription: subMgr,
		Device:       devMgr,
	}, version)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	// export remembered sensors for the next install
	if devices, err := deviceRepo.List(ctx); err == nil {
		_ = prefs.SaveDevices(devices)
	}
	return nil
}

func buildTransport(cfg config.Config) (sensor.Transport, error) {
	switch cfg.Device.Transport {
	case "", "sim":
		return sim.New(cfg.Device.Name), nil
	default:
		return nil, fmt.Errorf("unknown device transport %q", cfg.Device.Transport)
	}
}

func fileLogger(dbPath string) (logging.Logger, func()) {
	path := filepath.Join(filepath.Dir(dbPath), "oralable.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("warn: log file unavailable: %v", err)
		return logging.Nop{}, func() {}
	}
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(f, nil)))
	return l, func() { _ = f.Close() }
}
