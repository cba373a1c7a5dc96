package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/trestle/internal/bot"
	"github.com/zulandar/trestle/internal/config"
	"github.com/zulandar/trestle/internal/dashboard"
	"github.com/zulandar/trestle/internal/db"
	"github.com/zulandar/trestle/internal/rolesync"
	"github.com/zulandar/trestle/internal/store"
)

func newStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the Trestle bot",
		Long:  "Connects to Discord and the database, registers slash commands, and serves the feedback contract lifecycle until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "trestle.yaml", "path to Trestle config file")
	return cmd
}

func runStart(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if err := db.SeedSettings(gormDB); err != nil {
		return err
	}

	var notifier rolesync.Notifier
	if cfg.Alerts.SlackWebhookURL != "" {
		notifier, err = rolesync.NewSlackNotifier(cfg.Alerts.SlackWebhookURL)
		if err != nil {
			return err
		}
	}

	b, err := bot.New(bot.Opts{
		Token:        cfg.Discord.Token,
		GuildID:      cfg.Discord.GuildID,
		Users:        store.NewUsers(gormDB),
		Threads:      store.NewThreads(gormDB),
		ThreadUsers:  store.NewThreadUsers(gormDB),
		Settings:     store.NewSettings(gormDB),
		SyncReports:  store.NewSyncReports(gormDB),
		Notifier:     notifier,
		RulesTimeout: time.Duration(cfg.Contract.RulesTimeoutSec) * time.Second,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		return err
	}
	defer b.Close()
	fmt.Fprintln(out, "Trestle is running. Press Ctrl+C to exit.")

	if cfg.Rolesync.Enabled {
		scheduler, err := rolesync.NewScheduler(b.Syncer(), cfg.Rolesync.Cron)
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	if cfg.Dashboard.Enabled {
		go func() {
			err := dashboard.Start(ctx, dashboard.StartOpts{DB: gormDB, Addr: cfg.Dashboard.Addr})
			if err != nil {
				log.Printf("dashboard: %v", err)
			}
		}()
		fmt.Fprintf(out, "Dashboard listening on %s\n", cfg.Dashboard.Addr)
	}

	<-ctx.Done()
	fmt.Fprintln(out, "\nShutting down.")
	return nil
}
