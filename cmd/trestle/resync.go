package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/trestle/internal/bot"
	"github.com/zulandar/trestle/internal/config"
	"github.com/zulandar/trestle/internal/db"
	"github.com/zulandar/trestle/internal/rolesync"
	"github.com/zulandar/trestle/internal/store"
)

func newResyncCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Reconcile every user's roles against their feedback points",
		Long: `Walks all known users and brings their guild roles in line with their
stored feedback points. Stops at the first user with a failed role change.
Uses the Discord REST API only; the bot does not need to be running.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResync(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "trestle.yaml", "path to Trestle config file")
	return cmd
}

func runResync(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}

	var notifier rolesync.Notifier
	if cfg.Alerts.SlackWebhookURL != "" {
		notifier, err = rolesync.NewSlackNotifier(cfg.Alerts.SlackWebhookURL)
		if err != nil {
			return err
		}
	}

	reports := store.NewSyncReports(gormDB)
	b, err := bot.New(bot.Opts{
		Token:       cfg.Discord.Token,
		GuildID:     cfg.Discord.GuildID,
		Users:       store.NewUsers(gormDB),
		Threads:     store.NewThreads(gormDB),
		ThreadUsers: store.NewThreadUsers(gormDB),
		Settings:    store.NewSettings(gormDB),
		SyncReports: reports,
		Notifier:    notifier,
	})
	if err != nil {
		return err
	}

	runID, runErr := b.Syncer().ResyncAll(cmd.Context())
	fmt.Fprintf(out, "Resync run %s\n", runID)

	rows, err := reports.ForRun(runID)
	if err != nil {
		return err
	}
	var failed int
	for _, r := range rows {
		if r.Error != "" {
			failed++
			fmt.Fprintf(out, "  FAILED %s %s for %s: %s\n", r.Action, r.RoleID, r.UserID, r.Error)
		}
	}
	fmt.Fprintf(out, "%d role change(s) recorded, %d failed\n", len(rows), failed)

	return runErr
}
