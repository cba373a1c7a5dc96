package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/trestle/internal/config"
	"github.com/zulandar/trestle/internal/dashboard"
	"github.com/zulandar/trestle/internal/db"
)

func newDashboardCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the ops dashboard without running the bot",
		Long:  "Serves the read-only status API (health, activity counters, sync reports) against the configured database. Useful for inspecting a deployment while the bot runs elsewhere.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "trestle.yaml", "path to Trestle config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to the configured dashboard address)")
	return cmd
}

func runDashboard(cmd *cobra.Command, configPath, addr string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr == "" {
		addr = cfg.Dashboard.Addr
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Dashboard listening on %s\n", addr)
	return dashboard.Start(ctx, dashboard.StartOpts{DB: gormDB, Addr: addr})
}
