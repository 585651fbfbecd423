// Command backoffice runs the inventory/task/calendar admin service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"backoffice/internal/api"
	"backoffice/internal/config"
	"backoffice/internal/database"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Internal inventory, task and scheduling admin service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), seedCmd())
	return root
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			log, err := newLogger(cfg.DevMode)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Open(cfg.DatabaseURL, cfg.DevMode)
			if err != nil {
				return err
			}
			if err := database.Seed(db, cfg.AdminPassword, cfg.UserPassword); err != nil {
				return err
			}
			log.Info("database ready", zap.String("dsn", cfg.DatabaseURL))

			return api.New(db, cfg, log).Start()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PORT)")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the seed admin and user accounts and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DatabaseURL, cfg.DevMode)
			if err != nil {
				return err
			}
			if err := database.Seed(db, cfg.AdminPassword, cfg.UserPassword); err != nil {
				return err
			}
			fmt.Println("seed accounts ready")
			return nil
		},
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
