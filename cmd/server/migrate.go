package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/eco-stations/internal/config"
	"github.com/iliyamo/eco-stations/internal/database"
	"github.com/iliyamo/eco-stations/internal/logging"
	"github.com/iliyamo/eco-stations/internal/repository"
	"github.com/iliyamo/eco-stations/internal/service"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed the administrator, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := logging.New(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := service.NewBootstrapper(db, repository.NewUserRepo(db), cfg, log).Run(cmd.Context()); err != nil {
				return err
			}
			log.Info("database is up to date")
			return nil
		},
	}
}
