package main

import (
	"github.com/spf13/cobra"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/pkg/database"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			log := logger.GetLogger()
			defer func() { _ = log.Sync() }()

			db, err := database.InitDB(&cfg.DB)
			if err != nil {
				return err
			}
			if err := database.MigrateModels(db.WithContext(cmd.Context()), model.All()...); err != nil {
				return err
			}
			log.Info("Database migrated", zap.Int("models", len(model.All())))
			return nil
		},
	}
}
