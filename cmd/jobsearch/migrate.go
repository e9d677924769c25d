package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the job store schema (extensions, tables, indexes)",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	dims := a.cfg.Embedding.Dimensions
	if err := a.store.Migrate(cmd.Context(), dims); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.logger.Info("Schema applied", zap.Int("embedding_dimensions", dims))
	return nil
}
