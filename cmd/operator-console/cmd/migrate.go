package cmd

import (
	"errors"
	"fmt"

	"operator-console/pkg/config"
	"operator-console/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	migrateSource  string
	migrateVersion int
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|force]",
	Short:     "Manage the schema of the postgres store",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "force"},
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := migrate.New(migrateSource, config.Global.DB.URL())
		if err != nil {
			return fmt.Errorf("migration init failed: %w", err)
		}
		defer m.Close()

		switch args[0] {
		case "up":
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration up failed: %w", err)
			}
			logger.Info("Migration up done")
		case "down":
			if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration down failed: %w", err)
			}
			logger.Info("Migration down done")
		case "force":
			if migrateVersion < 0 {
				return errors.New("version (-v) is required for force")
			}
			if err := m.Force(migrateVersion); err != nil {
				return fmt.Errorf("migration force failed: %w", err)
			}
			logger.Info("Migration forced", zap.Int("version", migrateVersion))
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSource, "source", "file://migrations", "migration source URL")
	migrateCmd.Flags().IntVarP(&migrateVersion, "version", "v", -1, "version for force")

	rootCmd.AddCommand(migrateCmd)
}
