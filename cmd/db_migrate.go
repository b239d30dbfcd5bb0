package cmd

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"vitastore.GO/config"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/migrations"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply schema migrations (sqlite uses AutoMigrate)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.NewDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		driver := config.DBDriver()
		out := cmd.OutOrStdout()

		if driver == "sqlite" {
			if migrateDown {
				return errors.New("--down is not supported for sqlite")
			}
			if err := inventoryRepo.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(out, "sqlite schema up to date")
			return nil
		}

		m, err := migrations.New(db, driver)
		if err != nil {
			return err
		}
		if migrateDown {
			if err := m.Steps(-1); err != nil {
				return err
			}
		} else if err := migrations.Up(m); err != nil {
			return err
		}
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintf(out, "%s schema empty\n", driver)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s schema at version %d (dirty: %v)\n", driver, v, dirty)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back one migration")
	rootCmd.AddCommand(migrateCmd)
}
