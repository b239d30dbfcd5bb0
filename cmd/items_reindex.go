package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "items:reindex",
	Short: "Rebuild the Elasticsearch item index from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		s := services(db)
		if s.Search == nil {
			return errors.New("ELASTICSEARCH_HOST is not set")
		}
		n, err := s.Search.Reindex(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d items into %s\n", n, s.Search.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
