package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vitastore.GO/service/importer"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "items:import",
	Short: "Import catalog items from CSV (new items get an opening stock transaction)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open CSV: %w", err)
		}
		defer f.Close()

		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		s := services(db)
		ctx := context.Background()

		res, err := importer.ImportItems(ctx, db, s.Ledger, f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		s.Summary.Invalidate(ctx)
		if s.Search != nil {
			if _, err := s.Search.Reindex(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "  [warn] reindex: %v\n", err)
			}
		}

		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  [warn] %s\n", w)
		}
		fmt.Fprintf(out, `
=== Import Report ===
CSV rows:       %d
Created:        %d
Updated:        %d
Skipped:        %d
Total time:     %s
=====================
`, res.TotalRows, res.Created, res.Updated, res.Skipped, res.TotalTime.Round(time.Millisecond))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file path (required)")
	importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
