package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "ledger:reconcile",
	Short: "List items whose quantity differs from the sum of their transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		drift, err := services(db).Ledger.Reconcile(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(drift) == 0 {
			fmt.Fprintln(out, "Ledger consistent: every quantity matches its transactions.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tITEM\tQUANTITY\tLEDGER\tDIFF")
		for _, d := range drift {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%+d\n", d.ItemID, d.ItemName, d.Quantity, d.LedgerTotal, d.Difference())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
