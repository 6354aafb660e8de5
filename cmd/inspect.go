// =============================================================================
// CSB 34-11 Remittance - Inspect Command
// =============================================================================
//
// COMMAND USAGE:
//   csb3411 inspect FILE...
//
// Decodes generated remittance files and checks that the footers agree with
// the records: amount, payments, national block and file record counts.
// Useful before uploading a file that was edited by hand.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/csb3411-remittance/internal/record"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Check the footers of CSB 34-11 files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			summary, err := record.Inspect(data)
			if err != nil {
				failed++
				fmt.Fprintf(out, "  ✗ %s: %v\n", path, err)
				continue
			}

			fmt.Fprintf(out, "%s\n", path)
			fmt.Fprintf(out, "  Ordering party: %s / %s\n", summary.NIF, summary.Suffix)
			fmt.Fprintf(out, "  Operation code: %s\n", summary.OperationCode)
			fmt.Fprintf(out, "  Records:        %d\n", summary.Lines)
			fmt.Fprintf(out, "  Payments:       %d\n", summary.Counted.Payments)
			fmt.Fprintf(out, "  Amount:         %s\n", summary.Counted.Amount.StringFixed(2))

			if summary.Consistent() {
				fmt.Fprintln(out, "  ✓ footers consistent")
				continue
			}

			failed++
			for _, problem := range summary.Problems {
				fmt.Fprintf(out, "  ✗ %s\n", problem)
			}
		}

		return failedOrders(failed)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
