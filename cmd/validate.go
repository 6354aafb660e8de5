// =============================================================================
// CSB 34-11 Remittance - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   csb3411 validate [--file order.yaml] [--journal code] [--strict]
//
// Loads and validates order documents without writing or archiving anything.
// Every problem of every order is printed, warnings included.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ginjaninja78/csb3411-remittance/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate payment order documents without encoding them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addOrderFlags(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	conv, err := newConverter(env)
	if err != nil {
		return err
	}

	files, err := orderFiles(env)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		env.logger.Info("no order documents found", zap.String("input_dir", env.mainConfig.InputDir))
		return nil
	}

	out := cmd.OutOrStdout()
	failed := 0

	for _, result := range processConcurrently(files, env.mainConfig.MaxConcurrency, conv.Validate) {
		name := filepath.Base(result.FilePath)

		if result.Success {
			fmt.Fprintf(out, "  ✓ %s (%d receipts, %s)\n",
				name, result.Stats.Receipts, result.Stats.Amount.StringFixed(2))
		} else {
			failed++
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		}

		if len(result.ValidationErrors) > 0 {
			fmt.Fprintln(out, validation.FormatErrors(result.ValidationErrors))
		}
	}

	return failedOrders(failed)
}
