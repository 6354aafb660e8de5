// =============================================================================
// CSB 34-11 Remittance - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (csb3411)
//   ├── encodeCmd   (csb3411 encode)
//   ├── validateCmd (csb3411 validate)
//   ├── inspectCmd  (csb3411 inspect)
//   └── versionCmd  (csb3411 version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging regardless of log_level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "csb3411",
	Short: "CSB 34-11 Remittance - Encode payment orders into Spanish bank files",
	Long: `csb3411 turns payment order documents into CSB 34-11 remittance files,
the fixed-width format Spanish banks accept for batches of transfers,
cheques, promissory notes, certified payments and direct debits.

Key Features:
  - Journal configurations with ordering party defaults
  - Receipts inline, from CSV or from XLSX workbooks
  - Validation of every order before a single record is written
  - Concurrent encoding with archival of processed documents

Example Usage:
  csb3411 encode                        # Encode every order in the input directory
  csb3411 encode --file order.yaml      # Encode a single order
  csb3411 validate --config ./my.yaml   # Validate orders without writing files`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// environment is what every command needs once configuration is loaded.
type environment struct {
	mainConfig *config.MainConfig
	journals   map[string]*config.JournalConfig
	logger     *zap.Logger
}

// loadEnvironment loads the main configuration, the journals and builds the
// logger.
func loadEnvironment() (*environment, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := mainConfig.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level)
	if err != nil {
		return nil, err
	}

	journals, err := config.LoadJournalConfigs(mainConfig.JournalsDir)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to load journal configs: %w", err)
	}
	if len(journals) == 0 {
		logger.Sync()
		return nil, fmt.Errorf("no journal configurations found in %s", mainConfig.JournalsDir)
	}

	logger.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.Int("journals", len(journals)))

	return &environment{mainConfig: mainConfig, journals: journals, logger: logger}, nil
}
