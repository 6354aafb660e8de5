// =============================================================================
// CSB 34-11 Remittance - Encode Command
// =============================================================================
//
// COMMAND USAGE:
//   csb3411 encode [flags]
//
// FLAGS:
//   --file     : Encode a single order document
//   --journal  : Restrict processing to one journal code
//   --dry-run  : Encode without writing or archiving anything
//   --strict   : Treat validation warnings as errors
//
// PROCESSING PIPELINE:
//   1. Load configuration and journals
//   2. Discover order documents in the input directory
//   3. Encode each document concurrently (bounded by max_concurrency)
//   4. Write the error log and the processing summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/converter"
	"github.com/ginjaninja78/csb3411-remittance/internal/logging"
	"github.com/ginjaninja78/csb3411-remittance/internal/validation"
	"github.com/ginjaninja78/csb3411-remittance/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	filePath string
	journal  string
	dryRun   bool
	strict   bool
)

// encodeCmd represents the 'encode' command.
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode payment order documents into CSB 34-11 files",
	Long: `The encode command scans the input directory for order documents, loads
their receipts and writes one CSB 34-11 remittance file per order.

Each document is processed independently; a failing order does not affect
the others.

On success:
  - The remittance file is placed in the output directory
  - The document (and a receipts file next to it) is moved to the input archive

On error:
  - An error log is created in the output directory
  - The document remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runEncode(cmd)
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	addOrderFlags(encodeCmd)

	encodeCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Encode without writing output files or archiving documents",
	)
}

// addOrderFlags registers the flags shared by encode and validate.
func addOrderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filePath, "file", "", "Path to a single order document")
	cmd.Flags().StringVar(&journal, "journal", "", "Restrict processing to this journal code; other documents fail as unmatched")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat validation warnings as errors")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runEncode(cmd *cobra.Command) error {
	startTime := time.Now()

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	conv, err := newConverter(env, converter.WithDryRun(dryRun))
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

	env.logger.Info("encoding orders",
		zap.Int("documents", len(files)),
		zap.Int("max_concurrency", env.mainConfig.MaxConcurrency),
		zap.Bool("dry_run", dryRun))

	results := processConcurrently(files, env.mainConfig.MaxConcurrency, conv.Run)

	streamFile := dryRun && filePath != ""
	out := reportWriter(cmd, streamFile)
	summary := utils.ProcessingSummary{StartTime: startTime, TotalFiles: len(files)}
	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalReceipts += result.Stats.Receipts
			summary.TotalRecords += result.Stats.Records
			summary.TotalAmount = summary.TotalAmount.Add(result.Stats.Amount)
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				Receipts:    result.Stats.Receipts,
				Records:     result.Stats.Records,
				Amount:      result.Stats.Amount,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Fprintf(out, "  ✓ %s -> %s (%d records, %s)\n",
				name, outputName(result), result.Stats.Records, result.Stats.Amount.StringFixed(2))

			if streamFile {
				cmd.OutOrStdout().Write(result.Data)
			}
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: result.Error.Error(),
			ErrorType:    result.ErrorType(),
		})
		errorEntries = append(errorEntries, errorLogEntries(result)...)
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
	}

	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Encoding Complete ===")
	fmt.Fprintf(out, "Total orders:    %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if dryRun {
		return failedOrders(summary.FailedFiles)
	}

	if logPath, err := utils.WriteErrorLog(errorEntries, env.mainConfig.OutputDir); err != nil {
		env.logger.Error("failed to write error log", zap.Error(err))
	} else if logPath != "" {
		fmt.Fprintf(out, "Error log:       %s\n", logPath)
	}

	if summaryPath, err := utils.WriteSummaryLog(summary, env.mainConfig.OutputDir); err != nil {
		env.logger.Error("failed to write summary", zap.Error(err))
	} else {
		env.logger.Debug("summary written", zap.String("path", summaryPath))
	}

	return failedOrders(summary.FailedFiles)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// reportWriter returns where progress and summaries go. When the remittance
// file itself is streamed to stdout, everything else goes to stderr.
func reportWriter(cmd *cobra.Command, streamFile bool) io.Writer {
	if streamFile {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// newConverter builds the converter shared by every document of a run.
func newConverter(env *environment, opts ...converter.Option) (*converter.Converter, error) {
	opts = append(opts,
		converter.WithLogger(logging.NewSugared(env.logger)),
		converter.WithValidationOptions(validation.ValidationOptions{TreatWarningsAsErrors: strict}),
	)

	journals := env.journals
	if journal != "" {
		selected, ok := env.journals[journal]
		if !ok {
			return nil, fmt.Errorf("unknown journal %q", journal)
		}
		journals = map[string]*config.JournalConfig{journal: selected}
	}

	return converter.New(env.mainConfig, journals, opts...)
}

// orderFiles returns the documents to process: the --file flag, or every
// document in the input directory.
func orderFiles(env *environment) ([]string, error) {
	if filePath != "" {
		if _, err := os.Stat(filePath); err != nil {
			return nil, fmt.Errorf("order document not found: %w", err)
		}
		return []string{filePath}, nil
	}

	files := utils.NewFileManager(env.mainConfig.InputDir, env.mainConfig.OutputDir, env.mainConfig.InputArchiveDir)
	found, err := files.DiscoverOrderFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover order documents: %w", err)
	}
	return found, nil
}

// processConcurrently runs fn over files with at most limit documents in
// flight. Results keep the order of files.
func processConcurrently(files []string, limit int, fn func(string) converter.Result) []converter.Result {
	if limit < 1 {
		limit = 1
	}

	results := make([]converter.Result, len(files))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = fn(path)
		}(i, file)
	}

	wg.Wait()
	return results
}

// errorLogEntries turns a failed result into error log entries, one per
// blocking validation problem.
func errorLogEntries(result converter.Result) []utils.ErrorLogEntry {
	now := time.Now()
	var entries []utils.ErrorLogEntry

	if result.ErrorType() == "validation" {
		for _, ve := range result.ValidationErrors {
			if ve.Severity != validation.SeverityError && !strict {
				continue
			}
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     result.FilePath,
				ErrorType:    ve.Rule,
				ErrorMessage: ve.Message,
				Receipt:      ve.Receipt,
				FieldName:    ve.Field,
				FieldValue:   ve.Value,
			})
		}
	}

	if len(entries) == 0 {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     result.FilePath,
			ErrorType:    result.ErrorType(),
			ErrorMessage: result.Error.Error(),
		})
	}

	return entries
}

func outputName(result converter.Result) string {
	if result.OutputFile == "" {
		return "(dry run)"
	}
	return filepath.Base(result.OutputFile)
}

// failedOrders makes the command exit non-zero when any file failed.
func failedOrders(count int) error {
	if count > 0 {
		return fmt.Errorf("%d file(s) failed", count)
	}
	return nil
}
