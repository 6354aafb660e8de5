// =============================================================================
// CSB 34-11 Remittance - Converter Module
// =============================================================================
//
// This module orchestrates the pipeline for a single order document, from
// the YAML document to the remittance file in the output directory.
//
// CONVERSION PIPELINE:
//   1. Load the order document and its receipts
//   2. Validate the payment order
//   3. Look up the generator of the journal's process method
//   4. Generate the remittance file into a sink
//   5. Archive the order document and its receipts file
//
// CONCURRENCY:
//   A Converter holds no per-document state. The encode command runs one
//   goroutine per document against a shared Converter.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/csb3411-remittance/internal/attach"
	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/generator"
	"github.com/ginjaninja78/csb3411-remittance/internal/logging"
	"github.com/ginjaninja78/csb3411-remittance/internal/record"
	"github.com/ginjaninja78/csb3411-remittance/internal/remittance"
	"github.com/ginjaninja78/csb3411-remittance/internal/source"
	"github.com/ginjaninja78/csb3411-remittance/internal/validation"
	"github.com/ginjaninja78/csb3411-remittance/pkg/utils"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single order document.
type Result struct {
	// FilePath is the path to the order document.
	FilePath string

	// OutputFile is the path to the generated remittance file.
	// This is empty if processing failed or for dry runs.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// ValidationErrors holds every validation problem, warnings included.
	ValidationErrors []*validation.ValidationError

	// Data is the generated file, kept only for dry runs.
	Data []byte

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	Receipts int
	Records  int
	Payments int
	Amount   decimal.Decimal
	Size     int

	// ProcessingTime is the time taken to process the document.
	ProcessingTime time.Duration
}

// ErrorType classifies the error of a failed result for error logs.
func (r Result) ErrorType() string {
	var (
		verrs    validation.Errors
		fieldErr *record.FieldError
		overflow *remittance.AmountOverflowError
		rowErr   *source.RowError
	)
	switch {
	case r.Error == nil:
		return ""
	case errors.As(r.Error, &verrs):
		return "validation"
	case errors.As(r.Error, &fieldErr):
		return "field"
	case errors.As(r.Error, &overflow):
		return "amount_overflow"
	case errors.As(r.Error, &rowErr), errors.Is(r.Error, source.ErrUnsupportedReceiptFile):
		return "receipts"
	case errors.Is(r.Error, source.ErrNoJournal), errors.Is(r.Error, generator.ErrUnknownProcessMethod):
		return "configuration"
	default:
		return "processing"
	}
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Logger is the structured logger used by the converter.
type Logger = logging.Logger

// Converter encodes order documents into remittance files.
type Converter struct {
	mainConfig *config.MainConfig
	loader     *source.Loader
	files      *utils.FileManager
	logger     Logger
	validator  *validation.Validator
	dryRun     bool

	// registries holds one generator registry per journal, since journals
	// may override operation codes.
	registries map[*config.JournalConfig]*generator.Registry
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

// WithDryRun keeps generated files in memory and leaves documents in place.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// WithValidationOptions replaces the default validation options.
func WithValidationOptions(options validation.ValidationOptions) Option {
	return func(c *Converter) { c.validator = validation.NewValidatorWithOptions(options) }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter.
//
// PARAMETERS:
//   - mainConfig: The main application configuration.
//   - journals: The journal configurations keyed by journal code.
//   - opts: Optional settings.
//
// RETURNS:
//   - A new Converter.
//   - An error if a generator registry cannot be built.
func New(mainConfig *config.MainConfig, journals map[string]*config.JournalConfig, opts ...Option) (*Converter, error) {
	c := &Converter{
		mainConfig: mainConfig,
		loader:     source.NewLoader(journals),
		files:      utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir),
		logger:     logging.Nop(),
		validator:  validation.NewValidator(),
		registries: make(map[*config.JournalConfig]*generator.Registry, len(journals)),
	}
	for _, opt := range opts {
		opt(c)
	}

	codec := record.New(record.WithTerminator(mainConfig.Terminator()))
	for code, journal := range journals {
		encoder := remittance.NewEncoder(codec, remittance.WithOperationCodes(journal.OperationCodes))
		registry, err := generator.NewRegistry(generator.NewCSB3411(encoder))
		if err != nil {
			return nil, fmt.Errorf("journal %s: %w", code, err)
		}
		c.registries[journal] = registry
	}

	return c, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the conversion pipeline for one order document.
func (c *Converter) Run(path string) Result {
	startTime := time.Now()
	result := Result{FilePath: path}
	log := c.logger.With("file", path)

	// =========================================================================
	// STEP 1-2: LOAD AND VALIDATE
	// =========================================================================

	order, ok := c.load(path, log, &result)
	if !ok {
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 3: LOOK UP GENERATOR
	// =========================================================================

	registry, found := c.registries[order.Journal]
	if !found {
		result.Error = fmt.Errorf("%w: journal %q has no generators", source.ErrNoJournal, order.Journal.JournalCode)
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	gen, err := registry.Lookup(order.Journal.ProcessMethod)
	if err != nil {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 4: GENERATE
	// =========================================================================

	fileName := utils.GenerateOutputFileName(c.mainConfig.FileNameFormat, map[string]string{
		"nif":      order.PaymentOrder.NIF,
		"suffix":   order.PaymentOrder.Suffix,
		"journal":  order.Journal.JournalCode,
		"original": strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	})

	var (
		sink   attach.Sink
		memory *attach.MemorySink
		file   *attach.FileSink
	)
	if c.dryRun {
		memory = &attach.MemorySink{}
		sink = memory
	} else {
		file = attach.NewFileSink(c.mainConfig.OutputDir, fileName)
		sink = file
	}

	report, err := gen.Generate(order.PaymentOrder, sink)
	if err != nil {
		result.Error = fmt.Errorf("failed to generate remittance: %w", err)
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	result.Stats.Records = report.Records
	result.Stats.Payments = report.Payments
	result.Stats.Amount = report.Amount
	result.Stats.Size = report.Size

	if c.dryRun {
		result.Data = memory.Attachments()[0]
		log.Info("Dry run, remittance not written",
			"records", report.Records, "amount", report.Amount.StringFixed(2))
	} else {
		result.OutputFile = file.Path()
		log.Info("Wrote remittance",
			"output", result.OutputFile,
			"records", report.Records, "payments", report.Payments,
			"amount", report.Amount.StringFixed(2))

		// =====================================================================
		// STEP 5: ARCHIVE
		// =====================================================================

		c.archive(order, log)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// Validate loads and validates a document without generating anything.
func (c *Converter) Validate(path string) Result {
	startTime := time.Now()
	result := Result{FilePath: path}

	if _, ok := c.load(path, c.logger.With("file", path), &result); ok {
		result.Success = true
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// load runs steps 1 and 2, recording problems in result. log already carries
// the document path.
func (c *Converter) load(path string, log Logger, result *Result) (*source.Order, bool) {
	log.Info("Processing order")

	order, err := c.loader.Load(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to load order: %w", err)
		return nil, false
	}

	result.Stats.Receipts = len(order.PaymentOrder.Receipts)
	result.Stats.Amount = order.PaymentOrder.TotalAmount()
	log.Debug("Loaded order",
		"journal", order.Journal.JournalCode,
		"receipts", result.Stats.Receipts)

	validationResult := c.validator.ValidateAll(order.PaymentOrder)
	result.ValidationErrors = validationResult.Errors

	for _, ve := range validationResult.Errors {
		log.Warn("Validation problem",
			"severity", ve.Severity,
			"receipt", ve.Receipt,
			"field", ve.Field,
			"rule", ve.Rule,
			"message", ve.Message)
	}

	if !validationResult.IsValid {
		var blocking validation.Errors
		for _, ve := range validationResult.Errors {
			if ve.Severity == validation.SeverityError || validationResult.ErrorCount == 0 {
				blocking = append(blocking, ve)
			}
		}
		result.Error = blocking
		return nil, false
	}

	log.Debug("Validation complete",
		"warnings", validationResult.WarningCount)

	return order, true
}

// archive moves the document and a receipts file kept in the input directory
// to the archive. Failures are logged, not returned: the remittance file has
// already been written.
func (c *Converter) archive(order *source.Order, log Logger) {
	paths := []string{order.Path}
	if order.ReceiptsFile != "" && sameDir(order.ReceiptsFile, c.mainConfig.InputDir) {
		paths = append(paths, order.ReceiptsFile)
	}

	for _, p := range paths {
		archived, err := c.files.ArchiveInputFile(p)
		if err != nil {
			log.Warn("Failed to archive file", "archived_file", p, "error", err)
			continue
		}
		log.Debug("Archived file", "archived_file", p, "archive", archived)
	}
}

func sameDir(path, dir string) bool {
	a, errA := filepath.Abs(filepath.Dir(path))
	b, errB := filepath.Abs(dir)
	return errA == nil && errB == nil && a == b
}
