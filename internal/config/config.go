// =============================================================================
// CSB 34-11 Remittance - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the payment journal
// configurations.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Journal Configs (journals/*.yaml): one file per payment journal, with
//      the process method, order type, send type and receipt sheet settings
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/csb3411-remittance/internal/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is where payment order documents (*.yaml) are placed.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is where generated remittance files are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives order documents after successful encoding.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// JournalsDir contains one YAML file per payment journal.
	// Default: "./journals"
	JournalsDir string `yaml:"journals_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// FileNameFormat defines the name of generated files.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {nif}       - Ordering party NIF
	//   {suffix}    - Order suffix
	//   {journal}   - Journal code
	//   {original}  - Order document name without extension
	//   {date}, {time}
	// Default: "{nif}_{suffix}_{timestamp}.c34"
	FileNameFormat string `yaml:"file_name_format"`

	// LineTerminator ends every record: "crlf" or "lf".
	// Default: "crlf"
	LineTerminator string `yaml:"line_terminator"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of orders encoded concurrently.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Terminator returns the record terminator selected by LineTerminator.
func (c *MainConfig) Terminator() string {
	if c.LineTerminator == "lf" {
		return "\n"
	}
	return "\r\n"
}

// =============================================================================
// JOURNAL CONFIGURATION STRUCTURE
// =============================================================================

// JournalConfig holds the settings of a payment journal. Order documents
// name their journal; values the document leaves empty come from here.
type JournalConfig struct {
	// JournalName is the human-readable name used in logs.
	JournalName string `yaml:"journal_name"`

	// JournalCode identifies the journal in order documents and file names.
	JournalCode string `yaml:"journal_code"`

	// ProcessMethod selects the file generator. Default: "csb34_11"
	ProcessMethod types.ProcessMethod `yaml:"process_method"`

	// FileMatchingPatterns are glob patterns of order documents handled by
	// this journal when the document does not name one.
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// Suffix is the default order suffix. Default: "000"
	Suffix string `yaml:"suffix"`

	// Ordering party defaults.
	NIF         string `yaml:"nif"`
	Name        string `yaml:"name"`
	Street      string `yaml:"street"`
	Zip         string `yaml:"zip"`
	City        string `yaml:"city"`
	BankAccount string `yaml:"bank_account"`

	// Type is the order type. Default: "transfer"
	Type types.OrderType `yaml:"type"`

	// SendType is how documents reach beneficiaries. Default: "other"
	SendType types.SendType `yaml:"send_type"`

	// PayrollCheck marks cheques as payroll cheques.
	PayrollCheck bool `yaml:"payroll_check"`

	// OperationCodes overrides the data code written for an order type.
	// Example:
	//   operation_codes:
	//     direct_debit: "60"
	OperationCodes map[types.OrderType]string `yaml:"operation_codes"`

	// CSVSettings applies to receipt files with a .csv extension.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// XLSXSheet is the sheet of .xlsx receipt files. Default: first sheet.
	XLSXSheet string `yaml:"xlsx_sheet"`

	// TransformationRules are applied to receipt columns before they are
	// converted into receipts.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing receipt CSV files.
type CSVSettings struct {
	// Delimiter separates fields. Common values: ",", ";", "|", "tab".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRow is the 1-based row holding the column names.
	// Default: 1
	HeaderRow int `yaml:"header_row"`

	// DataStartRow is the 1-based row where receipts begin.
	// Default: HeaderRow + 1
	DataStartRow int `yaml:"data_start_row"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines transformations applied to one receipt column.
type TransformationRule struct {
	// Field is the receipt column name, e.g. "zip" or "bank_account".
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of:
	//   - "prepend_string"      : Add Value to the beginning
	//   - "append_string"       : Add Value to the end
	//   - "pad_zeros_to_length" : Left pad with zeros to Value characters
	//   - "ensure_length"       : Truncate or left pad with zeros to Value characters
	//   - "uppercase"           : Convert to uppercase
	//   - "lowercase"           : Convert to lowercase
	//   - "trim"                : Remove leading and trailing whitespace
	//   - "remove_spaces"       : Remove every space
	//   - "replace"             : Replace Find with Value
	//   - "regex_replace"       : Replace the Find pattern with Value
	//   - "default_value"       : Use Value when the column is empty
	//   - "lookup"              : Replace the value using LookupTable
	//   - "decimal_comma"       : Turn "1.234,56" into "1234.56"
	Type string `yaml:"type"`

	Value string `yaml:"value"`

	// Find is used by "replace" and "regex_replace".
	Find string `yaml:"find,omitempty"`

	// LookupTable is used by "lookup".
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.JournalsDir == "" {
		config.JournalsDir = "./journals"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.FileNameFormat == "" {
		config.FileNameFormat = "{nif}_{suffix}_{timestamp}.c34"
	}
	if config.LineTerminator == "" {
		config.LineTerminator = "crlf"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
}

// validateMainConfig validates the main configuration and creates missing
// directories.
func validateMainConfig(config *MainConfig) error {
	switch config.LineTerminator {
	case "crlf", "lf":
	default:
		return fmt.Errorf("line_terminator must be \"crlf\" or \"lf\", got %q", config.LineTerminator)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1")
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.InputArchiveDir,
		config.JournalsDir,
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// LoadJournalConfigs loads all journal configurations from a directory.
//
// RETURNS:
//   - A map of journal configurations, keyed by journal code.
//   - An error if any file cannot be parsed.
func LoadJournalConfigs(journalsDir string) (map[string]*JournalConfig, error) {
	configs := make(map[string]*JournalConfig)

	files, err := filepath.Glob(filepath.Join(journalsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(journalsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		config, err := LoadJournalConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		if _, exists := configs[config.JournalCode]; exists {
			return nil, fmt.Errorf("duplicate journal code %q in %s", config.JournalCode, file)
		}
		configs[config.JournalCode] = config
	}

	return configs, nil
}

// LoadJournalConfig loads a single journal configuration file.
func LoadJournalConfig(filePath string) (*JournalConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config JournalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	// Use the file name when no code is given.
	if config.JournalCode == "" {
		base := filepath.Base(filePath)
		config.JournalCode = base[:len(base)-len(filepath.Ext(base))]
	}

	applyJournalConfigDefaults(&config)

	if err := validateJournalConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid journal %s: %w", config.JournalCode, err)
	}

	return &config, nil
}

// validateJournalConfig rejects settings that cannot be applied to any order.
func validateJournalConfig(config *JournalConfig) error {
	csv := config.CSVSettings
	if csv.HeaderRow < 1 {
		return fmt.Errorf("csv_settings.header_row must be at least 1, got %d", csv.HeaderRow)
	}
	if csv.DataStartRow <= csv.HeaderRow {
		return fmt.Errorf("csv_settings.data_start_row must be after header_row %d, got %d",
			csv.HeaderRow, csv.DataStartRow)
	}

	for orderType, code := range config.OperationCodes {
		if !orderType.Valid() {
			return fmt.Errorf("operation_codes: unknown order type %q", orderType)
		}
		if len(code) != 2 {
			return fmt.Errorf("operation_codes: code for %s must have 2 digits, got %q", orderType, code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				return fmt.Errorf("operation_codes: code for %s must have 2 digits, got %q", orderType, code)
			}
		}
	}

	return nil
}

// applyJournalConfigDefaults sets default values for journal configuration.
func applyJournalConfigDefaults(config *JournalConfig) {
	if config.JournalName == "" {
		config.JournalName = config.JournalCode
	}
	if config.ProcessMethod == "" {
		config.ProcessMethod = types.ProcessCSB3411
	}
	if config.Suffix == "" {
		config.Suffix = "000"
	}
	if config.Type == "" {
		config.Type = types.OrderTransfer
	}
	if config.SendType == "" {
		config.SendType = types.SendOther
	}

	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.HeaderRow == 0 {
		config.CSVSettings.HeaderRow = 1
	}
	if config.CSVSettings.DataStartRow == 0 {
		config.CSVSettings.DataStartRow = config.CSVSettings.HeaderRow + 1
	}
}
