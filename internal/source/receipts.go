package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/record"
	"github.com/ginjaninja78/csb3411-remittance/internal/types"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedReceiptFile is returned for receipt files that are neither
// CSV nor XLSX.
var ErrUnsupportedReceiptFile = errors.New("unsupported receipt file")

// Receipt columns.
const (
	ColumnNIF           = "nif"
	ColumnName          = "name"
	ColumnStreet        = "street"
	ColumnStreet2       = "street2"
	ColumnZip           = "zip"
	ColumnCity          = "city"
	ColumnCountryCode   = "country_code"
	ColumnState         = "state"
	ColumnBankAccount   = "bank_account"
	ColumnAmount        = "amount"
	ColumnCost          = "cost"
	ColumnConcept       = "concept"
	ColumnDirectPayment = "direct_payment"
)

// headerAliases maps the column names used by Spanish accounting exports.
var headerAliases = map[string]string{
	"cif":            ColumnNIF,
	"dni":            ColumnNIF,
	"nombre":         ColumnName,
	"beneficiario":   ColumnName,
	"domicilio":      ColumnStreet,
	"direccion":      ColumnStreet,
	"direccion2":     ColumnStreet2,
	"cp":             ColumnZip,
	"codigo_postal":  ColumnZip,
	"poblacion":      ColumnCity,
	"localidad":      ColumnCity,
	"pais":           ColumnCountryCode,
	"provincia":      ColumnState,
	"cuenta":         ColumnBankAccount,
	"iban":           ColumnBankAccount,
	"importe":        ColumnAmount,
	"gastos":         ColumnCost,
	"concepto":       ColumnConcept,
	"pago_directo":   ColumnDirectPayment,
	"account":        ColumnBankAccount,
	"street_2":       ColumnStreet2,
	"country":        ColumnCountryCode,
	"postal_code":    ColumnZip,
	"direct_payment": ColumnDirectPayment,
}

// normalizeHeader turns a column title into its receipt column name:
// "Código Postal" and "codigo_postal" both become "zip".
func normalizeHeader(header string) string {
	folded, err := record.Fold(strings.ReplaceAll(header, "_", " "))
	if err != nil {
		folded = header
	}
	name := strings.ToLower(strings.Join(strings.Fields(folded), "_"))
	if alias, ok := headerAliases[name]; ok {
		return alias
	}
	return name
}

// ReadReceiptRows reads the rows of a receipt file, dispatching on its
// extension. Row keys are normalized column names.
func ReadReceiptRows(path string, journal *config.JournalConfig) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(path, journal.CSVSettings)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, journal.XLSXSheet, journal.CSVSettings)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedReceiptFile, filepath.Base(path))
	}
}

// rowsToMaps pairs the header row with every data row. Rows are 1-based;
// blank rows are skipped.
func rowsToMaps(rows [][]string, headerRow, dataStartRow int) ([]map[string]string, error) {
	if headerRow < 1 || dataStartRow <= headerRow {
		return nil, fmt.Errorf("invalid rows: header row %d, data start row %d", headerRow, dataStartRow)
	}
	if len(rows) < headerRow {
		return nil, fmt.Errorf("header row %d not found (file has %d rows)", headerRow, len(rows))
	}

	headers := make([]string, len(rows[headerRow-1]))
	for i, h := range rows[headerRow-1] {
		headers[i] = normalizeHeader(strings.TrimPrefix(h, "\ufeff"))
	}

	var out []map[string]string
	for i := dataStartRow - 1; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			continue
		}
		row := make(map[string]string, len(headers))
		for col, h := range headers {
			if h == "" {
				continue
			}
			if col < len(rows[i]) {
				row[h] = strings.TrimSpace(rows[i][col])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

// RowError reports a receipt row that could not be converted.
type RowError struct {
	// Row is the 1-based position of the receipt.
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("receipt %d, column '%s': %v (value: '%s')", e.Row, e.Column, e.Err, e.Value)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReceiptsFromRows converts rows into receipts after applying the journal
// transformations. Receipts keep the row order.
//
// Missing values are left empty so the validator can report them together;
// only values that cannot be parsed at all fail here.
func ReceiptsFromRows(rows []map[string]string, transformer *Transformer) ([]types.Receipt, error) {
	receipts := make([]types.Receipt, 0, len(rows))

	for i, row := range rows {
		position := i + 1

		if transformer != nil {
			if err := transformer.TransformRow(row); err != nil {
				return nil, fmt.Errorf("receipt %d: %w", position, err)
			}
		}

		receipt := types.Receipt{
			NIF:         row[ColumnNIF],
			Name:        row[ColumnName],
			Street:      row[ColumnStreet],
			Zip:         row[ColumnZip],
			City:        row[ColumnCity],
			CountryCode: row[ColumnCountryCode],
			State:       row[ColumnState],
			BankAccount: row[ColumnBankAccount],
			Cost:        row[ColumnCost],
			Concept:     row[ColumnConcept],
		}

		if street2 := row[ColumnStreet2]; street2 != "" {
			receipt.Street2 = &street2
		}

		if raw := row[ColumnAmount]; raw != "" {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, &RowError{Row: position, Column: ColumnAmount, Value: raw, Err: errors.New("not a decimal amount")}
			}
			receipt.Amount = &amount
		}

		if raw := row[ColumnDirectPayment]; raw != "" {
			direct, err := parseFlag(raw)
			if err != nil {
				return nil, &RowError{Row: position, Column: ColumnDirectPayment, Value: raw, Err: err}
			}
			receipt.DirectPayment = direct
		}

		receipts = append(receipts, receipt)
	}

	return receipts, nil
}

// parseFlag accepts the usual boolean spellings plus Spanish "si"/"no".
func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "si", "sí", "s", "yes", "y", "x":
		return true, nil
	case "no", "n":
		return false, nil
	}
	flag, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("not a boolean")
	}
	return flag, nil
}
