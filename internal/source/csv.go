package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
)

// ReadCSV reads a receipt CSV file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV settings of the journal.
//
// RETURNS:
//   - The data rows keyed by normalized column name.
//   - An error if the file cannot be read or has no header row.
func ReadCSV(filePath string, settings config.CSVSettings) ([]map[string]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	csvReader := csv.NewReader(bufio.NewReader(file))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return rowsToMaps(allRows, settings.HeaderRow, settings.DataStartRow)
}

// configureReader applies the journal settings to the CSV reader.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "tab", "\\t", "\t":
		reader.Comma = '\t'
	case "":
		reader.Comma = ','
	default:
		reader.Comma = []rune(settings.Delimiter)[0]
	}

	// Accounting exports often end rows with a trailing delimiter.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}
