package source

import (
	"fmt"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads receipts from a worksheet. An empty sheet name selects the
// first sheet of the workbook. Header and data rows follow the same settings
// as CSV files.
func ReadXLSX(filePath, sheet string, settings config.CSVSettings) ([]map[string]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet '%s' is empty", sheet)
	}

	return rowsToMaps(rows, settings.HeaderRow, settings.DataStartRow)
}
