package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// mainConfig writes a config whose directories live under the test's temp dir.
func mainConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	body := "input_dir: " + filepath.Join(dir, "in") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n" +
		"input_archive_dir: " + filepath.Join(dir, "archive") + "\n" +
		"journals_dir: " + filepath.Join(dir, "journals") + "\n" +
		extra
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, body)
	return dir, path
}

func TestLoadMainConfig_Defaults(t *testing.T) {
	dir, path := mainConfig(t, "")

	cfg, err := config.LoadMainConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel got=%s want=info", cfg.LogLevel)
	}
	if cfg.MaxConcurrency != 4 {
		t.Fatalf("MaxConcurrency got=%d want=%d", cfg.MaxConcurrency, 4)
	}
	if cfg.FileNameFormat != "{nif}_{suffix}_{timestamp}.c34" {
		t.Fatalf("FileNameFormat got=%s", cfg.FileNameFormat)
	}
	if cfg.Terminator() != "\r\n" {
		t.Fatalf("Terminator got=%q want CRLF", cfg.Terminator())
	}

	for _, sub := range []string{"in", "out", "archive", "journals"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Fatalf("directory %s not created: %v", sub, err)
		}
	}
}

func TestLoadMainConfig_LineFeed(t *testing.T) {
	_, path := mainConfig(t, "line_terminator: lf\n")
	cfg, err := config.LoadMainConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Terminator() != "\n" {
		t.Fatalf("Terminator got=%q want LF", cfg.Terminator())
	}
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{"terminator", "line_terminator: cr\n", "line_terminator"},
		{"concurrency", "max_concurrency: -2\n", "max_concurrency"},
		{"yaml", "max_concurrency: [\n", "parse"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, path := mainConfig(t, tc.extra)
			_, err := config.LoadMainConfig(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err got=%v want mention of %s", err, tc.want)
			}
		})
	}
}

func TestLoadMainConfig_MissingFile(t *testing.T) {
	if _, err := config.LoadMainConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestLoadJournalConfigs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "suppliers.yaml"), `
journal_name: Supplier payments
nif: B12345678
bank_account: ES9121000418450200051332
type: cheque
send_type: mail
operation_codes:
  cheque: "57"
transformation_rules:
  - field: zip
    actions:
      - type: pad_zeros_to_length
        value: "5"
`)
	writeFile(t, filepath.Join(dir, "payroll.yml"), `
journal_code: NOM
payroll_check: true
csv_settings:
  delimiter: ";"
  header_row: 3
`)

	journals, err := config.LoadJournalConfigs(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(journals) != 2 {
		t.Fatalf("journals got=%d want=%d", len(journals), 2)
	}

	suppliers, ok := journals["suppliers"]
	if !ok {
		t.Fatalf("journal code not taken from the file name: %v", journals)
	}
	if suppliers.Type != types.OrderCheque || suppliers.SendType != types.SendMail {
		t.Fatalf("type/send got=%s/%s", suppliers.Type, suppliers.SendType)
	}
	if suppliers.ProcessMethod != types.ProcessCSB3411 || suppliers.Suffix != "000" {
		t.Fatalf("defaults got=%s/%s", suppliers.ProcessMethod, suppliers.Suffix)
	}
	if suppliers.OperationCodes[types.OrderCheque] != "57" {
		t.Fatalf("operation codes got=%v", suppliers.OperationCodes)
	}
	if len(suppliers.TransformationRules) != 1 || suppliers.TransformationRules[0].Actions[0].Value != "5" {
		t.Fatalf("rules got=%+v", suppliers.TransformationRules)
	}

	payroll := journals["NOM"]
	if payroll == nil || !payroll.PayrollCheck {
		t.Fatalf("payroll journal got=%+v", payroll)
	}
	if payroll.JournalName != "NOM" || payroll.Type != types.OrderTransfer || payroll.SendType != types.SendOther {
		t.Fatalf("defaults got=%s/%s/%s", payroll.JournalName, payroll.Type, payroll.SendType)
	}
	if payroll.CSVSettings.Delimiter != ";" || payroll.CSVSettings.DataStartRow != 4 {
		t.Fatalf("csv settings got=%+v", payroll.CSVSettings)
	}
}

func TestLoadJournalConfigs_DuplicateCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "journal_code: PAY\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "journal_code: PAY\n")

	_, err := config.LoadJournalConfigs(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate journal code") {
		t.Fatalf("err got=%v want duplicate journal code", err)
	}
}

func TestLoadJournalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative header row", "csv_settings:\n  header_row: -1\n", "header_row"},
		{"data before header", "csv_settings:\n  header_row: 3\n  data_start_row: 2\n", "data_start_row"},
		{"data on header", "csv_settings:\n  header_row: 2\n  data_start_row: 2\n", "data_start_row"},
		{"unknown order type", "operation_codes:\n  tranfer: \"56\"\n", "unknown order type"},
		{"wide code", "operation_codes:\n  transfer: \"560\"\n", "2 digits"},
		{"letters in code", "operation_codes:\n  cheque: \"5A\"\n", "2 digits"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "suppliers.yaml")
			writeFile(t, path, tc.content)

			_, err := config.LoadJournalConfig(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err got=%v want mention of %s", err, tc.want)
			}
		})
	}
}
