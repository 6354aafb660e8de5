package converter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/converter"
	"github.com/ginjaninja78/csb3411-remittance/internal/logging"
	"github.com/ginjaninja78/csb3411-remittance/internal/record"
	"github.com/ginjaninja78/csb3411-remittance/internal/types"
	"github.com/ginjaninja78/csb3411-remittance/internal/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const validOrder = `
journal: suppliers
payment_date: 2024-03-15
creation_date: 2024-03-01
receipts_file: receipts.csv
receipts:
  - nif: 12345678Z
    name: Ferretería Núñez
    city: Sevilla
    bank_account: ES7620770024003102575766
    amount: "1250.40"
`

type env struct {
	main     *config.MainConfig
	journals map[string]*config.JournalConfig
}

func setup(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	main := &config.MainConfig{
		InputDir:        filepath.Join(dir, "input"),
		OutputDir:       filepath.Join(dir, "output"),
		InputArchiveDir: filepath.Join(dir, "archive"),
		FileNameFormat:  "{journal}_{original}_{nif}",
		LineTerminator:  "crlf",
		MaxConcurrency:  1,
	}
	for _, d := range []string{main.InputDir, main.OutputDir, main.InputArchiveDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	journals := map[string]*config.JournalConfig{
		"suppliers": {
			JournalCode:   "suppliers",
			ProcessMethod: types.ProcessCSB3411,
			NIF:           "B12345678",
			Suffix:        "000",
			Name:          "Ordenante SL",
			BankAccount:   "ES9121000418450200051332",
			Type:          types.OrderTransfer,
			SendType:      types.SendOther,
			CSVSettings:   config.CSVSettings{Delimiter: ",", HeaderRow: 1, DataStartRow: 2},
		},
	}
	return env{main: main, journals: journals}
}

func (e env) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.main.InputDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func (e env) converter(t *testing.T, opts ...converter.Option) *converter.Converter {
	t.Helper()
	c, err := converter.New(e.main, e.journals, opts...)
	if err != nil {
		t.Fatalf("new converter: %v", err)
	}
	return c
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRun_WritesAndArchives(t *testing.T) {
	e := setup(t)
	path := e.write(t, "march.yaml", validOrder)
	receipts := e.write(t, "receipts.csv", "nif,bank_account,amount\nB87654321,20770024003102575766,9.60\n")

	result := e.converter(t).Run(path)
	if !result.Success {
		t.Fatalf("run failed: %v", result.Error)
	}

	want := filepath.Join(e.main.OutputDir, "suppliers_march_B12345678.c34")
	if result.OutputFile != want {
		t.Fatalf("OutputFile got=%s want=%s", result.OutputFile, want)
	}
	if result.Stats.Receipts != 2 || result.Stats.Payments != 2 {
		t.Fatalf("stats got=%+v", result.Stats)
	}
	if result.Stats.Amount.StringFixed(2) != "1260.00" {
		t.Fatalf("amount got=%s", result.Stats.Amount.StringFixed(2))
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	summary, err := record.Inspect(data)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !summary.Consistent() || summary.Lines != result.Stats.Records {
		t.Fatalf("summary got=%+v records=%d", summary, result.Stats.Records)
	}
	if result.Data != nil {
		t.Fatalf("Data must only be kept for dry runs")
	}

	if exists(path) || exists(receipts) {
		t.Fatalf("inputs were not archived")
	}
	for _, name := range []string{"march.yaml", "receipts.csv"} {
		if !exists(filepath.Join(e.main.InputArchiveDir, name)) {
			t.Fatalf("%s missing from archive", name)
		}
	}
}

func TestRun_DryRun(t *testing.T) {
	e := setup(t)
	path := e.write(t, "march.yaml", validOrder)
	e.write(t, "receipts.csv", "nif,bank_account,amount\n")
	e.main.LineTerminator = "lf"

	result := e.converter(t, converter.WithDryRun(true)).Run(path)
	if !result.Success {
		t.Fatalf("run failed: %v", result.Error)
	}
	if result.OutputFile != "" {
		t.Fatalf("OutputFile got=%s want empty", result.OutputFile)
	}
	if len(result.Data) != result.Stats.Size || result.Stats.Size != result.Stats.Records*(record.RecordLen+1) {
		t.Fatalf("data size got=%d records=%d", len(result.Data), result.Stats.Records)
	}
	if !exists(path) {
		t.Fatalf("dry run must leave the document in place")
	}

	entries, err := os.ReadDir(e.main.OutputDir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run wrote %d files", len(entries))
	}
}

func TestRun_ValidationFailure(t *testing.T) {
	e := setup(t)
	path := e.write(t, "bad.yaml", `
journal: suppliers
payment_date: 2024-03-15
receipts:
  - nif: A1
    name: Proveedor
    bank_account: "1234"
    amount: "1.005"
`)

	core, logs := observer.New(zapcore.DebugLevel)
	c := e.converter(t, converter.WithLogger(logging.NewSugared(zap.New(core))))

	result := c.Run(path)
	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.ErrorType() != "validation" {
		t.Fatalf("ErrorType got=%s want=validation (%v)", result.ErrorType(), result.Error)
	}
	if len(result.ValidationErrors) != 2 {
		t.Fatalf("validation errors got=%d want=2: %s", len(result.ValidationErrors), validation.FormatErrors(result.ValidationErrors))
	}
	if n := logs.FilterMessage("Validation problem").Len(); n != 2 {
		t.Fatalf("logged problems got=%d want=2", n)
	}
	for _, entry := range logs.All() {
		if entry.ContextMap()["file"] != path {
			t.Fatalf("%q file got=%v want=%s", entry.Message, entry.ContextMap()["file"], path)
		}
	}
	if !exists(path) {
		t.Fatalf("failed documents must stay in the input directory")
	}
}

func TestRun_StrictWarnings(t *testing.T) {
	e := setup(t)
	path := e.write(t, "march.yaml", validOrder)
	e.write(t, "receipts.csv", "nif,bank_account,amount\nB2,20770024003102575766,0\n")

	strict := e.converter(t, converter.WithValidationOptions(validation.ValidationOptions{TreatWarningsAsErrors: true}))
	result := strict.Validate(path)
	if result.Success || result.ErrorType() != "validation" {
		t.Fatalf("strict result got success=%v type=%s", result.Success, result.ErrorType())
	}

	if lenient := e.converter(t).Validate(path); !lenient.Success {
		t.Fatalf("lenient validation failed: %v", lenient.Error)
	}
}

func TestRun_ErrorTypes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown journal", "journal: treasury\n", "configuration"},
		{"bad receipt row", "journal: suppliers\nreceipts:\n  - amount: lots\n", "receipts"},
		{"unsupported receipts", "journal: suppliers\nreceipts_file: receipts.pdf\n", "receipts"},
		{"overflow", `
journal: suppliers
payment_date: 2024-03-15
receipts:
  - {nif: A1, bank_account: "20770024003102575766", amount: "9999999999.99"}
  - {nif: B2, bank_account: "20770024003102575766", amount: "1"}
`, "amount_overflow"},
		{"bad yaml", "receipts: [", "processing"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := setup(t)
			path := e.write(t, "order.yaml", tc.content)

			result := e.converter(t).Run(path)
			if result.Success {
				t.Fatalf("expected failure")
			}
			if got := result.ErrorType(); got != tc.want {
				t.Fatalf("ErrorType got=%s want=%s (%v)", got, tc.want, result.Error)
			}
		})
	}
}

func TestRun_UnknownProcessMethod(t *testing.T) {
	e := setup(t)
	e.journals["suppliers"].ProcessMethod = "sepa_xml"
	path := e.write(t, "march.yaml", validOrder)
	e.write(t, "receipts.csv", "nif,bank_account,amount\n")

	result := e.converter(t).Run(path)
	if result.ErrorType() != "configuration" {
		t.Fatalf("ErrorType got=%s want=configuration (%v)", result.ErrorType(), result.Error)
	}
}
