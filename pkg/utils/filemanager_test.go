package utils_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/csb3411-remittance/pkg/utils"
	"github.com/shopspring/decimal"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		params  map[string]string
		pattern string
	}{
		{"params", "{nif}_{suffix}.c34", map[string]string{"nif": "B12345678", "suffix": "000"}, `^B12345678_000\.c34$`},
		{"timestamp", "{nif}_{timestamp}.c34", map[string]string{"nif": "B1"}, `^B1_\d{8}_\d{6}\.c34$`},
		{"date and time", "{date}-{time}.txt", nil, `^\d{8}-\d{6}\.txt$`},
		{"uuid", "{uuid}", nil, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.c34$`},
		{"extension added", "{journal}_{original}", map[string]string{"journal": "suppliers", "original": "march"}, `^suppliers_march\.c34$`},
		{"sanitized", "{original}.c34", map[string]string{"original": " ../a/b:c "}, `^\.\._a_b_c\.c34$`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := utils.GenerateOutputFileName(tc.format, tc.params)
			if !regexp.MustCompile(tc.pattern).MatchString(got) {
				t.Fatalf("got=%s want match %s", got, tc.pattern)
			}
		})
	}
}

func TestDiscoverOrderFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "receipts.csv"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.yaml"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	fm := utils.NewFileManager(dir, t.TempDir(), t.TempDir())

	files, err := fm.DiscoverOrderFiles()
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("files got=%v want=%v", files, want)
	}

	files, err = fm.DiscoverOrderFiles("*.yaml", "b.*")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("duplicates not removed: %v", files)
	}
}

func TestArchiveInputFile(t *testing.T) {
	in := t.TempDir()
	archive := filepath.Join(t.TempDir(), "archive")
	path := filepath.Join(in, "order.yaml")
	touch(t, path)

	fm := utils.NewFileManager(in, t.TempDir(), archive)
	fm.UseTimestampSubdirs = true

	archived, err := fm.ArchiveInputFile(path)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("original still present")
	}
	wantDir := filepath.Join(archive, time.Now().Format("2006"), time.Now().Format("01"), time.Now().Format("02"))
	if filepath.Dir(archived) != wantDir {
		t.Fatalf("archived got=%s want dir %s", archived, wantDir)
	}

	fm.ArchiveOnSuccess = false
	other := filepath.Join(in, "keep.yaml")
	touch(t, other)
	if got, err := fm.ArchiveInputFile(other); err != nil || got != other {
		t.Fatalf("archive disabled got=%s err=%v", got, err)
	}
}

func TestWriteLogs(t *testing.T) {
	dir := t.TempDir()

	path, err := utils.WriteErrorLog(nil, dir)
	if err != nil || path != "" {
		t.Fatalf("empty log got=%s err=%v", path, err)
	}

	path, err = utils.WriteErrorLog([]utils.ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "march.yaml",
		ErrorType:    "validation",
		ErrorMessage: "Amount is missing",
		Receipt:      3,
		FieldName:    "amount",
	}}, dir)
	if err != nil {
		t.Fatalf("write error log: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{"Total Errors: 1", "march.yaml", "Receipt:        3", "Field:          amount"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("error log missing %q:\n%s", want, data)
		}
	}

	path, err = utils.WriteSummaryLog(utils.ProcessingSummary{
		StartTime:       time.Now(),
		EndTime:         time.Now(),
		TotalFiles:      1,
		SuccessfulFiles: 1,
		TotalAmount:     decimal.RequireFromString("1260"),
		ProcessedFiles:  []utils.ProcessedFileInfo{{InputFile: "march.yaml", Amount: decimal.RequireFromString("1260")}},
	}, dir)
	if err != nil {
		t.Fatalf("write summary: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "Amount:         1260.00") {
		t.Fatalf("summary missing amount:\n%s", data)
	}
}
