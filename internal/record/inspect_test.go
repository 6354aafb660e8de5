package record_test

import (
	"bytes"
	"testing"

	"github.com/ginjaninja78/csb3411-remittance/internal/record"
	"github.com/shopspring/decimal"
)

// smallFile builds a national block with one payment and both footers.
func smallFile(t *testing.T, orderingRecords int) []byte {
	t.Helper()

	c := record.New()
	amount := decimal.RequireFromString("10.00")
	footer := func(records int) record.Fields {
		return record.Fields{
			record.FieldNIF:              testNIF,
			record.FieldSuffix:           "000",
			record.FieldAmount:           amount,
			record.FieldPaymentLineCount: 1,
			record.FieldRecordCount:      records,
		}
	}

	plan := []struct {
		typ    record.Type
		fields record.Fields
	}{
		{record.NationalHeader, record.Fields{record.FieldNIF: testNIF}},
		{record.Detail010, record.Fields{
			record.FieldDataCode:     "56",
			record.FieldNIF:          testNIF,
			record.FieldSuffix:       "000",
			record.FieldRecipientNIF: testPayee,
			record.FieldAmount:       &amount,
			record.FieldAccount:      testCCC,
			record.FieldCost:         "1",
		}},
		{record.NationalFooter, footer(3)},
		{record.OrderingFooter, footer(orderingRecords)},
	}

	var buf bytes.Buffer
	for _, p := range plan {
		line, err := c.Build(p.typ, p.fields)
		if err != nil {
			t.Fatalf("build %s: %v", p.typ, err)
		}
		buf.Write(line)
	}
	return buf.Bytes()
}

func TestInspect_ConsistentFile(t *testing.T) {
	summary, err := record.Inspect(smallFile(t, 4))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !summary.Consistent() {
		t.Fatalf("problems: %v", summary.Problems)
	}
	if summary.Lines != 4 {
		t.Fatalf("Lines got=%d want=%d", summary.Lines, 4)
	}
	if summary.NIF != testNIF || summary.Suffix != "000" {
		t.Fatalf("key got=%s/%s want=%s/000", summary.NIF, summary.Suffix, testNIF)
	}
	if summary.OperationCode != "56" {
		t.Fatalf("OperationCode got=%s want=56", summary.OperationCode)
	}
	if summary.Ordering.Amount.StringFixed(2) != "10.00" {
		t.Fatalf("Ordering.Amount got=%s want=10.00", summary.Ordering.Amount.StringFixed(2))
	}
	if summary.National.Records != 3 {
		t.Fatalf("National.Records got=%d want=%d", summary.National.Records, 3)
	}
}

func TestInspect_DetectsWrongRecordCount(t *testing.T) {
	summary, err := record.Inspect(smallFile(t, 7))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if summary.Consistent() {
		t.Fatalf("expected a record count problem")
	}
	if len(summary.Problems) != 1 {
		t.Fatalf("problems got=%v want exactly one", summary.Problems)
	}
}

func TestInspect_RejectsShortLines(t *testing.T) {
	if _, err := record.Inspect([]byte("0362B12345678\r\n")); err == nil {
		t.Fatalf("expected an error for a short line")
	}
}

func TestInspect_ReportsMissingFooters(t *testing.T) {
	data := smallFile(t, 4)
	// Keep the national header and the detail only.
	summary, err := record.Inspect(data[:2*(record.RecordLen+2)])
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if len(summary.Problems) != 2 {
		t.Fatalf("problems got=%v want both footers missing", summary.Problems)
	}
}
