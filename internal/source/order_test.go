package source_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/source"
	"github.com/ginjaninja78/csb3411-remittance/internal/types"
)

func journals() map[string]*config.JournalConfig {
	return map[string]*config.JournalConfig{
		"suppliers": {
			JournalCode:          "suppliers",
			NIF:                  "B12345678",
			Suffix:               "000",
			Name:                 "Ordenante SL",
			BankAccount:          "ES9121000418450200051332",
			Type:                 types.OrderTransfer,
			SendType:             types.SendOther,
			FileMatchingPatterns: []string{"prov_*.yaml"},
			CSVSettings:          config.CSVSettings{Delimiter: ",", HeaderRow: 1, DataStartRow: 2},
			TransformationRules: []config.TransformationRule{
				{Field: "amount", Actions: []config.TransformationAction{{Type: "decimal_comma"}}},
			},
		},
		"payroll": {
			JournalCode:          "payroll",
			NIF:                  "B12345678",
			Suffix:               "001",
			BankAccount:          "21000418450200051332",
			Type:                 types.OrderCheque,
			SendType:             types.SendMail,
			PayrollCheck:         true,
			FileMatchingPatterns: []string{"nom_*.yaml"},
		},
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "march.csv"), "cif,importe,iban\nC3,\"3,00\",20770024003102575766\n")
	path := filepath.Join(dir, "order.yaml")
	writeFile(t, path, `
journal: suppliers
suffix: "002"
payment_date: 2024-03-15
creation_date: 2024-03-01
receipts_file: march.csv
receipts:
  - nif: A1
    Nombre: Ferretería Núñez
    amount: "1.250,40"
    bank_account: ES7620770024003102575766
  - nif: B2
    amount: "2"
    bank_account: ES7620770024003102575766
`)

	order, err := source.NewLoader(journals()).Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if order.Journal.JournalCode != "suppliers" {
		t.Fatalf("journal got=%s", order.Journal.JournalCode)
	}
	if order.ReceiptsFile != filepath.Join(dir, "march.csv") {
		t.Fatalf("ReceiptsFile got=%s", order.ReceiptsFile)
	}

	po := order.PaymentOrder
	if po.Suffix != "002" || po.NIF != "B12345678" || po.Name != "Ordenante SL" {
		t.Fatalf("ordering party got=%s/%s/%s", po.NIF, po.Suffix, po.Name)
	}
	if po.PaymentDate.Format(source.DateLayout) != "2024-03-15" || po.CreationDate.Format(source.DateLayout) != "2024-03-01" {
		t.Fatalf("dates got=%s %s", po.PaymentDate, po.CreationDate)
	}

	if len(po.Receipts) != 3 {
		t.Fatalf("receipts got=%d want=%d", len(po.Receipts), 3)
	}
	wantNIFs := []string{"A1", "B2", "C3"}
	wantAmounts := []string{"1250.40", "2.00", "3.00"}
	for i, r := range po.Receipts {
		if r.NIF != wantNIFs[i] || r.Amount.StringFixed(2) != wantAmounts[i] {
			t.Fatalf("receipt %d got=%s %s want=%s %s", i+1, r.NIF, r.Amount.StringFixed(2), wantNIFs[i], wantAmounts[i])
		}
	}
	if po.Receipts[0].Name != "Ferretería Núñez" {
		t.Fatalf("name got=%q", po.Receipts[0].Name)
	}
	if po.TotalAmount().StringFixed(2) != "1255.40" {
		t.Fatalf("total got=%s", po.TotalAmount().StringFixed(2))
	}
}

func TestLoader_ResolveJournalByPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nom_marzo.yaml")
	writeFile(t, path, `
payment_date: 2024-03-28
payroll_check: false
receipts:
  - nif: A1
    amount: "900"
`)

	order, err := source.NewLoader(journals()).Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	po := order.PaymentOrder
	if order.Journal.JournalCode != "payroll" || po.Type != types.OrderCheque || po.SendType != types.SendMail {
		t.Fatalf("journal got=%s type=%s send=%s", order.Journal.JournalCode, po.Type, po.SendType)
	}
	if po.PayrollCheck {
		t.Fatalf("document payroll_check must override the journal")
	}
	if po.CreationDate.IsZero() {
		t.Fatalf("creation date must default to now")
	}
}

func TestLoader_SingleJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anything.yaml")
	writeFile(t, path, "payment_date: 2024-03-28\n")

	only := map[string]*config.JournalConfig{"payroll": journals()["payroll"]}
	order, err := source.NewLoader(only).Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if order.Journal.JournalCode != "payroll" {
		t.Fatalf("journal got=%s", order.Journal.JournalCode)
	}
	if len(order.PaymentOrder.Receipts) != 0 {
		t.Fatalf("receipts got=%d want=0", len(order.PaymentOrder.Receipts))
	}
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		noJrnl  bool
	}{
		{"unknown journal", "order.yaml", "journal: treasury\n", true},
		{"unmatched document", "order.yaml", "payment_date: 2024-03-28\n", true},
		{"bad date", "prov_1.yaml", "payment_date: 15/03/2024\n", false},
		{"bad yaml", "prov_2.yaml", "receipts: [\n", false},
		{"missing receipts file", "prov_3.yaml", "receipts_file: nowhere.csv\n", false},
		{"bad amount", "prov_4.yaml", "receipts:\n  - nif: A1\n    amount: abc\n", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			writeFile(t, path, tc.content)

			_, err := source.NewLoader(journals()).Load(path)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got := errors.Is(err, source.ErrNoJournal); got != tc.noJrnl {
				t.Fatalf("errors.Is(ErrNoJournal) got=%v want=%v (%v)", got, tc.noJrnl, err)
			}
		})
	}
}
