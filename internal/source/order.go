// =============================================================================
// CSB 34-11 Remittance - Order Documents
// =============================================================================
//
// An order document is a YAML file dropped in the input directory. It names
// its journal, overrides any journal default it needs to and lists the
// receipts, inline or in a CSV/XLSX file next to the document.
//
// EXAMPLE:
//   journal: suppliers
//   payment_date: 2024-03-15
//   receipts_file: march.xlsx
//   receipts:
//     - nif: B12345678
//       name: Ferretería Núñez SL
//       bank_account: ES9121000418450200051332
//       amount: "1250.40"
//       concept: FRA 2024/118
//
// =============================================================================

package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/types"
	"gopkg.in/yaml.v3"
)

// DateLayout is the date format of order documents.
const DateLayout = "2006-01-02"

// ErrNoJournal is returned when an order document cannot be matched to a
// journal.
var ErrNoJournal = errors.New("no journal configured for order")

// orderDocument is the YAML shape of an order document. Every ordering
// party field is optional and falls back to the journal.
type orderDocument struct {
	Journal      string              `yaml:"journal"`
	NIF          string              `yaml:"nif"`
	Suffix       string              `yaml:"suffix"`
	Name         string              `yaml:"name"`
	Street       string              `yaml:"street"`
	Zip          string              `yaml:"zip"`
	City         string              `yaml:"city"`
	BankAccount  string              `yaml:"bank_account"`
	PaymentDate  string              `yaml:"payment_date"`
	CreationDate string              `yaml:"creation_date"`
	Type         string              `yaml:"type"`
	SendType     string              `yaml:"send_type"`
	PayrollCheck *bool               `yaml:"payroll_check"`
	ReceiptsFile string              `yaml:"receipts_file"`
	Receipts     []map[string]string `yaml:"receipts"`
}

// Order is a loaded order document.
type Order struct {
	// Path is the document the order was read from.
	Path string

	// Journal is the journal the order belongs to.
	Journal *config.JournalConfig

	// ReceiptsFile is the resolved receipts file, empty for inline receipts.
	ReceiptsFile string

	PaymentOrder *types.PaymentOrder
}

// Loader reads order documents.
type Loader struct {
	journals map[string]*config.JournalConfig

	// now supplies the creation date of documents that do not set one.
	now func() time.Time
}

// NewLoader creates a Loader resolving documents against journals.
func NewLoader(journals map[string]*config.JournalConfig) *Loader {
	return &Loader{journals: journals, now: time.Now}
}

// Load reads the order document at path.
//
// PROCESS:
//   1. Parse the YAML document
//   2. Resolve the journal (explicit code, file pattern, or the only journal)
//   3. Merge journal defaults into the ordering party
//   4. Read inline receipts, then the receipts file, applying the journal
//      transformation rules to each row
func (l *Loader) Load(path string) (*Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read order: %w", err)
	}

	var doc orderDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse order: %w", err)
	}

	journal, err := l.resolveJournal(path, doc.Journal)
	if err != nil {
		return nil, err
	}

	order, err := l.buildOrder(&doc, journal)
	if err != nil {
		return nil, err
	}

	transformer := NewTransformer(journal.TransformationRules)

	rows := make([]map[string]string, 0, len(doc.Receipts))
	for _, inline := range doc.Receipts {
		row := make(map[string]string, len(inline))
		for k, v := range inline {
			row[normalizeHeader(k)] = strings.TrimSpace(v)
		}
		rows = append(rows, row)
	}

	receiptsPath := doc.ReceiptsFile
	if receiptsPath != "" {
		if !filepath.IsAbs(receiptsPath) {
			receiptsPath = filepath.Join(filepath.Dir(path), receiptsPath)
		}
		fileRows, err := ReadReceiptRows(receiptsPath, journal)
		if err != nil {
			return nil, fmt.Errorf("failed to read receipts file: %w", err)
		}
		rows = append(rows, fileRows...)
	}

	order.Receipts, err = ReceiptsFromRows(rows, transformer)
	if err != nil {
		return nil, err
	}

	return &Order{Path: path, Journal: journal, ReceiptsFile: receiptsPath, PaymentOrder: order}, nil
}

// resolveJournal finds the journal of a document.
func (l *Loader) resolveJournal(path, code string) (*config.JournalConfig, error) {
	if code != "" {
		journal, ok := l.journals[code]
		if !ok {
			return nil, fmt.Errorf("%w: unknown journal %q", ErrNoJournal, code)
		}
		return journal, nil
	}

	codes := make([]string, 0, len(l.journals))
	for c := range l.journals {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	base := filepath.Base(path)
	for _, c := range codes {
		for _, pattern := range l.journals[c].FileMatchingPatterns {
			if matched, _ := filepath.Match(pattern, base); matched {
				return l.journals[c], nil
			}
		}
	}

	if len(codes) == 1 {
		return l.journals[codes[0]], nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoJournal, base)
}

// buildOrder merges the document over the journal defaults.
func (l *Loader) buildOrder(doc *orderDocument, journal *config.JournalConfig) (*types.PaymentOrder, error) {
	order := &types.PaymentOrder{
		NIF:          firstNonEmpty(doc.NIF, journal.NIF),
		Suffix:       firstNonEmpty(doc.Suffix, journal.Suffix),
		Name:         firstNonEmpty(doc.Name, journal.Name),
		Street:       firstNonEmpty(doc.Street, journal.Street),
		Zip:          firstNonEmpty(doc.Zip, journal.Zip),
		City:         firstNonEmpty(doc.City, journal.City),
		BankAccount:  firstNonEmpty(doc.BankAccount, journal.BankAccount),
		Type:         types.OrderType(firstNonEmpty(doc.Type, string(journal.Type))),
		SendType:     types.SendType(firstNonEmpty(doc.SendType, string(journal.SendType))),
		PayrollCheck: journal.PayrollCheck,
	}

	if doc.PayrollCheck != nil {
		order.PayrollCheck = *doc.PayrollCheck
	}

	if doc.PaymentDate != "" {
		date, err := time.Parse(DateLayout, doc.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("invalid payment_date %q: expected YYYY-MM-DD", doc.PaymentDate)
		}
		order.PaymentDate = date
	}

	if doc.CreationDate != "" {
		date, err := time.Parse(DateLayout, doc.CreationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid creation_date %q: expected YYYY-MM-DD", doc.CreationDate)
		}
		order.CreationDate = date
	} else {
		order.CreationDate = l.now()
	}

	return order, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
