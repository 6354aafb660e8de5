package record

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ianlopshire/go-fixedwidth"
	"github.com/shopspring/decimal"
)

// footerLine is the decoded key and totals area of a footer.
type footerLine struct {
	RecordCode string `fixed:"1,2"`
	DataCode   string `fixed:"3,4"`
	NIF        string `fixed:"5,13"`
	Suffix     string `fixed:"14,16"`
	Amount     int64  `fixed:"32,43"`
	Payments   int64  `fixed:"44,51"`
	Records    int64  `fixed:"52,61"`
}

// paymentLine is the decoded amount of a 010 detail record.
type paymentLine struct {
	RecordCode string `fixed:"1,2"`
	DataCode   string `fixed:"3,4"`
	Recipient  string `fixed:"17,28"`
	DataNumber string `fixed:"29,31"`
	Amount     int64  `fixed:"32,43"`
}

// Totals is what a footer declares.
type Totals struct {
	Amount   decimal.Decimal
	Payments int
	Records  int
}

// Summary describes an encoded remittance file.
type Summary struct {
	NIF    string
	Suffix string

	// OperationCode is the data code of the detail records.
	OperationCode string

	// Lines counts every record of the file.
	Lines int

	// Counted are the totals recomputed from the records themselves.
	Counted Totals

	// National and Ordering are the totals declared by the footers.
	National Totals
	Ordering Totals

	// Problems lists every mismatch between declared and counted totals.
	Problems []string
}

// Consistent reports whether the footers agree with the records.
func (s *Summary) Consistent() bool { return len(s.Problems) == 0 }

// Inspect decodes an encoded file and checks its footers. Both CRLF and LF
// terminated files are accepted.
func Inspect(data []byte) (*Summary, error) {
	summary := &Summary{}

	var (
		nationalBlock int
		footers       = map[string]*Totals{"08": &summary.National, "09": &summary.Ordering}
		seen          = map[string]bool{}
	)

	for n, raw := range bytes.Split(data, []byte("\n")) {
		line := bytes.TrimSuffix(raw, []byte("\r"))
		if len(line) == 0 {
			continue
		}
		if len(line) != RecordLen {
			return nil, fmt.Errorf("line %d has %d characters, want %d", n+1, len(line), RecordLen)
		}
		summary.Lines++

		code := string(line[0:2])
		switch code {
		case "04", "06", "08":
			nationalBlock++
		}

		switch code {
		case "06":
			var p paymentLine
			if err := fixedwidth.Unmarshal(line, &p); err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			summary.OperationCode = strings.TrimSpace(p.DataCode)
			if strings.TrimSpace(p.DataNumber) == "010" {
				summary.Counted.Payments++
				summary.Counted.Amount = summary.Counted.Amount.Add(decimal.New(p.Amount, -2))
			}

		case "08", "09":
			var f footerLine
			if err := fixedwidth.Unmarshal(line, &f); err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			*footers[code] = Totals{
				Amount:   decimal.New(f.Amount, -2),
				Payments: int(f.Payments),
				Records:  int(f.Records),
			}
			seen[code] = true
			if code == "09" {
				summary.NIF = strings.TrimSpace(f.NIF)
				summary.Suffix = strings.TrimSpace(f.Suffix)
			}

		case "03", "04":
		default:
			return nil, fmt.Errorf("line %d: unknown record code %q", n+1, code)
		}
	}

	summary.Counted.Records = summary.Lines

	for _, code := range []string{"08", "09"} {
		if !seen[code] {
			summary.Problems = append(summary.Problems, fmt.Sprintf("missing footer %s", code))
		}
	}

	check := func(what string, declared, counted any) {
		if fmt.Sprint(declared) != fmt.Sprint(counted) {
			summary.Problems = append(summary.Problems,
				fmt.Sprintf("%s: footer declares %v, file has %v", what, declared, counted))
		}
	}

	if seen["08"] {
		check("national amount", summary.National.Amount.StringFixed(2), summary.Counted.Amount.StringFixed(2))
		check("national payments", summary.National.Payments, summary.Counted.Payments)
		check("national records", summary.National.Records, nationalBlock)
	}
	if seen["09"] {
		check("ordering amount", summary.Ordering.Amount.StringFixed(2), summary.Counted.Amount.StringFixed(2))
		check("ordering payments", summary.Ordering.Payments, summary.Counted.Payments)
		check("ordering records", summary.Ordering.Records, summary.Counted.Records)
	}

	return summary, nil
}
