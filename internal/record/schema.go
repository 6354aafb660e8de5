// =============================================================================
// CSB 34-11 Remittance - Record Layouts
// =============================================================================
//
// Every CSB 34-11 record is 72 characters long and shares a common key:
//
//   | pos   | len | field                                           |
//   |-------|-----|-------------------------------------------------|
//   | 1-2   | 2   | record code (03, 04, 06, 08, 09)                |
//   | 3-4   | 2   | data code (62, 56 or the operation code)        |
//   | 5-13  | 9   | ordering party NIF                              |
//   | 14-16 | 3   | suffix                                          |
//   | 17-28 | 12  | beneficiary NIF (detail records only)           |
//   | 29-31 | 3   | data number (001-004, 010-016)                  |
//   | 32-72 | 41  | record specific data                            |
//
// The record specific data of each type is listed next to its layout below.
//
// =============================================================================

package record

// RecordLen is the fixed width of every record, terminator excluded.
const RecordLen = 72

// =============================================================================
// FIELD DEFINITIONS
// =============================================================================

// Kind controls how a field value is justified, padded and validated.
type Kind int

const (
	Alpha   Kind = iota // left-justified, space-filled, uppercase bank charset, truncated
	Numeric             // right-justified, zero-filled digits only
	Money               // right-justified, zero-filled cents
	Date                // DDMMYY
	Flag                // "1" or "0"
	Account             // 20 digit CCC (Spanish IBAN accepted)
	Fixed               // literal constant
	Blank               // spaces
)

// Field is one positioned field of a record layout. Positions are 1-based and
// inclusive, as printed in the bank's layout tables.
type Field struct {
	Name    string
	Start   int
	End     int
	Kind    Kind
	Literal string
}

// Len returns the field width.
func (f Field) Len() int { return f.End - f.Start + 1 }

// =============================================================================
// RECORD TYPES
// =============================================================================

// Type identifies a record layout.
type Type string

const (
	OrderingHeader001 Type = "ordering_header_001"
	OrderingHeader002 Type = "ordering_header_002"
	OrderingHeader003 Type = "ordering_header_003"
	OrderingHeader004 Type = "ordering_header_004"
	NationalHeader    Type = "national_header"
	Detail010         Type = "detail_010"
	Detail011         Type = "detail_011"
	Detail012         Type = "detail_012"
	Detail013         Type = "detail_013"
	Detail014         Type = "detail_014"
	Detail015         Type = "detail_015"
	Detail016         Type = "detail_016"
	NationalFooter    Type = "national_footer"
	OrderingFooter    Type = "ordering_footer"
)

// Field names accepted by Build.
const (
	FieldDataCode         = "data_code"
	FieldNIF              = "nif"
	FieldSuffix           = "suffix"
	FieldRecipientNIF     = "recipient_nif"
	FieldSendDate         = "send_date"
	FieldCreationDate     = "creation_date"
	FieldAccount          = "account"
	FieldChargeDetail     = "charge_detail"
	FieldName             = "name"
	FieldAddress          = "address"
	FieldZip              = "zip"
	FieldCity             = "city"
	FieldAmount           = "amount"
	FieldCost             = "cost"
	FieldConcept          = "concept"
	FieldDirectPayment    = "direct_payment"
	FieldStreet           = "street"
	FieldStreet2          = "street2"
	FieldCountryCode      = "country_code"
	FieldState            = "state"
	FieldBeneficiaryNIF   = "beneficiary_nif"
	FieldPaymentLineCount = "payment_line_count"
	FieldRecordCount      = "record_count"
)

// =============================================================================
// LAYOUTS
// =============================================================================

// headerKey is the common key of ordering and national records.
func headerKey(recordCode, dataCode, dataNumber string) []Field {
	key := []Field{
		{Name: "record_code", Start: 1, End: 2, Kind: Fixed, Literal: recordCode},
		{Name: FieldDataCode, Start: 3, End: 4, Kind: Fixed, Literal: dataCode},
		{Name: FieldNIF, Start: 5, End: 13, Kind: Alpha},
		{Name: FieldSuffix, Start: 14, End: 16, Kind: Alpha},
		{Name: "blank17", Start: 17, End: 28, Kind: Blank},
	}
	if dataNumber == "" {
		return append(key, Field{Name: "blank29", Start: 29, End: 31, Kind: Blank})
	}
	return append(key, Field{Name: "data_number", Start: 29, End: 31, Kind: Fixed, Literal: dataNumber})
}

// detailKey is the common key of beneficiary records. The data code is the
// operation code of the order and is supplied by the caller.
func detailKey(dataNumber string) []Field {
	return []Field{
		{Name: "record_code", Start: 1, End: 2, Kind: Fixed, Literal: "06"},
		{Name: FieldDataCode, Start: 3, End: 4, Kind: Numeric},
		{Name: FieldNIF, Start: 5, End: 13, Kind: Alpha},
		{Name: FieldSuffix, Start: 14, End: 16, Kind: Alpha},
		{Name: FieldRecipientNIF, Start: 17, End: 28, Kind: Alpha},
		{Name: "data_number", Start: 29, End: 31, Kind: Fixed, Literal: dataNumber},
	}
}

// textLine is a 36 character text field followed by filler.
func textLine(name string) []Field {
	return []Field{
		{Name: name, Start: 32, End: 67, Kind: Alpha},
		{Name: "blank68", Start: 68, End: 72, Kind: Blank},
	}
}

// zipCity is a 5 character postal code and a 31 character town.
func zipCity() []Field {
	return []Field{
		{Name: FieldZip, Start: 32, End: 36, Kind: Alpha},
		{Name: FieldCity, Start: 37, End: 67, Kind: Alpha},
		{Name: "blank68", Start: 68, End: 72, Kind: Blank},
	}
}

// totals is the data area shared by both footers.
func totals() []Field {
	return []Field{
		{Name: FieldAmount, Start: 32, End: 43, Kind: Money},
		{Name: FieldPaymentLineCount, Start: 44, End: 51, Kind: Numeric},
		{Name: FieldRecordCount, Start: 52, End: 61, Kind: Numeric},
		{Name: "blank62", Start: 62, End: 72, Kind: Blank},
	}
}

func join(parts ...[]Field) []Field {
	var out []Field
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// layouts maps each record type to its ordered field list.
var layouts = map[Type][]Field{
	// 32-37 send date, 38-43 creation date, 44-63 account, 64 charge detail.
	OrderingHeader001: join(headerKey("03", "62", "001"), []Field{
		{Name: FieldSendDate, Start: 32, End: 37, Kind: Date},
		{Name: FieldCreationDate, Start: 38, End: 43, Kind: Date},
		{Name: FieldAccount, Start: 44, End: 63, Kind: Account},
		{Name: FieldChargeDetail, Start: 64, End: 64, Kind: Flag},
		{Name: "blank65", Start: 65, End: 72, Kind: Blank},
	}),
	OrderingHeader002: join(headerKey("03", "62", "002"), textLine(FieldName)),
	OrderingHeader003: join(headerKey("03", "62", "003"), textLine(FieldAddress)),
	OrderingHeader004: join(headerKey("03", "62", "004"), zipCity()),

	NationalHeader: join(headerKey("04", "56", ""), []Field{
		{Name: "blank32", Start: 32, End: 72, Kind: Blank},
	}),

	// 32-43 amount, 44-63 account, 64 cost, 65 direct payment, 66-72 concept.
	Detail010: join(detailKey("010"), []Field{
		{Name: FieldAmount, Start: 32, End: 43, Kind: Money},
		{Name: FieldAccount, Start: 44, End: 63, Kind: Account},
		{Name: FieldCost, Start: 64, End: 64, Kind: Numeric},
		{Name: FieldDirectPayment, Start: 65, End: 65, Kind: Flag},
		{Name: FieldConcept, Start: 66, End: 72, Kind: Alpha},
	}),
	Detail011: join(detailKey("011"), textLine(FieldName)),
	Detail012: join(detailKey("012"), textLine(FieldStreet)),
	Detail013: join(detailKey("013"), textLine(FieldStreet2)),
	Detail014: join(detailKey("014"), zipCity()),
	// 32-33 country code, 34-67 state.
	Detail015: join(detailKey("015"), []Field{
		{Name: FieldCountryCode, Start: 32, End: 33, Kind: Alpha},
		{Name: FieldState, Start: 34, End: 67, Kind: Alpha},
		{Name: "blank68", Start: 68, End: 72, Kind: Blank},
	}),
	Detail016: join(detailKey("016"), []Field{
		{Name: FieldBeneficiaryNIF, Start: 32, End: 43, Kind: Alpha},
		{Name: "blank44", Start: 44, End: 72, Kind: Blank},
	}),

	NationalFooter: join(headerKey("08", "56", ""), totals()),
	OrderingFooter: join(headerKey("09", "62", ""), totals()),
}

// Layout returns the field list of a record type.
func Layout(t Type) ([]Field, bool) {
	fields, ok := layouts[t]
	return fields, ok
}

// FieldWidth returns the width of a named field, or 0 when the record type
// has no such field.
func FieldWidth(t Type, name string) int {
	for _, f := range layouts[t] {
		if f.Name == name {
			return f.Len()
		}
	}
	return 0
}
