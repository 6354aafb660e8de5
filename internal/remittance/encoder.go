// =============================================================================
// CSB 34-11 Remittance - Encoder
// =============================================================================
//
// The encoder turns one payment order into the body of a CSB 34-11 file.
//
// RECORD SEQUENCE:
//   03/62 001  ordering header: dates, account, charge detail
//   03/62 002  ordering header: name
//   03/62 003  ordering header: street
//   03/62 004  ordering header: zip and city
//   04/56      national header
//   for each receipt, in input order:
//     06 010   amount, account, cost, direct payment, concept   (always)
//     06 011   name                                             (always)
//     06 012   street                                           (street set)
//     06 013   street line 2                                    (street2 set)
//     06 014   zip and city                                     (zip or city set)
//     06 015   country and state             (not a transfer, posted documents)
//     06 016   beneficiary NIF               (015 written and payroll cheques)
//   08/56      national footer: amount, payments, block records
//   09/62      ordering footer: amount, payments, file records
//
// =============================================================================

package remittance

import (
	"bytes"
	"fmt"

	"github.com/ginjaninja78/csb3411-remittance/internal/record"
	"github.com/ginjaninja78/csb3411-remittance/internal/types"
	"github.com/ginjaninja78/csb3411-remittance/internal/validation"
	"github.com/shopspring/decimal"
)

// chargeDetail is written into the first ordering header. Banks also accept
// true, but no order selects it.
const chargeDetail = false

// defaultCost is used for receipts without a cost allocation code: expenses
// are charged to the ordering party.
const defaultCost = "1"

// DefaultOperationCodes maps order types to the data code of detail records.
var DefaultOperationCodes = map[types.OrderType]string{
	types.OrderTransfer:         "56",
	types.OrderCheque:           "57",
	types.OrderPromissoryNote:   "58",
	types.OrderCertifiedPayment: "59",
	types.OrderDirectDebit:      "60",
}

// Codec builds a single fixed-width record.
type Codec interface {
	Build(t record.Type, fields record.Fields) ([]byte, error)
}

// AmountOverflowError is returned when the order total does not fit the
// amount field of the footers.
type AmountOverflowError struct {
	Total decimal.Decimal
	Max   decimal.Decimal
}

func (e *AmountOverflowError) Error() string {
	return fmt.Sprintf("total amount %s exceeds the footer maximum %s", e.Total.StringFixed(2), e.Max.StringFixed(2))
}

// =============================================================================
// ENCODER
// =============================================================================

// Encoder produces CSB 34-11 files. It holds no per-order state, so one
// Encoder may serve concurrent Encode calls.
type Encoder struct {
	codec          Codec
	operationCodes map[types.OrderType]string
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithOperationCodes overrides entries of DefaultOperationCodes.
func WithOperationCodes(codes map[types.OrderType]string) Option {
	return func(e *Encoder) {
		for orderType, code := range codes {
			e.operationCodes[orderType] = code
		}
	}
}

// NewEncoder creates an Encoder writing records through codec.
func NewEncoder(codec Codec, opts ...Option) *Encoder {
	e := &Encoder{
		codec:          codec,
		operationCodes: make(map[types.OrderType]string, len(DefaultOperationCodes)),
	}
	for orderType, code := range DefaultOperationCodes {
		e.operationCodes[orderType] = code
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// planned is a record waiting to be emitted together with the way it counts.
type planned struct {
	kind   record.Type
	fields record.Fields
	tally  tally
}

// Encode returns the complete file body for order. Nothing is returned when
// any record fails.
func (e *Encoder) Encode(order *types.PaymentOrder) ([]byte, error) {
	data, _, err := e.EncodeWithTotals(order)
	return data, err
}

// EncodeWithTotals is Encode that also returns the final running totals.
//
// ERRORS:
//   - validation.Errors for incomplete or malformed orders.
//   - *AmountOverflowError when the total does not fit the footers.
//   - *record.FieldError from the codec, unchanged.
func (e *Encoder) EncodeWithTotals(order *types.PaymentOrder) ([]byte, RunningTotals, error) {
	if order == nil {
		return nil, RunningTotals{}, validation.Errors{{
			Severity: validation.SeverityError,
			Field:    "order",
			Rule:     "required",
			Message:  "payment order is required",
		}}
	}

	if err := validation.ValidateOrder(order); err != nil {
		return nil, RunningTotals{}, err
	}

	dataCode, ok := e.operationCodes[order.Type]
	if !ok {
		return nil, RunningTotals{}, validation.Errors{{
			Severity: validation.SeverityError,
			Field:    "type",
			Value:    string(order.Type),
			Rule:     "operation_code",
			Message:  "no operation code is configured for this order type",
		}}
	}

	amount := order.TotalAmount()
	maxAmount := record.MaxAmount(record.FieldWidth(record.OrderingFooter, record.FieldAmount))
	if amount.GreaterThan(maxAmount) {
		return nil, RunningTotals{}, &AmountOverflowError{Total: amount, Max: maxAmount}
	}

	var (
		buffer bytes.Buffer
		totals RunningTotals
		line   []byte
		err    error
	)

	for _, p := range headerRecords(order) {
		if totals, line, err = e.emit(totals, p); err != nil {
			return nil, RunningTotals{}, err
		}
		buffer.Write(line)
	}

	for i := range order.Receipts {
		for _, p := range receiptRecords(order, &order.Receipts[i], dataCode) {
			if totals, line, err = e.emit(totals, p); err != nil {
				return nil, RunningTotals{}, err
			}
			buffer.Write(line)
		}
		totals = totals.paid()
	}

	national := footer(record.NationalFooter, order, amount, totals.Payments, totals.nationalBlockCount())
	if totals, line, err = e.emit(totals, national); err != nil {
		return nil, RunningTotals{}, err
	}
	buffer.Write(line)

	totals = totals.closed()
	ordering := footer(record.OrderingFooter, order, amount, totals.Payments, totals.Records)
	if totals, line, err = e.emit(totals, ordering); err != nil {
		return nil, RunningTotals{}, err
	}
	buffer.Write(line)

	return buffer.Bytes(), totals, nil
}

// emit builds one record and returns the totals after counting it.
func (e *Encoder) emit(totals RunningTotals, p planned) (RunningTotals, []byte, error) {
	line, err := e.codec.Build(p.kind, p.fields)
	if err != nil {
		return totals, nil, err
	}
	return p.tally(totals), line, nil
}

// =============================================================================
// RECORD PLANNING
// =============================================================================

// orderKey returns the fields every record carries.
func orderKey(order *types.PaymentOrder, extra record.Fields) record.Fields {
	fields := record.Fields{
		record.FieldNIF:    order.NIF,
		record.FieldSuffix: order.Suffix,
	}
	for name, value := range extra {
		fields[name] = value
	}
	return fields
}

// headerRecords returns the four ordering headers and the national header.
func headerRecords(order *types.PaymentOrder) []planned {
	return []planned{
		{record.OrderingHeader001, orderKey(order, record.Fields{
			record.FieldSendDate:     order.PaymentDate,
			record.FieldCreationDate: order.CreationDate,
			record.FieldAccount:      order.BankAccount,
			record.FieldChargeDetail: chargeDetail,
		}), countRecord},
		{record.OrderingHeader002, orderKey(order, record.Fields{
			record.FieldName: order.Name,
		}), countRecord},
		{record.OrderingHeader003, orderKey(order, record.Fields{
			record.FieldAddress: order.Street,
		}), countRecord},
		{record.OrderingHeader004, orderKey(order, record.Fields{
			record.FieldZip:  order.Zip,
			record.FieldCity: order.City,
		}), countRecord},
		// The national header carries no suffix.
		{record.NationalHeader, record.Fields{
			record.FieldNIF:    order.NIF,
			record.FieldSuffix: "",
		}, countBlockRecord},
	}
}

// receiptRecords returns the detail records of one receipt.
func receiptRecords(order *types.PaymentOrder, receipt *types.Receipt, dataCode string) []planned {
	detail := func(kind record.Type, extra record.Fields) planned {
		fields := orderKey(order, extra)
		fields[record.FieldDataCode] = dataCode
		fields[record.FieldRecipientNIF] = receipt.NIF
		return planned{kind: kind, fields: fields, tally: countBlockRecord}
	}

	cost := receipt.Cost
	if cost == "" {
		cost = defaultCost
	}

	records := []planned{
		detail(record.Detail010, record.Fields{
			record.FieldAmount:        receipt.Amount,
			record.FieldAccount:       receipt.BankAccount,
			record.FieldCost:          cost,
			record.FieldConcept:       receipt.Concept,
			record.FieldDirectPayment: receipt.DirectPayment,
		}),
		detail(record.Detail011, record.Fields{
			record.FieldName: receipt.Name,
		}),
	}

	if receipt.Street != "" {
		records = append(records, detail(record.Detail012, record.Fields{
			record.FieldStreet: receipt.Street,
		}))
	}

	if receipt.HasStreet2() {
		records = append(records, detail(record.Detail013, record.Fields{
			record.FieldStreet2: *receipt.Street2,
		}))
	}

	if receipt.Zip != "" || receipt.City != "" {
		records = append(records, detail(record.Detail014, record.Fields{
			record.FieldZip:  receipt.Zip,
			record.FieldCity: receipt.City,
		}))
	}

	if order.Type != types.OrderTransfer && order.SendType.IsPostal() {
		records = append(records, detail(record.Detail015, record.Fields{
			record.FieldCountryCode: receipt.CountryCode,
			record.FieldState:       receipt.State,
		}))

		if order.PayrollCheck {
			records = append(records, detail(record.Detail016, record.Fields{
				record.FieldBeneficiaryNIF: receipt.NIF,
			}))
		}
	}

	return records
}

// footer plans a national or ordering footer. Footers are counted by the
// caller before the ordering footer is written.
func footer(kind record.Type, order *types.PaymentOrder, amount decimal.Decimal, payments, records int) planned {
	return planned{kind, orderKey(order, record.Fields{
		record.FieldAmount:           amount,
		record.FieldPaymentLineCount: payments,
		record.FieldRecordCount:      records,
	}), countNone}
}
