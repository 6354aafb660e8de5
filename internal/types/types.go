// =============================================================================
// CSB 34-11 Remittance - Shared Types
// =============================================================================
//
// This package contains the payment order aggregate shared by the source
// loaders, the validation engine, the remittance encoder and the generator
// registry. Keeping it here avoids import cycles between those modules.
//
//   PaymentOrder
//   ├── ordering party (NIF, suffix, name, address, bank account)
//   ├── dates (payment / send date, creation date)
//   ├── journal settings (type, send type, payroll check)
//   └── Receipts (ordered)
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROCESS METHODS
// =============================================================================

// ProcessMethod identifies the file format a payment journal produces.
type ProcessMethod string

const (
	// ProcessCSB3411 produces CSB 34-11 payment order files.
	ProcessCSB3411 ProcessMethod = "csb34_11"
)

// =============================================================================
// ORDER TYPES
// =============================================================================

// OrderType is the kind of payment the order carries. It becomes the data
// code of every detail record.
type OrderType string

const (
	OrderTransfer         OrderType = "transfer"
	OrderCheque           OrderType = "cheque"
	OrderPromissoryNote   OrderType = "promissory_note"
	OrderCertifiedPayment OrderType = "certified_payment"
	OrderDirectDebit      OrderType = "direct_debit"
)

// Valid reports whether t is one of the known order types.
func (t OrderType) Valid() bool {
	switch t {
	case OrderTransfer, OrderCheque, OrderPromissoryNote, OrderCertifiedPayment, OrderDirectDebit:
		return true
	}
	return false
}

// SendType is how cheques and promissory notes reach the beneficiary.
type SendType string

const (
	SendMail          SendType = "mail"
	SendCertifiedMail SendType = "certified_mail"
	SendOther         SendType = "other"
)

// IsPostal reports whether documents are posted to the beneficiary.
func (s SendType) IsPostal() bool {
	return s == SendMail || s == SendCertifiedMail
}

// =============================================================================
// PAYMENT ORDER
// =============================================================================

// PaymentOrder is one remittance batch. NIF and Suffix identify the batch and
// are written into every record of the file.
type PaymentOrder struct {
	// NIF is the tax identifier of the ordering party.
	NIF string

	// Suffix distinguishes concurrent orders of the same party.
	Suffix string

	// Ordering party display data.
	Name   string
	Street string
	Zip    string
	City   string

	// BankAccount is the account the payments are charged to (CCC or IBAN).
	BankAccount string

	// PaymentDate is the send date of the file.
	PaymentDate time.Time

	// CreationDate is the issue date of the order.
	CreationDate time.Time

	Type         OrderType
	SendType     SendType
	PayrollCheck bool

	// Receipts are encoded strictly in this order.
	Receipts []Receipt
}

// TotalAmount returns the exact sum of all receipt amounts.
func (o *PaymentOrder) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, r := range o.Receipts {
		if r.Amount != nil {
			total = total.Add(*r.Amount)
		}
	}
	return total
}

// =============================================================================
// RECEIPT
// =============================================================================

// Receipt is a single payment instruction to a beneficiary.
type Receipt struct {
	NIF  string
	Name string

	Street string

	// Street2 is optional; a nil pointer and an empty string both skip the
	// second address line.
	Street2 *string

	Zip         string
	City        string
	CountryCode string
	State       string

	BankAccount string

	// Amount is nil when the source row carried no amount.
	Amount *decimal.Decimal

	// Cost is the cost allocation code ("1" ordering party, "2" beneficiary).
	Cost string

	Concept       string
	DirectPayment bool
}

// HasStreet2 reports whether the second address line must be written.
func (r *Receipt) HasStreet2() bool {
	return r.Street2 != nil && *r.Street2 != ""
}
