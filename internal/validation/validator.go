// =============================================================================
// CSB 34-11 Remittance - Validation Engine
// =============================================================================
//
// This module validates payment orders before any record is built. A bank
// rejects the whole file for a single bad record, so every problem of an
// order is collected and reported at once.
//
// VALIDATION STRATEGY:
//   1. Order-level: ordering party, bank account, dates, journal settings
//   2. Receipt-level: beneficiary, account, amount, cost code
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time
//   - Each error includes its context (receipt, field, value, rule)
//   - Warnings are reported but do not block encoding unless
//     TreatWarningsAsErrors is set
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/csb3411-remittance/internal/record"
	"github.com/ginjaninja78/csb3411-remittance/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation problem.
type ValidationError struct {
	// Severity is SeverityError (blocks encoding) or SeverityWarning.
	Severity string

	// Field is the name of the order or receipt field that failed.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// Receipt is the 1-based position of the receipt, 0 for order fields.
	Receipt int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	location := "Order"
	if e.Receipt > 0 {
		location = fmt.Sprintf("Receipt %d", e.Receipt)
	}
	return fmt.Sprintf("[%s] %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		location,
		e.Field,
		e.Message,
		e.Value,
	)
}

// Errors is a list of validation errors returned as a single error.
type Errors []*ValidationError

func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "invalid payment order"
	case 1:
		return "invalid payment order: " + e[0].Error()
	}
	return fmt.Sprintf("invalid payment order: %d problems, first: %s", len(e), e[0].Error())
}

// Unwrap exposes every *ValidationError to errors.As.
func (e Errors) Unwrap() []error {
	out := make([]error, len(e))
	for i, ve := range e {
		out[i] = ve
	}
	return out
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors (including warnings).
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// ReceiptsValidated is the number of receipts checked.
	ReceiptsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator performs validation on payment orders.
type Validator struct {
	options ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	StopOnFirstError bool

	// TreatWarningsAsErrors makes warnings fatal.
	TreatWarningsAsErrors bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{}
}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{options: DefaultValidationOptions()}
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// ValidateOrder runs the default validator and returns the fatal problems as
// Errors, or nil when the order can be encoded.
func ValidateOrder(order *types.PaymentOrder) error {
	result := NewValidator().ValidateAll(order)
	if result.IsValid {
		return nil
	}

	var fatal Errors
	for _, e := range result.Errors {
		if e.Severity == SeverityError {
			fatal = append(fatal, e)
		}
	}
	return fatal
}

// ValidateAll validates the order and all its receipts.
func (v *Validator) ValidateAll(order *types.PaymentOrder) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]*ValidationError, 0),
	}

	problems := v.ValidateOrderFields(order)
	for i := range order.Receipts {
		problems = append(problems, v.ValidateReceipt(i+1, &order.Receipts[i])...)
		result.ReceiptsValidated++
	}

	for _, p := range problems {
		result.Errors = append(result.Errors, p)

		if p.Severity == SeverityError {
			result.ErrorCount++
			result.IsValid = false

			if v.options.StopOnFirstError {
				return result
			}
		} else {
			result.WarningCount++

			if v.options.TreatWarningsAsErrors {
				result.IsValid = false
			}
		}
	}

	return result
}

// =============================================================================
// ORDER RULES
// =============================================================================

// ValidateOrderFields validates the ordering party and journal settings.
func (v *Validator) ValidateOrderFields(order *types.PaymentOrder) []*ValidationError {
	var errors []*ValidationError
	add := func(severity, field, value, rule, message string) {
		errors = append(errors, &ValidationError{
			Severity: severity,
			Field:    field,
			Value:    value,
			Rule:     rule,
			Message:  message,
		})
	}

	nifWidth := record.FieldWidth(record.OrderingHeader001, record.FieldNIF)
	switch {
	case strings.TrimSpace(order.NIF) == "":
		add(SeverityError, "nif", order.NIF, "required", "Ordering party NIF is empty")
	case len(order.NIF) > nifWidth:
		add(SeverityError, "nif", order.NIF, "max_length",
			fmt.Sprintf("NIF exceeds maximum length of %d characters", nifWidth))
	}

	suffixWidth := record.FieldWidth(record.OrderingHeader001, record.FieldSuffix)
	if len(order.Suffix) > suffixWidth {
		add(SeverityError, "suffix", order.Suffix, "max_length",
			fmt.Sprintf("Suffix exceeds maximum length of %d characters", suffixWidth))
	}

	if strings.TrimSpace(order.Name) == "" {
		add(SeverityWarning, "name", order.Name, "recommended", "Ordering party name is empty")
	}

	if _, err := record.NormalizeAccount(order.BankAccount); err != nil {
		add(SeverityError, "bank_account", order.BankAccount, "account", err.Error())
	}

	if order.PaymentDate.IsZero() {
		add(SeverityError, "payment_date", "", "required", "Payment date is not set")
	}
	if order.CreationDate.IsZero() {
		add(SeverityError, "creation_date", "", "required", "Creation date is not set")
	}

	switch {
	case order.Type == "":
		add(SeverityError, "type", "", "required", "Order type is not set")
	case !order.Type.Valid():
		add(SeverityError, "type", string(order.Type), "allowed_values", "Unknown order type")
	}

	switch order.SendType {
	case "", types.SendMail, types.SendCertifiedMail, types.SendOther:
	default:
		add(SeverityError, "send_type", string(order.SendType), "allowed_values", "Unknown send type")
	}

	if len(order.Receipts) == 0 {
		add(SeverityError, "receipts", "", "required", "Payment order has no receipts")
	}

	return errors
}

// =============================================================================
// RECEIPT RULES
// =============================================================================

// ValidateReceipt validates a single receipt. position is 1-based.
func (v *Validator) ValidateReceipt(position int, receipt *types.Receipt) []*ValidationError {
	var errors []*ValidationError
	add := func(severity, field, value, rule, message string) {
		errors = append(errors, &ValidationError{
			Severity: severity,
			Field:    field,
			Value:    value,
			Rule:     rule,
			Message:  message,
			Receipt:  position,
		})
	}

	nifWidth := record.FieldWidth(record.Detail010, record.FieldRecipientNIF)
	switch {
	case strings.TrimSpace(receipt.NIF) == "":
		add(SeverityError, "nif", receipt.NIF, "required", "Beneficiary NIF is empty")
	case len(receipt.NIF) > nifWidth:
		add(SeverityError, "nif", receipt.NIF, "max_length",
			fmt.Sprintf("NIF exceeds maximum length of %d characters", nifWidth))
	}

	if strings.TrimSpace(receipt.Name) == "" {
		add(SeverityWarning, "name", receipt.Name, "recommended", "Beneficiary name is empty")
	}

	if strings.TrimSpace(receipt.BankAccount) == "" {
		add(SeverityError, "bank_account", "", "required", "Beneficiary bank account is empty")
	} else if _, err := record.NormalizeAccount(receipt.BankAccount); err != nil {
		add(SeverityError, "bank_account", receipt.BankAccount, "account", err.Error())
	}

	switch {
	case receipt.Amount == nil:
		add(SeverityError, "amount", "", "required", "Amount is missing")
	case receipt.Amount.IsNegative():
		add(SeverityError, "amount", receipt.Amount.String(), "non_negative", "Amount is negative")
	case !receipt.Amount.Shift(2).IsInteger():
		add(SeverityError, "amount", receipt.Amount.String(), "precision", "Amount has more than 2 decimal places")
	case receipt.Amount.IsZero():
		add(SeverityWarning, "amount", receipt.Amount.String(), "positive", "Amount is zero")
	}

	switch receipt.Cost {
	case "", "1", "2":
	default:
		add(SeverityError, "cost", receipt.Cost, "allowed_values", "Cost code must be 1 (ordering party) or 2 (beneficiary)")
	}

	return errors
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
