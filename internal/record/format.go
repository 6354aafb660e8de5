package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// format renders a single value into exactly f.Len() characters.
func format(f Field, value any) (string, error) {
	switch f.Kind {
	case Fixed:
		if value != nil {
			return "", errors.New("fixed field cannot be set")
		}
		return f.Literal, nil
	case Blank:
		if value != nil {
			return "", errors.New("filler field cannot be set")
		}
		return strings.Repeat(" ", f.Len()), nil
	case Alpha:
		return formatAlpha(f, value)
	case Numeric:
		return formatNumeric(f, value)
	case Money:
		return formatMoney(f, value)
	case Date:
		return formatDate(value)
	case Flag:
		return formatFlag(value)
	case Account:
		return formatAccount(f, value)
	default:
		return "", fmt.Errorf("unsupported field kind %d", f.Kind)
	}
}

// =============================================================================
// TEXT
// =============================================================================

// allowedPunctuation lists the non alphanumeric characters banks accept.
const allowedPunctuation = " .,-/()'&:"

// Fold converts text to the bank character set: accents removed, uppercase,
// anything else replaced by a space.
func Fold(value string) (string, error) {
	// Transformers are stateful, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return "", err
	}

	folded = strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune(allowedPunctuation, r):
			return r
		default:
			return ' '
		}
	}, folded)

	return folded, nil
}

func formatAlpha(f Field, value any) (string, error) {
	var text string
	switch v := value.(type) {
	case nil:
	case string:
		text = v
	default:
		return "", fmt.Errorf("expected text, got %T", value)
	}

	folded, err := Fold(strings.TrimSpace(text))
	if err != nil {
		return "", err
	}
	return PadRight(folded, f.Len(), ' '), nil
}

// =============================================================================
// NUMBERS
// =============================================================================

func formatNumeric(f Field, value any) (string, error) {
	var digits string
	switch v := value.(type) {
	case nil:
	case string:
		digits = strings.TrimSpace(v)
	case int:
		if v < 0 {
			return "", errors.New("negative number")
		}
		digits = strconv.Itoa(v)
	case int64:
		if v < 0 {
			return "", errors.New("negative number")
		}
		digits = strconv.FormatInt(v, 10)
	default:
		return "", fmt.Errorf("expected number, got %T", value)
	}

	if !isDigits(digits) {
		return "", errors.New("value is not numeric")
	}
	if len(digits) > f.Len() {
		return "", fmt.Errorf("value exceeds %d digits", f.Len())
	}
	return PadLeft(digits, f.Len(), '0'), nil
}

func formatMoney(f Field, value any) (string, error) {
	var amount decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		if v == nil {
			return "", errors.New("amount is required")
		}
		amount = *v
	case nil:
		return "", errors.New("amount is required")
	default:
		return "", fmt.Errorf("expected decimal amount, got %T", value)
	}

	if amount.IsNegative() {
		return "", errors.New("negative amount")
	}

	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return "", errors.New("amount has fractional cents")
	}

	digits := cents.StringFixed(0)
	if len(digits) > f.Len() {
		return "", fmt.Errorf("amount exceeds %d digits", f.Len())
	}
	return PadLeft(digits, f.Len(), '0'), nil
}

// MaxAmount returns the largest amount a Money field of the given width holds.
func MaxAmount(width int) decimal.Decimal {
	return decimal.New(1, int32(width)).Sub(decimal.New(1, 0)).Shift(-2)
}

// =============================================================================
// DATES, FLAGS, ACCOUNTS
// =============================================================================

func formatDate(value any) (string, error) {
	date, ok := value.(time.Time)
	if !ok {
		return "", fmt.Errorf("expected date, got %T", value)
	}
	if date.IsZero() {
		return "", errors.New("date is required")
	}
	return date.Format("020106"), nil
}

func formatFlag(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "0", nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	default:
		return "", fmt.Errorf("expected boolean, got %T", value)
	}
}

func formatAccount(f Field, value any) (string, error) {
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected account number, got %T", value)
	}

	ccc, err := NormalizeAccount(text)
	if err != nil {
		return "", err
	}
	if len(ccc) != f.Len() {
		return "", fmt.Errorf("account must have %d digits", f.Len())
	}
	return ccc, nil
}

// NormalizeAccount reduces a Spanish IBAN or CCC to its 20 CCC digits.
func NormalizeAccount(account string) (string, error) {
	account = strings.ToUpper(strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, account))

	if account == "" {
		return "", errors.New("account is required")
	}

	// ES + 2 check digits + CCC.
	if strings.HasPrefix(account, "ES") {
		if len(account) != 24 {
			return "", errors.New("spanish IBAN must have 24 characters")
		}
		account = account[4:]
	}

	if len(account) != 20 || !isDigits(account) {
		return "", errors.New("account must be a 20 digit CCC")
	}
	return account, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads a string on the left to the specified length.
func PadLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s[:length]
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}

// PadRight pads a string on the right to the specified length, truncating
// longer values.
func PadRight(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s[:length]
	}
	return s + strings.Repeat(string(padChar), length-len(s))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
