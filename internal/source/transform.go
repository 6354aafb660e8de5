// =============================================================================
// CSB 34-11 Remittance - Receipt Column Transformations
// =============================================================================
//
// Receipt sheets exported from accounting packages rarely match the bank's
// expectations: spreadsheets drop the leading zero of postal codes, accounts
// come with spaces, amounts use a decimal comma. Journals fix these with
// transformation rules applied to each column before it becomes a receipt.
//
// EXAMPLE (journal YAML):
//   transformation_rules:
//     - field: zip
//       actions:
//         - type: pad_zeros_to_length
//           value: "5"
//     - field: amount
//       actions:
//         - type: decimal_comma
//
// =============================================================================

package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/csb3411-remittance/internal/config"
	"github.com/ginjaninja78/csb3411-remittance/internal/record"
)

// Transformer applies journal transformation rules to receipt columns.
type Transformer struct {
	rules map[string][]config.TransformationAction
}

// NewTransformer creates a new Transformer with the given rules. Rules for
// the same field are applied in the order they are listed.
func NewTransformer(rules []config.TransformationRule) *Transformer {
	t := &Transformer{rules: make(map[string][]config.TransformationAction)}
	for _, rule := range rules {
		field := normalizeHeader(rule.Field)
		t.rules[field] = append(t.rules[field], rule.Actions...)
	}
	return t
}

// Transform applies all actions configured for fieldName.
func (t *Transformer) Transform(fieldName, value string) (string, error) {
	result := value
	for _, action := range t.rules[normalizeHeader(fieldName)] {
		var err error
		result, err = ApplyTransformation(result, action)
		if err != nil {
			return "", fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
		}
	}
	return result, nil
}

// TransformRow applies the rules to every column of a row in place.
func (t *Transformer) TransformRow(row map[string]string) error {
	for field := range t.rules {
		value, err := t.Transform(field, row[field])
		if err != nil {
			return fmt.Errorf("column %s: %w", field, err)
		}
		row[field] = value
	}
	return nil
}

// ApplyTransformation applies a single transformation action.
func ApplyTransformation(value string, action config.TransformationAction) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "remove_spaces":
		return strings.ReplaceAll(value, " ", ""), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "replace":
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	case "default_value":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case "lookup":
		if replacement, ok := action.LookupTable[value]; ok {
			return replacement, nil
		}
		return value, nil

	// =========================================================================
	// NUMERIC FORMATTING
	// =========================================================================

	case "pad_zeros_to_length":
		// EXAMPLE: "8001" with value "5" -> "08001"
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return "", fmt.Errorf("invalid length %q", action.Value)
		}
		if value == "" || len(value) >= targetLength {
			return value, nil
		}
		return record.PadLeft(value, targetLength, '0'), nil

	case "ensure_length":
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return "", fmt.Errorf("invalid length %q", action.Value)
		}
		if len(value) > targetLength {
			return value[:targetLength], nil
		}
		return record.PadLeft(value, targetLength, '0'), nil

	case "decimal_comma":
		// EXAMPLE: "1.234,56" -> "1234.56"
		return strings.ReplaceAll(strings.ReplaceAll(value, ".", ""), ",", "."), nil

	default:
		return "", fmt.Errorf("unknown transformation type %q", action.Type)
	}
}
