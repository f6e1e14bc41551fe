package core

// rules.go defines validation rules as a tagged variant.
//
// Every rule carries an explicit Kind and is evaluated by the single
// evaluate function below. Format rules name a Format; range rules carry
// optional bounds; custom rules carry a predicate. Format and range rules
// pass on empty values so that emptiness is only ever reported by a
// required rule.

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleKind is the discriminant of a Rule.
type RuleKind string

const (
	RuleRequired RuleKind = "required"
	RuleFormat   RuleKind = "format"
	RuleRange    RuleKind = "range"
	RuleCustom   RuleKind = "custom"
)

// Format selects the check performed by a RuleFormat rule.
type Format string

const (
	FormatNumber  Format = "number"
	FormatDate    Format = "date"
	FormatEmail   Format = "email"
	FormatBool    Format = "bool"
	FormatEnum    Format = "enum"
	FormatPattern Format = "pattern"
)

// emailRegex mirrors the permissive check used by the upload wizard.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule is one validation check for a column.
type Rule struct {
	Kind    RuleKind
	Message string

	// Fix and Example populate the Diagnostic suggestion.
	// Defaults are used when empty.
	Fix     string
	Example string

	Format  Format         // RuleFormat
	Pattern *regexp.Regexp // RuleFormat with FormatPattern
	Values  []string       // RuleFormat with FormatEnum (case-insensitive)

	Min *float64 // RuleRange, inclusive
	Max *float64 // RuleRange, inclusive

	Check func(value string) bool // RuleCustom
}

// RuleSet maps column keys to their ordered rules.
type RuleSet map[string][]Rule

// Add appends rules for a column key and returns the set for chaining.
func (rs RuleSet) Add(key string, rules ...Rule) RuleSet {
	rs[key] = append(rs[key], rules...)
	return rs
}

// DefaultRuleSet is used when no rules are configured: the first column
// (the emphasized identifier column) must not be blank.
func DefaultRuleSet() RuleSet {
	return RuleSet{ColumnKey(0): {Required()}}
}

// evaluate reports whether value satisfies rule.
func evaluate(rule Rule, value string) bool {
	switch rule.Kind {
	case RuleRequired:
		return strings.TrimSpace(value) != ""

	case RuleFormat:
		if value == "" {
			return true
		}
		return evaluateFormat(rule, value)

	case RuleRange:
		if value == "" {
			return true
		}
		n, ok := ParseFloat(value)
		if !ok {
			return false
		}
		if rule.Min != nil && n < *rule.Min {
			return false
		}
		if rule.Max != nil && n > *rule.Max {
			return false
		}
		return true

	case RuleCustom:
		if rule.Check == nil {
			return true
		}
		return rule.Check(value)

	default:
		return true
	}
}

func evaluateFormat(rule Rule, value string) bool {
	switch rule.Format {
	case FormatNumber:
		return ParseNumeric(value).Valid
	case FormatDate:
		return ParseDate(value).Valid
	case FormatEmail:
		return emailRegex.MatchString(strings.TrimSpace(value))
	case FormatBool:
		return ParseBool(value).Valid
	case FormatEnum:
		for _, v := range rule.Values {
			if strings.EqualFold(strings.TrimSpace(value), v) {
				return true
			}
		}
		return false
	case FormatPattern:
		if rule.Pattern == nil {
			return true
		}
		return rule.Pattern.MatchString(value)
	default:
		return true
	}
}

// Required fails on blank cells.
func Required() Rule {
	return Rule{
		Kind:    RuleRequired,
		Message: "This field is required",
		Fix:     "Please enter a valid value for this required field",
		Example: "Enter appropriate data based on the column requirements",
	}
}

// Number requires a numeric value (currency symbols and separators allowed).
func Number() Rule {
	return Rule{
		Kind:    RuleFormat,
		Format:  FormatNumber,
		Message: "Must be a valid number",
		Fix:     "Remove letters and use a standard decimal format",
		Example: "1234.56",
	}
}

// Date requires a recognisable date.
func Date() Rule {
	return Rule{
		Kind:    RuleFormat,
		Format:  FormatDate,
		Message: "Must be a valid date",
		Fix:     "Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024",
		Example: "2024-01-15",
	}
}

// Email requires an email address.
func Email() Rule {
	return Rule{
		Kind:    RuleFormat,
		Format:  FormatEmail,
		Message: "Must be a valid email address",
		Fix:     "Enter an address of the form name@domain",
		Example: "jane.doe@example.com",
	}
}

// Bool requires yes/no, true/false, or 1/0.
func Bool() Rule {
	return Rule{
		Kind:    RuleFormat,
		Format:  FormatBool,
		Message: "Must be yes/no, true/false, or 1/0",
		Fix:     "Replace the value with yes or no",
		Example: "yes",
	}
}

// OneOf requires the value to be one of values (case-insensitive).
func OneOf(values ...string) Rule {
	example := ""
	if len(values) > 0 {
		example = values[0]
	}
	return Rule{
		Kind:    RuleFormat,
		Format:  FormatEnum,
		Values:  values,
		Message: fmt.Sprintf("Value must be one of: %s", strings.Join(values, ", ")),
		Fix:     "Choose one of the allowed values",
		Example: example,
	}
}

// Pattern requires the value to match re.
func Pattern(re *regexp.Regexp, message string) Rule {
	return Rule{
		Kind:    RuleFormat,
		Format:  FormatPattern,
		Pattern: re,
		Message: message,
		Fix:     "Enter a value that matches the expected format",
		Example: re.String(),
	}
}

// Between requires a number within [lo, hi].
func Between(lo, hi float64) Rule {
	return Rule{
		Kind:    RuleRange,
		Min:     &lo,
		Max:     &hi,
		Message: fmt.Sprintf("Must be a number between %g and %g", lo, hi),
		Fix:     fmt.Sprintf("Enter a number from %g to %g", lo, hi),
		Example: fmt.Sprintf("%g", lo),
	}
}

// Rejects flags any value containing substr, such as spreadsheet error
// markers left in exported data.
func Rejects(substr string) Rule {
	return Rule{
		Kind:    RuleCustom,
		Message: fmt.Sprintf("Value must not contain %q", substr),
		Fix:     fmt.Sprintf("Replace the %q marker with the intended value", substr),
		Example: "Active",
		Check: func(value string) bool {
			return !strings.Contains(value, substr)
		},
	}
}

// Custom wraps an arbitrary predicate.
func Custom(message string, check func(value string) bool) Rule {
	return Rule{
		Kind:    RuleCustom,
		Message: message,
		Check:   check,
	}
}
