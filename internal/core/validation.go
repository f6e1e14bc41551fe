package core

// validation.go runs per-column rule sets over normalized rows.
//
// Columns are visited in column-model order and rules in list order; every
// failing rule produces its own Diagnostic (rules are not short-circuited
// per cell). Validation is pure, so identical rows and rules always yield
// identical diagnostics in identical order.

import "fmt"

// DefaultSheetLabel is the source label shown in diagnostic trails.
const DefaultSheetLabel = "Mapping Sheet"

// Fallback suggestion text for rules that do not define their own.
const (
	defaultFix     = "Please enter a valid value that meets the requirements"
	defaultExample = "Enter a non-empty value that matches the expected format"
)

// Validator applies a RuleSet to rows.
type Validator struct {
	rules      RuleSet
	sheetLabel string
}

// NewValidator creates a validator. A nil rule set validates nothing.
func NewValidator(rules RuleSet, sheetLabel string) *Validator {
	if sheetLabel == "" {
		sheetLabel = DefaultSheetLabel
	}
	if rules == nil {
		rules = RuleSet{}
	}
	return &Validator{rules: rules, sheetLabel: sheetLabel}
}

// Rules returns the validator's rule set.
func (v *Validator) Rules() RuleSet {
	return v.rules
}

// Validate checks every row; rowOffset is added to each row's position to
// form the dataset-wide row index.
func (v *Validator) Validate(cols []ColumnDescriptor, rows []Row, rowOffset int) []Diagnostic {
	var out []Diagnostic
	for i, row := range rows {
		out = append(out, v.ValidateRow(cols, rowOffset+i, row)...)
	}
	return out
}

// ValidateRow checks one row and returns its diagnostics.
func (v *Validator) ValidateRow(cols []ColumnDescriptor, rowIndex int, row Row) []Diagnostic {
	var out []Diagnostic
	for ci, col := range cols {
		rules := v.rules[col.Key]
		if len(rules) == 0 {
			continue
		}
		value := row.Value(col.Key)
		for _, rule := range rules {
			if evaluate(rule, value) {
				continue
			}
			out = append(out, v.diagnostic(rule, ci, col, rowIndex, value))
		}
	}
	return out
}

func (v *Validator) diagnostic(rule Rule, colPos int, col ColumnDescriptor, rowIndex int, value string) Diagnostic {
	fix := rule.Fix
	if fix == "" {
		fix = defaultFix
	}
	example := rule.Example
	if example == "" {
		example = defaultExample
	}

	return Diagnostic{
		RowIndex:  rowIndex,
		ColumnKey: col.Key,
		Kind:      rule.Kind,
		Message:   rule.Message,
		Context: DiagnosticContext{
			SheetLabel:  v.sheetLabel,
			ColumnLabel: fmt.Sprintf("Column %d: %q", colPos+1, col.Title),
			RowLabel:    fmt.Sprintf("Row %d: %q", rowIndex+1, value),
			Description: rule.Message,
		},
		Suggestion: Suggestion{
			Fix:     fix,
			Example: example,
		},
	}
}
