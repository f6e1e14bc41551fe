package core

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value string
		want  bool
	}{
		{"required with value", Required(), "x", true},
		{"required empty", Required(), "", false},
		{"required whitespace", Required(), "   ", false},

		{"number plain", Number(), "42", true},
		{"number currency", Number(), "$1,234.50", true},
		{"number text", Number(), "n/a", false},
		{"number empty passes", Number(), "", true},

		{"date iso", Date(), "2024-01-15", true},
		{"date us", Date(), "1/15/2024", true},
		{"date bad", Date(), "someday", false},
		{"date empty passes", Date(), "", true},

		{"email ok", Email(), "jane@example.com", true},
		{"email missing domain", Email(), "jane@", false},
		{"email empty passes", Email(), "", true},

		{"bool yes", Bool(), "yes", true},
		{"bool zero", Bool(), "0", true},
		{"bool maybe", Bool(), "maybe", false},

		{"enum match ignores case", OneOf("Active", "Inactive"), "active", true},
		{"enum trims", OneOf("Active", "Inactive"), " Inactive ", true},
		{"enum miss", OneOf("Active", "Inactive"), "Pending", false},
		{"enum empty passes", OneOf("Active"), "", true},

		{"pattern match", Pattern(regexp.MustCompile(`^[A-Z]{2}\d{3}$`), "bad code"), "AB123", true},
		{"pattern miss", Pattern(regexp.MustCompile(`^[A-Z]{2}\d{3}$`), "bad code"), "ab123", false},

		{"range inside", Between(0, 10), "5", true},
		{"range inclusive low", Between(0, 10), "0", true},
		{"range inclusive high", Between(0, 10), "10", true},
		{"range above", Between(0, 10), "10.5", false},
		{"range not a number", Between(0, 10), "ten", false},
		{"range empty passes", Between(0, 10), "", true},

		{"rejects clean", Rejects("ERROR"), "Active", true},
		{"rejects marker", Rejects("ERROR"), "#ERROR!", false},
		{"custom nil check passes", Rule{Kind: RuleCustom}, "anything", true},
		{"custom predicate", Custom("short", func(v string) bool { return len(v) < 3 }), "abcd", false},

		{"unknown kind passes", Rule{Kind: "other"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluate(tt.rule, tt.value); got != tt.want {
				t.Errorf("evaluate(%s, %q) = %v, want %v", tt.rule.Kind, tt.value, got, tt.want)
			}
		})
	}
}

func TestRuleConstructors(t *testing.T) {
	r := Between(1, 5)
	if r.Kind != RuleRange || *r.Min != 1 || *r.Max != 5 {
		t.Errorf("Between = %+v", r)
	}
	if r.Message != "Must be a number between 1 and 5" {
		t.Errorf("Between message = %q", r.Message)
	}

	e := OneOf("A", "B")
	if e.Example != "A" || !strings.Contains(e.Message, "A, B") {
		t.Errorf("OneOf = %+v", e)
	}
	if got := OneOf().Example; got != "" {
		t.Errorf("OneOf() example = %q, want empty", got)
	}

	rs := RuleSet{}.Add("col0", Required()).Add("col0", Number())
	if len(rs["col0"]) != 2 || rs["col0"][1].Format != FormatNumber {
		t.Errorf("Add did not append in order: %+v", rs["col0"])
	}

	def := DefaultRuleSet()
	if len(def) != 1 || len(def["col0"]) != 1 || def["col0"][0].Kind != RuleRequired {
		t.Errorf("DefaultRuleSet = %+v", def)
	}
}

func testColumns(titles ...string) []ColumnDescriptor {
	cols := make([]ColumnDescriptor, len(titles))
	for i, t := range titles {
		cols[i] = ColumnDescriptor{Key: ColumnKey(i), Title: t, Emphasized: i == 0}
	}
	return cols
}

func testRows(cols []ColumnDescriptor, values ...[]string) []Row {
	keys := columnKeys(cols)
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = NewRow(keys, v)
	}
	return rows
}

func TestValidator_Diagnostics(t *testing.T) {
	cols := testColumns("Name", "Amount")
	rows := testRows(cols,
		[]string{"Alice", "10"},
		[]string{"", "abc"},
	)
	rules := RuleSet{}.
		Add("col0", Required()).
		Add("col1", Number(), Rejects("a"))

	got := NewValidator(rules, "").Validate(cols, rows, 0)

	want := []Diagnostic{
		{
			RowIndex:  1,
			ColumnKey: "col0",
			Kind:      RuleRequired,
			Message:   "This field is required",
			Context: DiagnosticContext{
				SheetLabel:  DefaultSheetLabel,
				ColumnLabel: `Column 1: "Name"`,
				RowLabel:    `Row 2: ""`,
				Description: "This field is required",
			},
			Suggestion: Suggestion{
				Fix:     "Please enter a valid value for this required field",
				Example: "Enter appropriate data based on the column requirements",
			},
		},
		{
			RowIndex:  1,
			ColumnKey: "col1",
			Kind:      RuleFormat,
			Message:   "Must be a valid number",
			Context: DiagnosticContext{
				SheetLabel:  DefaultSheetLabel,
				ColumnLabel: `Column 2: "Amount"`,
				RowLabel:    `Row 2: "abc"`,
				Description: "Must be a valid number",
			},
			Suggestion: Suggestion{Fix: "Remove letters and use a standard decimal format", Example: "1234.56"},
		},
		{
			RowIndex:  1,
			ColumnKey: "col1",
			Kind:      RuleCustom,
			Message:   `Value must not contain "a"`,
			Context: DiagnosticContext{
				SheetLabel:  DefaultSheetLabel,
				ColumnLabel: `Column 2: "Amount"`,
				RowLabel:    `Row 2: "abc"`,
				Description: `Value must not contain "a"`,
			},
			Suggestion: Suggestion{Fix: `Replace the "a" marker with the intended value`, Example: "Active"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_RowOffsetAndDefaults(t *testing.T) {
	cols := testColumns("Code")
	rows := testRows(cols, []string{"x"})
	rules := RuleSet{"col0": {Custom("never", func(string) bool { return false })}}

	got := NewValidator(rules, "Regions").Validate(cols, rows, 41)
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(got))
	}
	d := got[0]
	if d.RowIndex != 41 || d.Context.RowLabel != `Row 42: "x"` {
		t.Errorf("row = %d label %q", d.RowIndex, d.Context.RowLabel)
	}
	if d.Context.SheetLabel != "Regions" {
		t.Errorf("sheet label = %q", d.Context.SheetLabel)
	}
	if d.Suggestion.Fix != defaultFix || d.Suggestion.Example != defaultExample {
		t.Errorf("suggestion = %+v, want defaults", d.Suggestion)
	}
}

func TestValidator_Deterministic(t *testing.T) {
	cols := testColumns("A", "B", "C")
	rows := testRows(cols,
		[]string{"", "x", "1"},
		[]string{"a", "", "y"},
		[]string{"", "", ""},
	)
	rules := RuleSet{}.
		Add("col0", Required()).
		Add("col1", Required(), OneOf("x")).
		Add("col2", Number())
	v := NewValidator(rules, "")

	first := v.Validate(cols, rows, 0)
	for range 5 {
		if diff := cmp.Diff(first, v.Validate(cols, rows, 0)); diff != "" {
			t.Fatalf("validation not deterministic:\n%s", diff)
		}
	}

	// Column-model order within a row, row order overall.
	var order []string
	for _, d := range first {
		order = append(order, ColumnKey(d.RowIndex)+"/"+d.ColumnKey)
	}
	want := []string{"col0/col0", "col1/col1", "col1/col2", "col2/col0", "col2/col1"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_NilRules(t *testing.T) {
	cols := testColumns("A")
	rows := testRows(cols, []string{""})
	if got := NewValidator(nil, "").Validate(cols, rows, 0); len(got) != 0 {
		t.Errorf("got %d diagnostics from an empty rule set", len(got))
	}
}
