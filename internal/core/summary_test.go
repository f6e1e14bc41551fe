package core

import "testing"

func TestSummarize(t *testing.T) {
	cols := testColumns("A")
	rows := testRows(cols, []string{"a"}, []string{"b"}, []string{"c"}, []string{"d"}, []string{"e"})

	diags := []Diagnostic{
		{RowIndex: 0, Kind: RuleRequired},
		{RowIndex: 0, Kind: RuleFormat}, // blank wins over errors
		{RowIndex: 1, Kind: RuleRange},
		{RowIndex: 2, Kind: RuleCustom},  // errors win over edited
		{RowIndex: 99, Kind: RuleFormat}, // out of range, ignored
	}
	edited := EditSet{2: {}, 3: {}}

	got := Summarize(rows, diags, edited)
	want := Summary{Unchanged: 1, Edited: 1, Errors: 2, Blank: 1}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
	if got.Total() != len(rows) {
		t.Errorf("Total = %d, want %d", got.Total(), len(rows))
	}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(nil, nil, nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", got)
	}
}

func TestEditSet(t *testing.T) {
	e := EditSet{1: {}}
	c := e.clone()
	c[2] = struct{}{}

	if !e.Has(1) || e.Has(2) {
		t.Errorf("original modified through clone: %v", e)
	}
	if !c.Has(1) || !c.Has(2) {
		t.Errorf("clone = %v", c)
	}
	var nilSet EditSet
	if nilSet.Has(0) {
		t.Error("nil set reports a member")
	}
}
