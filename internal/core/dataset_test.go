package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// editFixture builds a three-row dataset where row 1 has a blank identifier
// and row 2 has a non-numeric amount.
func editFixture(t *testing.T) *Dataset {
	t.Helper()
	cols := testColumns("Id", "Amount")
	rows := testRows(cols,
		[]string{"a", "1"},
		[]string{"", "2"},
		[]string{"c", "x"},
	)
	v := NewValidator(RuleSet{}.Add("col0", Required()).Add("col1", Number()), "")

	ds := newDataset(v)
	ds.Columns = cols
	ds.appendFile(rows, v.Validate(cols, rows, 0))
	return ds
}

func TestDataset_ApplyEdit(t *testing.T) {
	ds := editFixture(t)
	if want := (Summary{Unchanged: 1, Errors: 1, Blank: 1}); ds.Summary != want {
		t.Fatalf("initial summary = %+v, want %+v", ds.Summary, want)
	}
	before := append([]Diagnostic(nil), ds.Diagnostics...)

	next, err := ds.ApplyEdit(1, "col0", "b")
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}

	if got := next.Rows[1].Value("col0"); got != "b" {
		t.Errorf("edited value = %q", got)
	}
	if !next.Edited(1) || next.Edited(0) {
		t.Errorf("edited rows = %v", next.EditedRows())
	}
	if want := (Summary{Unchanged: 1, Edited: 1, Errors: 1}); next.Summary != want {
		t.Errorf("summary = %+v, want %+v", next.Summary, want)
	}

	// Only row 2's finding remains, identical to before.
	if diff := cmp.Diff(before[1:], next.Diagnostics); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	// The receiver is untouched.
	if ds.Rows[1].Value("col0") != "" || ds.Edited(1) {
		t.Error("ApplyEdit modified the original dataset")
	}
	if diff := cmp.Diff(before, ds.Diagnostics); diff != "" {
		t.Errorf("original diagnostics changed:\n%s", diff)
	}
}

func TestDataset_ApplyEdit_IntroducesError(t *testing.T) {
	ds := editFixture(t)

	next, err := ds.ApplyEdit(0, "col1", "oops")
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}

	var rows []int
	for _, d := range next.Diagnostics {
		rows = append(rows, d.RowIndex)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, rows); diff != "" {
		t.Errorf("diagnostics not ordered by row (-want +got):\n%s", diff)
	}
	if got := next.RowDiagnostics(0); len(got) != 1 || got[0].Context.RowLabel != `Row 1: "oops"` {
		t.Errorf("row 0 diagnostics = %+v", got)
	}
	// An edited row that fails a rule counts as an error, not as edited.
	if want := (Summary{Errors: 2, Blank: 1}); next.Summary != want {
		t.Errorf("summary = %+v, want %+v", next.Summary, want)
	}
}

func TestDataset_ApplyEdit_Chained(t *testing.T) {
	ds := editFixture(t)

	a, err := ds.ApplyEdit(2, "col1", "3")
	if err != nil {
		t.Fatal(err)
	}
	b, err := a.ApplyEdit(1, "col0", "b")
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]int{1, 2}, b.EditedRows()); diff != "" {
		t.Errorf("edited rows mismatch (-want +got):\n%s", diff)
	}
	if len(b.Diagnostics) != 0 {
		t.Errorf("diagnostics = %+v, want none", b.Diagnostics)
	}
	if want := (Summary{Unchanged: 1, Edited: 2}); b.Summary != want {
		t.Errorf("summary = %+v, want %+v", b.Summary, want)
	}
	if a.Edited(1) {
		t.Error("second edit leaked into the first result")
	}
}

func TestDataset_ApplyEdit_Errors(t *testing.T) {
	ds := editFixture(t)

	tests := []struct {
		name string
		row  int
		key  string
		want error
	}{
		{"negative row", -1, "col0", ErrRowOutOfRange},
		{"row past end", 3, "col0", ErrRowOutOfRange},
		{"unknown column", 0, "col9", ErrUnknownColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ds.ApplyEdit(tt.row, tt.key, "v")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if next != nil {
				t.Error("expected nil dataset on error")
			}
		})
	}
}

func TestDataset_MarshalJSON(t *testing.T) {
	ds := newDataset(nil)
	ds.Columns = testColumns("Id")

	b, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"columns":[{"key":"col0","title":"Id","emphasized":true}],"rows":[],"diagnostics":[],` +
		`"summary":{"unchanged":0,"edited":0,"errors":0,"blank":0},"editedRows":[]}`
	if string(b) != want {
		t.Errorf("json = %s\nwant %s", b, want)
	}
}

func TestSpliceDiagnostics(t *testing.T) {
	all := []Diagnostic{{RowIndex: 0}, {RowIndex: 2, ColumnKey: "old"}, {RowIndex: 4}}
	fresh := []Diagnostic{{RowIndex: 2, ColumnKey: "a"}, {RowIndex: 2, ColumnKey: "b"}}

	got := spliceDiagnostics(all, 2, fresh)
	want := []Diagnostic{{RowIndex: 0}, {RowIndex: 2, ColumnKey: "a"}, {RowIndex: 2, ColumnKey: "b"}, {RowIndex: 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splice mismatch (-want +got):\n%s", diff)
	}
	if all[1].ColumnKey != "old" {
		t.Error("input slice modified")
	}

	got = spliceDiagnostics(all, 9, []Diagnostic{{RowIndex: 9}})
	if n := len(got); n != 4 || got[3].RowIndex != 9 {
		t.Errorf("append at end = %+v", got)
	}
}
