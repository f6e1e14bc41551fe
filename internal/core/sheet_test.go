package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func gridSheet(name string, grid [][]any) *Sheet {
	return &Sheet{Name: name, Range: GridRange(grid), Grid: grid}
}

func rowValues(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Values()
	}
	return out
}

func TestGridRange(t *testing.T) {
	tests := []struct {
		name string
		grid [][]any
		want *SheetRange
	}{
		{name: "nil grid", grid: nil, want: nil},
		{name: "rows without cells", grid: [][]any{{}, {}}, want: nil},
		{name: "ragged", grid: [][]any{{"a"}, {"b", "c", "d"}}, want: &SheetRange{EndRow: 1, EndCol: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, GridRange(tt.grid)); diff != "" {
				t.Errorf("GridRange mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildColumns(t *testing.T) {
	t.Run("one descriptor per column with positional keys", func(t *testing.T) {
		sheet := gridSheet("a.csv", [][]any{{"Name", "Status", "Name"}})
		cols, err := BuildColumns(sheet)
		if err != nil {
			t.Fatalf("BuildColumns: %v", err)
		}
		want := []ColumnDescriptor{
			{Key: "col0", Title: "Name", Emphasized: true},
			{Key: "col1", Title: "Status"},
			{Key: "col2", Title: "Name"},
		}
		if diff := cmp.Diff(want, cols); diff != "" {
			t.Errorf("columns mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("blank headers get sheet column titles", func(t *testing.T) {
		sheet := &Sheet{
			Name:  "b.xlsx",
			Range: &SheetRange{StartRow: 0, StartCol: 1, EndRow: 3, EndCol: 4},
			Grid:  [][]any{{nil, "Id", nil}},
		}
		cols, err := BuildColumns(sheet)
		if err != nil {
			t.Fatalf("BuildColumns: %v", err)
		}
		got := []string{cols[0].Title, cols[1].Title, cols[2].Title, cols[3].Title}
		want := []string{"Id", "Column 3", "Column 4", "Column 5"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("titles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("numeric header is coerced", func(t *testing.T) {
		cols, err := BuildColumns(gridSheet("c.xlsx", [][]any{{2024.0}}))
		if err != nil {
			t.Fatalf("BuildColumns: %v", err)
		}
		if cols[0].Title != "2024" {
			t.Errorf("Title = %q, want 2024", cols[0].Title)
		}
	})

	t.Run("no range is an empty sheet", func(t *testing.T) {
		_, err := BuildColumns(&Sheet{Name: "empty.csv"})
		var ese *EmptySheetError
		if !errors.As(err, &ese) {
			t.Fatalf("err = %v, want EmptySheetError", err)
		}
		if ese.FileName != "empty.csv" {
			t.Errorf("FileName = %q", ese.FileName)
		}
	})
}

func TestNormalizeRows(t *testing.T) {
	t.Run("absent cells and rows become empty strings", func(t *testing.T) {
		sheet := &Sheet{
			Range: &SheetRange{EndRow: 3, EndCol: 2},
			Grid: [][]any{
				{"A", "B", "C"},
				{"x", 1.5},
				// row 2 missing entirely
			},
		}
		cols, err := BuildColumns(sheet)
		if err != nil {
			t.Fatalf("BuildColumns: %v", err)
		}
		rows := NormalizeRows(sheet, cols)

		want := [][]string{
			{"x", "1.5", ""},
			{"", "", ""},
			{"", "", ""},
		}
		if diff := cmp.Diff(want, rowValues(rows)); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("later sheet mapped onto first model positionally", func(t *testing.T) {
		first := gridSheet("a.csv", [][]any{{"A", "B"}})
		cols, _ := BuildColumns(first)
		later := gridSheet("b.csv", [][]any{{"X", "Y", "Z"}, {"1", "2", "3"}})

		rows := NormalizeRows(later, cols)
		if len(rows) != 1 {
			t.Fatalf("len(rows) = %d, want 1", len(rows))
		}
		if diff := cmp.Diff([]string{"col0", "col1"}, rows[0].Keys()); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"1", "2"}, rows[0].Values()); diff != "" {
			t.Errorf("values mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("header only yields no rows", func(t *testing.T) {
		sheet := gridSheet("h.csv", [][]any{{"A"}})
		cols, _ := BuildColumns(sheet)
		if rows := NormalizeRows(sheet, cols); len(rows) != 0 {
			t.Errorf("len(rows) = %d, want 0", len(rows))
		}
	})
}

func TestRow(t *testing.T) {
	r := NewRow([]string{"col0", "col1"}, []string{"a", "b"})

	if v, ok := r.Get("col1"); !ok || v != "b" {
		t.Errorf("Get(col1) = %q, %v", v, ok)
	}
	if _, ok := r.Get("col9"); ok {
		t.Error("Get(col9) reported present")
	}

	edited := r.with("col0", "z")
	if r.Value("col0") != "a" {
		t.Error("with mutated the original row")
	}
	if edited.Value("col0") != "z" {
		t.Errorf("edited value = %q", edited.Value("col0"))
	}

	b, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if got := string(b); got != `{"col0":"a","col1":"b"}` {
		t.Errorf("MarshalJSON = %s", got)
	}
}
