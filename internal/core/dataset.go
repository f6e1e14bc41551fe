package core

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Dataset is the merged, validated result of an ingestion.
//
// A Dataset is treated as immutable: ApplyEdit returns a new value and the
// receiver must not be used for further reads by the editing caller.
type Dataset struct {
	Columns     []ColumnDescriptor
	Rows        []Row
	Diagnostics []Diagnostic
	Summary     Summary

	edited    EditSet
	validator *Validator
}

// newDataset creates an empty dataset bound to the validator that produced it.
func newDataset(v *Validator) *Dataset {
	return &Dataset{edited: EditSet{}, validator: v}
}

// Edited reports whether row i has been touched by an edit.
func (d *Dataset) Edited(i int) bool {
	return d.edited.Has(i)
}

// EditedRows returns the edited row indices in ascending order.
func (d *Dataset) EditedRows() []int {
	out := make([]int, 0, len(d.edited))
	for i := range d.edited {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// RowDiagnostics returns the diagnostics for row i in validation order.
func (d *Dataset) RowDiagnostics(i int) []Diagnostic {
	var out []Diagnostic
	for _, diag := range d.Diagnostics {
		if diag.RowIndex == i {
			out = append(out, diag)
		}
	}
	return out
}

// ApplyEdit replaces one cell, marks the row as edited, revalidates only
// that row and recomputes the summary over the whole dataset.
//
// The returned Dataset shares no mutable state with the receiver.
// ApplyEdit is not safe for concurrent use on the same dataset.
func (d *Dataset) ApplyEdit(rowIndex int, columnKey, value string) (*Dataset, error) {
	if rowIndex < 0 || rowIndex >= len(d.Rows) {
		return nil, fmt.Errorf("edit row %d: %w", rowIndex, ErrRowOutOfRange)
	}
	if columnIndex(d.Columns, columnKey) < 0 {
		return nil, fmt.Errorf("edit column %q: %w", columnKey, ErrUnknownColumn)
	}

	next := &Dataset{
		Columns:   d.Columns,
		Rows:      make([]Row, len(d.Rows)),
		edited:    d.edited.clone(),
		validator: d.validator,
	}
	copy(next.Rows, d.Rows)
	next.Rows[rowIndex] = d.Rows[rowIndex].with(columnKey, value)
	next.edited[rowIndex] = struct{}{}

	var fresh []Diagnostic
	if d.validator != nil {
		fresh = d.validator.ValidateRow(d.Columns, rowIndex, next.Rows[rowIndex])
	}
	next.Diagnostics = spliceDiagnostics(d.Diagnostics, rowIndex, fresh)
	next.Summary = Summarize(next.Rows, next.Diagnostics, next.edited)

	return next, nil
}

// spliceDiagnostics replaces the diagnostics of one row, keeping the list
// ordered by row index. The input slice is not modified.
func spliceDiagnostics(all []Diagnostic, rowIndex int, fresh []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(all)+len(fresh))
	inserted := false
	for _, diag := range all {
		if diag.RowIndex == rowIndex {
			continue
		}
		if !inserted && diag.RowIndex > rowIndex {
			out = append(out, fresh...)
			inserted = true
		}
		out = append(out, diag)
	}
	if !inserted {
		out = append(out, fresh...)
	}
	return out
}

// appendFile adds one file's rows and diagnostics and recomputes the summary.
func (d *Dataset) appendFile(rows []Row, diagnostics []Diagnostic) {
	d.Rows = append(d.Rows, rows...)
	d.Diagnostics = append(d.Diagnostics, diagnostics...)
	d.Summary = Summarize(d.Rows, d.Diagnostics, d.edited)
}

// datasetJSON is the wire shape handed to the presentation layer.
type datasetJSON struct {
	Columns     []ColumnDescriptor `json:"columns"`
	Rows        []Row              `json:"rows"`
	Diagnostics []Diagnostic       `json:"diagnostics"`
	Summary     Summary            `json:"summary"`
	EditedRows  []int              `json:"editedRows"`
}

// MarshalJSON implements json.Marshaler.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	rows := d.Rows
	if rows == nil {
		rows = []Row{}
	}
	diags := d.Diagnostics
	if diags == nil {
		diags = []Diagnostic{}
	}
	return json.Marshal(datasetJSON{
		Columns:     d.Columns,
		Rows:        rows,
		Diagnostics: diags,
		Summary:     d.Summary,
		EditedRows:  d.EditedRows(),
	})
}
