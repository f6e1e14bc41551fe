package core

import (
	"context"
	"path/filepath"
	"strings"
)

// SheetRange is the addressable rectangle of a sheet, 0-based and inclusive.
// StartRow is the header row.
type SheetRange struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Cols returns the number of columns in the range.
func (r SheetRange) Cols() int {
	return r.EndCol - r.StartCol + 1
}

// Rows returns the number of rows in the range, header included.
func (r SheetRange) Rows() int {
	return r.EndRow - r.StartRow + 1
}

// Sheet is the decoded first sheet of a file: a sparse grid of raw cell
// values plus its declared range. Grid rows may be shorter than the range
// or missing entirely; absent cells read as nil.
type Sheet struct {
	Name  string
	Range *SheetRange // nil when the decoder found no addressable range
	Grid  [][]any     // indexed by absolute 0-based row, then column
}

// Cell returns the raw value at an absolute 0-based position, or nil.
func (s *Sheet) Cell(row, col int) any {
	if row < 0 || row >= len(s.Grid) {
		return nil
	}
	cells := s.Grid[row]
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}

// HeaderRow returns the raw header cells across the declared range.
func (s *Sheet) HeaderRow() []any {
	if s.Range == nil {
		return nil
	}
	out := make([]any, s.Range.Cols())
	for c := range out {
		out[c] = s.Cell(s.Range.StartRow, s.Range.StartCol+c)
	}
	return out
}

// GridRange computes the range spanned by a dense grid starting at A1.
// Returns nil if the grid has no rows or no columns.
func GridRange(grid [][]any) *SheetRange {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	if len(grid) == 0 || width == 0 {
		return nil
	}
	return &SheetRange{StartRow: 0, StartCol: 0, EndRow: len(grid) - 1, EndCol: width - 1}
}

// SheetDecoder turns raw file bytes into the file's first sheet.
type SheetDecoder interface {
	Decode(ctx context.Context, name string, data []byte) (*Sheet, error)
}

// Decoders maps lowercase file extensions (".csv") to decoders.
type Decoders map[string]SheetDecoder

// DefaultDecoders returns decoders for every accepted extension.
func DefaultDecoders() Decoders {
	return Decoders{
		".csv":  NewCSVDecoder(','),
		".tsv":  NewCSVDecoder('\t'),
		".xlsx": NewXLSXDecoder(),
		".xlsm": NewXLSXDecoder(),
	}
}

// For returns the decoder registered for the file's extension.
func (d Decoders) For(name string) (SheetDecoder, bool) {
	dec, ok := d[strings.ToLower(filepath.Ext(name))]
	return dec, ok
}
