package core

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXDecoder decodes the first worksheet of an Office Open XML workbook.
// Numeric and boolean cells are returned as float64 and bool so that
// CoerceCell renders them the same way for every source.
type XLSXDecoder struct{}

// NewXLSXDecoder creates a spreadsheet decoder.
func NewXLSXDecoder() *XLSXDecoder {
	return &XLSXDecoder{}
}

// Decode implements SheetDecoder. Only the first sheet is read.
func (d *XLSXDecoder) Decode(ctx context.Context, name string, data []byte) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Sheet{Name: name}, nil
	}
	first := sheets[0]

	rows, err := f.GetRows(first, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("decode xlsx: sheet %q: %w", first, err)
	}

	cells := cellReader{f: f, sheet: first}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cells.date1904 = *props.Date1904
	}

	grid := make([][]any, len(rows))
	for r, raws := range rows {
		out := make([]any, len(raws))
		for c, raw := range raws {
			if raw == "" {
				continue
			}
			out[c] = cells.typed(r, c, raw)
		}
		grid[r] = out
	}

	sheet := &Sheet{Name: name, Grid: grid}
	sheet.Range = occupiedRange(grid)
	if sheet.Range == nil {
		return sheet, nil
	}

	// Writers do not always keep the declared dimension current, so the
	// range covers both the declaration and the cells actually present.
	if dim, err := f.GetSheetDimension(first); err == nil {
		if rng, ok := parseDimension(dim); ok {
			sheet.Range = unionRange(sheet.Range, rng)
		}
	}
	return sheet, nil
}

// occupiedRange returns the bounding box of the non-nil cells, or nil.
func occupiedRange(grid [][]any) *SheetRange {
	var rng *SheetRange
	for r, cells := range grid {
		for c, v := range cells {
			if v == nil {
				continue
			}
			if rng == nil {
				rng = &SheetRange{StartRow: r, StartCol: c, EndRow: r, EndCol: c}
				continue
			}
			rng.StartRow = min(rng.StartRow, r)
			rng.StartCol = min(rng.StartCol, c)
			rng.EndRow = max(rng.EndRow, r)
			rng.EndCol = max(rng.EndCol, c)
		}
	}
	return rng
}

func unionRange(a, b *SheetRange) *SheetRange {
	return &SheetRange{
		StartRow: min(a.StartRow, b.StartRow),
		StartCol: min(a.StartCol, b.StartCol),
		EndRow:   max(a.EndRow, b.EndRow),
		EndCol:   max(a.EndCol, b.EndCol),
	}
}

// cellReader recovers cell types that GetRows flattens to text.
type cellReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
}

// typed converts a raw cell string to float64, bool or time.Time when the
// cell is stored as a number, boolean or date-formatted number.
func (cr cellReader) typed(row, col int, raw string) any {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return raw
	}
	typ, err := cr.f.GetCellType(cr.sheet, axis)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if cr.isDate(axis) {
			if t, err := excelize.ExcelDateToTime(n, cr.date1904); err == nil {
				return t
			}
		}
		return n
	}
	return raw
}

// Built-in number formats that render as dates.
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true,
	21: true, 22: true, 45: true, 46: true, 47: true,
}

func (cr cellReader) isDate(axis string) bool {
	id, err := cr.f.GetCellStyle(cr.sheet, axis)
	if err != nil || id == 0 {
		return false
	}
	style, err := cr.f.GetStyle(id)
	if err != nil || style == nil {
		return false
	}
	if dateNumFmts[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	code := strings.ToLower(*style.CustomNumFmt)
	return strings.Contains(code, "yy") || strings.Contains(code, "dd") || strings.Contains(code, "mmm")
}

// parseDimension converts a worksheet dimension ("B2:F40" or "A1") into a
// 0-based range.
func parseDimension(dim string) (*SheetRange, bool) {
	dim = strings.TrimSpace(dim)
	if dim == "" {
		return nil, false
	}

	start, end, found := strings.Cut(dim, ":")
	if !found {
		end = start
	}

	c1, r1, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return nil, false
	}
	c2, r2, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return nil, false
	}

	return &SheetRange{
		StartRow: min(r1, r2) - 1,
		StartCol: min(c1, c2) - 1,
		EndRow:   max(r1, r2) - 1,
		EndCol:   max(c1, c2) - 1,
	}, true
}
