package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"unicode/utf8"
)

// utf8BOM is prepended by Excel and most Windows tools when saving CSV as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVDecoder decodes delimited text. The whole file is one sheet whose
// range spans every record and the widest row.
type CSVDecoder struct {
	Comma rune
}

// NewCSVDecoder creates a decoder for the given field delimiter.
func NewCSVDecoder(comma rune) *CSVDecoder {
	return &CSVDecoder{Comma: comma}
}

// Decode implements SheetDecoder.
func (d *CSVDecoder) Decode(ctx context.Context, name string, data []byte) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	records, err := parseCSV(data, d.Comma)
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	grid := make([][]any, len(records))
	for i, rec := range records {
		cells := make([]any, len(rec))
		for j, v := range rec {
			cells[j] = v
		}
		grid[i] = cells
	}

	return &Sheet{Name: name, Range: GridRange(grid), Grid: grid}, nil
}

func parseCSV(data []byte, comma rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	if comma != 0 {
		r.Comma = comma
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
