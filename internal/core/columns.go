package core

import "fmt"

// BuildColumns derives the column model from a sheet's header row.
//
// One descriptor is produced per column of the declared range, including
// columns whose header cell is blank; those get a positional title
// ("Column N", 1-based sheet column). Titles are not checked for
// uniqueness since keys are positional. The first column is emphasized.
func BuildColumns(sheet *Sheet) ([]ColumnDescriptor, error) {
	if sheet == nil || sheet.Range == nil || sheet.Range.Rows() <= 0 || sheet.Range.Cols() <= 0 {
		name := ""
		if sheet != nil {
			name = sheet.Name
		}
		return nil, &EmptySheetError{FileName: name}
	}

	rng := sheet.Range
	header := sheet.HeaderRow()
	cols := make([]ColumnDescriptor, len(header))
	for i, cell := range header {
		title := CoerceCell(cell)
		if title == "" {
			title = fmt.Sprintf("Column %d", rng.StartCol+i+1)
		}
		cols[i] = ColumnDescriptor{
			Key:        ColumnKey(i),
			Title:      title,
			Emphasized: i == 0,
		}
	}
	return cols, nil
}

// columnKeys returns the keys of cols in order.
func columnKeys(cols []ColumnDescriptor) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

// columnIndex returns the position of key in cols, or -1.
func columnIndex(cols []ColumnDescriptor, key string) int {
	for i, c := range cols {
		if c.Key == key {
			return i
		}
	}
	return -1
}
