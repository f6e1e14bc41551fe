package core

// NormalizeRows maps every data row of the sheet's range to a Row keyed by
// the given column model.
//
// Cells are read positionally: the i-th descriptor takes the i-th column of
// the range, whatever this sheet's own header says. Rows missing from the
// grid still produce a Row of empty strings so the row count always matches
// the declared range. Columns beyond the model's width are dropped.
func NormalizeRows(sheet *Sheet, cols []ColumnDescriptor) []Row {
	if sheet == nil || sheet.Range == nil {
		return nil
	}

	rng := sheet.Range
	keys := columnKeys(cols)
	rows := make([]Row, 0, max(rng.Rows()-1, 0))

	for r := rng.StartRow + 1; r <= rng.EndRow; r++ {
		values := make([]string, len(cols))
		for c := range cols {
			values[c] = CoerceCell(sheet.Cell(r, rng.StartCol+c))
		}
		rows = append(rows, NewRow(keys, values))
	}
	return rows
}
