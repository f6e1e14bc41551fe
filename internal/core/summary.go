package core

// EditSet records which dataset rows were touched by a user edit.
type EditSet map[int]struct{}

// Has reports whether row i was edited.
func (e EditSet) Has(i int) bool {
	_, ok := e[i]
	return ok
}

func (e EditSet) clone() EditSet {
	out := make(EditSet, len(e)+1)
	for k := range e {
		out[k] = struct{}{}
	}
	return out
}

// Summarize classifies every row into exactly one bucket, by priority:
// blank (a required rule failed) > errors (any other rule failed) >
// edited > unchanged. It always recomputes over the whole dataset.
func Summarize(rows []Row, diagnostics []Diagnostic, edited EditSet) Summary {
	const (
		flagError = 1 << iota
		flagBlank
	)

	flags := make([]uint8, len(rows))
	for _, d := range diagnostics {
		if d.RowIndex < 0 || d.RowIndex >= len(rows) {
			continue
		}
		if d.Kind == RuleRequired {
			flags[d.RowIndex] |= flagBlank
		} else {
			flags[d.RowIndex] |= flagError
		}
	}

	var s Summary
	for i, f := range flags {
		switch {
		case f&flagBlank != 0:
			s.Blank++
		case f&flagError != 0:
			s.Errors++
		case edited.Has(i):
			s.Edited++
		default:
			s.Unchanged++
		}
	}
	return s
}
