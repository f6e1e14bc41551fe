package core

// convert.go reads typed values out of cell text for the format and range
// rules. Cells arrive the way people type them into spreadsheets, so the
// parsers accept currency symbols, thousands separators, accounting
// negatives, many date layouts and yes/no style booleans.
//
// The Parse* functions return pgtype values; Valid is false for blank or
// unparseable text.

import (
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// plainNumber is what remains of a numeric cell once decoration is removed.
var plainNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// numberDecoration strips currency symbols and thousands separators.
var numberDecoration = strings.NewReplacer("$", "", "€", "", "£", "", ",", "")

// TwoDigitYearPivot is how many years into the future a two-digit year may
// land before it is read as the previous century.
var TwoDigitYearPivot = 20

// Unambiguous layouts are tried before the two-digit-year ones.
var (
	longYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02", "20060102",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006",
		time.RFC3339, "2006-01-02 15:04:05",
	}
	shortYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// ParseDate reads a calendar date in any supported layout.
func ParseDate(s string) pgtype.Date {
	return parseDateAt(s, time.Now())
}

func parseDateAt(s string, now time.Time) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{}
	}

	for _, layout := range longYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	latest := now.Year() + TwoDigitYearPivot
	for _, layout := range shortYearLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() > latest {
			t = t.AddDate(-100, 0, 0)
		}
		return pgtype.Date{Time: t, Valid: true}
	}

	return pgtype.Date{}
}

// cleanNumber removes decoration and turns "(12.50)" into "-12.50".
// ok is false when what is left is not a plain decimal.
func cleanNumber(s string) (string, bool) {
	s = strings.TrimSpace(s)
	negative := len(s) > 1 && s[0] == '(' && s[len(s)-1] == ')'
	if negative {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(numberDecoration.Replace(s))
	if negative {
		s = "-" + s
	}
	return s, plainNumber.MatchString(s)
}

// ParseNumeric reads an exact decimal.
func ParseNumeric(s string) pgtype.Numeric {
	clean, ok := cleanNumber(s)
	if !ok {
		return pgtype.Numeric{}
	}
	var n pgtype.Numeric
	if err := n.Scan(clean); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

// ParseFloat is ParseNumeric as a float64, for range comparisons.
func ParseFloat(s string) (float64, bool) {
	n := ParseNumeric(s)
	if !n.Valid {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0 in any case.
func ParseBool(s string) pgtype.Bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return pgtype.Bool{Bool: true, Valid: true}
	case "false", "f", "no", "n", "0":
		return pgtype.Bool{Valid: true}
	default:
		return pgtype.Bool{}
	}
}
