package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseNumeric / ParseFloat Tests
// ----------------------------------------------------------------------------

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      float64
	}{
		// Valid: plain numbers
		{name: "positive integer", input: "123", wantValid: true, want: 123},
		{name: "zero", input: "0", wantValid: true, want: 0},
		{name: "negative decimal", input: "-0.5", wantValid: true, want: -0.5},
		{name: "leading decimal point", input: ".99", wantValid: true, want: 0.99},
		{name: "surrounding whitespace", input: "  42  ", wantValid: true, want: 42},

		// Valid: currency and separators
		{name: "dollar with thousands", input: "$1,234.56", wantValid: true, want: 1234.56},
		{name: "euro", input: "€99", wantValid: true, want: 99},
		{name: "pound", input: "£10.25", wantValid: true, want: 10.25},
		{name: "accounting negative", input: "(100.50)", wantValid: true, want: -100.5},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "trailing letters", input: "12abc", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
		{name: "error marker", input: "#N/A", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFloat(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseFloat(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got != tt.want {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if n := ParseNumeric(tt.input); n.Valid != tt.wantValid {
				t.Errorf("ParseNumeric(%q).Valid = %v, want %v", tt.input, n.Valid, tt.wantValid)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{name: "ISO", input: "2024-01-15", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},
		{name: "ISO leap day", input: "2024-02-29", wantValid: true, wantYear: 2024, wantMonth: time.February, wantDay: 29},
		{name: "US slashes", input: "01/15/2024", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},
		{name: "US no padding", input: "1/5/2024", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 5},
		{name: "dotted", input: "1.5.2024", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 5},
		{name: "month name", input: "Jan 15, 2024", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},
		{name: "day month year", input: "15 Jan 2024", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},
		{name: "compact", input: "20240115", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},
		{name: "two digit year recent", input: "1/5/24", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 5},
		{name: "two digit year past pivot", input: "1/5/68", wantValid: true, wantYear: 1968, wantMonth: time.January, wantDay: 5},

		{name: "empty", input: "", wantValid: false},
		{name: "invalid day", input: "2024-02-30", wantValid: false},
		{name: "text", input: "not a date", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ParseDate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if !got.Valid {
				return
			}
			y, m, d := got.Time.Date()
			if y != tt.wantYear || m != tt.wantMonth || d != tt.wantDay {
				t.Errorf("ParseDate(%q) = %d-%02d-%02d, want %d-%02d-%02d",
					tt.input, y, m, d, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseBool Tests
// ----------------------------------------------------------------------------

func TestParseBool(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantBool  bool
	}{
		{"true", true, true},
		{"TRUE", true, true},
		{"Yes", true, true},
		{"y", true, true},
		{"1", true, true},
		{" t ", true, true},
		{"false", true, false},
		{"No", true, false},
		{"n", true, false},
		{"0", true, false},
		{"F", true, false},
		{"", false, false},
		{"maybe", false, false},
		{"2", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseBool(tt.input)
			if got.Valid != tt.wantValid || got.Bool != tt.wantBool {
				t.Errorf("ParseBool(%q) = {%v %v}, want {%v %v}",
					tt.input, got.Bool, got.Valid, tt.wantBool, tt.wantValid)
			}
		})
	}
}

func TestParseDate_TwoDigitPivot(t *testing.T) {
	now := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		input    string
		wantYear int
	}{
		{"1/5/50", 2050},
		{"1/5/51", 1951},
		{"1/5/00", 2000},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseDateAt(tt.input, now)
			if !got.Valid || got.Time.Year() != tt.wantYear {
				t.Errorf("parseDateAt(%q) = %v (valid %v), want year %d",
					tt.input, got.Time, got.Valid, tt.wantYear)
			}
		})
	}
}
