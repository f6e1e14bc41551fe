package profiles

import (
	"testing"

	"github.com/JonMunkholm/sheetcheck/internal/core"
)

func TestStateCode(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"California", "CA", true},
		{"  new york ", "NY", true},
		{"tx", "TX", true},
		{"WA", "WA", true},
		{"Ontario", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := StateCode(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("StateCode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsUSState_EmptyPasses(t *testing.T) {
	if !IsUSState("   ") {
		t.Error("blank value should pass; emptiness is the required rule's concern")
	}
}

func TestBuiltinProfilesRegistered(t *testing.T) {
	for _, key := range []string{core.DefaultProfileKey, "assignments", "regions", "locations"} {
		p, ok := core.Lookup(key)
		if !ok {
			t.Errorf("profile %q not registered", key)
			continue
		}
		if p.Rules == nil || len(p.Rules()) == 0 {
			t.Errorf("profile %q has no rules", key)
		}
	}
}

func TestAssignmentsProfile_FlagsErrorMarkers(t *testing.T) {
	p, _ := core.Lookup("assignments")
	v := p.Validator()

	cols := []core.ColumnDescriptor{
		{Key: core.ColumnKey(0), Title: "Name", Emphasized: true},
		{Key: core.ColumnKey(1), Title: "Assignment State"},
	}
	keys := []string{cols[0].Key, cols[1].Key}
	rows := []core.Row{
		core.NewRow(keys, []string{"Bob", "Active"}),
		core.NewRow(keys, []string{"Carl", "ERROR_CODE"}),
		core.NewRow(keys, []string{"Alice", ""}),
	}

	diags := v.Validate(cols, rows, 0)
	s := core.Summarize(rows, diags, nil)
	want := core.Summary{Unchanged: 1, Errors: 1, Blank: 1}
	if s != want {
		t.Errorf("Summary = %+v, want %+v", s, want)
	}
	if got := diags[0].Context.SheetLabel; got != "Assignment Sheet" {
		t.Errorf("SheetLabel = %q", got)
	}
}

func TestRegionsProfile_RejectsUnknownState(t *testing.T) {
	p, _ := core.Lookup("regions")
	v := p.Validator()

	cols := []core.ColumnDescriptor{
		{Key: core.ColumnKey(0), Title: "Region"},
		{Key: core.ColumnKey(1), Title: "State"},
	}
	keys := []string{cols[0].Key, cols[1].Key}
	diags := v.ValidateRow(cols, 0, core.NewRow(keys, []string{"West", "Narnia"}))
	if len(diags) != 1 || diags[0].Kind != core.RuleCustom {
		t.Fatalf("diagnostics = %+v, want one custom finding", diags)
	}
}
