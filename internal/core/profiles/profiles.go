// Package profiles registers the built-in validation profiles with the core
// registry. Import it for its side effects.
package profiles

import "github.com/JonMunkholm/sheetcheck/internal/core"

func init() {
	registerMapping()
	registerAssignments()
	registerRegions()
	registerLocations()
}

// registerMapping is the default: only the identifier column is required.
func registerMapping() {
	core.Register(core.Profile{
		Key:        core.DefaultProfileKey,
		Label:      "Mappings",
		SheetLabel: "Mapping Sheet",
		Rules:      core.DefaultRuleSet,
	})
}

// registerAssignments expects a name column and an assignment state
// column that must be filled and must not carry exported error markers.
func registerAssignments() {
	core.Register(core.Profile{
		Key:        "assignments",
		Label:      "Assignments",
		SheetLabel: "Assignment Sheet",
		Rules: func() core.RuleSet {
			return core.RuleSet{}.
				Add(core.ColumnKey(0), core.Required()).
				Add(core.ColumnKey(1), core.Required(), core.Rejects("ERROR"))
		},
	})
}

// registerRegions expects a region name and a US state.
func registerRegions() {
	core.Register(core.Profile{
		Key:        "regions",
		Label:      "Regions",
		SheetLabel: "Regions",
		Rules: func() core.RuleSet {
			return core.RuleSet{}.
				Add(core.ColumnKey(0), core.Required()).
				Add(core.ColumnKey(1), core.Required(), usState())
		},
	})
}

// registerLocations expects a location name, a US state, a contact
// email and an optional headcount.
func registerLocations() {
	core.Register(core.Profile{
		Key:        "locations",
		Label:      "Locations",
		SheetLabel: "Locations",
		Rules: func() core.RuleSet {
			return core.RuleSet{}.
				Add(core.ColumnKey(0), core.Required()).
				Add(core.ColumnKey(1), usState()).
				Add(core.ColumnKey(2), core.Email()).
				Add(core.ColumnKey(3), core.Number(), core.Between(0, 100000))
		},
	})
}

func usState() core.Rule {
	r := core.Custom("Must be a US state name or postal code", IsUSState)
	r.Fix = "Use the full state name or its two-letter code"
	r.Example = "CA"
	return r
}
