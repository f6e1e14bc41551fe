package cli

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List validation profiles and their rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			out := cmd.OutOrStdout()

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Profile", "Label", "Sheet", "Rules"})
			for _, p := range core.Profiles() {
				key := p.Key
				if key == cfg.Ingest.Profile {
					key += " (default)"
				}
				t.AppendRow(table.Row{key, p.Label, p.SheetLabel, describeRules(p.Validator().Rules())})
			}
			t.Render()
			fmt.Fprintf(out, "(%d profiles)\n", len(core.Profiles()))
			return nil
		},
	}
}

// describeRules renders a rule set as "col0: required, format(number)".
func describeRules(rs core.RuleSet) string {
	keys := make([]string, 0, len(rs))
	for k := range rs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := ""
	for i, k := range keys {
		if i > 0 {
			s += "\n"
		}
		s += k + ":"
		for j, r := range rs[k] {
			if j > 0 {
				s += ","
			}
			s += " " + string(r.Kind)
			if r.Kind == core.RuleFormat {
				s += "(" + string(r.Format) + ")"
			}
		}
	}
	return s
}
