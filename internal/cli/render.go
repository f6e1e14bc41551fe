package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// maxCellWidth keeps long cell values from blowing up the diagnostics table.
const maxCellWidth = 40

// checkReport is the JSON shape of a check run.
type checkReport struct {
	Files   []string      `json:"files"`
	Profile string        `json:"profile"`
	Dataset *core.Dataset `json:"dataset"`
}

func renderJSON(w io.Writer, paths []string, profile string, ds *core.Dataset) error {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(checkReport{Files: names, Profile: profile, Dataset: ds})
}

// renderReport prints the columns, the summary and up to limit diagnostics.
func renderReport(w io.Writer, paths []string, profile string, ds *core.Dataset, limit int) error {
	fmt.Fprintf(w, "Checked %d file(s) with profile %s: %d rows\n\n", len(paths), profile, len(ds.Rows))

	cols := table.NewWriter()
	cols.SetOutputMirror(w)
	cols.SetStyle(table.StyleLight)
	cols.SetTitle("Columns")
	cols.AppendHeader(table.Row{"Key", "Title", ""})
	for _, c := range ds.Columns {
		mark := ""
		if c.Emphasized {
			mark = "key"
		}
		cols.AppendRow(table.Row{c.Key, c.Title, mark})
	}
	cols.Render()
	fmt.Fprintln(w)

	sum := table.NewWriter()
	sum.SetOutputMirror(w)
	sum.SetStyle(table.StyleLight)
	sum.SetTitle("Summary")
	sum.AppendHeader(table.Row{"Unchanged", "Edited", "Errors", "Blank", "Total"})
	sum.AppendRow(table.Row{ds.Summary.Unchanged, ds.Summary.Edited, ds.Summary.Errors, ds.Summary.Blank, ds.Summary.Total()})
	sum.Render()

	if len(ds.Diagnostics) == 0 {
		fmt.Fprintln(w, "\nNo issues found.")
		return nil
	}
	fmt.Fprintln(w)

	diags := table.NewWriter()
	diags.SetOutputMirror(w)
	diags.SetStyle(table.StyleLight)
	diags.SetTitle("Diagnostics")
	diags.AppendHeader(table.Row{"Row", "Column", "Kind", "Value", "Problem", "Fix"})
	diags.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, WidthMax: maxCellWidth},
		{Number: 6, WidthMax: maxCellWidth},
	})

	shown := ds.Diagnostics
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, d := range shown {
		diags.AppendRow(table.Row{
			strconv.Itoa(d.RowIndex + 1),
			d.Context.ColumnLabel,
			string(d.Kind),
			ds.Rows[d.RowIndex].Value(d.ColumnKey),
			d.Message,
			d.Suggestion.Fix,
		})
	}
	diags.Render()

	if rest := len(ds.Diagnostics) - len(shown); rest > 0 {
		fmt.Fprintf(w, "(%d more, use --limit 0 or --export to see all)\n", rest)
	}
	return nil
}
