package core

import (
	"bytes"
	"context"
	"testing"
)

func TestWriteDiagnosticsCSV(t *testing.T) {
	o := newTestOrchestrator(RuleSet{}.Add("col0", Required()).Add("col1", Number()))
	ds, err := o.Ingest(context.Background(), []File{
		csvFile("a.csv", "Id,Amount\n1,5\n,x\n"),
	}, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteDiagnosticsCSV(&buf, ds); err != nil {
		t.Fatalf("WriteDiagnosticsCSV: %v", err)
	}

	want := "_row,_column,_kind,_error,_fix,_example,Id,Amount\n" +
		"2,Id,required,This field is required,Please enter a valid value for this required field," +
		"Enter appropriate data based on the column requirements,,x\n" +
		"2,Amount,format,Must be a valid number,Remove letters and use a standard decimal format,1234.56,,x\n"
	if got := buf.String(); got != want {
		t.Errorf("export mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteDiagnosticsCSV_NoDiagnostics(t *testing.T) {
	ds := newDataset(nil)
	ds.Columns = testColumns("Id")

	var buf bytes.Buffer
	if err := WriteDiagnosticsCSV(&buf, ds); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "_row,_column,_kind,_error,_fix,_example,Id\n" {
		t.Errorf("export = %q", got)
	}
}
