// Package core provides the ingestion pipeline for tabular uploads.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ColumnDescriptor identifies one column of a dataset.
// Key is positional ("col0", "col1", ...) so renamed or duplicate
// headers never collide; Title is only used for display.
type ColumnDescriptor struct {
	Key        string `json:"key"`
	Title      string `json:"title"`
	Emphasized bool   `json:"emphasized"`
}

// ColumnKey returns the key for the column at a 0-based position.
func ColumnKey(index int) string {
	return fmt.Sprintf("col%d", index)
}

// Row is a single normalized record. Values are stored in column order;
// the mapping from key to value is kept alongside so lookups stay O(1).
type Row struct {
	keys   []string
	values []string
	index  map[string]int
}

// NewRow creates a row from parallel key/value slices.
// Panics if the slices differ in length.
func NewRow(keys, values []string) Row {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("row: %d keys but %d values", len(keys), len(values)))
	}
	r := Row{
		keys:   keys,
		values: make([]string, len(values)),
		index:  make(map[string]int, len(keys)),
	}
	copy(r.values, values)
	for i, k := range keys {
		r.index[k] = i
	}
	return r
}

// Get returns the value stored under key and whether the key exists.
func (r Row) Get(key string) (string, bool) {
	i, ok := r.index[key]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Value returns the value under key, or "" when absent.
func (r Row) Value(key string) string {
	v, _ := r.Get(key)
	return v
}

// Keys returns the column keys in display order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Values returns the cell values in display order.
func (r Row) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of cells in the row.
func (r Row) Len() int {
	return len(r.values)
}

// with returns a copy of the row with one value replaced.
// The key slice and index are shared since they never change.
func (r Row) with(key, value string) Row {
	values := make([]string, len(r.values))
	copy(values, r.values)
	values[r.index[key]] = value
	return Row{keys: r.keys, values: values, index: r.index}
}

// MarshalJSON encodes the row as an object whose members follow column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DiagnosticContext carries the human-readable trail for a finding.
type DiagnosticContext struct {
	SheetLabel  string `json:"sheetLabel"`
	ColumnLabel string `json:"columnLabel"`
	RowLabel    string `json:"rowLabel"`
	Description string `json:"description"`
}

// Suggestion is a remediation hint with a worked example.
type Suggestion struct {
	Fix     string `json:"fix"`
	Example string `json:"example"`
}

// Diagnostic is one validation finding tied to a row and column.
// Diagnostics are never mutated; an edit produces a fresh set for its row.
type Diagnostic struct {
	RowIndex   int               `json:"rowIndex"`
	ColumnKey  string            `json:"columnKey"`
	Kind       RuleKind          `json:"kind"`
	Message    string            `json:"message"`
	Context    DiagnosticContext `json:"context"`
	Suggestion Suggestion        `json:"suggestion"`
}

// Summary holds the data-quality counters of a dataset.
// Every row is counted in exactly one bucket.
type Summary struct {
	Unchanged int `json:"unchanged"`
	Edited    int `json:"edited"`
	Errors    int `json:"errors"`
	Blank     int `json:"blank"`
}

// Total returns the number of rows classified.
func (s Summary) Total() int {
	return s.Unchanged + s.Edited + s.Errors + s.Blank
}

// State is the lifecycle state of an Orchestrator.
type State string

const (
	StateIdle      State = "idle"
	StateIngesting State = "ingesting"
	StateMerged    State = "merged"
	StateFailed    State = "failed"
)

// Progress reports how many files of an ingestion have been processed.
type Progress struct {
	IngestID  string  `json:"ingestId,omitempty"`
	State     State   `json:"state"`
	FileName  string  `json:"fileName,omitempty"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Fraction  float64 `json:"fraction"`
	Error     string  `json:"error,omitempty"` // Non-empty if State is StateFailed
}

// Percent returns the progress as a percentage (0-100).
func (p Progress) Percent() int {
	return int(p.Fraction * 100)
}

// ProgressCallback is called after each file of an ingestion.
type ProgressCallback func(Progress)

func fraction(processed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(processed) / float64(total)
}
