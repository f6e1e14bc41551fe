package core

import (
	"context"
	"strings"
	"time"
)

// RowPreview is one sampled row. LineNumber is 1-based like diagnostic labels.
type RowPreview struct {
	LineNumber int  `json:"lineNumber"`
	Values     Row  `json:"values"`
	Edited     bool `json:"edited,omitempty"`
}

// ErrorPreview is a sampled row with every message raised against it.
type ErrorPreview struct {
	LineNumber int      `json:"lineNumber"`
	Values     Row      `json:"values"`
	Errors     []string `json:"errors"`
	Blank      bool     `json:"blank"`
}

// DuplicatePreview lists rows sharing a value in the emphasized column.
type DuplicatePreview struct {
	Key         string `json:"key"`
	LineNumbers []int  `json:"lineNumbers"`
}

// PreviewResponse is a read-only analysis of an upload: no session is kept.
type PreviewResponse struct {
	Columns          []ColumnDescriptor `json:"columns"`
	TotalRows        int                `json:"totalRows"`
	Summary          Summary            `json:"summary"`
	RowSamples       []RowPreview       `json:"rowSamples"`
	ErrorSamples     []ErrorPreview     `json:"errorSamples"`
	DuplicateSamples []DuplicatePreview `json:"duplicateSamples"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

// Sample limits
const (
	maxRowSamples       = 10
	maxErrorSamples     = 20
	maxDuplicateSamples = 10
)

// Analyze ingests files synchronously and returns samples and counters
// without creating a session. It shares the ingestion limiter.
func (s *Service) Analyze(ctx context.Context, profile string, files []File) (*PreviewResponse, error) {
	_, validator, err := s.resolveProfile(profile)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	orch := NewOrchestrator(Options{
		Decoders:  s.cfg.Decoders,
		Validator: validator,
		ReadAhead: s.cfg.ReadAhead,
	})
	ds, err := orch.Ingest(ctx, files, nil)
	if err != nil {
		return nil, err
	}

	resp := BuildPreview(ds)
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}

// BuildPreview samples a dataset.
func BuildPreview(ds *Dataset) *PreviewResponse {
	resp := &PreviewResponse{
		Columns:          ds.Columns,
		TotalRows:        len(ds.Rows),
		Summary:          ds.Summary,
		RowSamples:       []RowPreview{},
		ErrorSamples:     []ErrorPreview{},
		DuplicateSamples: []DuplicatePreview{},
	}

	for i := 0; i < len(ds.Rows) && i < maxRowSamples; i++ {
		resp.RowSamples = append(resp.RowSamples, RowPreview{
			LineNumber: i + 1,
			Values:     ds.Rows[i],
			Edited:     ds.Edited(i),
		})
	}

	resp.ErrorSamples = errorSamples(ds)
	resp.DuplicateSamples = duplicateSamples(ds)
	return resp
}

// errorSamples groups diagnostics by row, in row order.
func errorSamples(ds *Dataset) []ErrorPreview {
	out := []ErrorPreview{}
	for _, d := range ds.Diagnostics {
		n := len(out)
		if n > 0 && out[n-1].LineNumber == d.RowIndex+1 {
			out[n-1].Errors = append(out[n-1].Errors, d.Context.ColumnLabel+": "+d.Message)
			out[n-1].Blank = out[n-1].Blank || d.Kind == RuleRequired
			continue
		}
		if n == maxErrorSamples {
			break
		}
		out = append(out, ErrorPreview{
			LineNumber: d.RowIndex + 1,
			Values:     ds.Rows[d.RowIndex],
			Errors:     []string{d.Context.ColumnLabel + ": " + d.Message},
			Blank:      d.Kind == RuleRequired,
		})
	}
	return out
}

// duplicateSamples finds repeated values in the emphasized column.
// Comparison ignores case and surrounding space; blanks are skipped.
func duplicateSamples(ds *Dataset) []DuplicatePreview {
	out := []DuplicatePreview{}
	key := ""
	for _, c := range ds.Columns {
		if c.Emphasized {
			key = c.Key
			break
		}
	}
	if key == "" {
		return out
	}

	seen := make(map[string]int) // normalized value -> index in out, or -1
	first := make(map[string]int)
	for i, row := range ds.Rows {
		v := strings.ToLower(strings.TrimSpace(row.Value(key)))
		if v == "" {
			continue
		}
		idx, dup := seen[v]
		if !dup {
			seen[v] = -1
			first[v] = i
			continue
		}
		if idx >= 0 {
			out[idx].LineNumbers = append(out[idx].LineNumbers, i+1)
			continue
		}
		if len(out) == maxDuplicateSamples {
			continue
		}
		seen[v] = len(out)
		out = append(out, DuplicatePreview{
			Key:         strings.TrimSpace(ds.Rows[first[v]].Value(key)),
			LineNumbers: []int{first[v] + 1, i + 1},
		})
	}
	return out
}
