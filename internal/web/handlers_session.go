package web

// handlers_session.go serves the review phase of an ingestion: reading the
// merged dataset, editing cells, exporting diagnostics and finalizing.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/logging"
	"github.com/go-chi/chi/v5"
)

// IngestResponse is the state of one ingestion. Dataset is set once it has
// merged.
type IngestResponse struct {
	Progress core.Progress `json:"progress"`
	Dataset  *core.Dataset `json:"dataset,omitempty"`
}

// handleGetIngest returns the ingestion's progress and, once merged, its dataset.
func (s *Server) handleGetIngest(w http.ResponseWriter, r *http.Request) {
	ingestID := chi.URLParam(r, "ingestID")

	progress, err := s.service.Progress(ingestID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := IngestResponse{Progress: progress}
	if progress.State == core.StateMerged {
		ds, err := s.service.Dataset(ingestID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		resp.Dataset = ds
	}

	writeJSON(w, http.StatusOK, resp)
}

// EditRequest replaces one cell of a merged dataset.
type EditRequest struct {
	Row    *int   `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// EditResponse carries the edited row, its fresh diagnostics and the
// recomputed summary.
type EditResponse struct {
	Row         int               `json:"row"`
	Values      core.Row          `json:"values"`
	Diagnostics []core.Diagnostic `json:"diagnostics"`
	Summary     core.Summary      `json:"summary"`
}

// handleEditCell applies a single cell edit.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	ingestID := chi.URLParam(r, "ingestID")

	var req EditRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Row == nil || req.Column == "" {
		writeError(w, r, http.StatusBadRequest, "row and column are required")
		return
	}

	ds, err := s.service.Edit(ingestID, *req.Row, req.Column, req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}

	diags := ds.RowDiagnostics(*req.Row)
	if diags == nil {
		diags = []core.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, EditResponse{
		Row:         *req.Row,
		Values:      ds.Rows[*req.Row],
		Diagnostics: diags,
		Summary:     ds.Summary,
	})
}

// handleFinalize returns the reviewed dataset and ends the session.
func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ingestID := chi.URLParam(r, "ingestID")

	ds, err := s.service.Finalize(ingestID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ds)
}

// handleResetIngest cancels the ingestion if needed and discards the session.
func (s *Server) handleResetIngest(w http.ResponseWriter, r *http.Request) {
	ingestID := chi.URLParam(r, "ingestID")

	if err := s.service.Reset(ingestID); err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithIngestion(r.Context(), ingestID).Info("ingestion reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleExportDiagnostics downloads every diagnostic with its row as CSV,
// so users can fix the rows offline and upload them again.
func (s *Server) handleExportDiagnostics(w http.ResponseWriter, r *http.Request) {
	ingestID := chi.URLParam(r, "ingestID")

	ds, err := s.service.Dataset(ingestID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	prefix := ingestID[:min(8, len(ingestID))]
	filename := fmt.Sprintf("diagnostics_%s_%s.csv", prefix, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := core.WriteDiagnosticsCSV(w, ds); err != nil {
		// Headers are already sent; the client sees a truncated file.
		logging.WithIngestion(r.Context(), ingestID).Error("export diagnostics", "error", err)
	}
}
