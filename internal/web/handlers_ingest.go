package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/logging"
	"github.com/go-chi/chi/v5"
)

// IngestStartedResponse is returned when an ingestion is accepted.
type IngestStartedResponse struct {
	IngestID string   `json:"ingest_id"`
	Profile  string   `json:"profile"`
	Files    []string `json:"files"`
}

// handleIngest accepts up to MaxFiles uploads and starts ingesting them in
// the background. Progress is streamed from /api/ingest/{id}/progress.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploadFiles(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	profile := r.FormValue("profile")
	ctx := WithRequestMetadata(r.Context(), r)
	ingestID, err := s.service.StartIngest(ctx, profile, files)
	if err != nil {
		respondError(w, r, err)
		return
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name()
	}
	if profile == "" {
		profile = s.cfg.Ingest.Profile
	}

	writeJSON(w, http.StatusAccepted, IngestStartedResponse{
		IngestID: ingestID,
		Profile:  profile,
		Files:    names,
	})
}

// handlePreview ingests the uploaded files synchronously and returns
// samples and counters without keeping a review session.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	files, err := s.readUploadFiles(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Analyze(ctx, r.FormValue("profile"), files)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleIngestProgress streams ingestion progress via Server-Sent Events.
// Supports resumption via lastEventId query parameter for reconnection.
func (s *Server) handleIngestProgress(w http.ResponseWriter, r *http.Request) {
	ingestID := chi.URLParam(r, "ingestID")

	// The event ID is the number of processed files, allowing clients to
	// skip already-received events after reconnection
	lastEventIDStr := r.URL.Query().Get("lastEventId")
	if lastEventIDStr == "" {
		lastEventIDStr = r.Header.Get("Last-Event-ID")
	}
	lastEventID := -1
	if lastEventIDStr != "" {
		if n, err := strconv.Atoi(lastEventIDStr); err == nil {
			lastEventID = n
		}
	}

	progressCh, err := s.service.SubscribeProgress(ingestID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				// Channel closed - ingestion merged, failed or cancelled
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			// Skip events that were already sent (for resumption). The
			// terminal event is always sent since its state changed.
			if progress.State == core.StateIngesting && progress.Processed <= lastEventID {
				continue
			}

			data, err := json.Marshal(progress)
			if err != nil {
				logging.WithIngestion(r.Context(), ingestID).Error("encode progress", "error", err)
				continue
			}

			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", progress.Processed, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleCancelIngest cancels an in-progress ingestion.
func (s *Server) handleCancelIngest(w http.ResponseWriter, r *http.Request) {
	ingestID := chi.URLParam(r, "ingestID")

	if err := s.service.Cancel(ingestID); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// handleIngestQueueStatus returns the current state of the ingestion limiter.
// Used for monitoring and to check if the system can accept more uploads.
func (s *Server) handleIngestQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

// ProfileResponse describes one validation profile.
type ProfileResponse struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	SheetLabel string `json:"sheet_label"`
	Default    bool   `json:"default"`
}

// handleListProfiles returns the registered validation profiles.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := core.Profiles()
	out := make([]ProfileResponse, len(profiles))
	for i, p := range profiles {
		out[i] = ProfileResponse{
			Key:        p.Key,
			Label:      p.Label,
			SheetLabel: p.SheetLabel,
			Default:    p.Key == s.cfg.Ingest.Profile,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleHealth reports liveness and current load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.service.Limiter().Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"active_ingestions": status.Active,
		"capacity":          status.Capacity,
		"sessions":          s.service.SessionCount(),
	})
}
