package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"faultline/internal/auth"
	"faultline/internal/dispatch"
	"faultline/internal/fault"
	"faultline/internal/journal"
)

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	count, err := s.journal.Count(r.Context())
	if err != nil {
		s.logger.Error("failed to count journaled intents", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read intent journal")
		return
	}

	respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Armed:         s.submitter.Armed(),
		Faults:        len(s.registry.List()),
		IntentsLogged: count,
	})
}

// handleListFaults handles GET /faults: one label per line, the shape a
// shell loop or a curl into grep expects.
func (s *Server) handleListFaults(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, label := range s.registry.List() {
		fmt.Fprintln(w, label)
	}
}

// handleCatalog handles GET /catalog.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	labels := s.registry.List()
	entries := make([]CatalogEntry, 0, len(labels))
	for _, label := range labels {
		rec, ok := s.registry.Recipe(s.registry.Resolve(label))
		if !ok {
			continue
		}
		entries = append(entries, CatalogEntry{
			Label:     rec.Label,
			Summary:   rec.Summary,
			Signature: rec.Signature,
		})
	}
	respondJSON(w, http.StatusOK, CatalogResponse{Faults: entries})
}

// handleSubmit handles POST /faults. The body is raw command bytes, exactly
// what a write to the control file would carry.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	raw, err := io.ReadAll(io.LimitReader(r.Body, int64(s.config.MaxCommandBytes)+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "copy_fault: failed to read command body")
		return
	}

	// Known commands need a matching trigger scope. Unknown ones fall
	// through and stay indistinguishable from dispatched ones.
	if kind, label := s.submitter.Peek(raw); kind != fault.KindNone {
		if !auth.CanTrigger(principal, label) {
			s.writeError(w, http.StatusForbidden, "insufficient scope")
			return
		}
	}

	s.finishSubmit(w, r, raw, principal)
}

// handleTrigger handles POST /trigger/{label}: the explicit verb form,
// which does say whether the label exists.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	label := chi.URLParam(r, "label")

	if s.registry.Resolve(label) == fault.KindNone {
		s.writeError(w, http.StatusNotFound, "unknown fault label")
		return
	}
	if !auth.CanTrigger(principal, label) {
		s.writeError(w, http.StatusForbidden, "insufficient scope")
		return
	}

	s.finishSubmit(w, r, []byte(label), principal)
}

func (s *Server) finishSubmit(w http.ResponseWriter, r *http.Request, raw []byte, principal auth.Principal) {
	origin := dispatch.Origin{Source: journal.SourceAPI, Principal: principal.Name}

	n, err := s.submitter.Submit(r.Context(), raw, s.config.MaxCommandBytes, origin)
	switch {
	case errors.Is(err, dispatch.ErrTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("command exceeds %d bytes", s.config.MaxCommandBytes))
	case errors.Is(err, dispatch.ErrBusy):
		s.writeError(w, http.StatusServiceUnavailable, "dispatch thread is busy")
	case err != nil:
		s.logger.Error("submit failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "submit failed")
	default:
		respondJSON(w, http.StatusAccepted, SubmitResponse{AcceptedBytes: n})
	}
}

// handleJournal handles GET /journal?limit=N.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read intent journal", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read intent journal")
		return
	}

	resp := JournalResponse{Intents: make([]IntentResponse, 0, len(entries))}
	for i := range entries {
		resp.Intents = append(resp.Intents, intentResponse(&entries[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleJournalLast handles GET /journal/last.
func (s *Server) handleJournalLast(w http.ResponseWriter, r *http.Request) {
	entry, err := s.journal.Last(r.Context())
	if err != nil {
		s.logger.Error("failed to read intent journal", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read intent journal")
		return
	}
	if entry == nil {
		s.writeError(w, http.StatusNotFound, "journal is empty")
		return
	}
	respondJSON(w, http.StatusOK, intentResponse(entry))
}

func intentResponse(e *journal.Entry) IntentResponse {
	resp := IntentResponse{
		ID:        e.ID,
		Label:     e.Label,
		Source:    e.Source,
		RawLen:    e.RawLen,
		Armed:     e.Armed,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.Principal != nil {
		resp.Principal = *e.Principal
	}
	return resp
}

// respondJSON is a helper to write JSON responses.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
