package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

const (
	defaultHistoryLimit = 20
	defaultSearchLimit  = 5
	maxLimit            = 100
)

type errorResponse struct {
	Error string `json:"error"`
}

type runResponse struct {
	Summary domain.Summary `json:"summary"`
	Count   int            `json:"count"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// mapError picks the HTTP status for a pipeline error.
func (s *Server) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrRunInProgress):
		s.writeError(w, http.StatusConflict, "digest run already in progress")
	case errors.Is(err, apperrors.ErrTokenNotSet):
		s.writeError(w, http.StatusUnauthorized, "gmail authorization required")
	case errors.Is(err, apperrors.ErrSourceUnavailable):
		s.writeError(w, http.StatusBadGateway, "email source unavailable")
	case errors.Is(err, apperrors.ErrDeliveryFailed):
		s.writeError(w, http.StatusInternalServerError, "digest delivery failed")
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, "semantic store unavailable")
	case errors.Is(err, apperrors.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func limitParam(r *http.Request, fallback int) int {
	return boundedIntParam(r.URL.Query().Get("limit"), fallback)
}

// topKParam reads top_k, accepting limit as an alias.
func topKParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("top_k")
	if raw == "" {
		raw = r.URL.Query().Get("limit")
	}

	return boundedIntParam(raw, fallback)
}

func boundedIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}

	if limit > maxLimit {
		return maxLimit
	}

	return limit
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service": "mailsmart",
		"status":  "ok",
	})
}

func (s *Server) handleRawEmails(w http.ResponseWriter, r *http.Request) {
	items, err := s.source.FetchRecent(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}

	if items == nil {
		items = []domain.Item{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(items),
		"emails": items,
	})
}

// handleSummarize serves the latest persisted run, or executes a fresh
// pipeline run when regenerate=true or no record exists yet.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	regenerate := r.URL.Query().Get("regenerate") == "true"

	if !regenerate {
		record, err := s.records.LatestRunRecord(r.Context())
		if err == nil {
			s.writeJSON(w, http.StatusOK, runResponse{Summary: record.Summary, Count: record.Count})
			return
		}

		if !errors.Is(err, apperrors.ErrNotFound) {
			s.mapError(w, err)
			return
		}
	}

	result, err := s.pipeline.Run(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, runResponse{Summary: result.Summary, Count: result.Count})
}

type directRequest struct {
	Emails []domain.Item `json:"emails"`
}

func (s *Server) handleSummarizeDirect(w http.ResponseWriter, r *http.Request) {
	var req directRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary := s.summarizer.Summarize(r.Context(), req.Emails)

	s.writeJSON(w, http.StatusOK, runResponse{Summary: summary, Count: len(req.Emails)})
}

type runNowRequest struct {
	Recipient string `json:"recipient"`
}

func (s *Server) handleRunNow(w http.ResponseWriter, r *http.Request) {
	var req runNowRequest

	// An empty body means self-delivery.
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.pipeline.RunAndDeliver(r.Context(), req.Recipient)
	if err != nil {
		s.mapError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, runResponse{Summary: result.Summary, Count: result.Count})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	hits, err := s.searcher.Search(r.Context(), query, topKParam(r, defaultSearchLimit))
	if err != nil {
		s.mapError(w, err)
		return
	}

	if hits == nil {
		hits = []domain.SearchHit{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": hits,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.ListRunRecords(r.Context(), limitParam(r, defaultHistoryLimit))
	if err != nil {
		s.mapError(w, err)
		return
	}

	if records == nil {
		records = []domain.RunRecord{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"history": records,
	})
}

func (s *Server) handleHistoryLatest(w http.ResponseWriter, r *http.Request) {
	record, err := s.records.LatestRunRecord(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetEssentials(w http.ResponseWriter, r *http.Request) {
	senders, err := s.allowlist.EssentialSenders(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}

	if senders == nil {
		senders = []string{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"senders": senders})
}

type essentialRequest struct {
	Sender string `json:"sender"`
}

func (s *Server) handleAddEssential(w http.ResponseWriter, r *http.Request) {
	var req essentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Sender) == "" {
		s.writeError(w, http.StatusBadRequest, "missing sender")
		return
	}

	sender := strings.TrimSpace(req.Sender)

	senders, err := s.allowlist.EssentialSenders(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}

	for _, existing := range senders {
		if strings.EqualFold(existing, sender) {
			s.writeJSON(w, http.StatusOK, map[string]interface{}{"senders": senders})
			return
		}
	}

	senders = append(senders, sender)

	if err := s.allowlist.SaveEssentialSenders(r.Context(), senders); err != nil {
		s.mapError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"senders": senders})
}

func (s *Server) handleRemoveEssential(w http.ResponseWriter, r *http.Request) {
	var req essentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Sender) == "" {
		s.writeError(w, http.StatusBadRequest, "missing sender")
		return
	}

	sender := strings.TrimSpace(req.Sender)

	senders, err := s.allowlist.EssentialSenders(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}

	kept := make([]string, 0, len(senders))

	for _, existing := range senders {
		if !strings.EqualFold(existing, sender) {
			kept = append(kept, existing)
		}
	}

	if err := s.allowlist.SaveEssentialSenders(r.Context(), kept); err != nil {
		s.mapError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"senders": kept})
}
