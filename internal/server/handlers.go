package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/marketguard/listing-sentinel/internal/compliance"
	"github.com/marketguard/listing-sentinel/internal/history"
	"github.com/marketguard/listing-sentinel/internal/websocket"
	"go.uber.org/zap"
)

// evaluateRequest is the body of POST /v1/evaluate. Text is a pointer so a
// missing field can be told apart from an empty listing.
type evaluateRequest struct {
	Text      *string `json:"text"`
	SellerID  string  `json:"seller_id,omitempty"`
	GroupName string  `json:"group_name,omitempty"`
}

// evaluateResponse wraps the engine result with the collaborator-derived
// fields the UI needs alongside it.
type evaluateResponse struct {
	*compliance.Result
	Usage     *compliance.UsageCounts `json:"usage,omitempty"`
	Duplicate bool                    `json:"duplicate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleEvaluate runs the full compliance pipeline for one listing.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithRequestID(requestID(r.Context()))
	start := time.Now()

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	// Usage snapshot is best-effort: a Redis hiccup degrades to an
	// engine-only evaluation instead of failing the request.
	var counts *compliance.UsageCounts
	if s.usage != nil && req.SellerID != "" {
		snapshot, err := s.usage.Snapshot(r.Context(), req.SellerID)
		if err != nil {
			log.Warn("Usage snapshot failed", zap.Error(err))
		} else {
			counts = &snapshot
		}
	}

	engine := s.currentEngine()
	result, err := engine.Evaluate(*req.Text, counts)
	if err != nil {
		var inputErr *compliance.InputError
		if errors.As(err, &inputErr) {
			writeError(w, http.StatusBadRequest, inputErr.Error())
			return
		}
		log.Error("Evaluation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	duplicate := false
	if s.history != nil && req.SellerID != "" {
		dup, err := s.history.IsRecentDuplicate(r.Context(), req.SellerID, result.Fingerprint, s.config.History.DuplicateWindow)
		if err != nil {
			log.Warn("Duplicate check failed", zap.Error(err))
		} else {
			duplicate = dup
		}

		rec := &history.Record{
			SellerID:     req.SellerID,
			GroupName:    req.GroupName,
			Fingerprint:  result.Fingerprint,
			RiskScore:    result.RiskScore,
			FindingCount: len(result.Findings),
			Allowed:      result.RateLimit == nil || result.RateLimit.Allowed,
		}
		if err := s.history.Insert(r.Context(), rec); err != nil {
			log.Warn("History insert failed", zap.Error(err))
		}
	}

	atomic.AddInt64(&s.totalEvaluations, 1)
	atomic.AddInt64(&s.totalFindings, int64(len(result.Findings)))
	s.broadcastEvaluation(r.Context(), &req, result, duplicate, time.Since(start))

	writeJSON(w, http.StatusOK, evaluateResponse{
		Result:    result,
		Usage:     counts,
		Duplicate: duplicate,
	})
}

// handleRecordCopy registers one confirmed copy for a seller and returns
// the fresh counters plus the posting decision they imply.
func (s *Server) handleRecordCopy(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		writeError(w, http.StatusServiceUnavailable, "usage tracking is disabled")
		return
	}

	sellerID := mux.Vars(r)["seller"]
	log := s.logger.WithRequestID(requestID(r.Context())).WithSeller(sellerID)

	if err := s.usage.Record(r.Context(), sellerID); err != nil {
		log.Error("Failed to record copy", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record copy")
		return
	}

	snapshot, err := s.usage.Snapshot(r.Context(), sellerID)
	if err != nil {
		log.Error("Failed to read usage counters", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read usage counters")
		return
	}

	decision := compliance.CheckRateLimit(snapshot, s.currentEngine().Rules())
	writeJSON(w, http.StatusOK, struct {
		Usage     compliance.UsageCounts       `json:"usage"`
		RateLimit compliance.RateLimitDecision `json:"rate_limit"`
	}{Usage: snapshot, RateLimit: decision})
}

// handleUsageSnapshot returns a seller's current counters and decision
// without recording anything.
func (s *Server) handleUsageSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		writeError(w, http.StatusServiceUnavailable, "usage tracking is disabled")
		return
	}

	sellerID := mux.Vars(r)["seller"]
	snapshot, err := s.usage.Snapshot(r.Context(), sellerID)
	if err != nil {
		s.logger.WithSeller(sellerID).Error("Failed to read usage counters", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read usage counters")
		return
	}

	decision := compliance.CheckRateLimit(snapshot, s.currentEngine().Rules())
	writeJSON(w, http.StatusOK, struct {
		Usage     compliance.UsageCounts       `json:"usage"`
		RateLimit compliance.RateLimitDecision `json:"rate_limit"`
	}{Usage: snapshot, RateLimit: decision})
}

// handleRecentHistory returns a seller's recent evaluations.
func (s *Server) handleRecentHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	sellerID := mux.Vars(r)["seller"]
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := s.history.Recent(r.Context(), sellerID, limit)
	if err != nil {
		s.logger.WithSeller(sellerID).Error("Failed to load history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		History []history.Record `json:"history"`
	}{History: records})
}

// handleRules summarizes the active rule set.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rs := s.currentEngine().Rules()

	writeJSON(w, http.StatusOK, struct {
		BannedPhrases  int         `json:"banned_phrases"`
		WarningPhrases int         `json:"warning_phrases"`
		Limits         interface{} `json:"limits"`
	}{
		BannedPhrases:  len(rs.Banned()),
		WarningPhrases: len(rs.Warning()),
		Limits:         rs.Limits(),
	})
}

// broadcastEvaluation pushes an evaluation event to the dashboard feed.
func (s *Server) broadcastEvaluation(ctx context.Context, req *evaluateRequest, result *compliance.Result, duplicate bool, elapsed time.Duration) {
	event := websocket.EvaluationEvent{
		RequestID:    requestID(ctx),
		SellerID:     req.SellerID,
		GroupName:    req.GroupName,
		RiskScore:    result.RiskScore,
		Findings:     result.Findings,
		Fingerprint:  result.Fingerprint,
		Duplicate:    duplicate,
		ProcessingMS: float64(elapsed.Nanoseconds()) / 1e6,
	}
	if result.RateLimit != nil {
		allowed := result.RateLimit.Allowed
		event.RateAllowed = &allowed
	}

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeEvaluation,
		Timestamp: time.Now(),
		RequestID: event.RequestID,
		Data:      event,
	})
}
