// This file implements the HTTP handlers for the onboarding endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/andromedaprotocol/community-onboarding/internal/flow"
	"github.com/andromedaprotocol/community-onboarding/internal/models"
)

// messageHandler handles one conversation turn (POST /onboarding/message).
func (s *Server) messageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.messageHandler: processing turn", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.messageHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, models.ErrMalformedAnswer) {
			slog.Warn("Server.messageHandler: malformed answer shape", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrMalformedAnswer.Error()))
			return
		}
		slog.Warn("Server.messageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	resp, err := s.ctl.ProcessTurn(r.Context(), req)
	if err != nil {
		// Store failures and consistency errors alike surface as a generic
		// 500; details stay in the server log.
		slog.Error("Server.messageHandler: turn processing failed", "error", err, "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// backHandler rewinds the conversation (POST /onboarding/back).
func (s *Server) backHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.backHandler invoked", "method", r.Method)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.BackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.backHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.SessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: sessionId"))
		return
	}

	err := s.ctl.GoBack(r.Context(), req.SessionID, req.TargetQuestionIndex)
	switch {
	case errors.Is(err, flow.ErrInvalidQuestionIndex):
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid question index"))
	case errors.Is(err, flow.ErrSessionNotFound):
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
	case err != nil:
		slog.Error("Server.backHandler: back navigation failed", "error", err, "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to navigate back"))
	default:
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// restartResponse is the wire shape of POST /onboarding/restart.
type restartResponse struct {
	Success bool `json:"success"`
	models.TurnResponse
}

// restartHandler starts a brand-new conversation (POST /onboarding/restart).
func (s *Server) restartHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.restartHandler invoked", "method", r.Method)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	resp, err := s.ctl.Restart(r.Context())
	if err != nil {
		slog.Error("Server.restartHandler: restart failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, map[string]interface{}{"error": "Failed to restart onboarding"})
		return
	}
	writeJSONResponse(w, http.StatusOK, restartResponse{Success: true, TurnResponse: *resp})
}

// retrySaveResponse is the wire shape of POST /onboarding/retry-save.
type retrySaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// retrySaveHandler re-attempts a failed profile save (POST /onboarding/retry-save).
func (s *Server) retrySaveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.retrySaveHandler invoked", "method", r.Method)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req models.RetrySaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.retrySaveHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.SessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: sessionId"))
		return
	}

	res, err := s.ctl.RetrySave(r.Context(), req.SessionID)
	switch {
	case errors.Is(err, flow.ErrSessionNotFound):
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	case errors.Is(err, flow.ErrProfileIncomplete):
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Session profile has no email"))
		return
	case err != nil:
		slog.Error("Server.retrySaveHandler: retry failed", "error", err, "sessionID", req.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to retry save"))
		return
	}
	if res.Success {
		writeJSONResponse(w, http.StatusOK, retrySaveResponse{Success: true, Message: "Profile saved successfully"})
		return
	}
	writeJSONResponse(w, http.StatusOK, retrySaveResponse{Success: false, Error: res.Error, Message: "Profile save failed again"})
}

// issuesHandler returns open community GitHub issues (GET /issues).
func (s *Server) issuesHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.issuesHandler invoked", "method", r.Method)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.issues == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Issue board not configured"))
		return
	}
	list, err := s.issues.FetchOpen(r.Context())
	if err != nil {
		slog.Error("Server.issuesHandler: fetch failed", "error", err)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Failed to fetch issues"))
		return
	}
	slog.Debug("Server.issuesHandler: issues fetched", "count", len(list))
	writeJSONResponse(w, http.StatusOK, models.Success(list))
}

// healthHandler provides a health check endpoint for monitoring (GET /health).
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"total_questions": s.catalog.TotalCount(),
	})
}
