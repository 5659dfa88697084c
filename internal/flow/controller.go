// Package flow implements the onboarding conversation controller.
//
// The controller owns question sequencing, the validation outcome policy
// (accept, reprompt once, halt on email, degrade to null otherwise), parsing
// dispatch, completion detection and the persistence handshake. All state
// between turns lives in the session store; the controller itself is
// stateless and safe to share across concurrent requests.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/andromedaprotocol/community-onboarding/internal/models"
	"github.com/andromedaprotocol/community-onboarding/internal/parsing"
	"github.com/andromedaprotocol/community-onboarding/internal/pathway"
	"github.com/andromedaprotocol/community-onboarding/internal/questionnaire"
	"github.com/andromedaprotocol/community-onboarding/internal/session"
	"github.com/andromedaprotocol/community-onboarding/internal/store"
	"github.com/andromedaprotocol/community-onboarding/internal/validation"
)

// User-facing guidance strings embedded in normal responses.
const (
	msgSessionExpired = "Your session expired, so we restarted the conversation."
	msgEmailHalted    = "We couldn't validate your email address. Please refresh the page to start over."
	msgSaveFailed     = "Your recommendation is ready, but we couldn't save your profile. You can retry the save."
)

// Controller operation errors, mapped to status codes by the API layer.
var (
	// ErrSessionNotFound marks operations against a missing/expired session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidQuestionIndex marks a back-navigation target outside the catalog.
	ErrInvalidQuestionIndex = errors.New("invalid question index")
	// ErrProfileIncomplete marks a retry-save against a session with no email.
	ErrProfileIncomplete = errors.New("session profile has no email")
	// ErrInconsistentState marks catalog/controller bugs: a valid index with
	// no question definition, or a completed profile without email.
	ErrInconsistentState = errors.New("inconsistent conversation state")
)

// Controller orchestrates one conversation turn at a time.
type Controller struct {
	sessions session.Store
	catalog  *questionnaire.Catalog
	engine   *pathway.Engine
	saver    *store.Saver
}

// NewController wires the controller's collaborators. All of them are
// injected at process startup; the controller holds no ambient state.
func NewController(sessions session.Store, catalog *questionnaire.Catalog, engine *pathway.Engine, saver *store.Saver) *Controller {
	return &Controller{sessions: sessions, catalog: catalog, engine: engine, saver: saver}
}

// ProcessTurn handles one inbound conversation turn.
func (c *Controller) ProcessTurn(ctx context.Context, req models.TurnRequest) (*models.TurnResponse, error) {
	// New conversation: nothing to process this turn, just ask question 0.
	if req.SessionID == "" {
		sessionID, _, err := c.sessions.Create(ctx)
		if err != nil {
			slog.Error("Controller.ProcessTurn: session creation failed", "error", err)
			return nil, err
		}
		slog.Info("Controller.ProcessTurn: new conversation started", "sessionID", sessionID)
		return c.questionResponse(sessionID, 0, ""), nil
	}

	state, err := c.sessions.Get(ctx, req.SessionID)
	if err != nil {
		slog.Error("Controller.ProcessTurn: session lookup failed", "error", err, "sessionID", req.SessionID)
		return nil, err
	}
	if state == nil {
		// Missing and expired are indistinguishable; restart transparently
		// and hand the caller a fresh session id to swap to.
		newID, _, err := c.sessions.Create(ctx)
		if err != nil {
			slog.Error("Controller.ProcessTurn: restart after expiry failed", "error", err)
			return nil, err
		}
		slog.Info("Controller.ProcessTurn: session expired, restarted", "oldSessionID", req.SessionID, "newSessionID", newID)
		resp := c.questionResponse(newID, 0, msgSessionExpired)
		resp.NewSessionID = newID
		return resp, nil
	}

	index := state.QuestionIndex
	q := c.catalog.Get(index)
	if q == nil {
		slog.Error("Controller.ProcessTurn: no question at stored index", "sessionID", req.SessionID, "index", index)
		c.sessions.Delete(ctx, req.SessionID)
		return nil, ErrInconsistentState
	}

	answer := req.Response
	if !validation.Validate(answer.FreeText(), q.ValidationHint) {
		if !state.InReprompt(index) && q.RePromptMessage != "" {
			// First failure: ask the same question again, once.
			reprompted := index
			state.RepromptedIndex = &reprompted
			if err := c.sessions.Update(ctx, req.SessionID, state); err != nil {
				slog.Error("Controller.ProcessTurn: reprompt state update failed", "error", err, "sessionID", req.SessionID)
				return nil, err
			}
			slog.Debug("Controller.ProcessTurn: reprompting", "sessionID", req.SessionID, "index", index)
			return c.questionResponse(req.SessionID, index, q.RePromptMessage), nil
		}
		if q.ValidationHint == models.HintEmail {
			// Second email failure halts the flow. The session record is
			// deliberately left untouched so a refreshed client starts a
			// new session instead of resuming a halted one.
			slog.Warn("Controller.ProcessTurn: email validation failed twice, halting", "sessionID", req.SessionID)
			return &models.TurnResponse{
				SessionID:            req.SessionID,
				CurrentQuestionIndex: index,
				Error:                msgEmailHalted,
				HaltFlow:             true,
			}, nil
		}
		// Second failure on an optional field: degrade to null and move on.
		slog.Debug("Controller.ProcessTurn: degrading invalid optional answer to null", "sessionID", req.SessionID, "index", index)
		answer = nil
	}
	state.RepromptedIndex = nil

	parser, ok := parsing.Get(q.Parser)
	if !ok {
		slog.Error("Controller.ProcessTurn: no parser registered", "parser", q.Parser, "index", index)
		c.sessions.Delete(ctx, req.SessionID)
		return nil, ErrInconsistentState
	}
	parser(answer, req.ConditionalText, *q, &state.Accumulated)
	state.QuestionIndex++

	if state.QuestionIndex >= c.catalog.TotalCount() {
		return c.complete(ctx, req.SessionID, state)
	}

	if err := c.sessions.Update(ctx, req.SessionID, state); err != nil {
		slog.Error("Controller.ProcessTurn: session update failed", "error", err, "sessionID", req.SessionID)
		return nil, err
	}
	return c.questionResponse(req.SessionID, state.QuestionIndex, ""), nil
}

// complete finalizes the conversation: stamps the profile, determines the
// path, attempts persistence and tears the session down. The session is
// deleted only when the save succeeds, which keeps the retry-save operation
// meaningful after a failed save.
func (c *Controller) complete(ctx context.Context, sessionID string, state *models.SessionState) (*models.TurnResponse, error) {
	state.Accumulated.CreatedAt = time.Now().UTC()

	if state.Accumulated.Email == "" {
		// Unreachable given the email halt policy; if it happens the
		// catalog or controller is broken, not the user.
		slog.Error("Controller.complete: profile reached completion without email", "sessionID", sessionID)
		c.sessions.Delete(ctx, sessionID)
		return nil, ErrInconsistentState
	}

	result := c.engine.Determine(state.Accumulated)
	state.Accumulated.RecommendedPath = result.RecommendedPath
	state.Accumulated.RecommendedPathURL = result.RecommendedPathURL

	saveRes := c.saver.Save(ctx, models.NewProfileRecord(state.Accumulated))
	if saveRes.Success {
		c.sessions.Delete(ctx, sessionID)
		slog.Info("Controller.complete: onboarding finished", "sessionID", sessionID, "path", result.RecommendedPath)
		return &models.TurnResponse{
			SessionID:            sessionID,
			CurrentQuestionIndex: c.catalog.TotalCount() - 1,
			IsFinalQuestion:      true,
			FinalResult:          &result,
		}, nil
	}

	// Keep the session alive so retry-save can re-read the completed
	// profile. The sliding TTL still bounds how long the retry window
	// stays open.
	if err := c.sessions.Update(ctx, sessionID, state); err != nil {
		slog.Error("Controller.complete: failed to retain session after save failure", "error", err, "sessionID", sessionID)
	}
	slog.Warn("Controller.complete: save failed, session retained for retry", "sessionID", sessionID, "saveError", saveRes.Error)
	return &models.TurnResponse{
		SessionID:            sessionID,
		CurrentQuestionIndex: c.catalog.TotalCount() - 1,
		IsFinalQuestion:      true,
		FinalResult:          &result,
		Error:                msgSaveFailed,
	}, nil
}

// GoBack rewinds the conversation to an earlier question. Answers recorded
// for questions past the target are left in the accumulated profile until
// those questions are re-answered; the original product behaves the same way.
func (c *Controller) GoBack(ctx context.Context, sessionID string, targetIndex int) error {
	if targetIndex < 0 || targetIndex >= c.catalog.TotalCount() {
		return ErrInvalidQuestionIndex
	}
	state, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		return ErrSessionNotFound
	}
	state.QuestionIndex = targetIndex
	state.RepromptedIndex = nil
	if err := c.sessions.Update(ctx, sessionID, state); err != nil {
		slog.Error("Controller.GoBack: session update failed", "error", err, "sessionID", sessionID)
		return err
	}
	slog.Debug("Controller.GoBack: rewound", "sessionID", sessionID, "targetIndex", targetIndex)
	return nil
}

// Restart abandons nothing and starts a brand-new conversation, returning
// the first question.
func (c *Controller) Restart(ctx context.Context) (*models.TurnResponse, error) {
	sessionID, _, err := c.sessions.Create(ctx)
	if err != nil {
		slog.Error("Controller.Restart: session creation failed", "error", err)
		return nil, err
	}
	if c.catalog.Get(0) == nil {
		slog.Error("Controller.Restart: catalog has no first question")
		return nil, ErrInconsistentState
	}
	slog.Info("Controller.Restart: conversation restarted", "sessionID", sessionID)
	return c.questionResponse(sessionID, 0, ""), nil
}

// RetrySave re-attempts persistence for a session whose completion-time save
// failed. On success the session is finally deleted.
func (c *Controller) RetrySave(ctx context.Context, sessionID string) (store.SaveResult, error) {
	state, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return store.SaveResult{}, err
	}
	if state == nil {
		return store.SaveResult{}, ErrSessionNotFound
	}
	if state.Accumulated.Email == "" {
		return store.SaveResult{}, ErrProfileIncomplete
	}
	if state.Accumulated.RecommendedPath == "" {
		// Completion attaches the path before retaining the session, but a
		// failed retention write can lose it; re-derive deterministically.
		result := c.engine.Determine(state.Accumulated)
		state.Accumulated.RecommendedPath = result.RecommendedPath
		state.Accumulated.RecommendedPathURL = result.RecommendedPathURL
	}
	res := c.saver.Save(ctx, models.NewProfileRecord(state.Accumulated))
	if res.Success {
		c.sessions.Delete(ctx, sessionID)
		slog.Info("Controller.RetrySave: profile saved on retry", "sessionID", sessionID)
	}
	return res, nil
}

// questionResponse builds the response carrying the full definition of the
// question at index.
func (c *Controller) questionResponse(sessionID string, index int, errMsg string) *models.TurnResponse {
	q := c.catalog.Get(index)
	if q == nil {
		// Callers only pass indices they already resolved.
		return &models.TurnResponse{SessionID: sessionID, CurrentQuestionIndex: index, Error: errMsg}
	}
	return &models.TurnResponse{
		SessionID:                 sessionID,
		CurrentQuestionIndex:      index,
		NextQuestion:              q.Text,
		InputMode:                 q.InputMode,
		Options:                   q.Options,
		IsMultiSelect:             q.IsMultiSelect,
		ConditionalTriggerValue:   q.ConditionalTriggerValue,
		ConditionalTextInputLabel: q.ConditionalTextInputLabel,
		Error:                     errMsg,
	}
}
