package models

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse is the generic envelope returned by every endpoint.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success builds an ok envelope carrying a result payload.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage builds an ok envelope with a human-readable message.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error builds an error envelope with a sanitized message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// TurnRequest is the body of POST /onboarding/message. SessionID is empty on
// the first turn of a new conversation; Response is absent on that turn too.
type TurnRequest struct {
	SessionID       string  `json:"sessionId,omitempty"`
	Response        *Answer `json:"response,omitempty"`
	ConditionalText string  `json:"conditionalText,omitempty"`
}

// PathResult is the outcome of path determination, returned at completion.
type PathResult struct {
	RecommendedPath    string `json:"recommendedPath"`
	RecommendedPathURL string `json:"recommendedPathUrl"`
}

// TurnResponse is the body returned by the turn, restart and back endpoints.
// NewSessionID is set only on an expiry-triggered restart; callers must swap
// their stored session id to it. HaltFlow instructs the client to stop
// sending turns.
type TurnResponse struct {
	SessionID                 string      `json:"sessionId"`
	NewSessionID              string      `json:"newSessionId,omitempty"`
	CurrentQuestionIndex      int         `json:"currentQuestionIndex"`
	NextQuestion              string      `json:"nextQuestion,omitempty"`
	InputMode                 InputMode   `json:"inputMode,omitempty"`
	Options                   []Option    `json:"options,omitempty"`
	IsMultiSelect             bool        `json:"isMultiSelect,omitempty"`
	ConditionalTriggerValue   string      `json:"conditionalTriggerValue,omitempty"`
	ConditionalTextInputLabel string      `json:"conditionalTextInputLabel,omitempty"`
	IsFinalQuestion           bool        `json:"isFinalQuestion,omitempty"`
	FinalResult               *PathResult `json:"finalResult,omitempty"`
	Error                     string      `json:"error,omitempty"`
	HaltFlow                  bool        `json:"haltFlow,omitempty"`
}

// BackRequest is the body of POST /onboarding/back.
type BackRequest struct {
	SessionID           string `json:"sessionId"`
	TargetQuestionIndex int    `json:"targetQuestionIndex"`
}

// RetrySaveRequest is the body of POST /onboarding/retry-save.
type RetrySaveRequest struct {
	SessionID string `json:"sessionId"`
}
