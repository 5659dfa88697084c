package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andromedaprotocol/community-onboarding/internal/flow"
	"github.com/andromedaprotocol/community-onboarding/internal/issues"
	"github.com/andromedaprotocol/community-onboarding/internal/models"
	"github.com/andromedaprotocol/community-onboarding/internal/pathway"
	"github.com/andromedaprotocol/community-onboarding/internal/questionnaire"
	"github.com/andromedaprotocol/community-onboarding/internal/session"
	"github.com/andromedaprotocol/community-onboarding/internal/store"
)

func newTestServer(t *testing.T, issuesClient *issues.Client) *Server {
	t.Helper()
	catalog := questionnaire.Default()
	saver := store.NewSaver(store.NewInMemoryStore())
	saver.SetRetryPolicy(3, time.Millisecond, time.Second)
	ctl := flow.NewController(
		session.NewInMemoryStore(),
		catalog,
		pathway.NewEngine(pathway.DefaultPathURLs),
		saver,
	)
	return NewServer(ctl, catalog, issuesClient)
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeTurn(t *testing.T, rec *httptest.ResponseRecorder) models.TurnResponse {
	t.Helper()
	var resp models.TurnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode turn response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestMessageEndpointStartsAndAdvances(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := postJSON(t, h, "/onboarding/message", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	first := decodeTurn(t, rec)
	if first.SessionID == "" || first.CurrentQuestionIndex != 0 {
		t.Fatalf("unexpected first turn: %+v", first)
	}

	rec = postJSON(t, h, "/onboarding/message",
		`{"sessionId":"`+first.SessionID+`","response":"Ada"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	second := decodeTurn(t, rec)
	if second.CurrentQuestionIndex != 1 {
		t.Errorf("expected question 1, got %d", second.CurrentQuestionIndex)
	}
	if second.NextQuestion == "" {
		t.Error("expected the next question's text")
	}
}

func TestMessageEndpointRejectsMalformedAnswer(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := postJSON(t, h, "/onboarding/message", `{"sessionId":"x","response":42}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope.Status != string(models.APIStatusError) {
		t.Errorf("expected error status, got %q", envelope.Status)
	}

	rec = postJSON(t, h, "/onboarding/message", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestMessageEndpointMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/onboarding/message", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Errorf("expected Allow: POST, got %q", rec.Header().Get("Allow"))
	}
}

func TestBackEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := postJSON(t, h, "/onboarding/back", `{"targetQuestionIndex":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing sessionId should 400, got %d", rec.Code)
	}

	rec = postJSON(t, h, "/onboarding/back", `{"sessionId":"missing","targetQuestionIndex":0}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session should 404, got %d", rec.Code)
	}

	first := decodeTurn(t, postJSON(t, h, "/onboarding/message", `{}`))
	postJSON(t, h, "/onboarding/message", `{"sessionId":"`+first.SessionID+`","response":"Ada"}`)

	rec = postJSON(t, h, "/onboarding/back",
		`{"sessionId":"`+first.SessionID+`","targetQuestionIndex":99}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range index should 400, got %d", rec.Code)
	}

	rec = postJSON(t, h, "/onboarding/back",
		`{"sessionId":"`+first.SessionID+`","targetQuestionIndex":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body)
	}
}

func TestRestartEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := postJSON(t, h, "/onboarding/restart", ``)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Success bool `json:"success"`
		models.TurnResponse
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Success {
		t.Error("expected success true")
	}
	if body.SessionID == "" || body.CurrentQuestionIndex != 0 || body.NextQuestion == "" {
		t.Errorf("restart should return question 0 with a fresh session: %+v", body.TurnResponse)
	}
}

func TestRetrySaveEndpointErrors(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := postJSON(t, h, "/onboarding/retry-save", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing sessionId should 400, got %d", rec.Code)
	}

	rec = postJSON(t, h, "/onboarding/retry-save", `{"sessionId":"missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session should 404, got %d", rec.Code)
	}

	// A session that has not yet captured an email cannot be retried.
	first := decodeTurn(t, postJSON(t, h, "/onboarding/message", `{}`))
	rec = postJSON(t, h, "/onboarding/retry-save", `{"sessionId":"`+first.SessionID+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete profile should 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
	if body["total_questions"] != float64(questionnaire.Default().TotalCount()) {
		t.Errorf("unexpected question count: %v", body["total_questions"])
	}
}

func TestIssuesEndpointUnconfigured(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/issues", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("nil issues client should 503, got %d", rec.Code)
	}
}

func TestIssuesEndpointProxiesGitHub(t *testing.T) {
	github := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/repos/andromedaprotocol/andromeda-core/issues") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"number":7,"title":"Add new ADO","html_url":"https://github.com/x/7","state":"open"}]`))
	}))
	defer github.Close()

	client := issues.NewClient("andromedaprotocol", "andromeda-core")
	client.SetBaseURL(github.URL)
	h := newTestServer(t, client).Handler()

	req := httptest.NewRequest(http.MethodGet, "/issues", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Status string         `json:"status"`
		Result []issues.Issue `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Status != string(models.APIStatusOK) {
		t.Errorf("expected ok status, got %q", envelope.Status)
	}
	if len(envelope.Result) != 1 || envelope.Result[0].Number != 7 {
		t.Errorf("unexpected issues payload: %+v", envelope.Result)
	}
}

func TestIssuesEndpointUpstreamFailure(t *testing.T) {
	github := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer github.Close()

	client := issues.NewClient("andromedaprotocol", "andromeda-core")
	client.SetBaseURL(github.URL)
	h := newTestServer(t, client).Handler()

	req := httptest.NewRequest(http.MethodGet, "/issues", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("upstream failure should 502, got %d", rec.Code)
	}
}
