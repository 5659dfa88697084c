// This file wires the HTTP server: routes, options and the serve loop.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/andromedaprotocol/community-onboarding/internal/flow"
	"github.com/andromedaprotocol/community-onboarding/internal/issues"
	"github.com/andromedaprotocol/community-onboarding/internal/questionnaire"
)

// DefaultAddr is the address the API listens on when none is configured.
const DefaultAddr = ":8080"

// Timeouts for the HTTP server itself.
const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
)

// Opts holds API server configuration.
type Opts struct {
	Addr string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server exposes the onboarding conversation over HTTP. It holds no
// per-conversation state; everything lives in the session store.
type Server struct {
	ctl     *flow.Controller
	catalog *questionnaire.Catalog
	issues  *issues.Client
	addr    string
}

// NewServer builds a server around an assembled controller. The issues
// client may be nil; the issues endpoint then reports unavailability.
func NewServer(ctl *flow.Controller, catalog *questionnaire.Catalog, issuesClient *issues.Client, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{ctl: ctl, catalog: catalog, issues: issuesClient, addr: cfg.Addr}
}

// Handler returns the route table. Split out for httptest use.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/onboarding/message", s.messageHandler)
	mux.HandleFunc("/onboarding/back", s.backHandler)
	mux.HandleFunc("/onboarding/restart", s.restartHandler)
	mux.HandleFunc("/onboarding/retry-save", s.retrySaveHandler)
	mux.HandleFunc("/issues", s.issuesHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}
	slog.Info("Onboarding API running", "addr", s.addr, "questions", s.catalog.TotalCount())
	return srv.ListenAndServe()
}
