// Package server exposes the chat pipeline over HTTP: the chat controller,
// session retrieval, health, and the middleware around them.
package server

import (
	"net/http"

	"github.com/medassist-labs/medchat/internal/identity"
	"github.com/medassist-labs/medchat/internal/prompt"
	"github.com/medassist-labs/medchat/internal/session"
	"github.com/medassist-labs/medchat/internal/store"
	"github.com/medassist-labs/medchat/internal/upstream"
)

// Canned replies used when config leaves them empty.
const (
	defaultWelcome  = "Hello! I am your medical assistant. Ask me a health question to get started."
	defaultGreeting = "Hello! How can I help you with your health today?"
)

// Options collects the collaborators a Server needs. Sessions, Prompts,
// Upstream and Retry are required; Audit and Verifier may be nil.
type Options struct {
	Sessions *session.Store
	Prompts  *prompt.Builder
	Upstream *upstream.Rotator
	Retry    *upstream.Retryer
	Audit    *store.Store       // optional exchange log
	Verifier *identity.Verifier // optional bearer-token identity

	Welcome  string
	Greeting string

	// RateRPS <= 0 disables the per-IP limit on /chat.
	RateRPS   float64
	RateBurst int
}

type Server struct {
	sessions *session.Store
	prompts  *prompt.Builder
	upstream *upstream.Rotator
	retry    *upstream.Retryer
	audit    *store.Store
	verifier *identity.Verifier
	welcome  string
	greeting string
	mux      *http.ServeMux
	handler  http.Handler
}

func New(opts Options) *Server {
	s := &Server{
		sessions: opts.Sessions,
		prompts:  opts.Prompts,
		upstream: opts.Upstream,
		retry:    opts.Retry,
		audit:    opts.Audit,
		verifier: opts.Verifier,
		welcome:  opts.Welcome,
		greeting: opts.Greeting,
		mux:      http.NewServeMux(),
	}
	if s.welcome == "" {
		s.welcome = defaultWelcome
	}
	if s.greeting == "" {
		s.greeting = defaultGreeting
	}

	var chat http.Handler = http.HandlerFunc(s.handleChat)
	if opts.RateRPS > 0 {
		chat = NewRateLimiter(opts.RateRPS, opts.RateBurst).Middleware(chat)
	}
	s.mux.Handle("POST /chat", chat)
	s.mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = logRequests(s.mux)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
