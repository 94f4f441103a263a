// Package api exposes the verifier over HTTP: solution verification, the
// descriptor registry, the challenge protocol, batch scans, and the script
// builder.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lodecraft/lode-verify-go/internal/protocol"
	"github.com/lodecraft/lode-verify-go/internal/scan"
	"github.com/lodecraft/lode-verify-go/internal/store"
)

// TokenSource yields the admin token protecting operator endpoints.
type TokenSource interface {
	Token() (string, error)
}

// Server handles HTTP requests.
type Server struct {
	db        store.DB
	proto     *protocol.Protocol
	operator  string
	scanner   *scan.Scanner
	tokens    TokenSource
	logger    *log.Logger
	errors    *ErrorHandler
	startTime time.Time
}

// NewServer wires the verifier's HTTP surface. operator is the identity the
// admin endpoints act as; tokens may be nil, which leaves those endpoints
// open (local development only).
func NewServer(db store.DB, proto *protocol.Protocol, operator string, tokens TokenSource, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stdout, "[api] ", log.LstdFlags)
	}
	return &Server{
		db:        db,
		proto:     proto,
		operator:  operator,
		scanner:   scan.NewScanner(),
		tokens:    tokens,
		logger:    logger,
		errors:    NewErrorHandler(logger),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/verify", s.handleVerify)
		r.Get("/puzzles/{id}", s.handleGetPuzzle)
		r.Post("/scan", s.handleScan)
		r.Post("/script/build", s.handleScriptBuild)

		r.Get("/competition", s.handleCompetitionStatus)
		r.Post("/competition/commit", s.handleCommit)
		r.Post("/competition/reveal", s.handleReveal)
		r.Post("/competition/challenge", s.handleChallenge)
		r.Post("/competition/award", s.handleAward)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/puzzles", s.handleMintPuzzle)
			r.Post("/competition/start", s.handleStartCompetition)
		})
	})

	return r
}

// requireAdmin checks the bearer token against the keyring-backed source.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tokens == nil {
			next.ServeHTTP(w, r)
			return
		}
		want, err := s.tokens.Token()
		if err != nil {
			s.errors.HandleError(w, r, err, http.StatusServiceUnavailable)
			return
		}
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			requestID := middleware.GetReqID(r.Context())
			verr := NewError(ErrTypeUnauthorized, "admin token required").
				WithRequestID(requestID).
				WithContext("path", r.URL.Path).
				Build()
			s.errors.HandleError(w, r, verr, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Verifier-Version", VerifierVersion)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed err=%v", err)
	}
}
