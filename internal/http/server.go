// Package http exposes the JSON API over net/http.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "github.com/York260/Coins-manager/internal/log"
	"github.com/York260/Coins-manager/internal/services"
	"github.com/York260/Coins-manager/internal/summary"
)

// Server wires the ledger service and summary analyzer to HTTP routes.
type Server struct {
	http.Server
	ledger   *services.LedgerService
	analyzer *summary.Analyzer
	logger   *applog.Logger

	rateLimiter  *rateLimiter
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, analyzer *summary.Analyzer, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:      ledger,
		analyzer:    analyzer,
		logger:      logger,
		rateLimiter: newRateLimiter(),
		started:     time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/state", s.with(s.handleState))
	mux.HandleFunc("GET /api/accounts", s.with(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.with(s.handleCreateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.with(s.handleDeleteAccount))
	mux.HandleFunc("GET /api/accounts/{id}/transactions", s.with(s.handleAccountTransactions))
	mux.HandleFunc("POST /api/transactions", s.with(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/rules", s.with(s.handleListRules))
	mux.HandleFunc("POST /api/rules", s.with(s.handleCreateRule))
	mux.HandleFunc("POST /api/rules/{id}/toggle", s.with(s.handleToggleRule))
	mux.HandleFunc("GET /api/theme", s.with(s.handleGetTheme))
	mux.HandleFunc("PUT /api/theme", s.with(s.handleSetTheme))
	mux.HandleFunc("GET /api/summary", s.with(s.handleSummary))
	mux.HandleFunc("POST /api/catchup", s.with(s.handleCatchUp))

	return s
}

// with wraps a handler with request-ID tagging, request logging and rate
// limiting.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := generateRequestID()
		w.Header().Set("X-Request-ID", requestID)

		if !s.rateLimiter.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.logger.InfoContext(r.Context(), "Request handled",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatus, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Shutdown stops the rate limiter's cleanup goroutine and drains the HTTP
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
