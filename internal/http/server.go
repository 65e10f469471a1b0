package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/K1T3K1/msfin/internal/cache"
	"github.com/K1T3K1/msfin/internal/core"
	"github.com/K1T3K1/msfin/internal/metrics"
	"github.com/K1T3K1/msfin/internal/middleware/trace"
	"github.com/K1T3K1/msfin/internal/services"
)

// RateFetcher resolves an exchange rate. Satisfied by currency.Client.
type RateFetcher interface {
	FetchRate(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

type Server struct {
	http.Server
	ledger      *services.LedgerService
	rates       RateFetcher
	rateLimiter *rateLimiter

	// read-side caches, purged whenever the ledger mutates
	listCache    *cache.LRUCache[[]core.LedgerEntry]
	summaryCache *cache.LRUCache[core.Summary]

	shutdownOnce sync.Once
}

func NewServer(port string, ledger *services.LedgerService, rates RateFetcher) *Server {
	s := &Server{
		ledger:       ledger,
		rates:        rates,
		rateLimiter:  newRateLimiter(),
		listCache:    cache.NewLRUCache[[]core.LedgerEntry](100, 30*time.Second),
		summaryCache: cache.NewLRUCache[core.Summary](100, 30*time.Second),
	}

	s.Server = http.Server{
		Addr:         ":" + port,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.limited(s.handleCreateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.limited(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.limited(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.limited(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.limited(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.limited(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.limited(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/currency/rate", s.handleCurrencyRate)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	return trace.Middleware(metrics.Middleware(mux))
}

// limited wraps a mutating handler with the per-IP rate limit.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.allow(trace.ClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}

// invalidate drops cached reads after any mutation.
func (s *Server) invalidate() {
	s.listCache.Purge()
	s.summaryCache.Purge()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.ListAccounts(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		slog.Info("shutting down HTTP server")
		err = s.Server.Shutdown(ctx)
	})
	return err
}
