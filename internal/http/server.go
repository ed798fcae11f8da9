// Package http exposes the ledger as a JSON API for the dashboard frontend.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"skeletonkey/internal/cache"
	"skeletonkey/internal/core"
	"skeletonkey/internal/insights"
	applog "skeletonkey/internal/log"
	"skeletonkey/internal/services"
)

// Analyzer is the slice of the insights service the handlers need. It is nil
// when no AI key is configured; handlers fall back to static payloads.
type Analyzer interface {
	AnalyzeTransaction(ctx context.Context, t core.Transaction, categories []string) (insights.TransactionInsight, error)
	AnalyzeDocument(ctx context.Context, data []byte, mimeType, mode string) (string, error)
}

type Server struct {
	http.Server

	ledger   *services.LedgerService
	analyzer Analyzer

	structLog   *applog.StructuredLogger
	rateLimiter *rateLimiter

	// Marshalled analytics responses keyed by request URI. Purged on every
	// mutation so readers never see stale aggregates.
	analyticsCache *cache.LRUCache[[]byte]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// analyzer may be nil.
func NewServer(addr string, ledger *services.LedgerService, analyzer Analyzer, cacheSize int, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()
	appLogger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentHTTP,
	})

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           applog.Middleware(appLogger)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:         ledger,
		analyzer:       analyzer,
		structLog:      applog.NewStructuredLogger(appLogger),
		rateLimiter:    newRateLimiter(),
		analyticsCache: cache.NewLRUCache[[]byte](cacheSize, cacheTTL),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withMiddleware(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/categories/rename", s.withMiddleware(s.handleRenameCategory))

	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/breakdown/categories", s.withMiddleware(s.handleCategoryBreakdown))
	mux.HandleFunc("GET /api/breakdown/months", s.withMiddleware(s.handleMonthBreakdown))
	mux.HandleFunc("GET /api/breakdown/merchants", s.withMiddleware(s.handleMerchantBreakdown))
	mux.HandleFunc("GET /api/breakdown/weekdays", s.withMiddleware(s.handleWeekdayBreakdown))
	mux.HandleFunc("GET /api/comparison", s.withMiddleware(s.handleComparison))

	mux.HandleFunc("GET /api/budgets", s.withMiddleware(s.handleGetBudgets))
	mux.HandleFunc("PUT /api/budgets", s.withMiddleware(s.handleSaveBudgets))
	mux.HandleFunc("GET /api/budgets/status", s.withMiddleware(s.handleBudgetStatus))

	mux.HandleFunc("GET /api/export/csv", s.withMiddleware(s.handleExportCSV))

	mux.HandleFunc("POST /api/insights/transaction", s.withMiddleware(s.handleTransactionInsight))
	mux.HandleFunc("POST /api/insights/document", s.withMiddleware(s.handleDocumentInsight))

	return s
}

// Shutdown stops the background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request IDs, security headers, rate limiting for
// mutating methods, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		s.structLog.LogHTTPStart(ctx, r, clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.ListTransactions(r.Context()); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateAnalytics drops all cached aggregate responses. Called on every
// write so the dashboard never renders stale numbers.
func (s *Server) invalidateAnalytics() {
	s.analyticsCache.Purge()
}

// Simple in-memory per-IP rate limiter for mutating requests.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// Counter resets after a quiet minute.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}
