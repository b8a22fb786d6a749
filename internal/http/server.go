package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"moneta/internal/auth"
	"moneta/internal/middleware/ratelimit"
	"moneta/internal/middleware/trace"
	"moneta/internal/services"
	"moneta/internal/voice"
)

type Server struct {
	http.Server
	users        *services.UserService
	transactions *services.TransactionService
	tokens       *auth.TokenIssuer
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware

	// One reducer per authenticated user, guarded so concurrent segments
	// from the same user fold in order.
	reducersMu sync.Mutex
	reducers   map[string]*userReducer

	shutdownOnce sync.Once
}

type userReducer struct {
	mu      sync.Mutex
	reducer *voice.Reducer
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, users *services.UserService, transactions *services.TransactionService, tokens *auth.TokenIssuer) *Server {
	mux := http.NewServeMux()

	s := &Server{
		users:        users,
		transactions: transactions,
		tokens:       tokens,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(clientIP),
		reducers:     make(map[string]*userReducer),
	}

	// Credential endpoints are rate limited per client IP.
	limited := s.limiter.Middleware(clientIP, nil)
	mux.Handle("POST /api/users", limited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /token", limited(http.HandlerFunc(s.handleLogin)))

	mux.HandleFunc("GET /users/me", s.withAuth(s.handleMe))
	mux.HandleFunc("GET /api/transactions", s.withAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withAuth(s.handleCreateTransaction))
	mux.HandleFunc("POST /api/transactions/recurring", s.withAuth(s.handleCreateRecurring))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withAuth(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/summary", s.withAuth(s.handleSummary))
	mux.HandleFunc("POST /api/voice/segments", s.withAuth(s.handleVoiceSegment))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	s.Server.Addr = addr
	s.Server.Handler = s.tracer.Middleware(mux)
	s.Server.ReadHeaderTimeout = 5 * time.Second
	s.Server.ReadTimeout = 15 * time.Second
	s.Server.WriteTimeout = 30 * time.Second
	s.Server.IdleTimeout = 60 * time.Second

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// reducerFor returns the caller's reducer, creating it on first use.
func (s *Server) reducerFor(userID string) *userReducer {
	s.reducersMu.Lock()
	defer s.reducersMu.Unlock()

	ur, ok := s.reducers[userID]
	if !ok {
		ur = &userReducer{reducer: voice.NewReducer(nil)}
		s.reducers[userID] = ur
	}
	return ur
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// clientIP extracts the client address, considering proxies.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
