// Package http exposes the client's views and mutations as a JSON surface
// for the rendering collaborator. Handlers reshape nothing themselves; they
// call the session stores and the view adapters and write the result.
package http

import (
	"net/http"
	"sync"
	"time"

	"onero/internal/api"
	"onero/internal/log"
	"onero/internal/middleware/trace"
	"onero/internal/session"
)

type Server struct {
	http.Server

	client *api.Client
	logger *log.Logger
	tracer *trace.Middleware

	// current session; nil when signed out. One logical writer: the
	// signed-in user driving this process.
	mu   sync.RWMutex
	sess *session.Session

	// now is swappable so tests can pin the calendar
	now func() time.Time
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, client *api.Client, logger *log.Logger) *Server {
	s := &Server{
		client: client,
		logger: logger,
		tracer: trace.NewMiddleware(),
		now:    time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/session/register", s.handleRegister)
	mux.HandleFunc("POST /api/session/login", s.handleLogin)
	mux.HandleFunc("POST /api/session/logout", s.handleLogout)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleRemoveExpense)
	mux.HandleFunc("POST /api/expenses/reload", s.handleReloadExpenses)

	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handleUpdateProfile)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/reports", s.handleReports)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("POST /api/import/csv", s.handleImportCSV)

	handler := log.Middleware(logger)(s.tracer.Middleware(securityHeaders(mux)))

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// currentSession returns the active session, nil when signed out.
func (s *Server) currentSession() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

func (s *Server) setSession(sess *session.Session) {
	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
}

// securityHeaders applies the baseline response headers to every route.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
