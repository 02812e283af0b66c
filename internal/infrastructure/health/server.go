package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the read-only liveness probe consumed by the external
// supervisor. No side effects, no auth.
type Server struct {
	srv    *http.Server
	router chi.Router
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// New builds the probe server for the given operating timezone.
func New(addr string, loc *time.Location, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleLiveness)
	s.router = r
	s.srv = &http.Server{Addr: addr, Handler: r}

	return s
}

// Handler returns the route tree, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background; errors other than a clean shutdown are
// logged, never fatal, since the probe is auxiliary to the pipeline.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("health server stopped", "error", err)
		}
	}()
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":      true,
		"service": "marketpulse",
		"time":    s.now().In(s.loc).Format("2006-01-02 15:04:05"),
	})
}
