package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/metrics"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	APIKeys        []string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter mounts the API on a chi router with the standard middleware stack.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(cfg.Logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(cfg.Logger))
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.Greeting)
		r.Get("/articles", s.SearchArticles)
		r.Get("/executive", s.SearchExecutiveOrders)
		r.Get("/biography", s.Biography)
		r.Post("/summarize", s.Summarize)
		r.Get("/issues", s.ListIssues)
		r.Post("/issues", s.ReplaceIssue)
		r.Get("/usage", s.GetUsage)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, string(domain.KindNotFound), "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
