package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/metrics"
)

// NewRouter wires middleware plus the liveness, health and metrics routes.
// m may be nil.
func NewRouter(store catalog.Pinger, m *metrics.HTTPMetrics) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.StandardLogger(), NoColor: true}))
	r.Use(middleware.Recoverer, traceID)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middleware.Timeout(15 * time.Second))

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	h := &healthHandler{store: store}
	r.Get("/", h.root)
	r.Get("/health", h.health)
	return r
}

// traceID copies the chi request id onto the context so published events carry it.
func traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = catalog.WithTraceID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type healthHandler struct{ store catalog.Pinger }

func (h *healthHandler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ecommerce Backend API is running"})
}

func (h *healthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		log.WithError(err).Error("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Database connection failed: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
}
