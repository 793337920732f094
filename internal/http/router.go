package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux (no third-party routing
// dependency, matching the rest of the services).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler supports the http.Handler interface.
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRequirementRoutes buyer-side requirement endpoints.
func (r *Router) RegisterRequirementRoutes(h *RequirementHandler) {
	r.HandleHandler("/requirements", h)
	r.HandleHandler("/requirements/", h)
}

// RegisterLeadRoutes seller-side lead endpoints.
func (r *Router) RegisterLeadRoutes(h *LeadHandler) {
	r.HandleHandler("/leads/", h)
}

// RegisterHealthRoutes liveness probe.
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
}
