// internal/app/features/imports/routes.go
package imports

import "github.com/go-chi/chi/v5"

// Routes mounts import history under the path where the caller mounts it.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{runID}", h.ServeRun)
	return r
}
