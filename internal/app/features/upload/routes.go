// internal/app/features/upload/routes.go
package upload

import "github.com/go-chi/chi/v5"

// Routes mounts the upload endpoint under the path where the caller mounts it.
// Typically: r.Mount("/upload", upload.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleUpload)
	return r
}
