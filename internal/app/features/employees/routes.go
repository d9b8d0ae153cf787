// internal/app/features/employees/routes.go
package employees

import "github.com/go-chi/chi/v5"

// Routes mounts the employee lookups. Typically: r.Mount("/employees", employees.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{email}", h.ServeProfile)
	r.Get("/{email}/reports", h.ServeReports)
	return r
}
