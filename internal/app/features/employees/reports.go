// internal/app/features/employees/reports.go
package employees

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/orgsync/internal/app/features/errors"
	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
)

// ServeReports handles GET /employees/{email}/reports.
//
//	{ "email":"boss@x.com", "direct":[{"id":"…","email":"…","name":"…"}], "total_under":12 }
//
// total_under counts everyone whose chain of command includes the employee.
func (h *Handler) ServeReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, ok := h.loadEmployee(ctx, w, r)
	if !ok {
		return
	}

	direct, err := h.Employees.ListByManager(ctx, e.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list direct reports", err, "A database error occurred.")
		return
	}
	total, err := h.Chains.CountUnder(ctx, e.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count reports", err, "A database error occurred.")
		return
	}

	view := reportsView{
		Email:      e.NormalizedEmail,
		Direct:     make([]personRef, 0, len(direct)),
		TotalUnder: total,
	}
	for _, d := range direct {
		view.Direct = append(view.Direct, refOf(d))
	}

	uierrors.WriteJSON(w, http.StatusOK, view)
}
