// internal/app/features/employees/list.go
package employees

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/orgsync/internal/app/features/errors"
	"github.com/dalemusser/orgsync/internal/app/system/paging"
	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type directoryRow struct {
	personRef
	Manager string `json:"manager"` // none | resolved | pending
}

type directoryView struct {
	Employees  []directoryRow `json:"employees"`
	Total      int64          `json:"total"`
	HasPrev    bool           `json:"has_prev"`
	HasNext    bool           `json:"has_next"`
	PrevCursor string         `json:"prev_cursor,omitempty"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ServeList handles GET /employees: the directory ordered by email, in
// keyset pages (?size, ?after, ?before).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	req, err := paging.ParseRequest(r)
	if err != nil {
		uierrors.RenderBadRequest(w, r, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	total, err := h.Employees.Count(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count employees", err, "A database error occurred.")
		return
	}

	rows, err := h.Employees.ListPage(ctx, req.Keyset())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list employees", err, "A database error occurred.")
		return
	}
	rows, page := paging.Trim(rows, req)

	view := directoryView{
		Employees: make([]directoryRow, 0, len(rows)),
		Total:     total,
		HasPrev:   page.HasPrev,
		HasNext:   page.HasNext,
	}
	for _, e := range rows {
		view.Employees = append(view.Employees, directoryRow{personRef: refOf(e), Manager: e.Manager.Kind().String()})
	}
	prev, next := paging.Cursors(rows,
		func(e models.Employee) string { return e.NormalizedEmail },
		func(e models.Employee) primitive.ObjectID { return e.ID })
	if page.HasPrev {
		view.PrevCursor = prev
	}
	if page.HasNext {
		view.NextCursor = next
	}

	uierrors.WriteJSON(w, http.StatusOK, view)
}
