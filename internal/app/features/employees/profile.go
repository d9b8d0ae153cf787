// internal/app/features/employees/profile.go
package employees

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/orgsync/internal/app/features/errors"
	"github.com/dalemusser/orgsync/internal/app/system/normalize"
	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeProfile handles GET /employees/{email}.
//
// The chain of command lists managers nearest first. An employee whose
// chain has not been computed yet gets an empty list.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, ok := h.loadEmployee(ctx, w, r)
	if !ok {
		return
	}

	var ancestors []primitive.ObjectID
	coc, err := h.Chains.Get(ctx, e.ID)
	switch {
	case err == nil:
		ancestors = coc.Ancestors
	case !errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.LogServerError(w, r, "load chain of command", err, "A database error occurred.")
		return
	}

	lookup := append([]primitive.ObjectID{}, ancestors...)
	if mid, ok := e.Manager.ID(); ok {
		lookup = append(lookup, mid)
	}
	people, err := h.Employees.GetByIDs(ctx, lookup)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load chain members", err, "A database error occurred.")
		return
	}
	byID := make(map[primitive.ObjectID]models.Employee, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}

	view := profileView{
		ID:             e.ID.Hex(),
		Email:          e.NormalizedEmail,
		Attributes:     e.Attributes,
		Manager:        managerViewOf(e.Manager, byID),
		ChainOfCommand: make([]personRef, 0, len(ancestors)),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if view.Attributes == nil {
		view.Attributes = models.Attributes{}
	}
	for _, id := range ancestors {
		if p, ok := byID[id]; ok {
			view.ChainOfCommand = append(view.ChainOfCommand, refOf(p))
		} else {
			view.ChainOfCommand = append(view.ChainOfCommand, personRef{ID: id.Hex()})
		}
	}

	uierrors.WriteJSON(w, http.StatusOK, view)
}

// loadEmployee resolves the {email} URL param. On failure it has already
// written the response.
func (h *Handler) loadEmployee(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Employee, bool) {
	email := normalize.Email(chi.URLParam(r, "email"))
	if email == "" {
		uierrors.RenderBadRequest(w, r, "Email is required.")
		return nil, false
	}

	e, err := h.Employees.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "Employee not found.")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load employee", err, "A database error occurred.")
		return nil, false
	}
	return e, true
}

func managerViewOf(m models.ManagerRef, byID map[primitive.ObjectID]models.Employee) managerView {
	if id, ok := m.ID(); ok {
		v := managerView{State: m.Kind().String(), ID: id.Hex()}
		if p, ok := byID[id]; ok {
			v.Email = p.NormalizedEmail
			v.Name = p.Attributes.Name()
		}
		return v
	}
	if email, ok := m.Pending(); ok {
		return managerView{State: m.Kind().String(), Email: email}
	}
	return managerView{State: m.Kind().String()}
}
