package hierarchy

import (
	"context"
	"errors"

	"github.com/dalemusser/orgsync/internal/app/system/normalize"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Resolver turns a raw manager email into a ManagerRef.
type Resolver struct {
	emps EmployeeStore
}

func NewResolver(emps EmployeeStore) *Resolver {
	return &Resolver{emps: emps}
}

// Resolve looks the manager up by normalized email. An empty reference
// means no manager; an unknown one becomes a pending reference holding the
// normalized email, to be settled later by the Reconciler.
func (r *Resolver) Resolve(ctx context.Context, ref string) (models.ManagerRef, error) {
	email := normalize.Email(ref)
	if email == "" {
		return models.NoManager(), nil
	}
	e, err := r.emps.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PendingManager(email), nil
	}
	if err != nil {
		return models.ManagerRef{}, err
	}
	return models.ResolvedManager(e.ID), nil
}
