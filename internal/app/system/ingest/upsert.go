package ingest

import (
	"context"

	employeestore "github.com/dalemusser/orgsync/internal/app/store/employees"
	"github.com/dalemusser/orgsync/internal/app/system/hierarchy"
	"github.com/dalemusser/orgsync/internal/app/system/roster"
)

// EmployeeWriter creates or updates one employee keyed by email.
type EmployeeWriter interface {
	Upsert(ctx context.Context, in employeestore.UpsertInput) (employeestore.UpsertOutcome, error)
}

// Upserter writes normalized candidates, resolving manager emails first.
type Upserter struct {
	w        EmployeeWriter
	resolver *hierarchy.Resolver
}

func NewUpserter(w EmployeeWriter, resolver *hierarchy.Resolver) *Upserter {
	return &Upserter{w: w, resolver: resolver}
}

// Apply writes c. A candidate without a manager cell leaves an existing
// employee's manager untouched.
func (u *Upserter) Apply(ctx context.Context, c roster.Candidate) (employeestore.UpsertOutcome, error) {
	in := employeestore.UpsertInput{
		Email:      c.Email,
		SetManager: c.ManagerSet,
		Attributes: c.Attributes,
	}
	if c.ManagerSet {
		ref, err := u.resolver.Resolve(ctx, c.ManagerEmail)
		if err != nil {
			return employeestore.UpsertOutcome{}, err
		}
		in.Manager = ref
	}
	return u.w.Upsert(ctx, in)
}
