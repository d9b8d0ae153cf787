// Package hierarchy resolves manager references and maintains each
// employee's chain of command.
//
// The manager graph is stored as one link per employee (models.ManagerRef).
// Chains are derived from those links and written only by Chains.
package hierarchy

import (
	"context"

	"github.com/dalemusser/orgsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmployeeStore is the part of the employee store the engine reads and
// writes. Missing employees are reported as mongo.ErrNoDocuments.
type EmployeeStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
	SetManager(ctx context.Context, id primitive.ObjectID, ref models.ManagerRef) error
	ListByManager(ctx context.Context, managerID primitive.ObjectID) ([]models.Employee, error)
	ListPending(ctx context.Context) ([]models.Employee, error)
}

// ChainStore persists one ancestor list per employee.
type ChainStore interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.ChainOfCommand, error)
	Put(ctx context.Context, userID primitive.ObjectID, ancestors []primitive.ObjectID) error
}
