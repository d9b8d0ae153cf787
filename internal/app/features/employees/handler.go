// internal/app/features/employees/handler.go
package employees

import (
	"context"

	uierrors "github.com/dalemusser/orgsync/internal/app/features/errors"
	"github.com/dalemusser/orgsync/internal/app/system/paging"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Directory is the read side of the employee store.
type Directory interface {
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Employee, error)
	ListByManager(ctx context.Context, managerID primitive.ObjectID) ([]models.Employee, error)
	ListPage(ctx context.Context, k paging.Keyset) ([]models.Employee, error)
	Count(ctx context.Context) (int64, error)
}

// Chains is the read side of the chain-of-command store.
type Chains interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.ChainOfCommand, error)
	CountUnder(ctx context.Context, ancestorID primitive.ObjectID) (int64, error)
}

// Handler serves employee profiles and reporting lines.
type Handler struct {
	Employees Directory
	Chains    Chains
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

// NewHandler constructs an employees Handler.
func NewHandler(emps Directory, chains Chains, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Employees: emps,
		Chains:    chains,
		ErrLog:    errLog,
		Log:       logger,
	}
}
