package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/orgsync/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateEmployee inserts an employee directly, bypassing the upsert path.
func (f *Fixtures) CreateEmployee(ctx context.Context, email, name string, manager models.ManagerRef) models.Employee {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Employee{
		ID:              primitive.NewObjectID(),
		NormalizedEmail: email,
		Manager:         manager,
		Attributes:      models.Attributes{models.AttrName: name},
		NameCI:          text.Fold(name),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("employees").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("create employee %s: %v", email, err)
	}
	return e
}

// CreateChain inserts a chain-of-command record.
func (f *Fixtures) CreateChain(ctx context.Context, userID primitive.ObjectID, ancestors ...primitive.ObjectID) models.ChainOfCommand {
	f.t.Helper()

	if ancestors == nil {
		ancestors = []primitive.ObjectID{}
	}
	c := models.ChainOfCommand{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Ancestors: ancestors,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("chain_of_command").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("create chain for %s: %v", userID.Hex(), err)
	}
	return c
}
