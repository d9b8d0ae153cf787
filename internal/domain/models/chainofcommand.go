// internal/domain/models/chainofcommand.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChainOfCommand is the denormalized list of an employee's managers,
// nearest first. An empty Ancestors slice means the employee is at the top.
// One record per employee (unique user_id).
type ChainOfCommand struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"-"`
	UserID    primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Ancestors []primitive.ObjectID `bson:"chain_of_command" json:"chain_of_command"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

// Depth is the number of managers above the employee.
func (c ChainOfCommand) Depth() int { return len(c.Ancestors) }
