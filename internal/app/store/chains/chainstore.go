package chainstore

import (
	"context"
	"time"

	"github.com/dalemusser/orgsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the chain-of-command collection.
const Collection = "chain_of_command"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Get loads the chain of one employee. Returns mongo.ErrNoDocuments if the
// employee has no chain record yet.
func (s *Store) Get(ctx context.Context, userID primitive.ObjectID) (*models.ChainOfCommand, error) {
	var c models.ChainOfCommand
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c); err != nil {
		return nil, err
	}
	if c.Ancestors == nil {
		c.Ancestors = []primitive.ObjectID{}
	}
	return &c, nil
}

// Put writes the ancestors of userID, nearest manager first, creating the
// record if it does not exist.
func (s *Store) Put(ctx context.Context, userID primitive.ObjectID, ancestors []primitive.ObjectID) error {
	if ancestors == nil {
		ancestors = []primitive.ObjectID{}
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set": bson.M{
				"chain_of_command": ancestors,
				"updated_at":       time.Now().UTC(),
			},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// CountUnder returns how many employees have ancestorID anywhere in their
// chain.
func (s *Store) CountUnder(ctx context.Context, ancestorID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"chain_of_command": ancestorID})
}
