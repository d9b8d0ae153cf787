package importrunstore

import (
	"context"
	"time"

	"github.com/dalemusser/orgsync/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the import history collection.
const Collection = "import_runs"

// MaxRecent caps Recent's limit.
const MaxRecent = 200

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create records a finished batch. An empty RunID is filled with a new
// uuid; a zero StartedAt with the current time. Returns the stored run.
func (s *Store) Create(ctx context.Context, run models.ImportRun) (models.ImportRun, error) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Errors == nil {
		run.Errors = []string{}
	}
	if _, err := s.c.InsertOne(ctx, run); err != nil {
		return models.ImportRun{}, err
	}
	return run, nil
}

// Get loads one run. Returns mongo.ErrNoDocuments if not found.
func (s *Store) Get(ctx context.Context, runID string) (*models.ImportRun, error) {
	var r models.ImportRun
	if err := s.c.FindOne(ctx, bson.M{"_id": runID}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "started_at", Value: -1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ImportRun{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
