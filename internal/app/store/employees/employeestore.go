package employeestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/orgsync/internal/app/system/normalize"
	"github.com/dalemusser/orgsync/internal/app/system/paging"
	"github.com/dalemusser/orgsync/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the employees collection.
const Collection = "employees"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// GetByID loads an employee by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	var e models.Employee
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByEmail looks up an employee by normalized email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var e models.Employee
	if err := s.c.FindOne(ctx, bson.M{"normalized_email": normalize.Email(email)}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByIDs loads the given employees. Missing ids are skipped; order is
// not guaranteed.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// ListByManager returns the direct reports of managerID, ordered by email.
func (s *Store) ListByManager(ctx context.Context, managerID primitive.ObjectID) ([]models.Employee, error) {
	return s.find(ctx, bson.M{"manager.id": managerID},
		options.Find().SetSort(bson.D{{Key: "normalized_email", Value: 1}}))
}

// ListPending returns every employee whose manager is still an unresolved
// email, ordered by _id so sweeps are stable.
func (s *Store) ListPending(ctx context.Context) ([]models.Employee, error) {
	return s.find(ctx, bson.M{"manager.pending": bson.M{"$exists": true}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// ListPage returns one keyset page of the directory ordered by email, in
// the keyset's direction, including the look-ahead row.
func (s *Store) ListPage(ctx context.Context, k paging.Keyset) ([]models.Employee, error) {
	return s.find(ctx, k.Filter("normalized_email"), k.FindOptions("normalized_email"))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Employee, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.c.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Employee
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetManager replaces the manager link of one employee.
// Returns mongo.ErrNoDocuments if the employee does not exist.
func (s *Store) SetManager(ctx context.Context, id primitive.ObjectID, ref models.ManagerRef) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"manager":    ref,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpsertInput is one normalized employee record to write.
type UpsertInput struct {
	Email string
	// Manager is applied only when SetManager is true. New employees
	// without SetManager start with no manager.
	Manager    models.ManagerRef
	SetManager bool
	Attributes models.Attributes
}

// UpsertOutcome reports what Upsert did.
type UpsertOutcome struct {
	ID             primitive.ObjectID
	Created        bool
	ManagerChanged bool
}

// Upsert creates the employee keyed by in.Email, or updates it if it
// already exists. Each attribute is set individually so attributes absent
// from in keep their stored values.
//
// A concurrent insert of the same email (duplicate key) is retried once as
// an update.
func (s *Store) Upsert(ctx context.Context, in UpsertInput) (UpsertOutcome, error) {
	email := normalize.Email(in.Email)

	for attempt := 0; ; attempt++ {
		var cur struct {
			ID      primitive.ObjectID `bson:"_id"`
			Manager models.ManagerRef  `bson:"manager"`
		}
		err := s.c.FindOne(ctx, bson.M{"normalized_email": email},
			options.FindOne().SetProjection(bson.M{"_id": 1, "manager": 1})).Decode(&cur)
		switch {
		case err == nil:
			return s.update(ctx, cur.ID, cur.Manager, in)
		case !errors.Is(err, mongo.ErrNoDocuments):
			return UpsertOutcome{}, err
		}

		out, err := s.insert(ctx, email, in)
		if err != nil && wafflemongo.IsDup(err) && attempt == 0 {
			continue // lost the race; the other writer's doc is there now
		}
		return out, err
	}
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, current models.ManagerRef, in UpsertInput) (UpsertOutcome, error) {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	for k, v := range in.Attributes {
		set["attributes."+k] = v
	}
	if name := in.Attributes.Name(); name != "" {
		set["name_ci"] = text.Fold(name)
	}
	changed := in.SetManager && !current.Equal(in.Manager)
	if changed {
		set["manager"] = in.Manager
	}

	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return UpsertOutcome{}, err
	}
	return UpsertOutcome{ID: id, ManagerChanged: changed}, nil
}

func (s *Store) insert(ctx context.Context, email string, in UpsertInput) (UpsertOutcome, error) {
	now := time.Now().UTC()
	e := models.Employee{
		ID:              primitive.NewObjectID(),
		NormalizedEmail: email,
		Attributes:      in.Attributes.Clone(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.SetManager {
		e.Manager = in.Manager
	}
	if name := in.Attributes.Name(); name != "" {
		e.NameCI = text.Fold(name)
	}

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return UpsertOutcome{}, err
	}
	return UpsertOutcome{ID: e.ID, Created: true, ManagerChanged: e.Manager.Kind() != models.ManagerNone}, nil
}

// Count returns the number of employees.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
