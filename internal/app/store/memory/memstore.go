// Package memstore holds in-memory versions of the employee, chain and
// import-run stores. They follow the MongoDB stores' contracts, including
// returning mongo.ErrNoDocuments for missing records, so engines and
// handlers can be exercised without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	employeestore "github.com/dalemusser/orgsync/internal/app/store/employees"
	"github.com/dalemusser/orgsync/internal/app/system/normalize"
	"github.com/dalemusser/orgsync/internal/app/system/paging"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

/* -------------------------------------------------------------------------- */
/* Employees                                                                  */
/* -------------------------------------------------------------------------- */

// Employees is an in-memory employee store.
type Employees struct {
	mu      sync.RWMutex
	byID    map[primitive.ObjectID]models.Employee
	byEmail map[string]primitive.ObjectID
}

func NewEmployees() *Employees {
	return &Employees{
		byID:    map[primitive.ObjectID]models.Employee{},
		byEmail: map[string]primitive.ObjectID{},
	}
}

func copyEmployee(e models.Employee) models.Employee {
	e.Attributes = e.Attributes.Clone()
	return e
}

// Seed stores e as-is (assigning an ID if it has none) and returns it.
func (s *Employees) Seed(e models.Employee) models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.NormalizedEmail = normalize.Email(e.NormalizedEmail)
	if e.Attributes == nil {
		e.Attributes = models.Attributes{}
	}
	s.byID[e.ID] = copyEmployee(e)
	s.byEmail[e.NormalizedEmail] = e.ID
	return e
}

func (s *Employees) GetByID(_ context.Context, id primitive.ObjectID) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	e = copyEmployee(e)
	return &e, nil
}

func (s *Employees) GetByEmail(_ context.Context, email string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normalize.Email(email)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	e := copyEmployee(s.byID[id])
	return &e, nil
}

func (s *Employees) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Employee
	for _, id := range ids {
		if e, ok := s.byID[id]; ok {
			out = append(out, copyEmployee(e))
		}
	}
	return out, nil
}

func (s *Employees) filter(keep func(models.Employee) bool, less func(a, b models.Employee) bool) []models.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Employee
	for _, e := range s.byID {
		if keep(e) {
			out = append(out, copyEmployee(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (s *Employees) ListByManager(_ context.Context, managerID primitive.ObjectID) ([]models.Employee, error) {
	return s.filter(
		func(e models.Employee) bool {
			id, ok := e.Manager.ID()
			return ok && id == managerID
		},
		func(a, b models.Employee) bool { return a.NormalizedEmail < b.NormalizedEmail },
	), nil
}

func (s *Employees) ListPending(_ context.Context) ([]models.Employee, error) {
	return s.filter(
		func(e models.Employee) bool { return e.Manager.Kind() == models.ManagerPending },
		func(a, b models.Employee) bool { return a.ID.Hex() < b.ID.Hex() },
	), nil
}

func (s *Employees) ListPage(_ context.Context, k paging.Keyset) ([]models.Employee, error) {
	out := s.filter(
		func(e models.Employee) bool { return k.Admits(e.NormalizedEmail, e.ID) },
		func(a, b models.Employee) bool { return k.Less(a.NormalizedEmail, a.ID, b.NormalizedEmail, b.ID) },
	)
	if k.Limit > 0 && len(out) > k.Limit {
		out = out[:k.Limit]
	}
	return out, nil
}

func (s *Employees) SetManager(_ context.Context, id primitive.ObjectID, ref models.ManagerRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	e.Manager = ref
	e.UpdatedAt = time.Now().UTC()
	s.byID[id] = e
	return nil
}

func (s *Employees) Upsert(_ context.Context, in employeestore.UpsertInput) (employeestore.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalize.Email(in.Email)
	now := time.Now().UTC()

	if id, ok := s.byEmail[email]; ok {
		e := s.byID[id]
		for k, v := range in.Attributes {
			e.Attributes[k] = v
		}
		if name := in.Attributes.Name(); name != "" {
			e.NameCI = text.Fold(name)
		}
		changed := in.SetManager && !e.Manager.Equal(in.Manager)
		if changed {
			e.Manager = in.Manager
		}
		e.UpdatedAt = now
		s.byID[id] = e
		return employeestore.UpsertOutcome{ID: id, ManagerChanged: changed}, nil
	}

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
	s.byID[e.ID] = e
	s.byEmail[email] = e.ID
	return employeestore.UpsertOutcome{ID: e.ID, Created: true, ManagerChanged: e.Manager.Kind() != models.ManagerNone}, nil
}

func (s *Employees) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

/* -------------------------------------------------------------------------- */
/* Chains                                                                     */
/* -------------------------------------------------------------------------- */

// Chains is an in-memory chain-of-command store.
type Chains struct {
	mu     sync.RWMutex
	byUser map[primitive.ObjectID]models.ChainOfCommand
}

func NewChains() *Chains {
	return &Chains{byUser: map[primitive.ObjectID]models.ChainOfCommand{}}
}

func (s *Chains) Get(_ context.Context, userID primitive.ObjectID) (*models.ChainOfCommand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byUser[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	c.Ancestors = append([]primitive.ObjectID{}, c.Ancestors...)
	return &c, nil
}

func (s *Chains) Put(_ context.Context, userID primitive.ObjectID, ancestors []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byUser[userID]
	if !ok {
		c = models.ChainOfCommand{ID: primitive.NewObjectID(), UserID: userID}
	}
	c.Ancestors = append([]primitive.ObjectID{}, ancestors...)
	c.UpdatedAt = time.Now().UTC()
	s.byUser[userID] = c
	return nil
}

func (s *Chains) CountUnder(_ context.Context, ancestorID primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.byUser {
		for _, a := range c.Ancestors {
			if a == ancestorID {
				n++
				break
			}
		}
	}
	return n, nil
}

// Len returns the number of chain records.
func (s *Chains) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}

/* -------------------------------------------------------------------------- */
/* Import runs                                                                */
/* -------------------------------------------------------------------------- */

// ImportRuns is an in-memory import history.
type ImportRuns struct {
	mu   sync.RWMutex
	runs []models.ImportRun
}

func NewImportRuns() *ImportRuns {
	return &ImportRuns{}
}

func (s *ImportRuns) Create(_ context.Context, run models.ImportRun) (models.ImportRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Errors == nil {
		run.Errors = []string{}
	}
	s.runs = append(s.runs, run)
	return run, nil
}

func (s *ImportRuns) Recent(_ context.Context, limit int) ([]models.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ImportRun, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		out = append(out, s.runs[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ImportRuns) Get(_ context.Context, runID string) (*models.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.runs {
		if r.RunID == runID {
			return &r, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}
