package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/orgsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Chains computes and stores chains of command. It is the only writer of
// chain records. Writes for one employee are serialized, so overlapping
// cascades cannot interleave on the same record.
type Chains struct {
	emps   EmployeeStore
	chains ChainStore
	log    *zap.Logger
	locks  keyedMutex
}

func NewChains(emps EmployeeStore, chains ChainStore, log *zap.Logger) *Chains {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chains{emps: emps, chains: chains, log: log}
}

// ComputeChain follows manager links upward from id and stores the result,
// nearest manager first. The walk stops at an employee with no manager or
// with a pending manager. A link back to an id already on the path is a
// cycle: it is logged and the chain is cut there.
func (c *Chains) ComputeChain(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	ancestors, err := c.walk(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.chains.Put(ctx, id, ancestors); err != nil {
		return nil, fmt.Errorf("write chain %s: %w", id.Hex(), err)
	}
	return ancestors, nil
}

func (c *Chains) walk(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := c.emps.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load employee %s: %w", id.Hex(), err)
	}

	ancestors := []primitive.ObjectID{}
	visited := map[primitive.ObjectID]bool{id: true}
	for {
		mid, ok := cur.Manager.ID()
		if !ok {
			return ancestors, nil
		}
		if visited[mid] {
			c.log.Warn("manager cycle detected",
				zap.String("employee_id", id.Hex()),
				zap.String("repeated_id", mid.Hex()),
				zap.Int("depth", len(ancestors)))
			return ancestors, nil
		}
		visited[mid] = true
		ancestors = append(ancestors, mid)

		next, err := c.emps.GetByID(ctx, mid)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.log.Warn("manager link points at missing employee",
				zap.String("employee_id", cur.ID.Hex()),
				zap.String("manager_id", mid.Hex()))
			return ancestors, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load manager %s: %w", mid.Hex(), err)
		}
		cur = next
	}
}

// Cascade recomputes the chain of every employee below id, breadth first.
// Each employee is visited at most once, so it terminates even when bad
// data has made the manager graph cyclic. It returns how many chains were
// rewritten.
func (c *Chains) Cascade(ctx context.Context, id primitive.ObjectID) (int, error) {
	visited := map[primitive.ObjectID]bool{id: true}
	queue := []primitive.ObjectID{id}
	n := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		cur := queue[0]
		queue = queue[1:]

		subs, err := c.emps.ListByManager(ctx, cur)
		if err != nil {
			return n, fmt.Errorf("list reports of %s: %w", cur.Hex(), err)
		}
		for _, s := range subs {
			if visited[s.ID] {
				continue
			}
			visited[s.ID] = true
			if _, err := c.ComputeChain(ctx, s.ID); err != nil {
				return n, err
			}
			n++
			queue = append(queue, s.ID)
		}
	}
	return n, nil
}

// Refresh recomputes id's own chain and then everything below it.
func (c *Chains) Refresh(ctx context.Context, id primitive.ObjectID) error {
	if _, err := c.ComputeChain(ctx, id); err != nil {
		return err
	}
	n, err := c.Cascade(ctx, id)
	if n > 0 {
		c.log.Debug("cascaded chain refresh",
			zap.String("employee_id", id.Hex()),
			zap.Int("count", n))
	}
	return err
}

// Get returns the stored chain of id, or mongo.ErrNoDocuments.
func (c *Chains) Get(ctx context.Context, id primitive.ObjectID) (*models.ChainOfCommand, error) {
	return c.chains.Get(ctx, id)
}
