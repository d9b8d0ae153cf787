package hierarchy

import (
	"context"

	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Scanned  int `json:"scanned"`
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
	Failed   int `json:"failed"`

	// ResolvedIDs lists the employees whose manager was settled, in scan order.
	ResolvedIDs []primitive.ObjectID `json:"-"`
}

// Reconciler settles pending manager references once their target exists.
type Reconciler struct {
	emps     EmployeeStore
	resolver *Resolver
	chains   *Chains
	log      *zap.Logger
}

func NewReconciler(emps EmployeeStore, resolver *Resolver, chains *Chains, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{emps: emps, resolver: resolver, chains: chains, log: log}
}

// Reconcile scans every employee with a pending manager. References that
// now match an employee are rewritten as resolved and the employee's chain
// is refreshed, cascading to its reports. The rest stay pending.
//
// A store failure on one employee is logged and counted in Failed; the
// scan continues. Only a failure to list pending employees is returned.
// When the refresh fails the reference is put back to pending, so a later
// pass recomputes the chain from scratch.
func (r *Reconciler) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult

	pending, err := r.emps.ListPending(ctx)
	if err != nil {
		return res, err
	}

	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Scanned++

		email, _ := e.Manager.Pending()
		ref, err := r.resolver.Resolve(ctx, email)
		if err != nil {
			res.Failed++
			r.log.Error("resolve pending manager failed",
				zap.String("employee_id", e.ID.Hex()),
				zap.String("email", email),
				zap.Error(err))
			continue
		}

		mid, ok := ref.ID()
		if !ok {
			res.Pending++
			continue
		}
		if mid == e.ID {
			res.Pending++
			r.log.Warn("pending manager resolves to the employee itself",
				zap.String("employee_id", e.ID.Hex()),
				zap.String("email", email))
			continue
		}

		if err := r.emps.SetManager(ctx, e.ID, models.ResolvedManager(mid)); err != nil {
			res.Failed++
			r.log.Error("set resolved manager failed",
				zap.String("employee_id", e.ID.Hex()),
				zap.Error(err))
			continue
		}
		if err := r.chains.Refresh(ctx, e.ID); err != nil {
			res.Failed++
			r.log.Error("refresh chain after reconcile failed",
				zap.String("employee_id", e.ID.Hex()),
				zap.Error(err))
			r.restorePending(ctx, e.ID, email)
			continue
		}
		res.Resolved++
		res.ResolvedIDs = append(res.ResolvedIDs, e.ID)
	}

	if res.Scanned > 0 {
		r.log.Info("reconciled pending managers",
			zap.Int("scanned", res.Scanned),
			zap.Int("resolved", res.Resolved),
			zap.Int("pending", res.Pending),
			zap.Int("failed", res.Failed))
	}
	return res, nil
}

// restorePending undoes a resolution whose chain refresh did not finish.
// It runs even if ctx was canceled mid-refresh.
func (r *Reconciler) restorePending(ctx context.Context, id primitive.ObjectID, email string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
	defer cancel()
	if err := r.emps.SetManager(ctx, id, models.PendingManager(email)); err != nil {
		r.log.Error("restore pending manager failed",
			zap.String("employee_id", id.Hex()),
			zap.String("email", email),
			zap.Error(err))
	}
}
