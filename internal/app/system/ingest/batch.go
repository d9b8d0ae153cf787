// Package ingest runs roster batches: parse, normalize, upsert, refresh
// chains of command, reconcile forward references, record the run.
package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/orgsync/internal/app/system/csvutil"
	"github.com/dalemusser/orgsync/internal/app/system/hierarchy"
	"github.com/dalemusser/orgsync/internal/app/system/roster"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Result is the outcome of one batch, in the shape returned to uploaders.
type Result struct {
	NumCreated int      `json:"numCreated"`
	NumUpdated int      `json:"numUpdated"`
	Errors     []string `json:"errors"`
	RunID      string   `json:"runId,omitempty"`

	Reconcile hierarchy.ReconcileResult `json:"-"`
}

// EmployeeStore is everything a batch needs from the employee store.
type EmployeeStore interface {
	hierarchy.EmployeeStore
	EmployeeWriter
}

// RunRecorder stores import history. Optional.
type RunRecorder interface {
	Create(ctx context.Context, run models.ImportRun) (models.ImportRun, error)
}

// Observer receives batch outcomes, for metrics. Optional.
type Observer interface {
	ObserveBatch(created, updated, errs int, elapsed time.Duration)
	ObserveRejected()
	ObserveReconcile(resolved, pending int)
}

// Deps wires a Service.
type Deps struct {
	Employees  EmployeeStore
	Chains     hierarchy.ChainStore
	Runs       RunRecorder // nil disables import history
	Metrics    Observer    // nil disables metrics
	Normalizer *roster.Normalizer
	MaxRows    int
	Logger     *zap.Logger
}

// Service runs batches. Batches are processed one record at a time; the
// service may be shared by concurrent requests.
type Service struct {
	norm     *roster.Normalizer
	upserter *Upserter
	engine   *hierarchy.Chains
	rec      *hierarchy.Reconciler
	runs     RunRecorder
	obs      Observer
	maxRows  int
	log      *zap.Logger
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	norm := d.Normalizer
	if norm == nil {
		norm = roster.NewNormalizer(nil, nil, "")
	}
	resolver := hierarchy.NewResolver(d.Employees)
	engine := hierarchy.NewChains(d.Employees, d.Chains, log)
	return &Service{
		norm:     norm,
		upserter: NewUpserter(d.Employees, resolver),
		engine:   engine,
		rec:      hierarchy.NewReconciler(d.Employees, resolver, engine, log),
		runs:     d.Runs,
		obs:      d.Metrics,
		maxRows:  d.MaxRows,
		log:      log,
	}
}

// Reconciler exposes the reconciler for the background sweep.
func (s *Service) Reconciler() *hierarchy.Reconciler { return s.rec }

// Run parses a roster CSV from r and processes it. The only error returned
// is a file that cannot be read as a roster at all (no header, too many
// rows, I/O failure); in that case nothing was written. Per-record
// problems are reported in Result.Errors.
func (s *Service) Run(ctx context.Context, r io.Reader, source string) (Result, error) {
	return s.run(ctx, csvutil.ParseRoster, r, source)
}

// RunXLSX is Run for an Excel workbook; the first sheet is the roster.
func (s *Service) RunXLSX(ctx context.Context, r io.Reader, source string) (Result, error) {
	return s.run(ctx, csvutil.ParseRosterXLSX, r, source)
}

type parseFunc func(io.Reader, csvutil.ParseOptions) (csvutil.ParseResult, error)

func (s *Service) run(ctx context.Context, parse parseFunc, r io.Reader, source string) (Result, error) {
	start := time.Now().UTC()

	parsed, err := parse(r, csvutil.ParseOptions{MaxRows: s.maxRows})
	if err != nil {
		if s.obs != nil {
			s.obs.ObserveRejected()
		}
		return Result{}, fmt.Errorf("read roster: %w", err)
	}

	res := s.Process(ctx, parsed)
	s.record(ctx, &res, source, len(parsed.Rows)+len(parsed.Errors), start)
	if s.obs != nil {
		s.obs.ObserveBatch(res.NumCreated, res.NumUpdated, len(res.Errors), time.Since(start))
		s.obs.ObserveReconcile(res.Reconcile.Resolved, res.Reconcile.Pending)
	}
	return res, nil
}

type touch struct {
	id    primitive.ObjectID
	line  int
	email string
}

// Process applies already-parsed rows. It never aborts early: every row
// is attempted and failures are collected as "line N: ..." messages.
func (s *Service) Process(ctx context.Context, parsed csvutil.ParseResult) Result {
	res := Result{Errors: []string{}}
	for _, re := range parsed.Errors {
		res.Errors = append(res.Errors, re.String())
	}

	// Phase 1: upsert every record, remembering each employee once in
	// first-touch order.
	var order []*touch
	seen := map[primitive.ObjectID]*touch{}

	for _, row := range parsed.Rows {
		c, errs, ok := s.norm.Normalize(row.Line, row.Fields)
		res.Errors = append(res.Errors, errs...)
		if !ok {
			continue
		}

		out, err := s.upserter.Apply(ctx, c)
		if err != nil {
			s.log.Error("upsert employee failed",
				zap.Int("line", c.Line),
				zap.String("email", c.Email),
				zap.Error(err))
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %s: store error", c.Line, c.Email))
			continue
		}
		if out.Created {
			res.NumCreated++
		} else {
			res.NumUpdated++
		}

		if _, ok := seen[out.ID]; !ok {
			t := &touch{id: out.ID, line: c.Line, email: c.Email}
			seen[out.ID] = t
			order = append(order, t)
		}
	}

	// Phase 2: recompute the chain of every touched employee and cascade.
	// Chains are derived from stored links only, so rerunning a batch
	// repairs any chain an earlier failure left stale.
	for _, t := range order {
		if err := s.engine.Refresh(ctx, t.id); err != nil {
			s.log.Error("refresh chain failed",
				zap.String("employee_id", t.id.Hex()),
				zap.String("email", t.email),
				zap.Error(err))
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %s: chain update failed", t.line, t.email))
		}
	}

	// Phase 3: settle forward references now that the whole batch is in.
	rr, err := s.rec.Reconcile(ctx)
	if err != nil {
		s.log.Error("reconcile failed", zap.Error(err))
		res.Errors = append(res.Errors, "reconcile: store error")
	}
	res.Reconcile = rr
	return res
}

func (s *Service) record(ctx context.Context, res *Result, source string, rows int, start time.Time) {
	if s.runs == nil {
		return
	}
	run, err := s.runs.Create(ctx, models.ImportRun{
		Source:     source,
		Rows:       rows,
		NumCreated: res.NumCreated,
		NumUpdated: res.NumUpdated,
		Errors:     res.Errors,
		Resolved:   res.Reconcile.Resolved,
		Pending:    res.Reconcile.Pending,
		StartedAt:  start,
		DurationMS: time.Since(start).Milliseconds(),
	})
	if err != nil {
		s.log.Warn("record import run failed", zap.Error(err))
		return
	}
	res.RunID = run.RunID
	s.log.Info("roster batch processed",
		zap.String("run_id", run.RunID),
		zap.String("source", source),
		zap.Int("rows", rows),
		zap.Int("created", res.NumCreated),
		zap.Int("updated", res.NumUpdated),
		zap.Int("errors", len(res.Errors)),
		zap.Int("resolved", res.Reconcile.Resolved),
		zap.Int("pending", res.Reconcile.Pending))
}
