// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	chainstore "github.com/dalemusser/orgsync/internal/app/store/chains"
	employeestore "github.com/dalemusser/orgsync/internal/app/store/employees"
	importrunstore "github.com/dalemusser/orgsync/internal/app/store/importruns"
	"github.com/dalemusser/orgsync/internal/app/system/ingest"
	"github.com/dalemusser/orgsync/internal/app/system/metrics"
	"github.com/dalemusser/orgsync/internal/app/system/roster"
	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
	"github.com/dalemusser/orgsync/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// timeouts, registers metrics, builds the batch service and starts the
// reconcile sweep.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Sweep: appCfg.SweepTimeout})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("sweep", cur.Sweep))

	deps.rt.registry, deps.rt.metrics = newMetrics()

	db := deps.MongoDatabase
	deps.rt.ingest = newIngestService(appCfg, ingest.Deps{
		Employees: employeestore.New(db),
		Chains:    chainstore.New(db),
		Runs:      importrunstore.New(db),
		Metrics:   deps.rt.metrics,
	}, logger)

	deps.rt.sweep = startSweep(deps.rt.ingest, deps.rt.metrics, appCfg, logger)
	return nil
}

// newMetrics builds the app's registry with the process and Go runtime
// collectors alongside the batch collectors.
func newMetrics() (*prometheus.Registry, *metrics.Recorder) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.New(reg)
}

// newIngestService fills the config-driven parts of d.
func newIngestService(appCfg AppConfig, d ingest.Deps, logger *zap.Logger) *ingest.Service {
	d.Normalizer = roster.NewNormalizer(appCfg.FieldMap, roster.DefaultSchema(), appCfg.HireDateLayout)
	d.MaxRows = appCfg.MaxRows
	d.Logger = logger
	return ingest.NewService(d)
}

// startSweep starts the reconcile sweep, or returns nil when disabled.
func startSweep(svc *ingest.Service, obs workers.ReconcileObserver, appCfg AppConfig, logger *zap.Logger) *workers.ReconcileSweep {
	if appCfg.ReconcileInterval <= 0 {
		logger.Info("reconcile sweep disabled")
		return nil
	}
	w := workers.NewReconcileSweep(svc.Reconciler(), obs, logger, appCfg.ReconcileInterval)
	w.Start()
	return w
}
