// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	employeesfeature "github.com/dalemusser/orgsync/internal/app/features/employees"
	errorsfeature "github.com/dalemusser/orgsync/internal/app/features/errors"
	healthfeature "github.com/dalemusser/orgsync/internal/app/features/health"
	importsfeature "github.com/dalemusser/orgsync/internal/app/features/imports"
	uploadfeature "github.com/dalemusser/orgsync/internal/app/features/upload"
	chainstore "github.com/dalemusser/orgsync/internal/app/store/chains"
	employeestore "github.com/dalemusser/orgsync/internal/app/store/employees"
	importrunstore "github.com/dalemusser/orgsync/internal/app/store/importruns"
	"github.com/dalemusser/orgsync/internal/app/system/metrics"
	"github.com/dalemusser/orgsync/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the shared batch service exists.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if deps.rt == nil || deps.rt.ingest == nil {
		return nil, errors.New("bootstrap: batch service not initialized")
	}

	db := deps.MongoDatabase
	return newRouter(routeDeps{
		Mongo:     deps.MongoClient,
		Batch:     deps.rt.ingest,
		Employees: employeestore.New(db),
		Chains:    chainstore.New(db),
		Runs:      importrunstore.New(db),
		Metrics:   deps.rt.registry,
		MaxUpload: appCfg.MaxUploadBytes,
		RateLimit: appCfg.UploadRateLimit,
	}, logger), nil
}

// routeDeps is what the feature handlers need, as interfaces so the router
// can be built over in-memory stores.
type routeDeps struct {
	Mongo     healthfeature.Pinger
	Batch     uploadfeature.Batcher
	Employees employeesfeature.Directory
	Chains    employeesfeature.Chains
	Runs      importsfeature.History
	Metrics   prometheus.Gatherer // nil leaves /metrics unmounted
	MaxUpload int64
	RateLimit int // uploads per minute per client; 0 disables
}

func newRouter(d routeDeps, logger *zap.Logger) chi.Router {
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(d.Mongo, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Roster ingestion
	uploadHandler := uploadfeature.NewHandler(d.Batch, d.MaxUpload, logger)
	if d.RateLimit > 0 {
		uploadHandler.Limiter = ratelimit.PerMinute(d.RateLimit)
	}
	r.Mount("/upload", uploadfeature.Routes(uploadHandler))

	// Profiles and reporting lines
	employeesHandler := employeesfeature.NewHandler(d.Employees, d.Chains, errLog, logger)
	r.Mount("/employees", employeesfeature.Routes(employeesHandler))

	// Import history
	importsHandler := importsfeature.NewHandler(d.Runs, errLog, logger)
	r.Mount("/imports", importsfeature.Routes(importsHandler))

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Metrics))
	}

	return r
}
