// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/orgsync/internal/app/system/ingest"
	"github.com/dalemusser/orgsync/internal/app/system/metrics"
	"github.com/dalemusser/orgsync/internal/app/system/workers"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// rt is shared by every lifecycle hook. WAFFLE passes DBDeps by value,
	// so state created in Startup lives behind this pointer.
	rt *runtime
}

// runtime is the app state built in Startup.
type runtime struct {
	registry *prometheus.Registry
	metrics  *metrics.Recorder
	ingest   *ingest.Service         // one instance, so chain writes share one lock set
	sweep    *workers.ReconcileSweep // nil when reconcile_interval is 0
}
