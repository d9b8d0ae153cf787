// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/orgsync/internal/app/system/roster"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration. WAFFLE's CoreConfig covers
// ports, TLS, logging and CORS.
//
// Struct tags are checked by ValidateConfig through inputval.Validate.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string `validate:"required" label:"mongo_uri"`
	MongoDatabase    string `validate:"required,max=63" label:"mongo_database"`
	MongoMaxPoolSize uint64 `validate:"gte=1" label:"mongo_max_pool_size"`
	MongoMinPoolSize uint64 `validate:"ltefield=MongoMaxPoolSize" label:"mongo_min_pool_size"`

	// Roster interpretation
	FieldMapSpec   string          // raw "Header=field; ..." pairs (field_map)
	FieldMap       roster.FieldMap `validate:"-"` // FieldMapSpec parsed over the defaults
	HireDateLayout string          `validate:"required" label:"hire_date_layout"`

	// Upload limits
	MaxUploadBytes int64 `validate:"gt=0" label:"max_upload_bytes"`
	MaxRows        int   `validate:"gte=0" label:"max_rows"`

	// UploadRateLimit is uploads per minute per client IP; 0 disables.
	UploadRateLimit int `validate:"gte=0" label:"upload_rate_limit"`

	// Background work
	SweepTimeout      time.Duration `validate:"gt=0" label:"sweep_timeout"`
	ReconcileInterval time.Duration `validate:"gte=0" label:"reconcile_interval"` // 0 disables the sweep
}
