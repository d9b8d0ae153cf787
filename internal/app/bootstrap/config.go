// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/orgsync/internal/app/system/csvutil"
	"github.com/dalemusser/orgsync/internal/app/system/inputval"
	"github.com/dalemusser/orgsync/internal/app/system/roster"
	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for orgsync.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, field_map, etc.
//   - Environment variables: ORGSYNC_MONGO_URI, ORGSYNC_FIELD_MAP, etc.
//   - Command-line flags: --mongo_uri, --field_map, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "orgsync", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Roster interpretation
	{Name: "field_map", Default: "", Desc: "Extra header mappings as 'Header=field; ...' (e.g. 'Work Email=normalized_email; Reports To=manager_id')"},
	{Name: "hire_date_layout", Default: roster.DefaultDateLayout, Desc: "Go time layout for hire dates"},

	// Upload limits
	{Name: "max_upload_bytes", Default: int(csvutil.MaxUploadSize), Desc: "Largest accepted roster upload in bytes"},
	{Name: "max_rows", Default: csvutil.MaxRows, Desc: "Most data rows per roster (0 means no limit)"},
	{Name: "upload_rate_limit", Default: 0, Desc: "Uploads per minute per client IP (0 disables)"},

	// Background work
	{Name: "sweep_timeout", Default: timeouts.DefaultSweep.String(), Desc: "Time limit for one background reconcile pass (e.g. 2m)"},
	{Name: "reconcile_interval", Default: "5m", Desc: "How often pending manager references are retried (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, ORGSYNC_* for app) and flags,
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ORGSYNC", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		FieldMapSpec:   appValues.String("field_map"),
		HireDateLayout: appValues.String("hire_date_layout"),

		MaxUploadBytes: int64(appValues.Int("max_upload_bytes")),
		MaxRows:        appValues.Int("max_rows"),

		UploadRateLimit: appValues.Int("upload_rate_limit"),

		SweepTimeout:      appValues.Duration("sweep_timeout", timeouts.DefaultSweep),
		ReconcileInterval: appValues.Duration("reconcile_interval", 5*time.Minute),
	}

	fm, err := roster.ParseFieldMap(appCfg.FieldMapSpec)
	if err != nil {
		return nil, AppConfig{}, err
	}
	appCfg.FieldMap = fm

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked first so a malformed URI is reported before
// anything tries to connect. The remaining fields are checked with their
// struct tags.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(appCfg)
}

var layoutRef = time.Date(2009, 11, 17, 0, 0, 0, 0, time.UTC)

func validateAppConfig(appCfg AppConfig) error {
	if res := inputval.Validate(appCfg); res.HasErrors() {
		return errors.New("config: " + res.All())
	}
	if _, err := roster.ParseFieldMap(appCfg.FieldMapSpec); err != nil {
		return err
	}
	// A layout with no date elements formats to itself.
	if layoutRef.Format(appCfg.HireDateLayout) == appCfg.HireDateLayout {
		return fmt.Errorf("config: hire_date_layout %q has no date elements", appCfg.HireDateLayout)
	}
	return nil
}
