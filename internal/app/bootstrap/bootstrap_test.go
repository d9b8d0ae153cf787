package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memstore "github.com/dalemusser/orgsync/internal/app/store/memory"
	"github.com/dalemusser/orgsync/internal/app/system/ingest"
	"github.com/dalemusser/orgsync/internal/app/system/roster"
	"github.com/dalemusser/orgsync/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "orgsync",
		MongoMaxPoolSize:  100,
		MongoMinPoolSize:  10,
		FieldMap:          roster.DefaultFieldMap(),
		HireDateLayout:    roster.DefaultDateLayout,
		MaxUploadBytes:    1 << 20,
		MaxRows:           100,
		SweepTimeout:      time.Minute,
		ReconcileInterval: 0,
	}
}

func TestValidateAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"missing database", func(c *AppConfig) { c.MongoDatabase = "" }, "mongo_database is required."},
		{"zero pool", func(c *AppConfig) { c.MongoMaxPoolSize = 0; c.MongoMinPoolSize = 0 }, "mongo_max_pool_size must be at least 1."},
		{"min above max", func(c *AppConfig) { c.MongoMinPoolSize = 200 }, "mongo_min_pool_size is invalid."},
		{"zero upload", func(c *AppConfig) { c.MaxUploadBytes = 0 }, "max_upload_bytes must be greater than 0."},
		{"negative rows", func(c *AppConfig) { c.MaxRows = -1 }, "max_rows must be at least 0."},
		{"negative rate limit", func(c *AppConfig) { c.UploadRateLimit = -1 }, "upload_rate_limit must be at least 0."},
		{"zero sweep timeout", func(c *AppConfig) { c.SweepTimeout = 0 }, "sweep_timeout must be greater than 0."},
		{"bad field map", func(c *AppConfig) { c.FieldMapSpec = "Reports To" }, "not Header=field"},
		{"layout without date", func(c *AppConfig) { c.HireDateLayout = "date" }, "has no date elements"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateAppConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateAppConfig() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateAppConfig() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfig_BadURI(t *testing.T) {
	cfg := validConfig()
	cfg.MongoURI = "postgres://nope"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected an error for a non-mongodb URI")
	}
}

type okPinger struct{}

func (okPinger) Ping(context.Context, *readpref.ReadPref) error { return nil }

func TestRouter_UploadThenLookup(t *testing.T) {
	emps := memstore.NewEmployees()
	chains := memstore.NewChains()
	runs := memstore.NewImportRuns()

	cfg := validConfig()
	cfg.FieldMap, _ = roster.ParseFieldMap("Reports To=manager_id")
	reg, mrec := newMetrics()
	svc := newIngestService(cfg, ingest.Deps{Employees: emps, Chains: chains, Runs: runs, Metrics: mrec}, zap.NewNop())

	router := newRouter(routeDeps{
		Mongo:     okPinger{},
		Batch:     svc,
		Employees: emps,
		Chains:    chains,
		Runs:      runs,
		Metrics:   reg,
		MaxUpload: cfg.MaxUploadBytes,
	}, zap.NewNop())

	body := "Name,Email,Reports To\n" +
		"Sam Sub,sam@example.com,bea@example.com\n" +
		"Bea Boss,bea@example.com,\n"
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewCSVRequest("/upload", body))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"numCreated":2`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employees/sam@example.com", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"state":"resolved"`)
	rec.AssertContains(t, `"email":"bea@example.com"`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"resolved":1`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "orgsync_employees_created_total 2")
	rec.AssertContains(t, `orgsync_batches_total{result="processed"} 1`)
	rec.AssertContains(t, "go_goroutines")
}

func TestRouter_MetricsOptional(t *testing.T) {
	router := newRouter(routeDeps{Mongo: okPinger{}}, zap.NewNop())
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestStartSweep_DisabledAtZero(t *testing.T) {
	svc := ingest.NewService(ingest.Deps{Employees: memstore.NewEmployees(), Chains: memstore.NewChains()})
	if w := startSweep(svc, nil, validConfig(), zap.NewNop()); w != nil {
		w.Stop()
		t.Error("startSweep() started a worker with a zero interval")
	}

	cfg := validConfig()
	cfg.ReconcileInterval = time.Hour
	w := startSweep(svc, nil, cfg, zap.NewNop())
	if w == nil {
		t.Fatal("startSweep() = nil, want a running worker")
	}
	w.Stop()
}

func TestShutdown_WithoutClient(t *testing.T) {
	if err := Shutdown(context.Background(), nil, validConfig(), DBDeps{}, zap.NewNop()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}

func TestBuildHandler_RequiresStartup(t *testing.T) {
	if _, err := BuildHandler(nil, validConfig(), DBDeps{}, zap.NewNop()); err == nil {
		t.Error("BuildHandler() without Startup should fail")
	}
}
