package indexes_test

import (
	"testing"

	"github.com/dalemusser/orgsync/internal/app/system/indexes"
	"github.com/dalemusser/orgsync/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bson.M {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	out := make(map[string]bson.M)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			out[name] = idx
		}
	}
	return out
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t) // already ran EnsureAll once
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	tests := []struct {
		coll  string
		names []string
	}{
		{"employees", []string{"uniq_employees_email", "idx_employees_manager_email", "idx_employees_manager_pending", "idx_employees_nameci_id"}},
		{"chain_of_command", []string{"uniq_chain_user", "idx_chain_ancestors"}},
		{"import_runs", []string{"idx_import_runs_started"}},
	}

	for _, tt := range tests {
		t.Run(tt.coll, func(t *testing.T) {
			got := indexNames(t, db, tt.coll)
			for _, name := range tt.names {
				if _, ok := got[name]; !ok {
					t.Errorf("expected index %q on %s", name, tt.coll)
				}
			}
		})
	}
}

func TestEnsureAll_UniqueEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	idx := indexNames(t, db, "employees")["uniq_employees_email"]
	if unique, _ := idx["unique"].(bool); !unique {
		t.Errorf("uniq_employees_email unique = %v, want true", idx["unique"])
	}
}

func TestEnsureAll_RenamesIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	runs := db.Collection("import_runs")
	if _, err := runs.Indexes().DropOne(ctx, "idx_import_runs_started"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := runs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "started_at", Value: -1}},
		Options: options.Index().SetName("legacy_started"),
	}); err != nil {
		t.Fatalf("create legacy: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	got := indexNames(t, db, "import_runs")
	if _, ok := got["legacy_started"]; ok {
		t.Error("legacy index name should be replaced")
	}
	if _, ok := got["idx_import_runs_started"]; !ok {
		t.Error("expected idx_import_runs_started after EnsureAll")
	}
}

func TestEnsureAll_DuplicatesBlockUniqueIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	emps := db.Collection("employees")
	if _, err := emps.Indexes().DropOne(ctx, "uniq_employees_email"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := emps.InsertOne(ctx, bson.M{"normalized_email": "dup@py.com"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	if err := indexes.EnsureAll(ctx, db); err == nil {
		t.Fatal("EnsureAll should fail while duplicates exist")
	}
}
