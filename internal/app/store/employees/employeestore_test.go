package employeestore_test

import (
	"errors"
	"strings"
	"testing"

	employeestore "github.com/dalemusser/orgsync/internal/app/store/employees"
	"github.com/dalemusser/orgsync/internal/app/system/paging"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"github.com/dalemusser/orgsync/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Upsert_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := employeestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	out, err := store.Upsert(ctx, employeestore.UpsertInput{
		Email:      "  Brad@PY.com ",
		Attributes: models.Attributes{models.AttrName: "Brad", models.AttrSalary: int64(90000)},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if !out.Created {
		t.Error("expected Created = true")
	}
	if out.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}

	got, err := store.GetByEmail(ctx, "brad@py.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != out.ID {
		t.Errorf("ID = %v, want %v", got.ID, out.ID)
	}
	if got.NormalizedEmail != "brad@py.com" {
		t.Errorf("NormalizedEmail = %q", got.NormalizedEmail)
	}
	if got.NameCI != "brad" {
		t.Errorf("NameCI = %q, want %q", got.NameCI, "brad")
	}
	if s, ok := got.Attributes.Salary(); !ok || s != 90000 {
		t.Errorf("Salary = (%d, %v), want 90000", s, ok)
	}
	if got.Manager.Kind() != models.ManagerNone {
		t.Errorf("Manager = %v, want none", got.Manager)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Upsert_UpdateKeepsUnsetAttributes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := employeestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Upsert(ctx, employeestore.UpsertInput{
		Email:      "brad@py.com",
		Attributes: models.Attributes{models.AttrName: "Brad", models.AttrSalary: int64(90000)},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second, err := store.Upsert(ctx, employeestore.UpsertInput{
		Email:      "BRAD@py.com",
		Attributes: models.Attributes{models.AttrName: "Bradley"},
	})
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if second.Created {
		t.Error("second Upsert should update")
	}
	if second.ID != first.ID {
		t.Errorf("ID changed: %v -> %v", first.ID, second.ID)
	}

	got, _ := store.GetByID(ctx, first.ID)
	if got.Attributes.Name() != "Bradley" {
		t.Errorf("Name = %q, want Bradley", got.Attributes.Name())
	}
	if s, _ := got.Attributes.Salary(); s != 90000 {
		t.Errorf("Salary = %d, want 90000 (unchanged)", s)
	}
}

func TestStore_Upsert_ManagerChanges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := employeestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boss, _ := store.Upsert(ctx, employeestore.UpsertInput{Email: "boss@py.com"})

	out, err := store.Upsert(ctx, employeestore.UpsertInput{
		Email: "ted@py.com", Manager: models.PendingManager("sara@py.com"), SetManager: true,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if !out.Created || !out.ManagerChanged {
		t.Errorf("outcome = %+v, want created with manager", out)
	}

	// Same pending ref again: no change.
	out, _ = store.Upsert(ctx, employeestore.UpsertInput{
		Email: "ted@py.com", Manager: models.PendingManager("sara@py.com"), SetManager: true,
	})
	if out.ManagerChanged {
		t.Error("same manager reported as changed")
	}

	// Manager column absent: existing link kept.
	out, _ = store.Upsert(ctx, employeestore.UpsertInput{Email: "ted@py.com"})
	if out.ManagerChanged {
		t.Error("absent manager reported as changed")
	}
	got, _ := store.GetByID(ctx, out.ID)
	if email, ok := got.Manager.Pending(); !ok || email != "sara@py.com" {
		t.Errorf("Manager = %v, want pending(sara@py.com)", got.Manager)
	}

	out, _ = store.Upsert(ctx, employeestore.UpsertInput{
		Email: "ted@py.com", Manager: models.ResolvedManager(boss.ID), SetManager: true,
	})
	if !out.ManagerChanged {
		t.Error("new manager not reported as changed")
	}
	got, _ = store.GetByID(ctx, out.ID)
	if id, ok := got.Manager.ID(); !ok || id != boss.ID {
		t.Errorf("Manager = %v, want resolved(%s)", got.Manager, boss.ID.Hex())
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := employeestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_ListByManagerAndPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := employeestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	brad := fixtures.CreateEmployee(ctx, "brad@py.com", "Brad", models.NoManager())
	fixtures.CreateEmployee(ctx, "zed@py.com", "Zed", models.ResolvedManager(brad.ID))
	fixtures.CreateEmployee(ctx, "ann@py.com", "Ann", models.ResolvedManager(brad.ID))
	fixtures.CreateEmployee(ctx, "ted@py.com", "Ted", models.PendingManager("sara@py.com"))

	reports, err := store.ListByManager(ctx, brad.ID)
	if err != nil {
		t.Fatalf("ListByManager failed: %v", err)
	}
	if len(reports) != 2 || reports[0].NormalizedEmail != "ann@py.com" || reports[1].NormalizedEmail != "zed@py.com" {
		t.Errorf("ListByManager = %v, want [ann zed]", reports)
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].NormalizedEmail != "ted@py.com" {
		t.Errorf("ListPending = %v, want [ted]", pending)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 4 {
		t.Errorf("Count = (%d, %v), want 4", n, err)
	}
}

func TestStore_SetManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := employeestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sara := fixtures.CreateEmployee(ctx, "sara@py.com", "Sara", models.NoManager())
	ted := fixtures.CreateEmployee(ctx, "ted@py.com", "Ted", models.PendingManager("sara@py.com"))

	if err := store.SetManager(ctx, ted.ID, models.ResolvedManager(sara.ID)); err != nil {
		t.Fatalf("SetManager failed: %v", err)
	}
	got, _ := store.GetByID(ctx, ted.ID)
	if id, ok := got.Manager.ID(); !ok || id != sara.ID {
		t.Errorf("Manager = %v, want resolved sara", got.Manager)
	}

	err := store.SetManager(ctx, primitive.NewObjectID(), models.NoManager())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("SetManager on missing = %v, want ErrNoDocuments", err)
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := employeestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateEmployee(ctx, "a@py.com", "A", models.NoManager())
	b := fixtures.CreateEmployee(ctx, "b@py.com", "B", models.NoManager())

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("GetByIDs returned %d, want 2", len(got))
	}

	none, err := store.GetByIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("GetByIDs(nil) = (%v, %v), want empty", none, err)
	}
}

func TestStore_ListPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := employeestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, email := range []string{"d@py.com", "b@py.com", "e@py.com", "a@py.com", "c@py.com"} {
		fixtures.CreateEmployee(ctx, email, "", models.NoManager())
	}

	emails := func(es []models.Employee) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.NormalizedEmail
		}
		return out
	}

	first := paging.Request{Size: 2}
	got, err := store.ListPage(ctx, first.Keyset())
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if want := "a@py.com b@py.com c@py.com"; strings.Join(emails(got), " ") != want {
		t.Fatalf("first page = %v, want %s (with look-ahead)", emails(got), want)
	}

	page, _ := paging.Trim(got, first)
	_, next := paging.Cursors(page,
		func(e models.Employee) string { return e.NormalizedEmail },
		func(e models.Employee) primitive.ObjectID { return e.ID })

	second := paging.Request{Size: 2, After: next}
	got, err = store.ListPage(ctx, second.Keyset())
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if want := "c@py.com d@py.com e@py.com"; strings.Join(emails(got), " ") != want {
		t.Errorf("second page = %v, want %s", emails(got), want)
	}

	back := paging.Request{Size: 2, Before: next}
	got, err = store.ListPage(ctx, back.Keyset())
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if want := "a@py.com"; strings.Join(emails(got), " ") != want {
		t.Errorf("backward page = %v, want %s", emails(got), want)
	}
}
