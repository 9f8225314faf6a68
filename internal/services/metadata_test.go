package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/testutil"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/ctxutil"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
)

func newMetadataForTest(t *testing.T, tx *gorm.DB) MetadataService {
	t.Helper()
	log := testutil.Logger(t)
	return NewMetadataService(
		tx,
		log,
		repos.NewInstitutionRepo(tx, log),
		repos.NewFacultyRepo(tx, log),
		repos.NewFieldRepo(tx, log),
		repos.NewCycleRepo(tx, log),
		repos.NewSupervisorRepo(tx, log),
	)
}

func TestMetadataInstitutionLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newMetadataForTest(t, tx)
	admin := testutil.SeedUser(t, ctx, tx, "meta-admin@example.com", types.RolePlatformAdmin, nil)
	actx := adminCtx(admin.ID)

	inst, err := svc.CreateInstitution(actx, InstitutionInput{Name: "  Université de Test  ", Acronym: "UT", City: "Testville"})
	if err != nil {
		t.Fatalf("CreateInstitution: %v", err)
	}
	if inst.Name != "Université de Test" {
		t.Fatalf("name not trimmed: %q", inst.Name)
	}

	if _, err := svc.CreateInstitution(actx, InstitutionInput{Name: "Université de Test"}); apierr.CodeOf(err) != apierr.CodeConflict {
		t.Fatalf("duplicate institution: err=%v, want CONFLICT", err)
	}
	if _, err := svc.CreateInstitution(actx, InstitutionInput{Name: "   "}); apierr.CodeOf(err) != apierr.CodeInvalidInput {
		t.Fatalf("blank name: err=%v, want INVALID_INPUT", err)
	}

	student := ctxutil.WithActor(context.Background(), &ctxutil.Actor{Role: types.RoleStudent})
	if _, err := svc.CreateInstitution(student, InstitutionInput{Name: "Rogue"}); apierr.CodeOf(err) != apierr.CodeForbidden {
		t.Fatalf("non-admin create: err=%v, want FORBIDDEN", err)
	}

	updated, err := svc.UpdateInstitution(actx, inst.ID, InstitutionInput{Name: "Université Renommée", City: "Elsewhere"})
	if err != nil {
		t.Fatalf("UpdateInstitution: %v", err)
	}
	if updated.Name != "Université Renommée" || updated.City != "Elsewhere" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := svc.DeleteInstitution(actx, inst.ID); err != nil {
		t.Fatalf("DeleteInstitution: %v", err)
	}
	listed, err := svc.ListInstitutions(ctx)
	if err != nil {
		t.Fatalf("ListInstitutions: %v", err)
	}
	for _, got := range listed {
		if got.ID == inst.ID {
			t.Fatalf("deleted institution still listed")
		}
	}
}

func TestMetadataListings(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newMetadataForTest(t, tx)
	inst := testutil.SeedInstitution(t, ctx, tx, "Listing Institution")
	facB := testutil.SeedFaculty(t, ctx, tx, inst.ID, "B Faculty")
	facA := testutil.SeedFaculty(t, ctx, tx, inst.ID, "A Faculty")
	testutil.SeedField(t, ctx, tx, facA.ID, "Listing Field", "listing-field")
	testutil.SeedCycle(t, ctx, tx, "Listing Cycle", "listing-cycle")
	testutil.SeedSupervisor(t, ctx, tx, "Zoé", "Martin")

	faculties, err := svc.ListFaculties(ctx, inst.ID)
	if err != nil {
		t.Fatalf("ListFaculties: %v", err)
	}
	if len(faculties) != 2 || faculties[0].ID != facA.ID || faculties[1].ID != facB.ID {
		t.Fatalf("faculties not listed by name: %+v", faculties)
	}

	fields, err := svc.ListFields(ctx)
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	found := false
	for _, f := range fields {
		if f.Slug == "listing-field" {
			found = true
			if f.Faculty == nil || f.Faculty.ID != facA.ID {
				t.Fatalf("field faculty not preloaded: %+v", f)
			}
		}
	}
	if !found {
		t.Fatalf("seeded field missing from listing")
	}

	cycles, err := svc.ListCycles(ctx)
	if err != nil {
		t.Fatalf("ListCycles: %v", err)
	}
	if len(cycles) == 0 {
		t.Fatalf("no cycles listed")
	}

	supervisors, err := svc.ListSupervisors(ctx)
	if err != nil {
		t.Fatalf("ListSupervisors: %v", err)
	}
	if len(supervisors) == 0 {
		t.Fatalf("no supervisors listed")
	}
}
