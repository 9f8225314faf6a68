package testutil

import (
	"context"
	"crypto/sha256"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, role types.Role, institutionID *uuid.UUID) *types.User {
	tb.Helper()
	u := &types.User{
		ID:            uuid.New(),
		Email:         email,
		Password:      "pw",
		FirstName:     "A",
		LastName:      "B",
		Role:          role,
		InstitutionID: institutionID,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedStudent(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Student {
	tb.Helper()
	s := &types.Student{
		ID:        uuid.New(),
		UserID:    userID,
		Matricule: "MAT-001",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return s
}

func SeedInstitution(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Institution {
	tb.Helper()
	inst := &types.Institution{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(inst).Error; err != nil {
		tb.Fatalf("seed institution: %v", err)
	}
	return inst
}

func SeedFaculty(tb testing.TB, ctx context.Context, tx *gorm.DB, institutionID uuid.UUID, name string) *types.Faculty {
	tb.Helper()
	f := &types.Faculty{
		ID:            uuid.New(),
		InstitutionID: institutionID,
		Name:          name,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed faculty: %v", err)
	}
	return f
}

func SeedField(tb testing.TB, ctx context.Context, tx *gorm.DB, facultyID uuid.UUID, name, slug string) *types.Field {
	tb.Helper()
	f := &types.Field{
		ID:        uuid.New(),
		FacultyID: facultyID,
		Name:      name,
		Slug:      slug,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed field: %v", err)
	}
	return f
}

func SeedCycle(tb testing.TB, ctx context.Context, tx *gorm.DB, name, slug string) *types.Cycle {
	tb.Helper()
	c := &types.Cycle{
		ID:   uuid.New(),
		Name: name,
		Slug: slug,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cycle: %v", err)
	}
	return c
}

func SeedAuthor(tb testing.TB, ctx context.Context, tx *gorm.DB, first, last string) *types.Author {
	tb.Helper()
	a := &types.Author{
		ID:        uuid.New(),
		FirstName: first,
		LastName:  last,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed author: %v", err)
	}
	return a
}

func SeedSupervisor(tb testing.TB, ctx context.Context, tx *gorm.DB, first, last string) *types.Supervisor {
	tb.Helper()
	s := &types.Supervisor{
		ID:        uuid.New(),
		FirstName: first,
		LastName:  last,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed supervisor: %v", err)
	}
	return s
}

// SeedDocument creates a document with all required references in the given
// status. The file hash is derived from the slug so two seeded documents
// never collide unless the test wants them to.
func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, status types.Status) *types.Document {
	tb.Helper()

	uploader := SeedUser(tb, ctx, tx, slug+"-uploader@example.com", types.RoleEstablishment, nil)
	inst := SeedInstitution(tb, ctx, tx, "Inst "+slug)
	fac := SeedFaculty(tb, ctx, tx, inst.ID, "Fac "+slug)
	field := SeedField(tb, ctx, tx, fac.ID, "Field "+slug, "field-"+slug)
	cycle := SeedCycle(tb, ctx, tx, "Cycle "+slug, "cycle-"+slug)
	author := SeedAuthor(tb, ctx, tx, "First", "Last")
	sup := SeedSupervisor(tb, ctx, tx, "Sup", "Visor")

	doc := &types.Document{
		ID:               uuid.New(),
		Slug:             slug,
		Title:            "Title " + slug,
		Abstract:         "Abstract",
		Language:         "FR",
		DocumentType:     "THESIS",
		AcademicYear:     "2023-2024",
		DefenseDate:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		AuthorID:         author.ID,
		InstitutionID:    inst.ID,
		FacultyID:        fac.ID,
		FieldID:          field.ID,
		CycleID:          cycle.ID,
		MainSupervisorID: sup.ID,
		FileName:         slug + ".pdf",
		FileSize:         1024,
		FileHash:         fmt.Sprintf("%x", sha256.Sum256([]byte(slug))),
		StorageKey:       "documents/2024/" + slug + ".pdf",
		StorageBucket:    "test-bucket",
		Status:           status,
		SubmittedBy:      types.SubmittedByEstablishment,
		UploadedBy:       uploader.ID,
	}
	if status == types.StatusPublished {
		now := time.Now().UTC()
		doc.PublishedAt = &now
		doc.PublishedBy = &uploader.ID
		doc.ValidatedAt = &now
		doc.ValidatedBy = &uploader.ID
	}
	if err := tx.WithContext(ctx).Create(doc).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return doc
}
