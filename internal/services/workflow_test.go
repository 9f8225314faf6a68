package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/testutil"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/ctxutil"
	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/dbctx"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
)

// stubBucket satisfies the blob-store contract without network access and
// counts uploads so tests can assert nothing reached storage.
type stubBucket struct {
	uploads int
}

func (b *stubBucket) UploadFile(dbc dbctx.Context, key string, contentType string, file io.Reader) error {
	b.uploads++
	return nil
}

func (b *stubBucket) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, nil
}

func (b *stubBucket) DeleteFile(dbc dbctx.Context, key string) error { return nil }

func (b *stubBucket) SignedURL(key string, ttl time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

func (b *stubBucket) BucketName() string { return "test-bucket" }

func newWorkflowForTest(t *testing.T, tx *gorm.DB, bucket *stubBucket) WorkflowService {
	t.Helper()
	log := testutil.Logger(t)
	return NewWorkflowService(
		tx,
		log,
		repos.NewDocumentRepo(tx, log),
		repos.NewStudentRepo(tx, log),
		repos.NewUserRepo(tx, log),
		repos.NewInstitutionRepo(tx, log),
		repos.NewFieldRepo(tx, log),
		repos.NewCycleRepo(tx, log),
		repos.NewAuthorRepo(tx, log),
		repos.NewSupervisorRepo(tx, log),
		repos.NewKeywordRepo(tx, log),
		bucket,
	)
}

func establishmentCtx(userID uuid.UUID, institutionID uuid.UUID) context.Context {
	return ctxutil.WithActor(context.Background(), &ctxutil.Actor{
		UserID:        userID,
		Role:          types.RoleEstablishment,
		InstitutionID: &institutionID,
	})
}

func adminCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithActor(context.Background(), &ctxutil.Actor{
		UserID: userID,
		Role:   types.RolePlatformAdmin,
	})
}

func TestValidatePublishesWithSingleTimestamp(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newWorkflowForTest(t, tx, &stubBucket{})
	doc := testutil.SeedDocument(t, ctx, tx, "wf-validate", types.StatusSubmittedByEstablishment)
	reviewer := testutil.SeedUser(t, ctx, tx, "wf-validate-reviewer@example.com", types.RoleEstablishment, &doc.InstitutionID)

	out, err := svc.Validate(establishmentCtx(reviewer.ID, doc.InstitutionID), doc.ID)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out.Status != types.StatusPublished {
		t.Fatalf("status = %s, want PUBLISHED", out.Status)
	}
	if out.ValidatedAt == nil || out.PublishedAt == nil {
		t.Fatalf("validated_at/published_at not stamped: %+v", out)
	}
	if !out.ValidatedAt.Equal(*out.PublishedAt) {
		t.Fatalf("validated_at %v != published_at %v", out.ValidatedAt, out.PublishedAt)
	}
	if out.ValidatedBy == nil || *out.ValidatedBy != reviewer.ID {
		t.Fatalf("validated_by = %v, want %s", out.ValidatedBy, reviewer.ID)
	}
	if out.PublishedBy == nil || *out.PublishedBy != reviewer.ID {
		t.Fatalf("published_by = %v, want %s", out.PublishedBy, reviewer.ID)
	}
}

func TestValidateOtherInstitutionForbidden(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newWorkflowForTest(t, tx, &stubBucket{})
	doc := testutil.SeedDocument(t, ctx, tx, "wf-cross-inst", types.StatusSubmittedByStudent)
	other := testutil.SeedInstitution(t, ctx, tx, "Other Institution")
	reviewer := testutil.SeedUser(t, ctx, tx, "wf-cross-reviewer@example.com", types.RoleEstablishment, &other.ID)

	_, err := svc.Validate(establishmentCtx(reviewer.ID, other.ID), doc.ID)
	if apierr.CodeOf(err) != apierr.CodeForbidden {
		t.Fatalf("cross-institution validate: err=%v, want FORBIDDEN", err)
	}

	log := testutil.Logger(t)
	reloaded, err := repos.NewDocumentRepo(tx, log).GetByIDs(ctx, tx, []uuid.UUID{doc.ID})
	if err != nil || len(reloaded) != 1 {
		t.Fatalf("reload: %v", err)
	}
	if reloaded[0].Status != types.StatusSubmittedByStudent {
		t.Fatalf("status changed to %s after denied validate", reloaded[0].Status)
	}
}

func TestTransitionRefusesTerminalPreState(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newWorkflowForTest(t, tx, &stubBucket{})
	doc := testutil.SeedDocument(t, ctx, tx, "wf-terminal", types.StatusSubmittedByEstablishment)
	reviewer := testutil.SeedUser(t, ctx, tx, "wf-terminal-reviewer@example.com", types.RoleEstablishment, &doc.InstitutionID)
	admin := testutil.SeedUser(t, ctx, tx, "wf-terminal-admin@example.com", types.RolePlatformAdmin, nil)

	if _, err := svc.Reject(establishmentCtx(reviewer.ID, doc.InstitutionID), doc.ID, "out of scope"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	_, err := svc.AdminApprove(adminCtx(admin.ID), doc.ID)
	if apierr.CodeOf(err) != apierr.CodeInvalidState {
		t.Fatalf("approve after reject: err=%v, want INVALID_STATE", err)
	}

	log := testutil.Logger(t)
	reloaded, err := repos.NewDocumentRepo(tx, log).GetByIDs(ctx, tx, []uuid.UUID{doc.ID})
	if err != nil || len(reloaded) != 1 {
		t.Fatalf("reload: %v", err)
	}
	if reloaded[0].Status != types.StatusRejected {
		t.Fatalf("status = %s, want REJECTED to stick", reloaded[0].Status)
	}
	if reloaded[0].PublishedAt != nil {
		t.Fatalf("published_at stamped on a rejected document")
	}
}

func TestSubmitByEstablishmentDuplicateHashConflict(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	bucket := &stubBucket{}
	svc := newWorkflowForTest(t, tx, bucket)
	existing := testutil.SeedDocument(t, ctx, tx, "wf-dup", types.StatusPublished)

	inst := testutil.SeedInstitution(t, ctx, tx, "Dup Submitter Institution")
	fac := testutil.SeedFaculty(t, ctx, tx, inst.ID, "Dup Faculty")
	field := testutil.SeedField(t, ctx, tx, fac.ID, "Dup Field", "dup-field")
	cycle := testutil.SeedCycle(t, ctx, tx, "Dup Cycle", "dup-cycle")
	uploader := testutil.SeedUser(t, ctx, tx, "wf-dup-uploader@example.com", types.RoleEstablishment, &inst.ID)

	content := []byte("wf-dup")
	in := EstablishmentSubmissionInput{
		SubmissionInput: SubmissionInput{
			Title:        "Duplicate upload",
			Abstract:     "Abstract",
			DocumentType: "THESIS",
			AcademicYear: "2023-2024",
			DefenseDate:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			FieldID:      field.ID,
			CycleID:      cycle.ID,
			Author:       &PersonInput{FirstName: "Dup", LastName: "Author"},
			MainSupervisor: PersonInput{
				FirstName: "Dup",
				LastName:  "Supervisor",
			},
			File: &InspectedFile{
				FileName: "dup.pdf",
				Size:     int64(len(content)),
				Hash:     existing.FileHash,
				Content:  content,
			},
		},
	}

	_, err := svc.SubmitByEstablishment(establishmentCtx(uploader.ID, inst.ID), in)
	if apierr.CodeOf(err) != apierr.CodeConflict {
		t.Fatalf("duplicate submit: err=%v, want CONFLICT", err)
	}
	if bucket.uploads != 0 {
		t.Fatalf("duplicate submit reached storage: %d uploads", bucket.uploads)
	}
}

func TestSubmitByEstablishmentStoresFile(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	bucket := &stubBucket{}
	svc := newWorkflowForTest(t, tx, bucket)

	inst := testutil.SeedInstitution(t, ctx, tx, "Fresh Submitter Institution")
	fac := testutil.SeedFaculty(t, ctx, tx, inst.ID, "Fresh Faculty")
	field := testutil.SeedField(t, ctx, tx, fac.ID, "Fresh Field", "fresh-field")
	cycle := testutil.SeedCycle(t, ctx, tx, "Fresh Cycle", "fresh-cycle")
	uploader := testutil.SeedUser(t, ctx, tx, "wf-fresh-uploader@example.com", types.RoleEstablishment, &inst.ID)

	content := []byte("%PDF-1.7 fresh")
	in := EstablishmentSubmissionInput{
		SubmissionInput: SubmissionInput{
			Title:        "Étude de l'IA appliquée",
			Abstract:     "Abstract",
			DocumentType: "THESIS",
			AcademicYear: "2023-2024",
			DefenseDate:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			FieldID:      field.ID,
			CycleID:      cycle.ID,
			Author:       &PersonInput{FirstName: "Fresh", LastName: "Author"},
			MainSupervisor: PersonInput{
				FirstName: "Fresh",
				LastName:  "Supervisor",
			},
			Keywords: []string{"Réseaux", "réseaux", "IA"},
			File: &InspectedFile{
				FileName: "fresh.pdf",
				Size:     int64(len(content)),
				Hash:     fmt.Sprintf("%x", sha256.Sum256(content)),
				Content:  content,
			},
		},
	}

	doc, err := svc.SubmitByEstablishment(establishmentCtx(uploader.ID, inst.ID), in)
	if err != nil {
		t.Fatalf("SubmitByEstablishment: %v", err)
	}
	if doc.Status != types.StatusSubmittedByEstablishment {
		t.Fatalf("status = %s, want SUBMITTED_BY_ESTABLISHMENT", doc.Status)
	}
	if doc.FacultyID != fac.ID {
		t.Fatalf("faculty not derived from field: %s", doc.FacultyID)
	}
	if bucket.uploads != 1 {
		t.Fatalf("uploads = %d, want 1", bucket.uploads)
	}

	log := testutil.Logger(t)
	detail, err := repos.NewDocumentRepo(tx, log).GetDetailByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetDetailByID: %v", err)
	}
	// "Réseaux" and "réseaux" normalize to one keyword.
	if got := len(detail.Keywords); got != 2 {
		t.Fatalf("keywords attached = %d, want 2", got)
	}
}
