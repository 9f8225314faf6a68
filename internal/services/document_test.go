package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/testutil"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
)

func newDocumentForTest(t *testing.T, tx *gorm.DB) DocumentService {
	t.Helper()
	log := testutil.Logger(t)
	return NewDocumentService(
		tx,
		log,
		repos.NewDocumentRepo(tx, log),
		repos.NewDocumentViewRepo(tx, log),
		repos.NewInstitutionRepo(tx, log),
		repos.NewUserRepo(tx, log),
		repos.NewKeywordRepo(tx, log),
	)
}

func TestRecordViewIgnoresUnpublished(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newDocumentForTest(t, tx)
	draft := testutil.SeedDocument(t, ctx, tx, "view-draft", types.StatusDraft)

	if err := svc.RecordView(ctx, draft.ID, ViewContext{IP: "203.0.113.9"}); err != nil {
		t.Fatalf("RecordView on draft: %v", err)
	}
	if err := svc.RecordView(ctx, uuid.New(), ViewContext{IP: "203.0.113.9"}); err != nil {
		t.Fatalf("RecordView on missing id: %v", err)
	}

	log := testutil.Logger(t)
	reloaded, err := repos.NewDocumentRepo(tx, log).GetByIDs(ctx, tx, []uuid.UUID{draft.ID})
	if err != nil || len(reloaded) != 1 {
		t.Fatalf("reload: %v", err)
	}
	if reloaded[0].ViewCount != 0 {
		t.Fatalf("view_count = %d on a draft, want 0", reloaded[0].ViewCount)
	}
	counts, err := repos.NewDocumentViewRepo(tx, log).CountByDocumentIDs(ctx, tx, []uuid.UUID{draft.ID})
	if err != nil {
		t.Fatalf("CountByDocumentIDs: %v", err)
	}
	if counts[draft.ID] != 0 {
		t.Fatalf("view rows = %d on a draft, want 0", counts[draft.ID])
	}
}

func TestRecordViewCountsPublished(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newDocumentForTest(t, tx)
	doc := testutil.SeedDocument(t, ctx, tx, "view-published", types.StatusPublished)
	admin := testutil.SeedUser(t, ctx, tx, "view-admin@example.com", types.RolePlatformAdmin, nil)

	for i := 0; i < 3; i++ {
		if err := svc.RecordView(ctx, doc.ID, ViewContext{IP: "203.0.113.9", UserAgent: "test"}); err != nil {
			t.Fatalf("RecordView: %v", err)
		}
	}

	got, recordedViews, err := svc.AdminGet(adminCtx(admin.ID), doc.ID)
	if err != nil {
		t.Fatalf("AdminGet: %v", err)
	}
	if got.ViewCount != 3 {
		t.Fatalf("view_count = %d, want 3", got.ViewCount)
	}
	if recordedViews != 3 {
		t.Fatalf("recorded views = %d, want 3", recordedViews)
	}
}
