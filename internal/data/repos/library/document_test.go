package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/testutil"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
)

func TestDocumentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewDocumentRepo(db, testutil.Logger(t))

	doc := testutil.SeedDocument(t, ctx, tx, "doc-repo-a", types.StatusPublished)

	got, err := repo.GetDetailByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetDetailByID: %v", err)
	}
	if got.Institution == nil || got.Author == nil || got.MainSupervisor == nil {
		t.Fatalf("GetDetailByID did not preload references")
	}

	if _, err := repo.GetDetailBySlug(ctx, tx, "doc-repo-a"); err != nil {
		t.Fatalf("GetDetailBySlug: %v", err)
	}
	if _, err := repo.GetDetailBySlug(ctx, tx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetDetailBySlug missing: err=%v, want ErrRecordNotFound", err)
	}

	if rows, err := repo.GetByFileHashes(ctx, tx, []string{doc.FileHash}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByFileHashes: err=%v len=%d", err, len(rows))
	}
}

func TestDocumentRepoDuplicateHash(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewDocumentRepo(db, testutil.Logger(t))

	existing := testutil.SeedDocument(t, ctx, tx, "doc-dup-a", types.StatusPublished)

	dup := *existing
	dup.ID = uuid.New()
	dup.Slug = "doc-dup-b"
	if _, err := repo.Create(ctx, tx, &dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("Create with duplicate hash: err=%v, want ErrDuplicatedKey", err)
	}
}

func TestDocumentRepoSearchPublicOnly(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewDocumentRepo(db, testutil.Logger(t))

	published := testutil.SeedDocument(t, ctx, tx, "doc-pub", types.StatusPublished)
	testutil.SeedDocument(t, ctx, tx, "doc-draft", types.StatusDraft)

	confidential := testutil.SeedDocument(t, ctx, tx, "doc-conf", types.StatusPublished)
	if err := tx.Model(confidential).Update("is_confidential", true).Error; err != nil {
		t.Fatalf("mark confidential: %v", err)
	}

	embargoed := testutil.SeedDocument(t, ctx, tx, "doc-emb", types.StatusPublished)
	future := time.Now().UTC().Add(24 * time.Hour)
	if err := tx.Model(embargoed).Update("embargo_until", future).Error; err != nil {
		t.Fatalf("set embargo: %v", err)
	}

	rows, total, err := repo.Search(ctx, tx, SearchFilter{PublicOnly: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != published.ID {
		t.Fatalf("Search public-only: total=%d len=%d", total, len(rows))
	}
}

func TestDocumentRepoIncrementViewCount(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewDocumentRepo(db, testutil.Logger(t))

	doc := testutil.SeedDocument(t, ctx, tx, "doc-views", types.StatusPublished)

	at := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := repo.IncrementViewCount(ctx, tx, doc.ID, at); err != nil {
			t.Fatalf("IncrementViewCount: %v", err)
		}
	}

	got, err := repo.GetDetailByID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetDetailByID: %v", err)
	}
	if got.ViewCount != 3 {
		t.Fatalf("view_count = %d, want 3", got.ViewCount)
	}
	if got.LastViewedAt == nil {
		t.Fatalf("last_viewed_at not set")
	}
}

func TestDocumentRepoCountByStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewDocumentRepo(db, testutil.Logger(t))

	testutil.SeedDocument(t, ctx, tx, "doc-cnt-a", types.StatusPublished)
	testutil.SeedDocument(t, ctx, tx, "doc-cnt-b", types.StatusPublished)
	testutil.SeedDocument(t, ctx, tx, "doc-cnt-c", types.StatusUnderReview)

	counts, err := repo.CountByStatus(ctx, tx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[types.StatusPublished] != 2 || counts[types.StatusUnderReview] != 1 {
		t.Fatalf("CountByStatus = %v", counts)
	}
}
