package catalog

import (
	"context"
	"testing"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/testutil"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
)

func TestKeywordRepoFindOrCreate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewKeywordRepo(db, testutil.Logger(t))

	first, err := repo.FindOrCreate(ctx, tx, "machine learning", "machine-learning")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}

	second, err := repo.FindOrCreate(ctx, tx, "machine learning", "machine-learning")
	if err != nil {
		t.Fatalf("FindOrCreate again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second FindOrCreate returned new row: %s != %s", second.ID, first.ID)
	}

	rows, err := repo.GetByKeys(ctx, tx, []string{"machine learning"})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByKeys: err=%v len=%d", err, len(rows))
	}
	if rows[0].UsageCount != 2 {
		t.Fatalf("usage_count = %d, want 2", rows[0].UsageCount)
	}
}

func TestAuthorRepoFindOrCreate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAuthorRepo(db, testutil.Logger(t))

	first, err := repo.FindOrCreate(ctx, tx, &types.Author{FirstName: "Jean", LastName: "Dupont", Email: "JEAN@Example.com"})
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}

	second, err := repo.FindOrCreate(ctx, tx, &types.Author{FirstName: " Jean ", LastName: "Dupont", Email: "jean@example.com"})
	if err != nil {
		t.Fatalf("FindOrCreate again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("identity not deduplicated: %s != %s", second.ID, first.ID)
	}
}
