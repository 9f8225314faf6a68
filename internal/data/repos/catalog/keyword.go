package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type KeywordRepo interface {
	FindOrCreate(ctx context.Context, tx *gorm.DB, key, slug string) (*types.Keyword, error)
	GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.Keyword, error)
	TopUsed(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Keyword, error)
	AttachToDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, keywordIDs []uuid.UUID) error
}

type keywordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKeywordRepo(db *gorm.DB, baseLog *logger.Logger) KeywordRepo {
	repoLog := baseLog.With("repo", "KeywordRepo")
	return &keywordRepo{db: db, log: repoLog}
}

// FindOrCreate inserts the keyword with usage_count 1, or bumps the counter
// on the existing row. The bump saturates at the bigint ceiling instead of
// overflowing.
func (kr *keywordRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, key, slug string) (*types.Keyword, error) {
	transaction := tx
	if transaction == nil {
		transaction = kr.db
	}

	kw := &types.Keyword{
		Key:        key,
		Slug:       slug,
		UsageCount: 1,
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"usage_count": gorm.Expr(`CASE WHEN "keyword".usage_count < 9223372036854775807 THEN "keyword".usage_count + 1 ELSE "keyword".usage_count END`),
				"updated_at":  gorm.Expr("now()"),
			}),
		}).
		Create(kw).Error; err != nil {
		return nil, err
	}
	return kw, nil
}

func (kr *keywordRepo) GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.Keyword, error) {
	transaction := tx
	if transaction == nil {
		transaction = kr.db
	}

	var results []*types.Keyword
	if len(keys) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("key IN ?", keys).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (kr *keywordRepo) TopUsed(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Keyword, error) {
	transaction := tx
	if transaction == nil {
		transaction = kr.db
	}

	if limit <= 0 {
		limit = 10
	}

	var results []*types.Keyword
	if err := transaction.WithContext(ctx).
		Order("usage_count DESC, key ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// AttachToDocument links keywords to a document, ignoring pairs that are
// already present.
func (kr *keywordRepo) AttachToDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID, keywordIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = kr.db
	}

	if len(keywordIDs) == 0 {
		return nil
	}
	links := make([]*types.DocumentKeyword, 0, len(keywordIDs))
	for _, kid := range keywordIDs {
		links = append(links, &types.DocumentKeyword{DocumentID: documentID, KeywordID: kid})
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}
