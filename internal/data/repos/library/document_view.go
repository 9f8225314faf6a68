package library

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type DocumentViewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, views []*types.DocumentView) ([]*types.DocumentView, error)
	CountByDocumentIDs(ctx context.Context, tx *gorm.DB, documentIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type documentViewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentViewRepo(db *gorm.DB, baseLog *logger.Logger) DocumentViewRepo {
	repoLog := baseLog.With("repo", "DocumentViewRepo")
	return &documentViewRepo{db: db, log: repoLog}
}

func (vr *documentViewRepo) Create(ctx context.Context, tx *gorm.DB, views []*types.DocumentView) ([]*types.DocumentView, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	if len(views) == 0 {
		return []*types.DocumentView{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func (vr *documentViewRepo) CountByDocumentIDs(ctx context.Context, tx *gorm.DB, documentIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	out := make(map[uuid.UUID]int64, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		DocumentID uuid.UUID
		Count      int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.DocumentView{}).
		Select("document_id, COUNT(*) AS count").
		Where("document_id IN ?", documentIDs).
		Group("document_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.DocumentID] = row.Count
	}
	return out, nil
}
