package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type AuthorRepo interface {
	FindOrCreate(ctx context.Context, tx *gorm.DB, author *types.Author) (*types.Author, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Author, error)
}

type authorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuthorRepo(db *gorm.DB, baseLog *logger.Logger) AuthorRepo {
	repoLog := baseLog.With("repo", "AuthorRepo")
	return &authorRepo{db: db, log: repoLog}
}

// FindOrCreate upserts on the (first_name, last_name, email) identity in a
// single statement. The conflict branch touches updated_at only so postgres
// RETURNING always fills the existing row's ID.
func (ar *authorRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, author *types.Author) (*types.Author, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	author.FirstName = strings.TrimSpace(author.FirstName)
	author.LastName = strings.TrimSpace(author.LastName)
	author.Email = strings.ToLower(strings.TrimSpace(author.Email))

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "first_name"}, {Name: "last_name"}, {Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"updated_at": gorm.Expr("now()"),
			}),
		}).
		Create(author).Error; err != nil {
		return nil, err
	}
	return author, nil
}

func (ar *authorRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Author, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Author
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type SupervisorRepo interface {
	FindOrCreate(ctx context.Context, tx *gorm.DB, supervisor *types.Supervisor) (*types.Supervisor, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Supervisor, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Supervisor, error)
}

type supervisorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSupervisorRepo(db *gorm.DB, baseLog *logger.Logger) SupervisorRepo {
	repoLog := baseLog.With("repo", "SupervisorRepo")
	return &supervisorRepo{db: db, log: repoLog}
}

func (sr *supervisorRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, supervisor *types.Supervisor) (*types.Supervisor, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	supervisor.FirstName = strings.TrimSpace(supervisor.FirstName)
	supervisor.LastName = strings.TrimSpace(supervisor.LastName)
	supervisor.Email = strings.ToLower(strings.TrimSpace(supervisor.Email))

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "first_name"}, {Name: "last_name"}, {Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"updated_at": gorm.Expr("now()"),
			}),
		}).
		Create(supervisor).Error; err != nil {
		return nil, err
	}
	return supervisor, nil
}

func (sr *supervisorRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Supervisor, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Supervisor
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *supervisorRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Supervisor, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Supervisor
	if err := transaction.WithContext(ctx).
		Order("last_name ASC, first_name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
