package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type InstitutionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, institutions []*types.Institution) ([]*types.Institution, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Institution, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Institution, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type institutionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInstitutionRepo(db *gorm.DB, baseLog *logger.Logger) InstitutionRepo {
	repoLog := baseLog.With("repo", "InstitutionRepo")
	return &institutionRepo{db: db, log: repoLog}
}

func (ir *institutionRepo) Create(ctx context.Context, tx *gorm.DB, institutions []*types.Institution) ([]*types.Institution, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	if len(institutions) == 0 {
		return []*types.Institution{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&institutions).Error; err != nil {
		return nil, err
	}
	return institutions, nil
}

func (ir *institutionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Institution, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.Institution
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

func (ir *institutionRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Institution, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.Institution
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *institutionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Institution{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ir *institutionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Institution{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (ir *institutionRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Institution{}).Error; err != nil {
		return err
	}
	return nil
}

type FacultyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, faculties []*types.Faculty) ([]*types.Faculty, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Faculty, error)
	GetByInstitutionIDs(ctx context.Context, tx *gorm.DB, institutionIDs []uuid.UUID) ([]*types.Faculty, error)
}

type facultyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFacultyRepo(db *gorm.DB, baseLog *logger.Logger) FacultyRepo {
	repoLog := baseLog.With("repo", "FacultyRepo")
	return &facultyRepo{db: db, log: repoLog}
}

func (fr *facultyRepo) Create(ctx context.Context, tx *gorm.DB, faculties []*types.Faculty) ([]*types.Faculty, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(faculties) == 0 {
		return []*types.Faculty{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&faculties).Error; err != nil {
		return nil, err
	}
	return faculties, nil
}

func (fr *facultyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Faculty, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Faculty
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

func (fr *facultyRepo) GetByInstitutionIDs(ctx context.Context, tx *gorm.DB, institutionIDs []uuid.UUID) ([]*types.Faculty, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Faculty
	if len(institutionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("institution_id IN ?", institutionIDs).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type FieldRepo interface {
	Create(ctx context.Context, tx *gorm.DB, fields []*types.Field) ([]*types.Field, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Field, error)
	GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.Field, error)
	GetByFacultyIDs(ctx context.Context, tx *gorm.DB, facultyIDs []uuid.UUID) ([]*types.Field, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Field, error)
}

type fieldRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFieldRepo(db *gorm.DB, baseLog *logger.Logger) FieldRepo {
	repoLog := baseLog.With("repo", "FieldRepo")
	return &fieldRepo{db: db, log: repoLog}
}

func (fr *fieldRepo) Create(ctx context.Context, tx *gorm.DB, fields []*types.Field) ([]*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(fields) == 0 {
		return []*types.Field{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

func (fr *fieldRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Field
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

func (fr *fieldRepo) GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Field
	if len(slugs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("slug IN ?", slugs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *fieldRepo) GetByFacultyIDs(ctx context.Context, tx *gorm.DB, facultyIDs []uuid.UUID) ([]*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Field
	if len(facultyIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("faculty_id IN ?", facultyIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *fieldRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Field
	if err := transaction.WithContext(ctx).
		Preload("Faculty").
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type CycleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cycles []*types.Cycle) ([]*types.Cycle, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Cycle, error)
	GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.Cycle, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Cycle, error)
}

type cycleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCycleRepo(db *gorm.DB, baseLog *logger.Logger) CycleRepo {
	repoLog := baseLog.With("repo", "CycleRepo")
	return &cycleRepo{db: db, log: repoLog}
}

func (cr *cycleRepo) Create(ctx context.Context, tx *gorm.DB, cycles []*types.Cycle) ([]*types.Cycle, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(cycles) == 0 {
		return []*types.Cycle{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

func (cr *cycleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Cycle, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Cycle
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

func (cr *cycleRepo) GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.Cycle, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Cycle
	if len(slugs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("slug IN ?", slugs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *cycleRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Cycle, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Cycle
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
