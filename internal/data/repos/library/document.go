package library

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

// SearchFilter narrows a document listing. Zero values mean "no filter".
// PublicOnly adds the readability predicate (published, not confidential,
// embargo elapsed) evaluated against Now.
type SearchFilter struct {
	Query         string
	InstitutionID *uuid.UUID
	FacultyID     *uuid.UUID
	FieldID       *uuid.UUID
	CycleID       *uuid.UUID
	AcademicYear  string
	Language      string
	DocumentType  string
	Statuses      []types.Status
	StudentID     *uuid.UUID
	PublicOnly    bool
	Now           time.Time
	Limit         int
	Offset        int
}

type DocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, doc *types.Document) (*types.Document, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Document, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error)
	GetDetailByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error)
	GetDetailBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Document, error)
	GetByFileHashes(ctx context.Context, tx *gorm.DB, hashes []string) ([]*types.Document, error)
	Search(ctx context.Context, tx *gorm.DB, filter SearchFilter) ([]*types.Document, int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	IncrementViewCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[types.Status]int64, error)
	TotalViews(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByDocumentType(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	repoLog := baseLog.With("repo", "DocumentRepo")
	return &documentRepo{db: db, log: repoLog}
}

var detailPreloads = []string{
	"Author",
	"Institution",
	"Faculty",
	"Field",
	"Cycle",
	"MainSupervisor",
	"CoSupervisor",
	"Keywords",
	"Keywords.Keyword",
}

func withDetail(q *gorm.DB) *gorm.DB {
	for _, p := range detailPreloads {
		q = q.Preload(p)
	}
	return q
}

func (dr *documentRepo) Create(ctx context.Context, tx *gorm.DB, doc *types.Document) (*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if err := transaction.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (dr *documentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.Document
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

// GetForUpdate loads one document under a FOR UPDATE row lock so that
// concurrent status transitions serialize. Only meaningful inside a
// transaction.
func (dr *documentRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var doc types.Document
	if err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (dr *documentRepo) GetDetailByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var doc types.Document
	if err := withDetail(transaction.WithContext(ctx)).
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (dr *documentRepo) GetDetailBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var doc types.Document
	if err := withDetail(transaction.WithContext(ctx)).
		Where("slug = ?", slug).
		First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (dr *documentRepo) GetByFileHashes(ctx context.Context, tx *gorm.DB, hashes []string) ([]*types.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.Document
	if len(hashes) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("file_hash IN ?", hashes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func applyFilter(q *gorm.DB, filter SearchFilter) *gorm.DB {
	if query := strings.TrimSpace(filter.Query); query != "" {
		pattern := "%" + query + "%"
		q = q.Where("title ILIKE ? OR abstract ILIKE ?", pattern, pattern)
	}
	if filter.InstitutionID != nil {
		q = q.Where("institution_id = ?", *filter.InstitutionID)
	}
	if filter.FacultyID != nil {
		q = q.Where("faculty_id = ?", *filter.FacultyID)
	}
	if filter.FieldID != nil {
		q = q.Where("field_id = ?", *filter.FieldID)
	}
	if filter.CycleID != nil {
		q = q.Where("cycle_id = ?", *filter.CycleID)
	}
	if filter.AcademicYear != "" {
		q = q.Where("academic_year = ?", filter.AcademicYear)
	}
	if filter.Language != "" {
		q = q.Where("language = ?", filter.Language)
	}
	if filter.DocumentType != "" {
		q = q.Where("document_type = ?", filter.DocumentType)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.PublicOnly {
		now := filter.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		q = q.Where("status = ?", types.StatusPublished).
			Where("is_confidential = false").
			Where("embargo_until IS NULL OR embargo_until <= ?", now)
	}
	return q
}

func (dr *documentRepo) Search(ctx context.Context, tx *gorm.DB, filter SearchFilter) ([]*types.Document, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	base := applyFilter(transaction.WithContext(ctx).Model(&types.Document{}), filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var results []*types.Document
	if err := withDetail(base.Session(&gorm.Session{})).
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (dr *documentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

// IncrementViewCount bumps the counter in SQL so concurrent views never
// lose an increment to a read-modify-write race.
func (dr *documentRepo) IncrementViewCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"view_count":     gorm.Expr("view_count + 1"),
			"last_viewed_at": at,
		}).Error; err != nil {
		return err
	}
	return nil
}

func (dr *documentRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Document{}).Error; err != nil {
		return err
	}
	return nil
}

func (dr *documentRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[types.Status]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var rows []struct {
		Status types.Status
		Count  int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Document{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[types.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (dr *documentRepo) TotalViews(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.Document{}).
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (dr *documentRepo) CountByDocumentType(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var rows []struct {
		DocumentType string
		Count        int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Document{}).
		Select("document_type, COUNT(*) AS count").
		Group("document_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.DocumentType] = row.Count
	}
	return out, nil
}
