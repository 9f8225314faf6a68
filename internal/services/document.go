package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/ctxutil"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

// PublicSearchInput is the filter surface exposed to anonymous callers.
// The public readability predicate is always applied on top of it.
type PublicSearchInput struct {
	Query         string
	InstitutionID *uuid.UUID
	FieldID       *uuid.UUID
	CycleID       *uuid.UUID
	AcademicYear  string
	Language      string
	DocumentType  string
	Page          int
	PageSize      int
}

type AdminListInput struct {
	Query         string
	InstitutionID *uuid.UUID
	Statuses      []types.Status
	Page          int
	PageSize      int
}

// AdminUpdateInput patches descriptive and visibility fields. Nil pointer
// means "leave unchanged". Workflow fields are not reachable from here.
type AdminUpdateInput struct {
	Title          *string
	Abstract       *string
	Language       *string
	ClassName      *string
	IsConfidential *bool
	EmbargoUntil   *time.Time
	ClearEmbargo   bool
}

type ViewContext struct {
	IP        string
	UserAgent string
	Referrer  string
}

type Statistics struct {
	DocumentsByStatus map[types.Status]int64 `json:"documents_by_status"`
	DocumentsByType   map[string]int64       `json:"documents_by_type"`
	TotalViews        int64                  `json:"total_views"`
	TotalInstitutions int64                  `json:"total_institutions"`
	TotalStudents     int64                  `json:"total_students"`
	TopKeywords       []*types.Keyword       `json:"top_keywords"`
}

type DocumentService interface {
	PublicSearch(ctx context.Context, in PublicSearchInput) ([]*types.Document, int64, error)
	GetPublicBySlug(ctx context.Context, slug string) (*types.Document, error)
	GetPublicByID(ctx context.Context, id uuid.UUID) (*types.Document, error)
	RecordView(ctx context.Context, id uuid.UUID, vc ViewContext) error

	AdminList(ctx context.Context, in AdminListInput) ([]*types.Document, int64, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*types.Document, int64, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, in AdminUpdateInput) (*types.Document, error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (*Statistics, error)
}

type documentService struct {
	db              *gorm.DB
	log             *logger.Logger
	documentRepo    repos.DocumentRepo
	viewRepo        repos.DocumentViewRepo
	institutionRepo repos.InstitutionRepo
	userRepo        repos.UserRepo
	keywordRepo     repos.KeywordRepo
}

func NewDocumentService(
	db *gorm.DB,
	log *logger.Logger,
	documentRepo repos.DocumentRepo,
	viewRepo repos.DocumentViewRepo,
	institutionRepo repos.InstitutionRepo,
	userRepo repos.UserRepo,
	keywordRepo repos.KeywordRepo,
) DocumentService {
	serviceLog := log.With("service", "DocumentService")
	return &documentService{
		db:              db,
		log:             serviceLog,
		documentRepo:    documentRepo,
		viewRepo:        viewRepo,
		institutionRepo: institutionRepo,
		userRepo:        userRepo,
		keywordRepo:     keywordRepo,
	}
}

func pageToOffset(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

func (ds *documentService) PublicSearch(ctx context.Context, in PublicSearchInput) ([]*types.Document, int64, error) {
	limit, offset := pageToOffset(in.Page, in.PageSize)

	docs, total, err := ds.documentRepo.Search(ctx, nil, repos.SearchFilter{
		Query:         in.Query,
		InstitutionID: in.InstitutionID,
		FieldID:       in.FieldID,
		CycleID:       in.CycleID,
		AcademicYear:  in.AcademicYear,
		Language:      in.Language,
		DocumentType:  in.DocumentType,
		PublicOnly:    true,
		Now:           time.Now().UTC(),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, 0, apierr.Unavailable(err)
	}
	return docs, total, nil
}

// GetPublicBySlug answers NotFound for absent AND hidden documents so the
// detail endpoint does not leak the existence of unpublished work.
func (ds *documentService) GetPublicBySlug(ctx context.Context, slug string) (*types.Document, error) {
	doc, err := ds.documentRepo.GetDetailBySlug(ctx, nil, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("document %q not found", slug)
		}
		return nil, apierr.Unavailable(err)
	}
	if !DecideFileAccess(doc, time.Now().UTC()).Allowed {
		return nil, apierr.NotFound("document %q not found", slug)
	}
	return doc, nil
}

func (ds *documentService) GetPublicByID(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	doc, err := ds.documentRepo.GetDetailByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("document %s not found", id)
		}
		return nil, apierr.Unavailable(err)
	}
	if !DecideFileAccess(doc, time.Now().UTC()).Allowed {
		return nil, apierr.NotFound("document %s not found", id)
	}
	return doc, nil
}

// RecordView pairs the counter bump with the log row in one transaction.
// Views of absent or non-published documents are dropped without error so
// the public detail page never fails on the side effect.
func (ds *documentService) RecordView(ctx context.Context, id uuid.UUID, vc ViewContext) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		docs, err := ds.documentRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return apierr.Unavailable(err)
		}
		if len(docs) == 0 || docs[0].Status != types.StatusPublished {
			return nil
		}

		now := time.Now().UTC()
		if err := ds.documentRepo.IncrementViewCount(ctx, tx, id, now); err != nil {
			return apierr.Unavailable(err)
		}
		if _, err := ds.viewRepo.Create(ctx, tx, []*types.DocumentView{{
			DocumentID: id,
			ViewerIP:   vc.IP,
			UserAgent:  vc.UserAgent,
			Referrer:   vc.Referrer,
		}}); err != nil {
			return apierr.Unavailable(err)
		}
		return nil
	})
}

func (ds *documentService) AdminList(ctx context.Context, in AdminListInput) ([]*types.Document, int64, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}

	limit, offset := pageToOffset(in.Page, in.PageSize)
	docs, total, err := ds.documentRepo.Search(ctx, nil, repos.SearchFilter{
		Query:         in.Query,
		InstitutionID: in.InstitutionID,
		Statuses:      in.Statuses,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, 0, apierr.Unavailable(err)
	}
	return docs, total, nil
}

// AdminGet also reports the number of recorded view events, so the admin
// detail exposes counter drift against the append-only log.
func (ds *documentService) AdminGet(ctx context.Context, id uuid.UUID) (*types.Document, int64, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}

	doc, err := ds.documentRepo.GetDetailByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apierr.NotFound("document %s not found", id)
		}
		return nil, 0, apierr.Unavailable(err)
	}

	recorded, err := ds.viewRepo.CountByDocumentIDs(ctx, nil, []uuid.UUID{doc.ID})
	if err != nil {
		return nil, 0, apierr.Unavailable(err)
	}
	return doc, recorded[doc.ID], nil
}

func (ds *documentService) AdminUpdate(ctx context.Context, id uuid.UUID, in AdminUpdateInput) (*types.Document, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apierr.InvalidInput("title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Abstract != nil {
		updates["abstract"] = strings.TrimSpace(*in.Abstract)
	}
	if in.Language != nil {
		updates["language"] = *in.Language
	}
	if in.ClassName != nil {
		updates["class_name"] = *in.ClassName
	}
	if in.IsConfidential != nil {
		updates["is_confidential"] = *in.IsConfidential
	}
	if in.ClearEmbargo {
		updates["embargo_until"] = nil
	} else if in.EmbargoUntil != nil {
		updates["embargo_until"] = *in.EmbargoUntil
	}

	var out *types.Document
	txErr := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		docs, err := ds.documentRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return apierr.Unavailable(err)
		}
		if len(docs) == 0 {
			return apierr.NotFound("document %s not found", id)
		}

		if err := ds.documentRepo.UpdateFields(ctx, tx, id, updates); err != nil {
			return apierr.Unavailable(err)
		}

		out, err = ds.documentRepo.GetDetailByID(ctx, tx, id)
		if err != nil {
			return apierr.Unavailable(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func (ds *documentService) AdminDelete(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	docs, err := ds.documentRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return apierr.Unavailable(err)
	}
	if len(docs) == 0 {
		return apierr.NotFound("document %s not found", id)
	}

	if err := ds.documentRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id}); err != nil {
		return apierr.Unavailable(err)
	}
	ds.log.Info("document soft deleted", "document_id", id)
	return nil
}

// Statistics fans the independent aggregates out in parallel; each query is
// read-only and none depends on another.
func (ds *documentService) Statistics(ctx context.Context) (*Statistics, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	stats := &Statistics{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		byStatus, err := ds.documentRepo.CountByStatus(gctx, nil)
		if err != nil {
			return err
		}
		stats.DocumentsByStatus = byStatus
		return nil
	})
	g.Go(func() error {
		byType, err := ds.documentRepo.CountByDocumentType(gctx, nil)
		if err != nil {
			return err
		}
		stats.DocumentsByType = byType
		return nil
	})
	g.Go(func() error {
		views, err := ds.documentRepo.TotalViews(gctx, nil)
		if err != nil {
			return err
		}
		stats.TotalViews = views
		return nil
	})
	g.Go(func() error {
		institutions, err := ds.institutionRepo.Count(gctx, nil)
		if err != nil {
			return err
		}
		stats.TotalInstitutions = institutions
		return nil
	})
	g.Go(func() error {
		students, err := ds.userRepo.CountByRole(gctx, nil, types.RoleStudent)
		if err != nil {
			return err
		}
		stats.TotalStudents = students
		return nil
	})
	g.Go(func() error {
		top, err := ds.keywordRepo.TopUsed(gctx, nil, 10)
		if err != nil {
			return err
		}
		stats.TopKeywords = top
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, apierr.Unavailable(err)
	}
	return stats, nil
}

func requireAdmin(ctx context.Context) error {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RolePlatformAdmin {
		return apierr.Forbidden("admin only")
	}
	return nil
}
