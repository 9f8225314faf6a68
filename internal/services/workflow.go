package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/normalization"
	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/ctxutil"
	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/dbctx"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/gcp"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type PersonInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Title     string `json:"title"`
}

// SubmissionInput carries the descriptive metadata common to every way a
// document enters the system. The file must already have passed the upload
// gate.
type SubmissionInput struct {
	Title          string
	Abstract       string
	Language       string
	DocumentType   string
	AcademicYear   string
	DefenseDate    time.Time
	ClassName      string
	FieldID        uuid.UUID
	CycleID        uuid.UUID
	Author         *PersonInput
	MainSupervisor PersonInput
	CoSupervisor   *PersonInput
	Keywords       []string
	IsConfidential bool
	EmbargoUntil   *time.Time
	File           *InspectedFile
}

type EstablishmentSubmissionInput struct {
	SubmissionInput
	SaveAsDraft      bool
	IsLegacyDocument bool
}

type AdminCreateInput struct {
	SubmissionInput
	InstitutionID uuid.UUID
}

type WorkflowService interface {
	SubmitByStudent(ctx context.Context, in SubmissionInput) (*types.Document, error)
	SubmitByEstablishment(ctx context.Context, in EstablishmentSubmissionInput) (*types.Document, error)
	AdminCreate(ctx context.Context, in AdminCreateInput) (*types.Document, error)

	Validate(ctx context.Context, documentID uuid.UUID) (*types.Document, error)
	Reject(ctx context.Context, documentID uuid.UUID, reason string) (*types.Document, error)
	AdminApprove(ctx context.Context, documentID uuid.UUID) (*types.Document, error)
	AdminReject(ctx context.Context, documentID uuid.UUID, reason string) (*types.Document, error)
	Publish(ctx context.Context, documentID uuid.UUID) (*types.Document, error)
	Archive(ctx context.Context, documentID uuid.UUID) (*types.Document, error)

	PendingForInstitution(ctx context.Context) ([]*types.Document, error)
	MyDocuments(ctx context.Context) ([]*types.Document, error)
}

type workflowService struct {
	db              *gorm.DB
	log             *logger.Logger
	documentRepo    repos.DocumentRepo
	studentRepo     repos.StudentRepo
	userRepo        repos.UserRepo
	institutionRepo repos.InstitutionRepo
	fieldRepo       repos.FieldRepo
	cycleRepo       repos.CycleRepo
	authorRepo      repos.AuthorRepo
	supervisorRepo  repos.SupervisorRepo
	keywordRepo     repos.KeywordRepo
	bucket          gcp.BucketService
}

func NewWorkflowService(
	db *gorm.DB,
	log *logger.Logger,
	documentRepo repos.DocumentRepo,
	studentRepo repos.StudentRepo,
	userRepo repos.UserRepo,
	institutionRepo repos.InstitutionRepo,
	fieldRepo repos.FieldRepo,
	cycleRepo repos.CycleRepo,
	authorRepo repos.AuthorRepo,
	supervisorRepo repos.SupervisorRepo,
	keywordRepo repos.KeywordRepo,
	bucket gcp.BucketService,
) WorkflowService {
	serviceLog := log.With("service", "WorkflowService")
	return &workflowService{
		db:              db,
		log:             serviceLog,
		documentRepo:    documentRepo,
		studentRepo:     studentRepo,
		userRepo:        userRepo,
		institutionRepo: institutionRepo,
		fieldRepo:       fieldRepo,
		cycleRepo:       cycleRepo,
		authorRepo:      authorRepo,
		supervisorRepo:  supervisorRepo,
		keywordRepo:     keywordRepo,
		bucket:          bucket,
	}
}

func (ws *workflowService) SubmitByStudent(ctx context.Context, in SubmissionInput) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RoleStudent {
		return nil, apierr.Forbidden("only students may submit here")
	}
	if actor.InstitutionID == nil {
		return nil, apierr.InvalidInput("student account is not linked to an institution")
	}

	students, err := ws.studentRepo.GetByUserIDs(ctx, nil, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	if len(students) == 0 {
		return nil, apierr.NotFound("no student profile for account %s", actor.UserID)
	}
	student := students[0]

	users, err := ws.userRepo.GetByIDs(ctx, nil, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("account %s not found", actor.UserID)
	}
	account := users[0]

	// The author identity of a student submission always comes from the
	// account, never from the payload.
	in.Author = &PersonInput{
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
	}

	return ws.create(ctx, in, creation{
		institutionID: *actor.InstitutionID,
		status:        types.StatusSubmittedByStudent,
		source:        types.SubmittedByStudent,
		studentID:     &student.ID,
		uploadedBy:    actor.UserID,
	})
}

func (ws *workflowService) SubmitByEstablishment(ctx context.Context, in EstablishmentSubmissionInput) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RoleEstablishment {
		return nil, apierr.Forbidden("only establishment accounts may submit here")
	}
	if actor.InstitutionID == nil {
		return nil, apierr.InvalidInput("establishment account is not linked to an institution")
	}
	if in.Author == nil {
		return nil, apierr.InvalidInput("author is required")
	}

	return ws.create(ctx, in.SubmissionInput, creation{
		institutionID: *actor.InstitutionID,
		status:        types.InitialEstablishmentStatus(in.SaveAsDraft, in.IsLegacyDocument),
		source:        types.SubmittedByEstablishment,
		isLegacy:      in.IsLegacyDocument,
		uploadedBy:    actor.UserID,
	})
}

func (ws *workflowService) AdminCreate(ctx context.Context, in AdminCreateInput) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RolePlatformAdmin {
		return nil, apierr.Forbidden("admin only")
	}
	if in.Author == nil {
		return nil, apierr.InvalidInput("author is required")
	}

	return ws.create(ctx, in.SubmissionInput, creation{
		institutionID: in.InstitutionID,
		status:        types.StatusDraft,
		source:        types.SubmittedByEstablishment,
		uploadedBy:    actor.UserID,
	})
}

type creation struct {
	institutionID uuid.UUID
	status        types.Status
	source        types.SubmissionSource
	studentID     *uuid.UUID
	isLegacy      bool
	uploadedBy    uuid.UUID
}

func (ws *workflowService) create(ctx context.Context, in SubmissionInput, c creation) (*types.Document, error) {
	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	var doc *types.Document
	txErr := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ws.documentRepo.GetByFileHashes(ctx, tx, []string{in.File.Hash})
		if err != nil {
			return apierr.Unavailable(err)
		}
		if len(existing) > 0 {
			return apierr.Conflict("a document with the same file already exists")
		}

		institutions, err := ws.institutionRepo.GetByIDs(ctx, tx, []uuid.UUID{c.institutionID})
		if err != nil {
			return apierr.Unavailable(err)
		}
		if len(institutions) == 0 {
			return apierr.NotFound("institution %s not found", c.institutionID)
		}

		fields, err := ws.fieldRepo.GetByIDs(ctx, tx, []uuid.UUID{in.FieldID})
		if err != nil {
			return apierr.Unavailable(err)
		}
		if len(fields) == 0 {
			return apierr.NotFound("field %s not found", in.FieldID)
		}
		field := fields[0]

		cycles, err := ws.cycleRepo.GetByIDs(ctx, tx, []uuid.UUID{in.CycleID})
		if err != nil {
			return apierr.Unavailable(err)
		}
		if len(cycles) == 0 {
			return apierr.NotFound("cycle %s not found", in.CycleID)
		}
		cycle := cycles[0]

		author, err := ws.authorRepo.FindOrCreate(ctx, tx, &types.Author{
			FirstName: in.Author.FirstName,
			LastName:  in.Author.LastName,
			Email:     in.Author.Email,
		})
		if err != nil {
			return apierr.Unavailable(err)
		}

		mainSup, err := ws.supervisorRepo.FindOrCreate(ctx, tx, &types.Supervisor{
			FirstName: in.MainSupervisor.FirstName,
			LastName:  in.MainSupervisor.LastName,
			Email:     in.MainSupervisor.Email,
			Title:     in.MainSupervisor.Title,
		})
		if err != nil {
			return apierr.Unavailable(err)
		}

		var coSupID *uuid.UUID
		if in.CoSupervisor != nil {
			coSup, err := ws.supervisorRepo.FindOrCreate(ctx, tx, &types.Supervisor{
				FirstName: in.CoSupervisor.FirstName,
				LastName:  in.CoSupervisor.LastName,
				Email:     in.CoSupervisor.Email,
				Title:     in.CoSupervisor.Title,
			})
			if err != nil {
				return apierr.Unavailable(err)
			}
			coSupID = &coSup.ID
		}

		slug, err := normalization.Slug(in.Title)
		if err != nil {
			return apierr.Unavailable(err)
		}

		documentID := uuid.New()
		storageKey := StorageKey(in.AcademicYear, cycle.Slug, c.institutionID, documentID)

		if err := ws.bucket.UploadFile(dbctx.Context{Ctx: ctx, Tx: tx}, storageKey, "application/pdf", bytes.NewReader(in.File.Content)); err != nil {
			return apierr.Unavailable(err)
		}

		candidate := &types.Document{
			ID:               documentID,
			Slug:             slug,
			Title:            strings.TrimSpace(in.Title),
			Abstract:         strings.TrimSpace(in.Abstract),
			Language:         defaultString(in.Language, "FR"),
			DocumentType:     in.DocumentType,
			AcademicYear:     in.AcademicYear,
			DefenseDate:      in.DefenseDate,
			ClassName:        in.ClassName,
			AuthorID:         author.ID,
			InstitutionID:    c.institutionID,
			FacultyID:        field.FacultyID,
			FieldID:          field.ID,
			CycleID:          cycle.ID,
			MainSupervisorID: mainSup.ID,
			CoSupervisorID:   coSupID,
			FileName:         in.File.FileName,
			FileSize:         in.File.Size,
			FileHash:         in.File.Hash,
			StorageKey:       storageKey,
			StorageBucket:    ws.bucket.BucketName(),
			Status:           c.status,
			SubmittedBy:      c.source,
			StudentID:        c.studentID,
			UploadedBy:       c.uploadedBy,
			IsConfidential:   in.IsConfidential,
			EmbargoUntil:     in.EmbargoUntil,
			IsLegacyDocument: c.isLegacy,
		}

		created, err := ws.documentRepo.Create(ctx, tx, candidate)
		if err != nil {
			// The unique index is the arbiter when two uploads of the
			// same file race past the check above.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("a document with the same file already exists")
			}
			return apierr.Unavailable(err)
		}

		for _, raw := range in.Keywords {
			key := normalization.KeywordKey(raw)
			if key == "" {
				continue
			}
			kw, err := ws.keywordRepo.FindOrCreate(ctx, tx, key, normalization.KeywordSlug(raw))
			if err != nil {
				return apierr.Unavailable(err)
			}
			if err := ws.keywordRepo.AttachToDocument(ctx, tx, created.ID, []uuid.UUID{kw.ID}); err != nil {
				return apierr.Unavailable(err)
			}
		}

		doc = created
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	ws.log.Info("document created",
		"document_id", doc.ID,
		"status", doc.Status,
		"submitted_by", doc.SubmittedBy,
		"institution_id", doc.InstitutionID,
	)
	return doc, nil
}

func validateSubmission(in SubmissionInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apierr.InvalidInput("title is required")
	}
	if strings.TrimSpace(in.Abstract) == "" {
		return apierr.InvalidInput("abstract is required")
	}
	if strings.TrimSpace(in.DocumentType) == "" {
		return apierr.InvalidInput("document type is required")
	}
	if strings.TrimSpace(in.AcademicYear) == "" {
		return apierr.InvalidInput("academic year is required")
	}
	if in.DefenseDate.IsZero() {
		return apierr.InvalidInput("defense date is required")
	}
	if in.FieldID == uuid.Nil {
		return apierr.InvalidInput("field is required")
	}
	if in.CycleID == uuid.Nil {
		return apierr.InvalidInput("cycle is required")
	}
	if strings.TrimSpace(in.MainSupervisor.FirstName) == "" || strings.TrimSpace(in.MainSupervisor.LastName) == "" {
		return apierr.InvalidInput("main supervisor name is required")
	}
	if in.Author != nil && (strings.TrimSpace(in.Author.FirstName) == "" || strings.TrimSpace(in.Author.LastName) == "") {
		return apierr.InvalidInput("author name is required")
	}
	if in.File == nil {
		return apierr.InvalidInput("file is required")
	}
	return nil
}

func defaultString(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}

// Validate is the establishment review step. The single-step model applies:
// a validated document is immediately published, with one timestamp for
// both facts.
func (ws *workflowService) Validate(ctx context.Context, documentID uuid.UUID) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RoleEstablishment {
		return nil, apierr.Forbidden("only establishment accounts may validate")
	}

	return ws.transition(ctx, documentID, func(doc *types.Document, now time.Time) (map[string]interface{}, error) {
		if actor.InstitutionID == nil || doc.InstitutionID != *actor.InstitutionID {
			return nil, apierr.Forbidden("document belongs to another institution")
		}
		if !doc.Status.Reviewable() {
			return nil, apierr.InvalidState("cannot validate a document in status %s", doc.Status)
		}
		return map[string]interface{}{
			"status":       types.StatusPublished,
			"validated_by": actor.UserID,
			"validated_at": now,
			"published_by": actor.UserID,
			"published_at": now,
		}, nil
	})
}

func (ws *workflowService) Reject(ctx context.Context, documentID uuid.UUID, reason string) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RoleEstablishment {
		return nil, apierr.Forbidden("only establishment accounts may reject")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apierr.InvalidInput("a rejection reason is required")
	}

	return ws.transition(ctx, documentID, func(doc *types.Document, now time.Time) (map[string]interface{}, error) {
		if actor.InstitutionID == nil || doc.InstitutionID != *actor.InstitutionID {
			return nil, apierr.Forbidden("document belongs to another institution")
		}
		if !doc.Status.Reviewable() {
			return nil, apierr.InvalidState("cannot reject a document in status %s", doc.Status)
		}
		return map[string]interface{}{
			"status":           types.StatusRejected,
			"rejection_reason": reason,
			"validated_by":     actor.UserID,
			"validated_at":     now,
		}, nil
	})
}

func (ws *workflowService) AdminApprove(ctx context.Context, documentID uuid.UUID) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RolePlatformAdmin {
		return nil, apierr.Forbidden("admin only")
	}

	return ws.transition(ctx, documentID, func(doc *types.Document, now time.Time) (map[string]interface{}, error) {
		if doc.Status.Terminal() || doc.Status == types.StatusPublished {
			return nil, apierr.InvalidState("cannot approve a document in status %s", doc.Status)
		}
		return map[string]interface{}{
			"status":       types.StatusPublished,
			"validated_by": actor.UserID,
			"validated_at": now,
			"published_by": actor.UserID,
			"published_at": now,
		}, nil
	})
}

func (ws *workflowService) AdminReject(ctx context.Context, documentID uuid.UUID, reason string) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RolePlatformAdmin {
		return nil, apierr.Forbidden("admin only")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apierr.InvalidInput("a rejection reason is required")
	}

	return ws.transition(ctx, documentID, func(doc *types.Document, now time.Time) (map[string]interface{}, error) {
		if doc.Status.Terminal() || doc.Status == types.StatusPublished {
			return nil, apierr.InvalidState("cannot reject a document in status %s", doc.Status)
		}
		return map[string]interface{}{
			"status":           types.StatusRejected,
			"rejection_reason": reason,
		}, nil
	})
}

// Publish moves VALIDATED to PUBLISHED. With the single-step validation
// model VALIDATED is not produced by any current path, but the edge stays
// for a future two-step flow.
func (ws *workflowService) Publish(ctx context.Context, documentID uuid.UUID) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RolePlatformAdmin {
		return nil, apierr.Forbidden("admin only")
	}

	return ws.transition(ctx, documentID, func(doc *types.Document, now time.Time) (map[string]interface{}, error) {
		if doc.Status != types.StatusValidated {
			return nil, apierr.InvalidState("cannot publish a document in status %s", doc.Status)
		}
		return map[string]interface{}{
			"status":       types.StatusPublished,
			"published_by": actor.UserID,
			"published_at": now,
		}, nil
	})
}

// Archive is allowed from any status. published_at is deliberately left in
// place on archived documents.
func (ws *workflowService) Archive(ctx context.Context, documentID uuid.UUID) (*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RolePlatformAdmin {
		return nil, apierr.Forbidden("admin only")
	}

	return ws.transition(ctx, documentID, func(doc *types.Document, now time.Time) (map[string]interface{}, error) {
		return map[string]interface{}{
			"status": types.StatusArchived,
		}, nil
	})
}

// transition locks the document row, lets decide produce the field updates
// from the current state, and applies them in the same transaction. The
// FOR UPDATE read means a concurrent transition waits and then sees the
// committed state, so its guard runs against the real pre-state.
func (ws *workflowService) transition(
	ctx context.Context,
	documentID uuid.UUID,
	decide func(doc *types.Document, now time.Time) (map[string]interface{}, error),
) (*types.Document, error) {
	var out *types.Document
	txErr := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := ws.documentRepo.GetForUpdate(ctx, tx, documentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("document %s not found", documentID)
			}
			return apierr.Unavailable(err)
		}

		now := time.Now().UTC()
		updates, err := decide(doc, now)
		if err != nil {
			return err
		}

		if err := ws.documentRepo.UpdateFields(ctx, tx, doc.ID, updates); err != nil {
			return apierr.Unavailable(err)
		}

		refreshed, err := ws.documentRepo.GetByIDs(ctx, tx, []uuid.UUID{documentID})
		if err != nil || len(refreshed) == 0 {
			return apierr.Unavailable(err)
		}
		out = refreshed[0]
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	ws.log.Info("document transitioned", "document_id", out.ID, "status", out.Status)
	return out, nil
}

func (ws *workflowService) PendingForInstitution(ctx context.Context) ([]*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RoleEstablishment {
		return nil, apierr.Forbidden("only establishment accounts may list pending documents")
	}
	if actor.InstitutionID == nil {
		return nil, apierr.InvalidInput("establishment account is not linked to an institution")
	}

	docs, _, err := ws.documentRepo.Search(ctx, nil, repos.SearchFilter{
		InstitutionID: actor.InstitutionID,
		Statuses: []types.Status{
			types.StatusSubmittedByStudent,
			types.StatusSubmittedByEstablishment,
			types.StatusUnderReview,
		},
		Limit: 100,
	})
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	return docs, nil
}

func (ws *workflowService) MyDocuments(ctx context.Context) ([]*types.Document, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.Role != types.RoleStudent {
		return nil, apierr.Forbidden("only students may list their submissions")
	}

	students, err := ws.studentRepo.GetByUserIDs(ctx, nil, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	if len(students) == 0 {
		return nil, apierr.NotFound("no student profile for account %s", actor.UserID)
	}

	docs, _, err := ws.documentRepo.Search(ctx, nil, repos.SearchFilter{
		StudentID: &students[0].ID,
		Limit:     100,
	})
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	return docs, nil
}
