package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/gcp"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

// Reasons a file access decision denies. Exactly one is reported even when
// several apply; they are checked in this order.
const (
	DenyNotPublished = "not_published"
	DenyConfidential = "confidential"
	DenyEmbargoed    = "embargoed"
)

type AccessDecision struct {
	Allowed bool
	Reason  string
}

// DecideFileAccess is the single readability rule for document files. It is
// pure: no clock reads, no I/O, no mutation. Every caller that cannot prove
// ALLOW gets DENY, regardless of who is asking.
func DecideFileAccess(doc *types.Document, now time.Time) AccessDecision {
	if doc == nil || doc.Status != types.StatusPublished {
		return AccessDecision{Allowed: false, Reason: DenyNotPublished}
	}
	if doc.IsConfidential {
		return AccessDecision{Allowed: false, Reason: DenyConfidential}
	}
	if doc.EmbargoUntil != nil && doc.EmbargoUntil.After(now) {
		return AccessDecision{Allowed: false, Reason: DenyEmbargoed}
	}
	return AccessDecision{Allowed: true}
}

type FileService interface {
	ResolveDownloadURL(ctx context.Context, documentID uuid.UUID) (string, error)
}

type fileService struct {
	db           *gorm.DB
	log          *logger.Logger
	documentRepo repos.DocumentRepo
	bucket       gcp.BucketService
	presignTTL   time.Duration
}

func NewFileService(
	db *gorm.DB,
	log *logger.Logger,
	documentRepo repos.DocumentRepo,
	bucket gcp.BucketService,
	presignTTL time.Duration,
) FileService {
	serviceLog := log.With("service", "FileService")
	return &fileService{
		db:           db,
		log:          serviceLog,
		documentRepo: documentRepo,
		bucket:       bucket,
		presignTTL:   presignTTL,
	}
}

// ResolveDownloadURL mints a presigned URL only after the access rule
// allows the read. Denials surface as Forbidden; an absent document is
// NotFound so callers cannot distinguish hidden from missing via the URL
// endpoint alone.
func (fs *fileService) ResolveDownloadURL(ctx context.Context, documentID uuid.UUID) (string, error) {
	docs, err := fs.documentRepo.GetByIDs(ctx, nil, []uuid.UUID{documentID})
	if err != nil {
		return "", apierr.Unavailable(err)
	}
	if len(docs) == 0 {
		return "", apierr.NotFound("document %s not found", documentID)
	}
	doc := docs[0]

	decision := DecideFileAccess(doc, time.Now().UTC())
	if !decision.Allowed {
		fs.log.Debug("file access denied", "document_id", documentID, "reason", decision.Reason)
		return "", apierr.Forbidden("document file is not accessible")
	}

	url, err := fs.bucket.SignedURL(doc.StorageKey, fs.presignTTL)
	if err != nil {
		return "", apierr.Unavailable(err)
	}
	return url, nil
}
