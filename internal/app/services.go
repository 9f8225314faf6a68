package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/platform/gcp"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/sessions"
	"github.com/bibliomemory/bibliomemory-backend/internal/services"
)

type Services struct {
	Bucket   gcp.BucketService
	Sessions sessions.Store

	Upload services.UploadGate

	Auth     services.AuthService
	Metadata services.MetadataService
	Workflow services.WorkflowService
	Document services.DocumentService
	File     services.FileService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	bucketService, err := gcp.NewBucketService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init bucket service: %w", err)
	}

	sessionStore, err := sessions.NewRedisStore(cfg.RedisURL)
	if err != nil {
		return Services{}, fmt.Errorf("init session store: %w", err)
	}

	uploadGate := services.NewUploadGate(log, cfg.MaxUploadSize)

	authService := services.NewAuthService(
		db,
		log,
		repos.User,
		repos.Student,
		repos.Institution,
		sessionStore,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	metadataService := services.NewMetadataService(
		db,
		log,
		repos.Institution,
		repos.Faculty,
		repos.Field,
		repos.Cycle,
		repos.Supervisor,
	)

	workflowService := services.NewWorkflowService(
		db,
		log,
		repos.Document,
		repos.Student,
		repos.User,
		repos.Institution,
		repos.Field,
		repos.Cycle,
		repos.Author,
		repos.Supervisor,
		repos.Keyword,
		bucketService,
	)

	documentService := services.NewDocumentService(
		db,
		log,
		repos.Document,
		repos.DocumentView,
		repos.Institution,
		repos.User,
		repos.Keyword,
	)

	fileService := services.NewFileService(db, log, repos.Document, bucketService, cfg.PresignTTL)

	return Services{
		Bucket:   bucketService,
		Sessions: sessionStore,
		Upload:   uploadGate,
		Auth:     authService,
		Metadata: metadataService,
		Workflow: workflowService,
		Document: documentService,
		File:     fileService,
	}, nil
}
