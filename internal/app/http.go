package app

import (
	"github.com/bibliomemory/bibliomemory-backend/internal/http"
	httpH "github.com/bibliomemory/bibliomemory-backend/internal/http/handlers"
	httpMW "github.com/bibliomemory/bibliomemory-backend/internal/http/middleware"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Metadata *httpH.MetadataHandler
	Document *httpH.DocumentHandler
	File     *httpH.FileHandler
	Workflow *httpH.WorkflowHandler
	Admin    *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(services.Auth),
		Metadata: httpH.NewMetadataHandler(services.Metadata),
		Document: httpH.NewDocumentHandler(services.Document),
		File:     httpH.NewFileHandler(services.File),
		Workflow: httpH.NewWorkflowHandler(services.Workflow, services.Upload),
		Admin:    httpH.NewAdminHandler(services.Document, services.Workflow, services.Upload),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		AllowedOrigins:  cfg.AllowedOrigins,
		AuthMiddleware:  middleware.Auth,
		AuthHandler:     handlers.Auth,
		MetadataHandler: handlers.Metadata,
		DocumentHandler: handlers.Document,
		FileHandler:     handlers.File,
		WorkflowHandler: handlers.Workflow,
		AdminHandler:    handlers.Admin,
		HealthHandler:   handlers.Health,
	})
}
