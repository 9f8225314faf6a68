package http

import (
	"github.com/gin-gonic/gin"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	httpH "github.com/bibliomemory/bibliomemory-backend/internal/http/handlers"
	httpMW "github.com/bibliomemory/bibliomemory-backend/internal/http/middleware"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler     *httpH.AuthHandler
	MetadataHandler *httpH.MetadataHandler
	DocumentHandler *httpH.DocumentHandler
	FileHandler     *httpH.FileHandler
	WorkflowHandler *httpH.WorkflowHandler
	AdminHandler    *httpH.AdminHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/refresh", cfg.AuthHandler.Refresh)
		auth.POST("/logout", cfg.AuthHandler.Logout)
		if cfg.AuthMiddleware != nil {
			auth.POST("/password", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.ChangePassword)
		}
	}

	// Reference catalog
	if cfg.MetadataHandler != nil {
		metadata := api.Group("/metadata")
		metadata.GET("/institutions", cfg.MetadataHandler.ListInstitutions)
		metadata.GET("/institutions/:id/faculties", cfg.MetadataHandler.ListFaculties)
		metadata.GET("/fields", cfg.MetadataHandler.ListFields)
		metadata.GET("/cycles", cfg.MetadataHandler.ListCycles)
		metadata.GET("/supervisors", cfg.MetadataHandler.ListSupervisors)

		if cfg.AuthMiddleware != nil {
			manage := metadata.Group("")
			manage.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireRole(types.RolePlatformAdmin))
			manage.POST("/institutions", cfg.MetadataHandler.CreateInstitution)
			manage.PUT("/institutions/:id", cfg.MetadataHandler.UpdateInstitution)
			manage.DELETE("/institutions/:id", cfg.MetadataHandler.DeleteInstitution)
		}
	}

	// Public catalog
	if cfg.DocumentHandler != nil {
		api.GET("/documents", cfg.DocumentHandler.Search)
		api.GET("/documents/slug/:slug", cfg.DocumentHandler.GetBySlug)
		api.GET("/documents/:id", cfg.DocumentHandler.GetByID)
		api.POST("/documents/:id/view", cfg.DocumentHandler.RecordView)
	}
	if cfg.FileHandler != nil {
		api.GET("/files/:id/url", cfg.FileHandler.GetURL)
	}

	// Workflow (authenticated)
	if cfg.WorkflowHandler != nil && cfg.AuthMiddleware != nil {
		workflow := api.Group("/workflow")
		workflow.Use(cfg.AuthMiddleware.RequireAuth())

		student := workflow.Group("/student")
		student.Use(cfg.AuthMiddleware.RequireRole(types.RoleStudent))
		student.POST("/submit", cfg.WorkflowHandler.SubmitByStudent)
		student.GET("/documents", cfg.WorkflowHandler.MyDocuments)

		establishment := workflow.Group("/establishment")
		establishment.Use(cfg.AuthMiddleware.RequireRole(types.RoleEstablishment))
		establishment.POST("/submit", cfg.WorkflowHandler.SubmitByEstablishment)
		establishment.GET("/pending", cfg.WorkflowHandler.Pending)

		review := workflow.Group("/documents")
		review.Use(cfg.AuthMiddleware.RequireRole(types.RoleEstablishment))
		review.POST("/:id/validate", cfg.WorkflowHandler.Validate)
		review.POST("/:id/reject", cfg.WorkflowHandler.Reject)
	}

	// Admin
	if cfg.AdminHandler != nil && cfg.AuthMiddleware != nil {
		admin := api.Group("/admin")
		admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireRole(types.RolePlatformAdmin))
		admin.GET("/documents", cfg.AdminHandler.List)
		admin.POST("/documents", cfg.AdminHandler.Create)
		admin.GET("/documents/:id", cfg.AdminHandler.Get)
		admin.PATCH("/documents/:id", cfg.AdminHandler.Update)
		admin.DELETE("/documents/:id", cfg.AdminHandler.Delete)
		admin.POST("/documents/:id/approve", cfg.AdminHandler.Approve)
		admin.POST("/documents/:id/reject", cfg.AdminHandler.Reject)
		admin.POST("/documents/:id/publish", cfg.AdminHandler.Publish)
		admin.POST("/documents/:id/archive", cfg.AdminHandler.Archive)
		admin.GET("/statistics", cfg.AdminHandler.Statistics)
	}

	return r
}
