package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/http/response"
	"github.com/bibliomemory/bibliomemory-backend/internal/services"
)

type AdminHandler struct {
	documentService services.DocumentService
	workflowService services.WorkflowService
	uploadGate      services.UploadGate
}

func NewAdminHandler(
	documentService services.DocumentService,
	workflowService services.WorkflowService,
	uploadGate services.UploadGate,
) *AdminHandler {
	return &AdminHandler{
		documentService: documentService,
		workflowService: workflowService,
		uploadGate:      uploadGate,
	}
}

func (ah *AdminHandler) List(c *gin.Context) {
	var req struct {
		Query    string `form:"q"`
		Statuses string `form:"statuses"`
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	institutionID, ok := parseOptionalUUID(c, "institution_id")
	if !ok {
		return
	}

	var statuses []types.Status
	for _, raw := range strings.Split(req.Statuses, ",") {
		s := types.Status(strings.ToUpper(strings.TrimSpace(raw)))
		if s == "" {
			continue
		}
		if !s.Valid() {
			response.RespondError(c, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		statuses = append(statuses, s)
	}

	docs, total, err := ah.documentService.AdminList(c.Request.Context(), services.AdminListInput{
		Query:         req.Query,
		InstitutionID: institutionID,
		Statuses:      statuses,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"documents": documentSummaries(docs),
		"total":     total,
	})
}

func (ah *AdminHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}

	doc, recordedViews, err := ah.documentService.AdminGet(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	detail := documentDetail(doc)
	detail["recorded_views"] = recordedViews
	response.RespondOK(c, detail)
}

// Create takes the same multipart payload as an establishment submission
// plus an explicit institution_id; the result always starts at DRAFT.
func (ah *AdminHandler) Create(c *gin.Context) {
	wh := &WorkflowHandler{workflowService: ah.workflowService, uploadGate: ah.uploadGate}
	in, ok := wh.parseSubmission(c, true)
	if !ok {
		return
	}

	institutionRaw := c.PostForm("institution_id")
	institutionID, err := uuid.Parse(institutionRaw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_institution_id", err)
		return
	}

	doc, err := ah.workflowService.AdminCreate(c.Request.Context(), services.AdminCreateInput{
		SubmissionInput: *in,
		InstitutionID:   institutionID,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"document": doc})
}

func (ah *AdminHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}

	var req struct {
		Title          *string `json:"title"`
		Abstract       *string `json:"abstract"`
		Language       *string `json:"language"`
		ClassName      *string `json:"class_name"`
		IsConfidential *bool   `json:"is_confidential"`
		EmbargoUntil   *string `json:"embargo_until"`
		ClearEmbargo   bool    `json:"clear_embargo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	in := services.AdminUpdateInput{
		Title:          req.Title,
		Abstract:       req.Abstract,
		Language:       req.Language,
		ClassName:      req.ClassName,
		IsConfidential: req.IsConfidential,
		ClearEmbargo:   req.ClearEmbargo,
	}
	if req.EmbargoUntil != nil {
		parsed, err := time.Parse(time.RFC3339, *req.EmbargoUntil)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_embargo_until", err)
			return
		}
		in.EmbargoUntil = &parsed
	}

	doc, err := ah.documentService.AdminUpdate(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, documentDetail(doc))
}

func (ah *AdminHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}

	if err := ah.documentService.AdminDelete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AdminHandler) transition(c *gin.Context, fn func(id uuid.UUID) (*types.Document, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}

	doc, err := fn(id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

func (ah *AdminHandler) Approve(c *gin.Context) {
	ah.transition(c, func(id uuid.UUID) (*types.Document, error) {
		return ah.workflowService.AdminApprove(c.Request.Context(), id)
	})
}

func (ah *AdminHandler) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ah.transition(c, func(id uuid.UUID) (*types.Document, error) {
		return ah.workflowService.AdminReject(c.Request.Context(), id, req.Reason)
	})
}

func (ah *AdminHandler) Publish(c *gin.Context) {
	ah.transition(c, func(id uuid.UUID) (*types.Document, error) {
		return ah.workflowService.Publish(c.Request.Context(), id)
	})
}

func (ah *AdminHandler) Archive(c *gin.Context) {
	ah.transition(c, func(id uuid.UUID) (*types.Document, error) {
		return ah.workflowService.Archive(c.Request.Context(), id)
	})
}

func (ah *AdminHandler) Statistics(c *gin.Context) {
	stats, err := ah.documentService.Statistics(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}
