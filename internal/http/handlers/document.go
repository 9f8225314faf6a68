package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/http/response"
	"github.com/bibliomemory/bibliomemory-backend/internal/services"
)

type DocumentHandler struct {
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func parseOptionalUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return nil, false
	}
	return &id, true
}

func (dh *DocumentHandler) Search(c *gin.Context) {
	var req struct {
		Query        string `form:"q"`
		AcademicYear string `form:"academic_year"`
		Language     string `form:"language"`
		DocumentType string `form:"document_type"`
		Page         int    `form:"page"`
		PageSize     int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	institutionID, ok := parseOptionalUUID(c, "institution_id")
	if !ok {
		return
	}
	fieldID, ok := parseOptionalUUID(c, "field_id")
	if !ok {
		return
	}
	cycleID, ok := parseOptionalUUID(c, "cycle_id")
	if !ok {
		return
	}

	docs, total, err := dh.documentService.PublicSearch(c.Request.Context(), services.PublicSearchInput{
		Query:         req.Query,
		InstitutionID: institutionID,
		FieldID:       fieldID,
		CycleID:       cycleID,
		AcademicYear:  req.AcademicYear,
		Language:      req.Language,
		DocumentType:  req.DocumentType,
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

func (dh *DocumentHandler) GetBySlug(c *gin.Context) {
	doc, err := dh.documentService.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, documentDetail(doc))
}

func (dh *DocumentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}

	doc, err := dh.documentService.GetPublicByID(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, documentDetail(doc))
}

// RecordView always answers 200 for well-formed IDs. The side effect is a
// no-op on hidden or absent documents and the caller cannot tell.
func (dh *DocumentHandler) RecordView(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}

	err = dh.documentService.RecordView(c.Request.Context(), id, services.ViewContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func documentDetail(doc *types.Document) gin.H {
	return gin.H{
		"document": doc,
		"keywords": doc.KeywordList(),
	}
}

func documentSummaries(docs []*types.Document) []gin.H {
	out := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentDetail(doc))
	}
	return out
}
