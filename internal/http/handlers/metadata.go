package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bibliomemory/bibliomemory-backend/internal/http/response"
	"github.com/bibliomemory/bibliomemory-backend/internal/services"
)

type MetadataHandler struct {
	metadataService services.MetadataService
}

func NewMetadataHandler(metadataService services.MetadataService) *MetadataHandler {
	return &MetadataHandler{metadataService: metadataService}
}

func (mh *MetadataHandler) ListInstitutions(c *gin.Context) {
	institutions, err := mh.metadataService.ListInstitutions(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"institutions": institutions})
}

func (mh *MetadataHandler) CreateInstitution(c *gin.Context) {
	var req services.InstitutionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	institution, err := mh.metadataService.CreateInstitution(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"institution": institution})
}

func (mh *MetadataHandler) UpdateInstitution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_institution_id", err)
		return
	}
	var req services.InstitutionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	institution, err := mh.metadataService.UpdateInstitution(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"institution": institution})
}

func (mh *MetadataHandler) DeleteInstitution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_institution_id", err)
		return
	}

	if err := mh.metadataService.DeleteInstitution(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (mh *MetadataHandler) ListFaculties(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_institution_id", err)
		return
	}

	faculties, err := mh.metadataService.ListFaculties(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"faculties": faculties})
}

func (mh *MetadataHandler) ListFields(c *gin.Context) {
	fields, err := mh.metadataService.ListFields(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"fields": fields})
}

func (mh *MetadataHandler) ListCycles(c *gin.Context) {
	cycles, err := mh.metadataService.ListCycles(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cycles": cycles})
}

func (mh *MetadataHandler) ListSupervisors(c *gin.Context) {
	supervisors, err := mh.metadataService.ListSupervisors(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"supervisors": supervisors})
}
