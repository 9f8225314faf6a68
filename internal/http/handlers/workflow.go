package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bibliomemory/bibliomemory-backend/internal/http/response"
	"github.com/bibliomemory/bibliomemory-backend/internal/services"
)

type WorkflowHandler struct {
	workflowService services.WorkflowService
	uploadGate      services.UploadGate
}

func NewWorkflowHandler(workflowService services.WorkflowService, uploadGate services.UploadGate) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService, uploadGate: uploadGate}
}

// submissionForm is the multipart payload shared by every submission route.
// Dates travel as RFC 3339; keywords as a comma separated list.
type submissionForm struct {
	Title        string `form:"title"`
	Abstract     string `form:"abstract"`
	Language     string `form:"language"`
	DocumentType string `form:"document_type"`
	AcademicYear string `form:"academic_year"`
	DefenseDate  string `form:"defense_date"`
	ClassName    string `form:"class_name"`
	FieldID      string `form:"field_id"`
	CycleID      string `form:"cycle_id"`
	Keywords     string `form:"keywords"`

	AuthorFirstName string `form:"author_first_name"`
	AuthorLastName  string `form:"author_last_name"`
	AuthorEmail     string `form:"author_email"`

	MainSupervisorFirstName string `form:"main_supervisor_first_name"`
	MainSupervisorLastName  string `form:"main_supervisor_last_name"`
	MainSupervisorEmail     string `form:"main_supervisor_email"`
	MainSupervisorTitle     string `form:"main_supervisor_title"`

	CoSupervisorFirstName string `form:"co_supervisor_first_name"`
	CoSupervisorLastName  string `form:"co_supervisor_last_name"`
	CoSupervisorEmail     string `form:"co_supervisor_email"`
	CoSupervisorTitle     string `form:"co_supervisor_title"`

	IsConfidential bool   `form:"is_confidential"`
	EmbargoUntil   string `form:"embargo_until"`
}

func (wh *WorkflowHandler) parseSubmission(c *gin.Context, withAuthor bool) (*services.SubmissionInput, bool) {
	var form submissionForm
	if err := c.ShouldBind(&form); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return nil, false
	}

	fieldID, err := uuid.Parse(form.FieldID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_field_id", err)
		return nil, false
	}
	cycleID, err := uuid.Parse(form.CycleID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_cycle_id", err)
		return nil, false
	}
	defenseDate, err := time.Parse(time.RFC3339, form.DefenseDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_defense_date", err)
		return nil, false
	}

	var embargo *time.Time
	if form.EmbargoUntil != "" {
		parsed, err := time.Parse(time.RFC3339, form.EmbargoUntil)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_embargo_until", err)
			return nil, false
		}
		embargo = &parsed
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return nil, false
	}
	defer file.Close()

	inspected, err := wh.uploadGate.Inspect(fileHeader.Filename, file)
	if err != nil {
		response.RespondAPIError(c, err)
		return nil, false
	}

	in := &services.SubmissionInput{
		Title:        form.Title,
		Abstract:     form.Abstract,
		Language:     form.Language,
		DocumentType: form.DocumentType,
		AcademicYear: form.AcademicYear,
		DefenseDate:  defenseDate,
		ClassName:    form.ClassName,
		FieldID:      fieldID,
		CycleID:      cycleID,
		MainSupervisor: services.PersonInput{
			FirstName: form.MainSupervisorFirstName,
			LastName:  form.MainSupervisorLastName,
			Email:     form.MainSupervisorEmail,
			Title:     form.MainSupervisorTitle,
		},
		Keywords:       splitKeywords(form.Keywords),
		IsConfidential: form.IsConfidential,
		EmbargoUntil:   embargo,
		File:           inspected,
	}
	if withAuthor {
		in.Author = &services.PersonInput{
			FirstName: form.AuthorFirstName,
			LastName:  form.AuthorLastName,
			Email:     form.AuthorEmail,
		}
	}
	if form.CoSupervisorFirstName != "" || form.CoSupervisorLastName != "" {
		in.CoSupervisor = &services.PersonInput{
			FirstName: form.CoSupervisorFirstName,
			LastName:  form.CoSupervisorLastName,
			Email:     form.CoSupervisorEmail,
			Title:     form.CoSupervisorTitle,
		}
	}
	return in, true
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (wh *WorkflowHandler) SubmitByStudent(c *gin.Context) {
	in, ok := wh.parseSubmission(c, false)
	if !ok {
		return
	}

	doc, err := wh.workflowService.SubmitByStudent(c.Request.Context(), *in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"document": doc})
}

func (wh *WorkflowHandler) SubmitByEstablishment(c *gin.Context) {
	in, ok := wh.parseSubmission(c, true)
	if !ok {
		return
	}

	var flags struct {
		SaveAsDraft      bool `form:"save_as_draft"`
		IsLegacyDocument bool `form:"is_legacy_document"`
	}
	if err := c.ShouldBind(&flags); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}

	doc, err := wh.workflowService.SubmitByEstablishment(c.Request.Context(), services.EstablishmentSubmissionInput{
		SubmissionInput:  *in,
		SaveAsDraft:      flags.SaveAsDraft,
		IsLegacyDocument: flags.IsLegacyDocument,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"document": doc})
}

func (wh *WorkflowHandler) Validate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}

	doc, err := wh.workflowService.Validate(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

func (wh *WorkflowHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	doc, err := wh.workflowService.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

func (wh *WorkflowHandler) Pending(c *gin.Context) {
	docs, err := wh.workflowService.PendingForInstitution(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": documentSummaries(docs)})
}

func (wh *WorkflowHandler) MyDocuments(c *gin.Context) {
	docs, err := wh.workflowService.MyDocuments(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": documentSummaries(docs)})
}
