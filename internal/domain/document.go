package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is the central entity: one PDF thesis or dissertation plus the
// workflow and visibility facts that gate who may read it.
type Document struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Slug string    `gorm:"not null;uniqueIndex;column:slug" json:"slug"`

	Title        string    `gorm:"not null;column:title" json:"title"`
	Abstract     string    `gorm:"not null;column:abstract;type:text" json:"abstract"`
	Language     string    `gorm:"not null;default:'FR';column:language" json:"language"`
	DocumentType string    `gorm:"not null;column:document_type" json:"document_type"`
	AcademicYear string    `gorm:"not null;column:academic_year;index" json:"academic_year"`
	DefenseDate  time.Time `gorm:"not null;column:defense_date" json:"defense_date"`
	ClassName    string    `gorm:"column:class_name" json:"class_name,omitempty"`

	AuthorID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"author_id"`
	Author           *Author      `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	InstitutionID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"institution_id"`
	Institution      *Institution `gorm:"foreignKey:InstitutionID;references:ID" json:"institution,omitempty"`
	FacultyID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"faculty_id"`
	Faculty          *Faculty     `gorm:"foreignKey:FacultyID;references:ID" json:"faculty,omitempty"`
	FieldID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"field_id"`
	Field            *Field       `gorm:"foreignKey:FieldID;references:ID" json:"field,omitempty"`
	CycleID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"cycle_id"`
	Cycle            *Cycle       `gorm:"foreignKey:CycleID;references:ID" json:"cycle,omitempty"`
	MainSupervisorID uuid.UUID    `gorm:"type:uuid;not null" json:"main_supervisor_id"`
	MainSupervisor   *Supervisor  `gorm:"foreignKey:MainSupervisorID;references:ID" json:"main_supervisor,omitempty"`
	CoSupervisorID   *uuid.UUID   `gorm:"type:uuid" json:"co_supervisor_id,omitempty"`
	CoSupervisor     *Supervisor  `gorm:"foreignKey:CoSupervisorID;references:ID" json:"co_supervisor,omitempty"`

	FileName      string         `gorm:"not null;column:file_name" json:"file_name"`
	FileSize      int64          `gorm:"not null;column:file_size" json:"file_size"`
	FileHash      string         `gorm:"not null;uniqueIndex;column:file_hash" json:"file_hash"`
	StorageKey    string         `gorm:"not null;column:storage_key" json:"-"`
	StorageBucket string         `gorm:"not null;column:storage_bucket" json:"-"`
	PageCount     *int           `gorm:"column:page_count" json:"page_count,omitempty"`
	FileMetadata  datatypes.JSON `gorm:"column:file_metadata;type:jsonb" json:"file_metadata,omitempty"`

	Status          Status           `gorm:"not null;column:status;index" json:"status"`
	SubmittedBy     SubmissionSource `gorm:"not null;column:submitted_by" json:"submitted_by"`
	StudentID       *uuid.UUID       `gorm:"type:uuid;column:student_id;index" json:"student_id,omitempty"`
	Student         *Student         `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
	UploadedBy      uuid.UUID        `gorm:"type:uuid;not null;column:uploaded_by" json:"uploaded_by"`
	ValidatedBy     *uuid.UUID       `gorm:"type:uuid;column:validated_by" json:"validated_by,omitempty"`
	ValidatedAt     *time.Time       `gorm:"column:validated_at" json:"validated_at,omitempty"`
	PublishedBy     *uuid.UUID       `gorm:"type:uuid;column:published_by" json:"published_by,omitempty"`
	PublishedAt     *time.Time       `gorm:"column:published_at" json:"published_at,omitempty"`
	RejectionReason string           `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`

	IsConfidential   bool       `gorm:"not null;default:false;column:is_confidential" json:"is_confidential"`
	EmbargoUntil     *time.Time `gorm:"column:embargo_until" json:"embargo_until,omitempty"`
	IsLegacyDocument bool       `gorm:"not null;default:false;column:is_legacy_document" json:"is_legacy_document"`

	ViewCount    int64      `gorm:"not null;default:0;column:view_count" json:"view_count"`
	LastViewedAt *time.Time `gorm:"column:last_viewed_at" json:"last_viewed_at,omitempty"`

	Keywords []DocumentKeyword `gorm:"foreignKey:DocumentID;references:ID" json:"keywords,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Document) TableName() string { return "document" }

// KeywordList flattens the join rows into plain tags for API responses.
func (d *Document) KeywordList() []string {
	out := make([]string, 0, len(d.Keywords))
	for _, dk := range d.Keywords {
		if dk.Keyword != nil {
			out = append(out, dk.Keyword.Key)
		}
	}
	return out
}

// DocumentView is an append-only record of one read of a published
// document. Rows are never updated or deleted.
type DocumentView struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	ViewerIP   string    `gorm:"column:viewer_ip" json:"viewer_ip,omitempty"`
	UserAgent  string    `gorm:"column:user_agent" json:"user_agent,omitempty"`
	Referrer   string    `gorm:"column:referrer" json:"referrer,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (DocumentView) TableName() string { return "document_view" }
