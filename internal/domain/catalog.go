package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Institution struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name    string    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	Acronym string    `gorm:"column:acronym" json:"acronym"`
	City    string    `gorm:"column:city" json:"city"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Institution) TableName() string { return "institution" }

type Faculty struct {
	ID            uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	InstitutionID uuid.UUID    `gorm:"type:uuid;not null;index" json:"institution_id"`
	Institution   *Institution `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstitutionID;references:ID" json:"institution,omitempty"`
	Name          string       `gorm:"not null;column:name" json:"name"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Faculty) TableName() string { return "faculty" }

// Field is a study discipline. Its faculty is the source of truth for a
// document's faculty on student submissions (derived, never supplied).
type Field struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FacultyID uuid.UUID `gorm:"type:uuid;not null;index" json:"faculty_id"`
	Faculty   *Faculty  `gorm:"constraint:OnDelete:CASCADE;foreignKey:FacultyID;references:ID" json:"faculty,omitempty"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Slug      string    `gorm:"not null;uniqueIndex;column:slug" json:"slug"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Field) TableName() string { return "field" }

type Cycle struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name string    `gorm:"not null;column:name" json:"name"`
	Slug string    `gorm:"not null;uniqueIndex;column:slug" json:"slug"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Cycle) TableName() string { return "cycle" }
