package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Author is the person credited as the writer of a document, distinct from
// the account that uploaded it. Created lazily, keyed by name + email.
type Author struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FirstName string    `gorm:"not null;column:first_name;uniqueIndex:idx_author_identity" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name;uniqueIndex:idx_author_identity" json:"last_name"`
	Email     string    `gorm:"not null;default:'';column:email;uniqueIndex:idx_author_identity" json:"email"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Author) TableName() string { return "author" }

type Supervisor struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FirstName string    `gorm:"not null;column:first_name;uniqueIndex:idx_supervisor_identity" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name;uniqueIndex:idx_supervisor_identity" json:"last_name"`
	Email     string    `gorm:"not null;default:'';column:email;uniqueIndex:idx_supervisor_identity" json:"email"`
	Title     string    `gorm:"column:title" json:"title"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Supervisor) TableName() string { return "supervisor" }
