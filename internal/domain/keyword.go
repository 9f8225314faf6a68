package domain

import (
	"time"

	"github.com/google/uuid"
)

// Keyword is a case-folded free-text tag. UsageCount counts how many times
// the keyword has been attached to a document; it only ever grows.
type Keyword struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Key        string    `gorm:"not null;uniqueIndex;column:key" json:"key"`
	Slug       string    `gorm:"not null;column:slug" json:"slug"`
	UsageCount int64     `gorm:"not null;default:1;column:usage_count" json:"usage_count"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Keyword) TableName() string { return "keyword" }

type DocumentKeyword struct {
	DocumentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"document_id"`
	KeywordID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"keyword_id"`
	Keyword    *Keyword  `gorm:"constraint:OnDelete:CASCADE;foreignKey:KeywordID;references:ID" json:"keyword,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (DocumentKeyword) TableName() string { return "document_keyword" }
