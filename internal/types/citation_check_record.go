package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnswerEngine is one answer-generation backend checked for citations.
type AnswerEngine string

const (
	EngineChatGPT    AnswerEngine = "chatgpt"
	EnginePerplexity AnswerEngine = "perplexity"
)

type CitedSource struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// CitationCheckRecord is one immutable observation. Rows are only ever
// inserted; the stats aggregator reads them back as the system of record.
type CitationCheckRecord struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Query           string         `gorm:"not null;column:query" json:"query"`
	Domain          string         `gorm:"not null;column:domain" json:"domain"`
	Engine          AnswerEngine   `gorm:"type:varchar(32);not null;index;column:engine" json:"engine"`
	IsCited         bool           `gorm:"not null;column:is_cited" json:"is_cited"`
	AnswerText      string         `gorm:"type:text;column:answer_text" json:"answer_text"`
	CitedSources    datatypes.JSON `gorm:"type:jsonb;column:cited_sources" json:"cited_sources"`
	Recommendations string         `gorm:"type:text;column:recommendations" json:"recommendations"`
	CheckedAt       time.Time      `gorm:"not null;index;column:checked_at" json:"checked_at"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

func (CitationCheckRecord) TableName() string { return "citation_check_record" }

func (r *CitationCheckRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
