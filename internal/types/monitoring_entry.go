package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckFrequency controls how often a monitoring entry becomes due.
type CheckFrequency string

const (
	FrequencyDaily   CheckFrequency = "daily"
	FrequencyWeekly  CheckFrequency = "weekly"
	FrequencyMonthly CheckFrequency = "monthly"
)

// CitationStatus is deliberately a three-variant enum: an entry that was never
// checked compares unequal to both cited and not_cited, so the first successful
// check becomes the baseline instead of a reported change.
type CitationStatus string

const (
	StatusNeverChecked CitationStatus = "never_checked"
	StatusCited        CitationStatus = "cited"
	StatusNotCited     CitationStatus = "not_cited"
)

func StatusFromCited(cited bool) CitationStatus {
	if cited {
		return StatusCited
	}
	return StatusNotCited
}

type MonitoringEntry struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User               *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Query              string         `gorm:"not null;column:query" json:"query"`
	Domain             string         `gorm:"not null;column:domain" json:"domain"`
	CheckFrequency     CheckFrequency `gorm:"type:varchar(16);not null;default:'daily';column:check_frequency" json:"check_frequency"`
	AlertOnChange      bool           `gorm:"not null;default:true;column:alert_on_change" json:"alert_on_change"`
	IsActive           bool           `gorm:"not null;default:true;index;column:is_active" json:"is_active"`
	LastCheckedAt      *time.Time     `gorm:"column:last_checked_at" json:"last_checked_at,omitempty"`
	LastCitationStatus CitationStatus `gorm:"type:varchar(16);not null;default:'never_checked';column:last_citation_status" json:"last_citation_status"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (MonitoringEntry) TableName() string { return "monitoring_entry" }

func (e *MonitoringEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
