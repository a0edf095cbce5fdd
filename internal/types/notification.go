package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const NotificationTypeCitationChange = "citation_change"

type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Type      string         `gorm:"not null;index;column:type" json:"type"`
	Title     string         `gorm:"not null;column:title" json:"title"`
	Message   string         `gorm:"type:text;not null;column:message" json:"message"`
	Data      datatypes.JSON `gorm:"type:jsonb;column:data" json:"data"`
	Read      bool           `gorm:"not null;default:false;index;column:read" json:"read"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
