package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an append-only message addressed to one recipient. The
// recipient is polymorphic: RecipientKind tags which table RecipientID points
// into (user, company or admin), so there is no single foreign key.
type Notification struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID   uuid.UUID `gorm:"type:uuid;not null;index:idx_recipient" json:"recipient_id"`
	RecipientKind string    `gorm:"size:20;not null;index:idx_recipient" json:"recipient_kind"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Link          string    `gorm:"size:255" json:"link"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
