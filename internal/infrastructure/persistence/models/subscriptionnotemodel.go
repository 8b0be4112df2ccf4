package models

import (
	"time"

	"subcycle/internal/shared/constants"
)

// SubscriptionNoteModel is one audit-trail entry for a subscription.
type SubscriptionNoteModel struct {
	ID             uint   `gorm:"primarykey"`
	SubscriptionID uint   `gorm:"not null;index:idx_note_subscription"`
	Note           string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionNoteModel) TableName() string {
	return constants.TableSubscriptionNotes
}
