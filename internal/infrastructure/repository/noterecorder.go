package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"subcycle/internal/infrastructure/persistence/models"
	"subcycle/internal/shared/logger"
)

// SubscriptionNote is one audit-trail entry.
type SubscriptionNote struct {
	ID        uint      `json:"id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteRecorderImpl persists the subscription audit trail.
type NoteRecorderImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewNoteRecorder(db *gorm.DB, log logger.Interface) *NoteRecorderImpl {
	return &NoteRecorderImpl{
		db:     db,
		logger: log,
	}
}

func (r *NoteRecorderImpl) RecordNote(ctx context.Context, subscriptionID uint, note string) error {
	model := &models.SubscriptionNoteModel{
		SubscriptionID: subscriptionID,
		Note:           note,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record subscription note: %w", err)
	}
	return nil
}

// ListNotes returns the newest notes first.
func (r *NoteRecorderImpl) ListNotes(ctx context.Context, subscriptionID uint, limit int) ([]SubscriptionNote, error) {
	var rows []models.SubscriptionNoteModel

	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription notes: %w", err)
	}

	notes := make([]SubscriptionNote, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, SubscriptionNote{
			ID:        row.ID,
			Note:      row.Note,
			CreatedAt: row.CreatedAt,
		})
	}
	return notes, nil
}
