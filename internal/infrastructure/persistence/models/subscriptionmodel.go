package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"subcycle/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for subscriptions
// This is the anti-corruption layer between domain and database
type SubscriptionModel struct {
	ID              uint   `gorm:"primarykey"`
	Status          string `gorm:"not null;size:20;index:idx_status"`
	BillingPeriod   string `gorm:"not null;size:10"`
	BillingInterval int    `gorm:"not null;default:1"`
	TotalCents      int64  `gorm:"not null;default:0"`
	SuspensionCount int    `gorm:"not null;default:0"`
	ManualRenewal   bool   `gorm:"not null;default:false"`
	Synced          bool   `gorm:"not null;default:false"`
	ParentOrderID   uint   `gorm:"index:idx_parent_order"`

	// Schedule dates. NULL means the date is not set.
	DateStart        *time.Time `gorm:"index:idx_date_start"`
	DateTrialEnd     *time.Time
	DateNextPayment  *time.Time `gorm:"index:idx_next_payment"`
	DateCancelled    *time.Time
	DateEnd          *time.Time `gorm:"index:idx_date_end"`
	DatePaymentRetry *time.Time

	// Pre-cancellation snapshot for pending-cancel reactivation.
	SnapshotEnd      *time.Time
	SnapshotTrialEnd *time.Time

	Metadata  datatypes.JSON
	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
