package models

import (
	"time"

	"subcycle/internal/shared/constants"
)

// OrderModel represents the database persistence model for orders.
type OrderModel struct {
	ID            uint   `gorm:"primarykey"`
	Status        string `gorm:"not null;size:20;index:idx_order_status"`
	TotalCents    int64  `gorm:"not null;default:0"`
	TransactionID string `gorm:"size:100"`
	DateCreated   time.Time
	DatePaid      *time.Time
	DateCompleted *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (OrderModel) TableName() string {
	return constants.TableOrders
}
