package models

import (
	"time"

	"subcycle/internal/shared/constants"
)

// SubscriptionOrderModel is the relation ledger row linking a subscription
// to an order under one relation type.
type SubscriptionOrderModel struct {
	ID             uint   `gorm:"primarykey"`
	SubscriptionID uint   `gorm:"not null;uniqueIndex:idx_sub_order_rel,priority:1;index:idx_sub_relation,priority:1"`
	OrderID        uint   `gorm:"not null;uniqueIndex:idx_sub_order_rel,priority:2"`
	Relation       string `gorm:"not null;size:20;uniqueIndex:idx_sub_order_rel,priority:3;index:idx_sub_relation,priority:2"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionOrderModel) TableName() string {
	return constants.TableSubscriptionOrders
}
