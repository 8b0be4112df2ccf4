// Package order holds the narrow read model the billing engine needs from
// the external order system, plus the related-order ledger query. Orders are
// referenced, never owned: creation, totals and refunds live elsewhere.
package order

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusOnHold     Status = "on-hold"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

var ValidStatuses = map[Status]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusOnHold:     true,
	StatusCompleted:  true,
	StatusFailed:     true,
	StatusCancelled:  true,
	StatusRefunded:   true,
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus resolves a raw order status string, stripping the legacy
// storage prefix at the boundary.
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.TrimPrefix(normalized, "wc-")

	status := Status(normalized)
	if !ValidStatuses[status] {
		return "", fmt.Errorf("invalid order status: %s", value)
	}
	return status, nil
}

// Order is the engine's view of an external order. Only the fields the
// engine asks about are modeled.
type Order struct {
	id            uint
	status        Status
	totalCents    int64
	dateCreated   time.Time
	datePaid      time.Time
	dateCompleted time.Time
}

// ReconstructOrder builds an Order from external storage.
func ReconstructOrder(id uint, status Status, totalCents int64, dateCreated, datePaid, dateCompleted time.Time) *Order {
	return &Order{
		id:            id,
		status:        status,
		totalCents:    totalCents,
		dateCreated:   dateCreated,
		datePaid:      datePaid,
		dateCompleted: dateCompleted,
	}
}

func (o *Order) ID() uint {
	return o.id
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) TotalCents() int64 {
	return o.totalCents
}

func (o *Order) DateCreated() time.Time {
	return o.dateCreated
}

func (o *Order) DatePaid() time.Time {
	return o.datePaid
}

func (o *Order) DateCompleted() time.Time {
	return o.dateCompleted
}

// IsPaid reports whether a payment has been recorded against the order.
func (o *Order) IsPaid() bool {
	return !o.datePaid.IsZero()
}

// NeedsPayment reports whether the order is still awaiting payment.
func (o *Order) NeedsPayment() bool {
	return (o.status == StatusPending || o.status == StatusFailed) && o.totalCents > 0
}
