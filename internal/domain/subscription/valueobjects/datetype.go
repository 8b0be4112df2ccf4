package valueobjects

import (
	"fmt"
	"strings"
)

type DateType string

const (
	// Stored schedule dates.
	DateStart        DateType = "start"
	DateTrialEnd     DateType = "trial_end"
	DateNextPayment  DateType = "next_payment"
	DateCancelled    DateType = "cancelled"
	DateEnd          DateType = "end"
	DatePaymentRetry DateType = "payment_retry"

	// Derived dates, resolved from related orders at read time.
	DateLastOrderCreated   DateType = "last_order_date_created"
	DateLastOrderPaid      DateType = "last_order_date_paid"
	DateLastOrderCompleted DateType = "last_order_date_completed"
	DatePaid               DateType = "date_paid"
	DateCompleted          DateType = "date_completed"
)

var storedDateTypes = map[DateType]bool{
	DateStart:        true,
	DateTrialEnd:     true,
	DateNextPayment:  true,
	DateCancelled:    true,
	DateEnd:          true,
	DatePaymentRetry: true,
}

var derivedDateTypes = map[DateType]bool{
	DateLastOrderCreated:   true,
	DateLastOrderPaid:      true,
	DateLastOrderCompleted: true,
	DatePaid:               true,
	DateCompleted:          true,
}

// ValidationPriority is the fixed order the date-ordering invariant walks:
// later dates are checked against earlier ones first so violation messages
// name the most significant conflict.
var ValidationPriority = []DateType{DateEnd, DateCancelled, DateNextPayment, DateTrialEnd}

// ParseDateType resolves a raw date-type string, folding the external
// "date_created" vocabulary onto the start date once at the boundary.
func ParseDateType(value string) (DateType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.TrimPrefix(normalized, "schedule_")

	if normalized == "" {
		return "", fmt.Errorf("date type cannot be empty")
	}
	if normalized == "date_created" {
		return DateStart, nil
	}

	dt := DateType(normalized)
	if !storedDateTypes[dt] && !derivedDateTypes[dt] {
		return "", fmt.Errorf("invalid date type: %s", value)
	}
	return dt, nil
}

func (d DateType) String() string {
	return string(d)
}

// IsStored reports whether the date lives on the subscription itself.
func (d DateType) IsStored() bool {
	return storedDateTypes[d]
}

// IsDerived reports whether the date is resolved from related orders and
// therefore read-only on the subscription.
func (d DateType) IsDerived() bool {
	return derivedDateTypes[d]
}

// IsProtectedFromDeletion reports whether the date may never be deleted.
// The start date is the anchor of every schedule calculation; derived dates
// can only change by changing the related order, not the subscription.
func (d DateType) IsProtectedFromDeletion() bool {
	return d == DateStart || d.IsDerived()
}
