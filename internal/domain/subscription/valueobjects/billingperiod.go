package valueobjects

import (
	"fmt"
	"strings"
	"time"
)

type BillingPeriod string

const (
	PeriodDay   BillingPeriod = "day"
	PeriodWeek  BillingPeriod = "week"
	PeriodMonth BillingPeriod = "month"
	PeriodYear  BillingPeriod = "year"
)

var ValidBillingPeriods = map[BillingPeriod]bool{
	PeriodDay:   true,
	PeriodWeek:  true,
	PeriodMonth: true,
	PeriodYear:  true,
}

func ParseBillingPeriod(value string) (BillingPeriod, error) {
	period := BillingPeriod(strings.ToLower(strings.TrimSpace(value)))

	if period == "" {
		return "", fmt.Errorf("billing period cannot be empty")
	}
	if !ValidBillingPeriods[period] {
		return "", fmt.Errorf("invalid billing period: %s", value)
	}
	return period, nil
}

func (p BillingPeriod) String() string {
	return string(p)
}

func (p BillingPeriod) IsValid() bool {
	return ValidBillingPeriods[p]
}

// Add advances from by interval billing periods. Day and week are pure
// duration addition. Month and year preserve day-of-month intent with
// end-of-month clamping: Jan 31 + 1 month lands on Feb 28/29, never Mar 2.
func (p BillingPeriod) Add(interval int, from time.Time) time.Time {
	if interval < 1 {
		interval = 1
	}

	switch p {
	case PeriodDay:
		return from.Add(time.Duration(interval) * 24 * time.Hour)
	case PeriodWeek:
		return from.Add(time.Duration(interval) * 7 * 24 * time.Hour)
	case PeriodMonth:
		return addMonthsClamped(from, interval)
	case PeriodYear:
		// Years go through the month path so Feb 29 anniversaries clamp
		// to Feb 28 in non-leap years.
		return addMonthsClamped(from, 12*interval)
	default:
		return from
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()

	// Anchor on the first of the month so AddDate cannot overflow into the
	// month after the target one.
	target := time.Date(year, month, 1, hour, minute, second, t.Nanosecond(), t.Location()).AddDate(0, months, 0)

	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, hour, minute, second, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
