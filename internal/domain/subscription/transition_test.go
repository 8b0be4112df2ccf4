package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	vo "subcycle/internal/domain/subscription/valueobjects"
)

func fullCapabilities(now time.Time) TransitionFacts {
	return TransitionFacts{
		SupportsSuspension:        true,
		SupportsReactivation:      true,
		SupportsCancellation:      true,
		SupportsDateChanges:       true,
		SupportsScheduledPayments: true,
		Now:                       now,
	}
}

func TestCanTransition_Table(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	full := fullCapabilities(now)

	noCancellation := full
	noCancellation.SupportsCancellation = false

	noSuspension := full
	noSuspension.SupportsSuspension = false

	needsPayment := full
	needsPayment.NeedsPayment = true

	tests := []struct {
		name    string
		from    vo.Status
		to      vo.Status
		facts   TransitionFacts
		allowed bool
	}{
		{"same status", vo.StatusActive, vo.StatusActive, full, false},

		{"draft to pending", vo.StatusDraft, vo.StatusPending, full, true},
		{"auto-draft to pending", vo.StatusAutoDraft, vo.StatusPending, full, true},
		{"active to pending", vo.StatusActive, vo.StatusPending, full, false},

		{"pending to active", vo.StatusPending, vo.StatusActive, full, true},
		{"on-hold reactivates", vo.StatusOnHold, vo.StatusActive, full, true},
		{"on-hold without reactivation support", vo.StatusOnHold, vo.StatusActive,
			TransitionFacts{SupportsReactivation: false, Now: now}, false},
		{"cancelled to active", vo.StatusCancelled, vo.StatusActive, full, false},

		{"active suspends", vo.StatusActive, vo.StatusOnHold, full, true},
		{"pending suspends", vo.StatusPending, vo.StatusOnHold, full, true},
		{"active suspends without support", vo.StatusActive, vo.StatusOnHold, noSuspension, false},
		{"expired suspends", vo.StatusExpired, vo.StatusOnHold, full, false},

		{"active cancels", vo.StatusActive, vo.StatusCancelled, full, true},
		{"on-hold cancels", vo.StatusOnHold, vo.StatusCancelled, full, true},
		{"pending-cancel cancels", vo.StatusPendingCancel, vo.StatusCancelled, full, true},
		{"expired cancels", vo.StatusExpired, vo.StatusCancelled, full, false},
		{"active cancels without support", vo.StatusActive, vo.StatusCancelled, noCancellation, false},

		{"active to pending-cancel", vo.StatusActive, vo.StatusPendingCancel, full, true},
		{"on-hold to pending-cancel paid up", vo.StatusOnHold, vo.StatusPendingCancel, full, true},
		{"on-hold to pending-cancel owing money", vo.StatusOnHold, vo.StatusPendingCancel, needsPayment, false},
		{"cancelled to pending-cancel paid up", vo.StatusCancelled, vo.StatusPendingCancel, full, true},
		{"pending to pending-cancel", vo.StatusPending, vo.StatusPendingCancel, full, false},

		{"active expires", vo.StatusActive, vo.StatusExpired, full, true},
		{"pending-cancel expires", vo.StatusPendingCancel, vo.StatusExpired, full, true},
		{"cancelled expires", vo.StatusCancelled, vo.StatusExpired, full, false},
		{"switched expires", vo.StatusSwitched, vo.StatusExpired, full, false},
		{"trash expires", vo.StatusTrash, vo.StatusExpired, full, false},

		{"cancelled to trash", vo.StatusCancelled, vo.StatusTrash, full, true},
		{"expired to trash", vo.StatusExpired, vo.StatusTrash, full, true},
		{"active to trash", vo.StatusActive, vo.StatusTrash, full, true},
		{"active to trash without cancellation", vo.StatusActive, vo.StatusTrash, noCancellation, false},

		{"trash to deleted", vo.StatusTrash, vo.StatusDeleted, full, true},
		{"active to deleted", vo.StatusActive, vo.StatusDeleted, full, false},

		{"anything to switched", vo.StatusActive, vo.StatusSwitched, full, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to, tt.facts))
		})
	}
}

func TestCanTransition_PendingCancelReactivation(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("manual with future end", func(t *testing.T) {
		f := fullCapabilities(now)
		f.IsManual = true
		f.EndTime = now.Add(48 * time.Hour)
		assert.True(t, CanTransition(vo.StatusPendingCancel, vo.StatusActive, f))
	})

	t.Run("expired prepaid term", func(t *testing.T) {
		f := fullCapabilities(now)
		f.IsManual = true
		f.EndTime = now.Add(-time.Hour)
		assert.False(t, CanTransition(vo.StatusPendingCancel, vo.StatusActive, f))
	})

	t.Run("no end date recorded", func(t *testing.T) {
		f := fullCapabilities(now)
		f.IsManual = true
		assert.False(t, CanTransition(vo.StatusPendingCancel, vo.StatusActive, f))
	})

	t.Run("automatic gateway that accepts date changes", func(t *testing.T) {
		f := fullCapabilities(now)
		f.EndTime = now.Add(48 * time.Hour)
		f.SupportsScheduledPayments = false
		assert.True(t, CanTransition(vo.StatusPendingCancel, vo.StatusActive, f))
	})

	t.Run("gateway on its own payment schedule", func(t *testing.T) {
		f := fullCapabilities(now)
		f.EndTime = now.Add(48 * time.Hour)
		// Scheduled payments mean the gateway will not honor a rebuilt
		// schedule, and manual renewal is off.
		assert.False(t, CanTransition(vo.StatusPendingCancel, vo.StatusActive, f))
	})
}
