package subscription

import (
	"time"

	vo "subcycle/internal/domain/subscription/valueobjects"
)

// TransitionFacts are the subscription facts the status guard decides on.
// Gateway capability flags come from the capability resolver; the rest from
// the subscription itself.
type TransitionFacts struct {
	SupportsSuspension        bool
	SupportsReactivation      bool
	SupportsCancellation      bool
	SupportsDateChanges       bool
	SupportsScheduledPayments bool
	IsManual                  bool
	NeedsPayment              bool
	EndTime                   time.Time // zero when no end date is set
	Now                       time.Time
}

// CanTransition decides whether a subscription may move from current to
// requested. Pure and table-driven: an expected "no" is false, never an
// error. Unknown targets are not allowed.
func CanTransition(current, requested vo.Status, f TransitionFacts) bool {
	if current == requested {
		return false
	}

	switch requested {
	case vo.StatusPending:
		return current.IsDraftLike()

	case vo.StatusActive:
		if f.SupportsReactivation && current == vo.StatusOnHold {
			return true
		}
		if current == vo.StatusPending {
			return true
		}
		// Reactivating out of pending-cancel needs an unexpired prepaid
		// term plus either manual renewal or a gateway that can take new
		// schedule dates despite not billing on its own schedule.
		if current == vo.StatusPendingCancel && f.EndTime.After(f.Now) {
			return f.IsManual || (!f.SupportsScheduledPayments && f.SupportsDateChanges && f.SupportsReactivation)
		}
		return false

	case vo.StatusOnHold:
		return f.SupportsSuspension && (current == vo.StatusActive || current == vo.StatusPending)

	case vo.StatusCancelled:
		return f.SupportsCancellation && (current == vo.StatusPendingCancel || !current.IsEnded())

	case vo.StatusPendingCancel:
		if !f.SupportsCancellation {
			return false
		}
		if current == vo.StatusActive {
			return true
		}
		return !f.NeedsPayment && (current == vo.StatusCancelled || current == vo.StatusOnHold)

	case vo.StatusExpired:
		return current != vo.StatusCancelled && current != vo.StatusTrash && current != vo.StatusSwitched

	case vo.StatusTrash:
		return current.IsEnded() || CanTransition(current, vo.StatusCancelled, f)

	case vo.StatusDeleted:
		return current == vo.StatusTrash

	default:
		return false
	}
}
