package valueobjects

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusAutoDraft     Status = "auto-draft"
	StatusDraft         Status = "draft"
	StatusPending       Status = "pending"
	StatusActive        Status = "active"
	StatusOnHold        Status = "on-hold"
	StatusPendingCancel Status = "pending-cancel"
	StatusCancelled     Status = "cancelled"
	StatusExpired       Status = "expired"
	StatusSwitched      Status = "switched"
	StatusTrash         Status = "trash"
	StatusDeleted       Status = "deleted"
)

var ValidStatuses = map[Status]bool{
	StatusAutoDraft:     true,
	StatusDraft:         true,
	StatusPending:       true,
	StatusActive:        true,
	StatusOnHold:        true,
	StatusPendingCancel: true,
	StatusCancelled:     true,
	StatusExpired:       true,
	StatusSwitched:      true,
	StatusTrash:         true,
	StatusDeleted:       true,
}

// statusAliases maps external order-status vocabulary onto subscription
// statuses. The mapping is a domain rule, not cosmetics: callers reusing the
// shop's order statuses may request "completed" or "failed" and mean
// activation or suspension.
var statusAliases = map[string]Status{
	"completed": StatusActive,
	"failed":    StatusOnHold,
}

// ParseStatus resolves a raw external status string into the closed enum,
// applying alias mapping and stripping the legacy storage prefix once at the
// boundary.
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.TrimPrefix(normalized, "wc-")

	if normalized == "" {
		return "", fmt.Errorf("subscription status cannot be empty")
	}

	if alias, ok := statusAliases[normalized]; ok {
		return alias, nil
	}

	status := Status(normalized)
	if !ValidStatuses[status] {
		return "", fmt.Errorf("invalid subscription status: %s", value)
	}
	return status, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return ValidStatuses[s]
}

// IsEnded reports whether the status is terminal for billing purposes.
// pending-cancel is deliberately not ended: a prepaid term may still be
// running and the subscription may yet reactivate.
func (s Status) IsEnded() bool {
	switch s {
	case StatusCancelled, StatusExpired, StatusSwitched, StatusTrash:
		return true
	default:
		return false
	}
}

// IsDraftLike reports whether the subscription has not yet entered the
// billing lifecycle.
func (s Status) IsDraftLike() bool {
	return s == StatusAutoDraft || s == StatusDraft
}
