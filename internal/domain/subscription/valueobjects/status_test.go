package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus_Aliases(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"active", StatusActive},
		{"completed", StatusActive},
		{"failed", StatusOnHold},
		{"wc-active", StatusActive},
		{"wc-completed", StatusActive},
		{"wc-pending-cancel", StatusPendingCancel},
		{"  Cancelled  ", StatusCancelled},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	for _, input := range []string{"", "wc-", "bogus", "completedd"} {
		_, err := ParseStatus(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestStatusIsEnded(t *testing.T) {
	ended := []Status{StatusCancelled, StatusExpired, StatusSwitched, StatusTrash}
	for _, s := range ended {
		assert.True(t, s.IsEnded(), "status %s", s)
	}

	notEnded := []Status{StatusPending, StatusActive, StatusOnHold, StatusPendingCancel, StatusDraft}
	for _, s := range notEnded {
		assert.False(t, s.IsEnded(), "status %s", s)
	}
}
