package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateType(t *testing.T) {
	tests := []struct {
		input string
		want  DateType
	}{
		{"start", DateStart},
		{"date_created", DateStart},
		{"schedule_next_payment", DateNextPayment},
		{"schedule_trial_end", DateTrialEnd},
		{"  End  ", DateEnd},
		{"last_order_date_created", DateLastOrderCreated},
	}

	for _, tt := range tests {
		got, err := ParseDateType(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseDateType_Invalid(t *testing.T) {
	for _, input := range []string{"", "schedule_", "renewal", "start_date"} {
		_, err := ParseDateType(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestDateTypeProtection(t *testing.T) {
	assert.True(t, DateStart.IsProtectedFromDeletion())
	assert.True(t, DateLastOrderPaid.IsProtectedFromDeletion())
	assert.True(t, DatePaid.IsProtectedFromDeletion())

	assert.False(t, DateNextPayment.IsProtectedFromDeletion())
	assert.False(t, DateTrialEnd.IsProtectedFromDeletion())
	assert.False(t, DateEnd.IsProtectedFromDeletion())
	assert.False(t, DateCancelled.IsProtectedFromDeletion())
}

func TestDateTypeStoredVsDerived(t *testing.T) {
	for _, dt := range []DateType{DateStart, DateTrialEnd, DateNextPayment, DateCancelled, DateEnd, DatePaymentRetry} {
		assert.True(t, dt.IsStored(), "date %s", dt)
		assert.False(t, dt.IsDerived(), "date %s", dt)
	}
	for _, dt := range []DateType{DateLastOrderCreated, DateLastOrderPaid, DateLastOrderCompleted, DatePaid, DateCompleted} {
		assert.True(t, dt.IsDerived(), "date %s", dt)
		assert.False(t, dt.IsStored(), "date %s", dt)
	}
}
