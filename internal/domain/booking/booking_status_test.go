package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusHeld, StatusConfirmed},
		{StatusHeld, StatusCancelled},
		{StatusConfirmed, StatusCheckedIn},
		{StatusConfirmed, StatusCancelled},
		{StatusCheckedIn, StatusCheckedOut},
	}

	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	// Everything not in the table is forbidden, including backward moves,
	// self-transitions and any move out of a terminal state.
	all := []Status{StatusHeld, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusExpired}
	allowedSet := map[[2]Status]bool{}
	for _, tc := range allowed {
		allowedSet[[2]Status{tc.from, tc.to}] = true
	}

	for _, from := range all {
		for _, to := range all {
			if allowedSet[[2]Status{from, to}] {
				continue
			}
			assert.False(t, from.CanTransitionTo(to), "%s -> %s should be forbidden", from, to)
		}
	}
}

func TestStatusExpiredIsNotReachableViaTable(t *testing.T) {
	// Expiry is a system transition performed by the sweeper, never a
	// caller-requested one.
	for _, from := range []Status{StatusHeld, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled} {
		assert.False(t, from.CanTransitionTo(StatusExpired), "%s -> expired must not be in the table", from)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusHeld.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusCheckedIn.IsTerminal())
	assert.True(t, StatusCheckedOut.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("checked_in")
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, got)

	_, err = ParseStatus("on_hold")
	assert.Error(t, err)
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus("refunded")
	require.NoError(t, err)
	assert.Equal(t, PaymentRefunded, got)

	_, err = ParsePaymentStatus("settled")
	assert.Error(t, err)
}
