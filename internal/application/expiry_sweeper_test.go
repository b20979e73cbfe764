package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditDomain "github.com/lodgio/service-booking/internal/domain/audit"
	bookingDomain "github.com/lodgio/service-booking/internal/domain/booking"
)

func newSweeper(f *fixture) *ExpirySweeper {
	return NewExpirySweeper(f.repo, f.audit, fakeTransactor{}, nil, zap.NewNop(), time.Minute).
		WithClock(func() time.Time { return f.clock })
}

func TestSweep(t *testing.T) {
	t.Run("expires only lapsed holds", func(t *testing.T) {
		f := newFixture(t)

		stale := f.hold(t, "2024-03-01", "2024-03-03")
		f.advance(10 * time.Minute)
		fresh := f.hold(t, "2024-03-10", "2024-03-12")

		// The first hold is now 16 minutes old, the second only 6.
		f.advance(6 * time.Minute)

		n, err := newSweeper(f).Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := f.svc.GetBooking(context.Background(), f.admin, stale.ID)
		require.NoError(t, err)
		assert.Equal(t, "expired", got.Status)
		assert.Nil(t, got.HoldExpiresAt)

		got, err = f.svc.GetBooking(context.Background(), f.admin, fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, "held", got.Status)
	})

	t.Run("writes one audit record per expiry with system metadata", func(t *testing.T) {
		f := newFixture(t)
		f.hold(t, "2024-03-01", "2024-03-03")
		f.advance(20 * time.Minute)

		n, err := newSweeper(f).Sweep(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, n)

		recs := f.audit.byAction(auditDomain.ActionBookingExpired)
		require.Len(t, recs, 1)
		assert.Nil(t, recs[0].ActorID)
		assert.JSONEq(t, `{"system": true, "reason": "hold_timeout"}`, string(recs[0].Metadata))
	})

	t.Run("empty sweep returns zero", func(t *testing.T) {
		f := newFixture(t)
		f.hold(t, "2024-03-01", "2024-03-03")

		n, err := newSweeper(f).Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("repeated sweeps do not double-expire", func(t *testing.T) {
		f := newFixture(t)
		f.hold(t, "2024-03-01", "2024-03-03")
		f.advance(20 * time.Minute)

		sw := newSweeper(f)

		n, err := sw.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = sw.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		assert.Len(t, f.audit.byAction(auditDomain.ActionBookingExpired), 1)
	})

	t.Run("skips a hold confirmed between scan and write", func(t *testing.T) {
		f := newFixture(t)
		dto := f.hold(t, "2024-03-01", "2024-03-03")
		f.advance(20 * time.Minute)

		// Simulate a staff force-confirm racing the sweep: by the time the
		// sweeper writes, the booking is no longer held.
		require.NoError(t, f.svc.UpdateStatus(context.Background(), f.staff, dto.ID, bookingDomain.StatusConfirmed))

		n, err := newSweeper(f).Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Empty(t, f.audit.byAction(auditDomain.ActionBookingExpired))
	})
}
