package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	auditDomain "github.com/lodgio/service-booking/internal/domain/audit"
	bookingDomain "github.com/lodgio/service-booking/internal/domain/booking"
	"github.com/lodgio/service-booking/internal/events"
	"github.com/lodgio/service-booking/internal/kafka"
)

// ExpirySweeper periodically flips lapsed holds to expired. Reads already
// treat lapsed holds as non-blocking, so the sweep is reconciliation, not
// correctness: it keeps the stored status truthful and emits the expiry
// audit trail and events.
type ExpirySweeper struct {
	bookings bookingDomain.Repository
	auditLog auditDomain.Repository
	tx       bookingDomain.Transactor
	producer *kafka.Producer
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// NewExpirySweeper creates a new ExpirySweeper.
func NewExpirySweeper(
	bookings bookingDomain.Repository,
	auditLog auditDomain.Repository,
	tx bookingDomain.Transactor,
	producer *kafka.Producer,
	logger *zap.Logger,
	interval time.Duration,
) *ExpirySweeper {
	return &ExpirySweeper{
		bookings: bookings,
		auditLog: auditLog,
		tx:       tx,
		producer: producer,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *ExpirySweeper) WithClock(now func() time.Time) *ExpirySweeper {
	s.now = now
	return s
}

// Run sweeps on a fixed interval until the context is cancelled. One sweep
// runs immediately on start.
func (s *ExpirySweeper) Run(ctx context.Context) {
	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.Sweep(ctx); err != nil {
			s.logger.Error("expiry sweep failed", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("expired lapsed holds", zap.Int("count", n))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep expires every held booking whose hold deadline has passed and
// returns how many were flipped. Each booking is expired in its own
// transaction; one failure is logged and skipped, not fatal to the sweep.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now().UTC()

	held, err := s.bookings.FindHeld(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, bk := range held {
		if !bookingDomain.IsHoldExpired(bk.HoldExpiresAt(), now) {
			continue
		}
		flipped, err := s.expireOne(ctx, bk, now)
		if err != nil {
			s.logger.Error("failed to expire booking",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			continue
		}
		if flipped {
			expired++
			s.publishExpired(ctx, bk, now)
		}
	}
	return expired, nil
}

// expireOne flips a single lapsed hold. The conditional update guards
// against a confirm or cancel that landed between the scan and this write;
// in that case nothing is flipped and no audit record is written.
func (s *ExpirySweeper) expireOne(ctx context.Context, bk *bookingDomain.Booking, now time.Time) (bool, error) {
	var flipped bool
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		flipped, err = s.bookings.MarkExpired(ctx, bk.ID(), now)
		if err != nil || !flipped {
			return err
		}

		// System-created records without a user reference get no audit entry.
		if bk.UserID() == nil {
			return nil
		}

		prev := snapshotOf(bk)
		next := snapshot{Status: string(bookingDomain.StatusExpired), PaymentStatus: prev.PaymentStatus}
		metadata := map[string]interface{}{"system": true, "reason": "hold_timeout"}

		rec, err := auditDomain.NewRecord(nil, auditDomain.ActionBookingExpired, auditDomain.TargetTypeBooking, bk.ID(), prev, next, metadata, now)
		if err != nil {
			return err
		}
		return s.auditLog.Append(ctx, rec)
	})
	return flipped && err == nil, err
}

func (s *ExpirySweeper) publishExpired(ctx context.Context, bk *bookingDomain.Booking, now time.Time) {
	if s.producer == nil {
		return
	}

	evt := events.BookingLifecycleEvent{
		BookingID:       bk.ID(),
		UserID:          bk.UserID(),
		RoomID:          bk.RoomID(),
		HotelID:         bk.HotelID(),
		Status:          string(bookingDomain.StatusExpired),
		CheckIn:         bk.Stay().CheckIn.Format(dateLayout),
		CheckOut:        bk.Stay().CheckOut.Format(dateLayout),
		TotalPriceCents: bk.TotalPriceCents(),
		OccurredAt:      now,
	}

	cloudEvent, err := kafka.NewCloudEvent("service-booking", events.BookingExpired, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", events.BookingExpired),
			zap.Error(err),
		)
	}
}
