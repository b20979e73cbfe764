//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgio/service-booking/internal/apperror"
	"github.com/lodgio/service-booking/internal/application"
	"github.com/lodgio/service-booking/internal/auth"
	bookingEvents "github.com/lodgio/service-booking/internal/events"
)

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

// TestHoldConfirmFlow exercises the full happy path against real PostgreSQL
// and Kafka: hold, confirm, and the lifecycle events both publish.
func TestHoldConfirmFlow(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	hotelID, roomID := uuid.New(), uuid.New()
	seedHotelAndRoom(t, infra.DB, hotelID, roomID, 10000)

	customer := application.Actor{ID: uuid.New(), Role: auth.RoleCustomer}
	ctx := context.Background()

	dto, err := stack.Service.Hold(ctx, customer, application.CreateHoldRequest{
		RoomID:    roomID,
		CheckIn:   futureDate(10),
		CheckOut:  futureDate(12),
		GuestName: "Integration Guest",
	})
	require.NoError(t, err)
	assert.Equal(t, "held", dto.Status)
	assert.Equal(t, int64(20000), dto.TotalPriceCents)

	ce := consumeOneEvent(t, infra.KafkaBrokers, bookingEvents.TopicBookingEvents,
		bookingEvents.BookingHeld, 15*time.Second)
	var held bookingEvents.BookingLifecycleEvent
	require.NoError(t, ce.ParseData(&held))
	assert.Equal(t, dto.ID, held.BookingID)

	require.NoError(t, stack.Service.Confirm(ctx, customer, dto.ID))

	got, err := stack.Service.GetBooking(ctx, customer, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)
	assert.Nil(t, got.HoldExpiresAt)

	consumeOneEvent(t, infra.KafkaBrokers, bookingEvents.TopicBookingEvents,
		bookingEvents.BookingConfirmed, 15*time.Second)
}

// TestConcurrentHolds_NoDoubleBooking fires overlapping hold attempts at the
// same room in parallel and asserts exactly one wins. The room row lock
// serializes the overlap check against the insert.
func TestConcurrentHolds_NoDoubleBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	hotelID, roomID := uuid.New(), uuid.New()
	seedHotelAndRoom(t, infra.DB, hotelID, roomID, 10000)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			customer := application.Actor{ID: uuid.New(), Role: auth.RoleCustomer}
			_, errs[i] = stack.Service.Hold(context.Background(), customer, application.CreateHoldRequest{
				RoomID:   roomID,
				CheckIn:  futureDate(10),
				CheckOut: futureDate(12),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent hold must win")
}

// TestPaymentCaptured_MarksBookingPaid verifies that a payment.captured event
// on payment.events flows through the consumer onto the booking.
func TestPaymentCaptured_MarksBookingPaid(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	hotelID, roomID := uuid.New(), uuid.New()
	seedHotelAndRoom(t, infra.DB, hotelID, roomID, 10000)

	customer := application.Actor{ID: uuid.New(), Role: auth.RoleCustomer}
	ctx := context.Background()

	dto, err := stack.Service.Hold(ctx, customer, application.CreateHoldRequest{
		RoomID: roomID, CheckIn: futureDate(10), CheckOut: futureDate(12),
	})
	require.NoError(t, err)
	require.NoError(t, stack.Service.Confirm(ctx, customer, dto.ID))

	consumerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(consumerCtx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := bookingEvents.PaymentUpdateEvent{
		PaymentID:  uuid.New(),
		BookingID:  dto.ID,
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicPaymentEvents,
		"service-payment", bookingEvents.PaymentCaptured, evt)

	model := waitForPaymentStatus(t, infra.DB, dto.ID, "paid", 15*time.Second)
	assert.Equal(t, "confirmed", model.Status, "payment axis must not change the lifecycle status")
}

// TestSweeperExpiresLapsedHolds verifies lazy expiry end to end: a lapsed
// hold stops blocking new bookings immediately, and the sweep makes the
// stored status truthful and emits the expiry event.
func TestSweeperExpiresLapsedHolds(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	hotelID, roomID := uuid.New(), uuid.New()
	seedHotelAndRoom(t, infra.DB, hotelID, roomID, 10000)

	customer := application.Actor{ID: uuid.New(), Role: auth.RoleCustomer}
	ctx := context.Background()

	stale, err := stack.Service.Hold(ctx, customer, application.CreateHoldRequest{
		RoomID: roomID, CheckIn: futureDate(10), CheckOut: futureDate(12),
	})
	require.NoError(t, err)
	expireHold(t, infra.DB, stale.ID)

	// The lapsed hold no longer blocks, even before the sweep runs.
	avail, err := stack.Service.CheckRoomAvailability(ctx, roomID, futureDate(10), futureDate(12))
	require.NoError(t, err)
	assert.True(t, avail.Available)

	n, err := stack.Sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := stack.Service.GetBooking(ctx, customer, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Status)

	consumeOneEvent(t, infra.KafkaBrokers, bookingEvents.TopicBookingEvents,
		bookingEvents.BookingExpired, 15*time.Second)

	// Once swept, the booking is expired rather than a lapsed hold, so a
	// confirm fails the status precondition instead of the hold clock.
	err = stack.Service.Confirm(ctx, customer, stale.ID)
	assert.Equal(t, apperror.CodeInvalidState, apperror.CodeOf(err))
}
