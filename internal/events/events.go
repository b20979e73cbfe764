package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics shared across the platform.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types published by this service.
const (
	BookingHeld          = "booking.held"
	BookingConfirmed     = "booking.confirmed"
	BookingCancelled     = "booking.cancelled"
	BookingStatusUpdated = "booking.status_updated"
	BookingExpired       = "booking.expired"
	BookingPaidCash      = "booking.payment.paid_cash"
)

// Payment event types consumed from the payment service.
const (
	PaymentCaptured = "payment.captured"
	PaymentFailed   = "payment.failed"
	PaymentRefunded = "payment.refunded"
)

// BookingLifecycleEvent is published on every booking mutation.
type BookingLifecycleEvent struct {
	BookingID       uuid.UUID  `json:"booking_id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	RoomID          uuid.UUID  `json:"room_id"`
	HotelID         uuid.UUID  `json:"hotel_id"`
	Status          string     `json:"status"`
	CheckIn         string     `json:"check_in"`
	CheckOut        string     `json:"check_out"`
	TotalPriceCents int64      `json:"total_price_cents"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

// PaymentUpdateEvent is the payload of payment.* events.
type PaymentUpdateEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
