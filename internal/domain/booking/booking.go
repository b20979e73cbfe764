package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/lodgio/service-booking/internal/apperror"
)

// GuestInfo is free-text contact data captured at hold time.
type GuestInfo struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	SpecialRequests string `json:"special_requests"`
}

// Booking is the aggregate root for the booking domain. Prices are
// snapshotted from the room at hold time and never recomputed, protecting
// guests from mid-stay price changes.
type Booking struct {
	id      uuid.UUID
	userID  *uuid.UUID
	roomID  uuid.UUID
	hotelID uuid.UUID

	stay   StayRange
	nights int

	status        Status
	holdExpiresAt *time.Time
	paymentStatus *PaymentStatus

	pricePerNightCents int64
	totalPriceCents    int64

	guest        GuestInfo
	cancelReason string
	cancelledAt  *time.Time

	updatedBy *uuid.UUID
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewHold creates a booking in the held state with the hold clock started at
// now. Date and conflict validation happen in the application service; this
// constructor guards the aggregate's own invariants.
func NewHold(
	userID uuid.UUID,
	roomID, hotelID uuid.UUID,
	stay StayRange,
	nights int,
	pricePerNightCents int64,
	guest GuestInfo,
	now time.Time,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, apperror.InvalidInput("user ID is required")
	}
	if roomID == uuid.Nil {
		return nil, apperror.InvalidInput("room ID is required")
	}
	if hotelID == uuid.Nil {
		return nil, apperror.InvalidInput("hotel ID is required")
	}
	if !stay.CheckOut.After(stay.CheckIn) {
		return nil, apperror.InvalidInput("check-out date must be after check-in date")
	}
	if nights <= 0 {
		return nil, apperror.InvalidInput("stay must cover at least one night")
	}
	if pricePerNightCents <= 0 {
		return nil, apperror.InvalidInput("price per night must be positive")
	}

	expiresAt := HoldExpiration(now)
	uid := userID
	return &Booking{
		id:                 uuid.New(),
		userID:             &uid,
		roomID:             roomID,
		hotelID:            hotelID,
		stay:               stay,
		nights:             nights,
		status:             StatusHeld,
		holdExpiresAt:      &expiresAt,
		pricePerNightCents: pricePerNightCents,
		totalPriceCents:    pricePerNightCents * int64(nights),
		guest:              guest,
		updatedBy:          &uid,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	userID *uuid.UUID,
	roomID, hotelID uuid.UUID,
	stay StayRange,
	nights int,
	status Status,
	holdExpiresAt *time.Time,
	paymentStatus *PaymentStatus,
	pricePerNightCents, totalPriceCents int64,
	guest GuestInfo,
	cancelReason string,
	cancelledAt *time.Time,
	updatedBy *uuid.UUID,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		userID:             userID,
		roomID:             roomID,
		hotelID:            hotelID,
		stay:               stay,
		nights:             nights,
		status:             status,
		holdExpiresAt:      holdExpiresAt,
		paymentStatus:      paymentStatus,
		pricePerNightCents: pricePerNightCents,
		totalPriceCents:    totalPriceCents,
		guest:              guest,
		cancelReason:       cancelReason,
		cancelledAt:        cancelledAt,
		updatedBy:          updatedBy,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// UserID returns the customer who booked, or nil for system-created records.
func (b *Booking) UserID() *uuid.UUID { return b.userID }

// RoomID returns the booked room's identifier.
func (b *Booking) RoomID() uuid.UUID { return b.roomID }

// HotelID returns the identifier of the hotel owning the room.
func (b *Booking) HotelID() uuid.UUID { return b.hotelID }

// Stay returns the half-open [check-in, check-out) range.
func (b *Booking) Stay() StayRange { return b.stay }

// Nights returns the night count captured at hold time.
func (b *Booking) Nights() int { return b.nights }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// HoldExpiresAt returns the hold expiry, or nil once confirmed or terminal.
func (b *Booking) HoldExpiresAt() *time.Time { return b.holdExpiresAt }

// PaymentStatus returns the payment status, or nil if none was set yet.
func (b *Booking) PaymentStatus() *PaymentStatus { return b.paymentStatus }

// PricePerNightCents returns the nightly price snapshotted at hold time.
func (b *Booking) PricePerNightCents() int64 { return b.pricePerNightCents }

// TotalPriceCents returns the total stay price snapshotted at hold time.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Guest returns the guest contact details.
func (b *Booking) Guest() GuestInfo { return b.guest }

// CancelReason returns the cancellation reason, if any.
func (b *Booking) CancelReason() string { return b.cancelReason }

// CancelledAt returns the time the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// UpdatedBy returns the actor of the last mutation, or nil for the system.
func (b *Booking) UpdatedBy() *uuid.UUID { return b.updatedBy }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the booking belongs to the given customer.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID != nil && *b.userID == userID
}

// IsHoldLapsed reports whether the booking is a hold whose expiry has passed,
// independent of whether the sweeper has durably marked it expired yet.
func (b *Booking) IsHoldLapsed(now time.Time) bool {
	return b.status == StatusHeld && IsHoldExpired(b.holdExpiresAt, now)
}

// BlocksRange reports whether this booking makes the room unavailable for the
// requested range at the given instant. Terminal bookings and lapsed holds
// never block.
func (b *Booking) BlocksRange(requested StayRange, now time.Time) bool {
	if b.status.IsTerminal() {
		return false
	}
	if b.IsHoldLapsed(now) {
		return false
	}
	return RangesOverlap(requested, b.stay)
}

// Confirm transitions a held booking to confirmed on behalf of its owner,
// re-checking the hold clock. A lapsed hold fails with EXPIRED rather than
// INVALID_STATE so clients can prompt a rebook.
func (b *Booking) Confirm(actorID uuid.UUID, now time.Time) error {
	if b.status != StatusHeld {
		return apperror.InvalidState(string(b.status), string(StatusConfirmed))
	}
	if IsHoldExpired(b.holdExpiresAt, now) {
		return apperror.Expired("hold has expired, please create a new booking")
	}
	b.applyConfirmed(actorID, now)
	return nil
}

// TransitionTo applies a staff-requested status change validated against the
// transition table. It does not re-check hold expiry on held->confirmed: staff
// may deliberately confirm a lapsed hold at the front desk. Same-status
// requests are the caller's no-op to detect.
func (b *Booking) TransitionTo(next Status, actorID uuid.UUID, now time.Time) error {
	if !b.status.CanTransitionTo(next) {
		return apperror.InvalidState(string(b.status), string(next))
	}

	switch next {
	case StatusConfirmed:
		b.applyConfirmed(actorID, now)
	case StatusCancelled:
		b.applyCancelled(actorID, "", now)
	default:
		b.status = next
		b.touch(actorID, now)
	}
	return nil
}

// Cancel moves the booking to cancelled. Callers handle the idempotent cases
// (already cancelled or expired) before invoking this; a checked-out booking
// cannot be cancelled at all.
func (b *Booking) Cancel(actorID uuid.UUID, reason string, now time.Time) error {
	if b.status == StatusCheckedOut {
		return apperror.InvalidStateAction("cannot cancel a checked-out booking")
	}
	b.applyCancelled(actorID, reason, now)
	return nil
}

// Expire marks a lapsed hold as expired. Only held bookings can expire.
func (b *Booking) Expire(now time.Time) error {
	if b.status != StatusHeld {
		return apperror.InvalidState(string(b.status), string(StatusExpired))
	}
	b.status = StatusExpired
	b.holdExpiresAt = nil
	b.updatedBy = nil
	b.version++
	b.updatedAt = now
	return nil
}

// MarkCashPaid records a cash payment taken at the desk. Callers handle the
// already-paid no-op; cancelled and expired bookings cannot be paid.
func (b *Booking) MarkCashPaid(actorID uuid.UUID, now time.Time) error {
	if b.status == StatusCancelled || b.status == StatusExpired {
		return apperror.InvalidStateAction("cannot accept payment for a " + string(b.status) + " booking")
	}
	paid := PaymentPaid
	b.paymentStatus = &paid
	b.touch(actorID, now)
	return nil
}

// SetPaymentStatus records a payment-axis change reported by the payment
// collaborator (captured, failed, refunded).
func (b *Booking) SetPaymentStatus(status PaymentStatus, now time.Time) {
	b.paymentStatus = &status
	b.updatedBy = nil
	b.version++
	b.updatedAt = now
}

func (b *Booking) applyConfirmed(actorID uuid.UUID, now time.Time) {
	b.status = StatusConfirmed
	b.holdExpiresAt = nil
	if b.paymentStatus == nil {
		pending := PaymentPending
		b.paymentStatus = &pending
	}
	b.touch(actorID, now)
}

func (b *Booking) applyCancelled(actorID uuid.UUID, reason string, now time.Time) {
	b.status = StatusCancelled
	b.holdExpiresAt = nil
	b.cancelReason = reason
	b.cancelledAt = &now
	b.touch(actorID, now)
}

func (b *Booking) touch(actorID uuid.UUID, now time.Time) {
	actor := actorID
	b.updatedBy = &actor
	b.version++
	b.updatedAt = now
}
