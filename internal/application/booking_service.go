package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lodgio/service-booking/internal/apperror"
	"github.com/lodgio/service-booking/internal/auth"
	auditDomain "github.com/lodgio/service-booking/internal/domain/audit"
	bookingDomain "github.com/lodgio/service-booking/internal/domain/booking"
	hotelDomain "github.com/lodgio/service-booking/internal/domain/hotel"
	roomDomain "github.com/lodgio/service-booking/internal/domain/room"
	"github.com/lodgio/service-booking/internal/events"
	"github.com/lodgio/service-booking/internal/kafka"
)

const dateLayout = "2006-01-02"

// Actor is the authenticated caller resolved by the auth middleware.
type Actor struct {
	ID   uuid.UUID
	Role auth.Role
}

// IsAdmin reports whether the actor has universal hotel access.
func (a Actor) IsAdmin() bool { return a.Role == auth.RoleAdmin }

// CreateHoldRequest holds the data needed to place a hold on a room.
type CreateHoldRequest struct {
	RoomID          uuid.UUID `json:"room_id" binding:"required"`
	CheckIn         string    `json:"check_in" binding:"required"`
	CheckOut        string    `json:"check_out" binding:"required"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email"`
	SpecialRequests string    `json:"special_requests"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             *uuid.UUID `json:"user_id,omitempty"`
	RoomID             uuid.UUID  `json:"room_id"`
	HotelID            uuid.UUID  `json:"hotel_id"`
	CheckIn            string     `json:"check_in"`
	CheckOut           string     `json:"check_out"`
	Nights             int        `json:"nights"`
	Status             string     `json:"status"`
	HoldExpiresAt      *time.Time `json:"hold_expires_at,omitempty"`
	PaymentStatus      *string    `json:"payment_status,omitempty"`
	PricePerNightCents int64      `json:"price_per_night_cents"`
	TotalPriceCents    int64      `json:"total_price_cents"`
	GuestName          string     `json:"guest_name,omitempty"`
	GuestEmail         string     `json:"guest_email,omitempty"`
	SpecialRequests    string     `json:"special_requests,omitempty"`
	CancelReason       string     `json:"cancel_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	Version            int64      `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating the booking
// lifecycle: holds, confirmation, cancellation, staff transitions and
// payment marking. Every mutation runs in one store transaction together
// with exactly one audit record.
type BookingService struct {
	bookings bookingDomain.Repository
	rooms    roomDomain.Repository
	hotels   hotelDomain.Repository
	access   hotelDomain.AccessChecker
	auditLog auditDomain.Repository
	tx       bookingDomain.Transactor
	producer *kafka.Producer
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	rooms roomDomain.Repository,
	hotels hotelDomain.Repository,
	access hotelDomain.AccessChecker,
	auditLog auditDomain.Repository,
	tx bookingDomain.Transactor,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		rooms:    rooms,
		hotels:   hotels,
		access:   access,
		auditLog: auditLog,
		tx:       tx,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Hold places a time-boxed hold on a room for the requested date range.
// The room row is locked for the duration of the transaction, so the
// overlap check and the insert are race-free against concurrent holds.
func (s *BookingService) Hold(ctx context.Context, actor Actor, req CreateHoldRequest) (*BookingDTO, error) {
	now := s.now().UTC()

	stay, nights, err := bookingDomain.ValidateStayDates(req.CheckIn, req.CheckOut, now)
	if err != nil {
		return nil, err
	}

	var created *bookingDomain.Booking
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rm, err := s.rooms.FindByIDForUpdate(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if !rm.AcceptsHolds() {
			return apperror.Unavailable(fmt.Sprintf("room %s is not accepting bookings (%s)", rm.Number(), rm.Status()))
		}

		htl, err := s.hotels.FindByID(ctx, rm.HotelID())
		if err != nil {
			return err
		}

		existing, err := s.bookings.FindByRoom(ctx, rm.ID())
		if err != nil {
			return err
		}
		if !roomIsFree(existing, stay, now) {
			return apperror.Conflict("room is already booked for the requested dates")
		}

		bk, err := bookingDomain.NewHold(
			actor.ID,
			rm.ID(),
			htl.ID(),
			stay,
			nights,
			rm.BasePriceCents(),
			bookingDomain.GuestInfo{
				Name:            req.GuestName,
				Email:           req.GuestEmail,
				SpecialRequests: req.SpecialRequests,
			},
			now,
		)
		if err != nil {
			return err
		}

		if err := s.bookings.Save(ctx, bk); err != nil {
			return err
		}
		if err := s.appendAudit(ctx, &actor.ID, auditDomain.ActionBookingCreated, bk, nil, nil, now); err != nil {
			return err
		}

		created = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(ctx, events.BookingHeld, created)

	dto := toBookingDTO(created)
	return &dto, nil
}

// Confirm finalizes a held booking on behalf of its owner. A lapsed hold
// fails with EXPIRED so the client can prompt a rebook.
func (s *BookingService) Confirm(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	now := s.now().UTC()

	var confirmed *bookingDomain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !bk.IsOwnedBy(actor.ID) {
			return apperror.Forbidden("booking does not belong to this user")
		}

		prev := snapshotOf(bk)
		if err := bk.Confirm(actor.ID, now); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, bk); err != nil {
			return err
		}
		if err := s.appendAudit(ctx, &actor.ID, auditDomain.ActionBookingConfirmed, bk, &prev, nil, now); err != nil {
			return err
		}

		confirmed = bk
		return nil
	})
	if err != nil {
		return err
	}

	s.publishLifecycleEvent(ctx, events.BookingConfirmed, confirmed)
	return nil
}

// Cancel cancels a booking. Owners, admins and staff of the booking's hotel
// may cancel. Cancelling an already cancelled or expired booking is a
// no-op success with no second audit record; a checked-out booking cannot
// be cancelled.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, bookingID uuid.UUID, reason string) error {
	now := s.now().UTC()

	var cancelled *bookingDomain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.authorizeCancel(ctx, actor, bk); err != nil {
			return err
		}

		switch bk.Status() {
		case bookingDomain.StatusCancelled, bookingDomain.StatusExpired:
			// Idempotent: already inactive, nothing to mutate or audit.
			return nil
		}

		prev := snapshotOf(bk)
		if err := bk.Cancel(actor.ID, reason, now); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, bk); err != nil {
			return err
		}

		var metadata interface{}
		if reason != "" {
			metadata = map[string]string{"reason": reason}
		}
		if err := s.appendAudit(ctx, &actor.ID, auditDomain.ActionBookingCancelled, bk, &prev, metadata, now); err != nil {
			return err
		}

		cancelled = bk
		return nil
	})
	if err != nil {
		return err
	}

	if cancelled != nil {
		s.publishLifecycleEvent(ctx, events.BookingCancelled, cancelled)
	}
	return nil
}

// UpdateStatus applies a staff-requested status transition validated against
// the state machine. Requesting the booking's current status is a no-op.
// Unlike the customer Confirm path this does not re-check hold expiry:
// front-desk staff may deliberately confirm a lapsed hold.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, bookingID uuid.UUID, next bookingDomain.Status) error {
	if !next.IsValid() {
		return apperror.InvalidInput(fmt.Sprintf("unknown booking status %q", next))
	}
	now := s.now().UTC()

	var updated *bookingDomain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.authorizeHotelStaff(ctx, actor, bk.HotelID()); err != nil {
			return err
		}

		if bk.Status() == next {
			return nil
		}

		prev := snapshotOf(bk)
		if err := bk.TransitionTo(next, actor.ID, now); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, bk); err != nil {
			return err
		}
		if err := s.appendAudit(ctx, &actor.ID, auditDomain.ActionBookingStatusUpdated, bk, &prev, nil, now); err != nil {
			return err
		}

		updated = bk
		return nil
	})
	if err != nil {
		return err
	}

	if updated != nil {
		s.publishLifecycleEvent(ctx, events.BookingStatusUpdated, updated)
	}
	return nil
}

// AcceptCashPayment records a cash payment taken at the front desk.
// Already-paid bookings are a no-op success.
func (s *BookingService) AcceptCashPayment(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	now := s.now().UTC()

	var paid *bookingDomain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.authorizeHotelStaff(ctx, actor, bk.HotelID()); err != nil {
			return err
		}

		if ps := bk.PaymentStatus(); ps != nil && *ps == bookingDomain.PaymentPaid {
			return nil
		}

		prev := snapshotOf(bk)
		if err := bk.MarkCashPaid(actor.ID, now); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, bk); err != nil {
			return err
		}
		if err := s.appendAudit(ctx, &actor.ID, auditDomain.ActionBookingPaidCash, bk, &prev, nil, now); err != nil {
			return err
		}

		paid = bk
		return nil
	})
	if err != nil {
		return err
	}

	if paid != nil {
		s.publishLifecycleEvent(ctx, events.BookingPaidCash, paid)
	}
	return nil
}

// ApplyPaymentUpdate records a payment-axis change reported by the payment
// collaborator. System action: no actor, no state-machine transition.
func (s *BookingService) ApplyPaymentUpdate(ctx context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) error {
	if !status.IsValid() {
		return apperror.InvalidInput(fmt.Sprintf("unknown payment status %q", status))
	}
	now := s.now().UTC()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bk, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		prev := snapshotOf(bk)
		bk.SetPaymentStatus(status, now)
		if err := s.bookings.Update(ctx, bk); err != nil {
			return err
		}
		metadata := map[string]interface{}{"system": true, "source": events.TopicPaymentEvents}
		return s.appendAudit(ctx, nil, auditDomain.ActionBookingPaymentUpdated, bk, &prev, metadata, now)
	})
}

// --- Queries ---

// GetBooking retrieves a single booking, visible to its owner, admins and
// staff of its hotel.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(actor.ID) {
		if err := s.authorizeHotelStaff(ctx, actor, bk.HotelID()); err != nil {
			return nil, err
		}
	}
	dto := toBookingDTO(bk)
	return &dto, nil
}

// ListUserBookings retrieves a customer's bookings. Customers may only list
// their own.
func (s *BookingService) ListUserBookings(ctx context.Context, actor Actor, userID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	if userID != actor.ID && !actor.IsAdmin() {
		return nil, 0, apperror.Forbidden("cannot list another user's bookings")
	}
	bookings, total, err := s.bookings.FindByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// ListHotelBookings retrieves a hotel's bookings for its staff or admins.
func (s *BookingService) ListHotelBookings(ctx context.Context, actor Actor, hotelID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	if err := s.authorizeHotelStaff(ctx, actor, hotelID); err != nil {
		return nil, 0, err
	}
	bookings, total, err := s.bookings.FindByHotel(ctx, hotelID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// ListRoomBookings retrieves a room's bookings for its hotel's staff or admins.
func (s *BookingService) ListRoomBookings(ctx context.Context, actor Actor, roomID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.authorizeHotelStaff(ctx, actor, rm.HotelID()); err != nil {
		return nil, 0, err
	}
	bookings, total, err := s.bookings.FindByRoomPaged(ctx, roomID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Authorization helpers ---

// authorizeHotelStaff grants admins universal access and staff access iff
// they are assigned to the hotel.
func (s *BookingService) authorizeHotelStaff(ctx context.Context, actor Actor, hotelID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	_, member, err := s.access.Membership(ctx, actor.ID, hotelID)
	if err != nil {
		return apperror.Internal("failed to resolve hotel access", err)
	}
	if !member {
		return apperror.Forbidden("no access to this hotel")
	}
	return nil
}

// authorizeCancel allows the owner, admins, or staff of the booking's hotel.
func (s *BookingService) authorizeCancel(ctx context.Context, actor Actor, bk *bookingDomain.Booking) error {
	if bk.IsOwnedBy(actor.ID) {
		return nil
	}
	if err := s.authorizeHotelStaff(ctx, actor, bk.HotelID()); err != nil {
		return apperror.Forbidden("not allowed to cancel this booking")
	}
	return nil
}

// --- Helpers ---

// snapshot is the before/after value recorded in audit entries.
type snapshot struct {
	Status        string     `json:"status"`
	PaymentStatus *string    `json:"payment_status,omitempty"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
}

func snapshotOf(bk *bookingDomain.Booking) snapshot {
	var ps *string
	if bk.PaymentStatus() != nil {
		v := string(*bk.PaymentStatus())
		ps = &v
	}
	return snapshot{
		Status:        string(bk.Status()),
		PaymentStatus: ps,
		HoldExpiresAt: bk.HoldExpiresAt(),
	}
}

func (s *BookingService) appendAudit(
	ctx context.Context,
	actorID *uuid.UUID,
	action string,
	bk *bookingDomain.Booking,
	previous *snapshot,
	metadata interface{},
	now time.Time,
) error {
	var prev interface{}
	if previous != nil {
		prev = *previous
	}
	next := snapshotOf(bk)

	rec, err := auditDomain.NewRecord(actorID, action, auditDomain.TargetTypeBooking, bk.ID(), prev, next, metadata, now)
	if err != nil {
		return fmt.Errorf("failed to build audit record: %w", err)
	}
	return s.auditLog.Append(ctx, rec)
}

func (s *BookingService) publishLifecycleEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking) {
	if s.producer == nil {
		return
	}

	evt := events.BookingLifecycleEvent{
		BookingID:       bk.ID(),
		UserID:          bk.UserID(),
		RoomID:          bk.RoomID(),
		HotelID:         bk.HotelID(),
		Status:          string(bk.Status()),
		CheckIn:         bk.Stay().CheckIn.Format(dateLayout),
		CheckOut:        bk.Stay().CheckOut.Format(dateLayout),
		TotalPriceCents: bk.TotalPriceCents(),
		OccurredAt:      s.now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	var ps *string
	if bk.PaymentStatus() != nil {
		v := string(*bk.PaymentStatus())
		ps = &v
	}

	return BookingDTO{
		ID:                 bk.ID(),
		UserID:             bk.UserID(),
		RoomID:             bk.RoomID(),
		HotelID:            bk.HotelID(),
		CheckIn:            bk.Stay().CheckIn.Format(dateLayout),
		CheckOut:           bk.Stay().CheckOut.Format(dateLayout),
		Nights:             bk.Nights(),
		Status:             string(bk.Status()),
		HoldExpiresAt:      bk.HoldExpiresAt(),
		PaymentStatus:      ps,
		PricePerNightCents: bk.PricePerNightCents(),
		TotalPriceCents:    bk.TotalPriceCents(),
		GuestName:          bk.Guest().Name,
		GuestEmail:         bk.Guest().Email,
		SpecialRequests:    bk.Guest().SpecialRequests,
		CancelReason:       bk.CancelReason(),
		CancelledAt:        bk.CancelledAt(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
