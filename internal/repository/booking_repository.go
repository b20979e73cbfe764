package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lodgio/service-booking/internal/apperror"
	bookingDomain "github.com/lodgio/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID             *uuid.UUID `gorm:"type:uuid;index"`
	RoomID             uuid.UUID  `gorm:"type:uuid;index;not null"`
	HotelID            uuid.UUID  `gorm:"type:uuid;index;not null"`
	CheckIn            time.Time  `gorm:"not null"`
	CheckOut           time.Time  `gorm:"not null"`
	Nights             int        `gorm:"not null"`
	Status             string     `gorm:"not null;size:20;index"`
	HoldExpiresAt      *time.Time `gorm:""`
	PaymentStatus      *string    `gorm:"size:20"`
	PricePerNightCents int64      `gorm:"not null"`
	TotalPriceCents    int64      `gorm:"not null"`
	GuestName          string     `gorm:"size:200"`
	GuestEmail         string     `gorm:"size:200"`
	SpecialRequests    string     `gorm:"size:1000"`
	CancelReason       string     `gorm:"size:500"`
	CancelledAt        *time.Time `gorm:""`
	UpdatedBy          *uuid.UUID `gorm:"type:uuid"`
	Version            int64      `gorm:"not null;default:1"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByRoom retrieves every booking for a room, for the availability scan.
func (r *GormBookingRepository) FindByRoom(ctx context.Context, roomID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := dbFrom(ctx, r.db).
		Where("room_id = ?", roomID).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by room: %w", err)
	}
	return toDomainBookings(models)
}

// FindHeld retrieves all bookings currently in the held status.
func (r *GormBookingRepository) FindHeld(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := dbFrom(ctx, r.db).
		Where("status = ?", string(bookingDomain.StatusHeld)).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find held bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByUser retrieves bookings belonging to a customer with pagination.
func (r *GormBookingRepository) FindByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "user_id = ?", userID, page, limit)
}

// FindByHotel retrieves bookings for a hotel with pagination.
func (r *GormBookingRepository) FindByHotel(ctx context.Context, hotelID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "hotel_id = ?", hotelID, page, limit)
}

// FindByRoomPaged retrieves bookings for a room with pagination.
func (r *GormBookingRepository) FindByRoomPaged(ctx context.Context, roomID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "room_id = ?", roomID, page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db := dbFrom(ctx, r.db)

	var total int64
	if err := db.Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := dbFrom(ctx, r.db).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
// The aggregate bumps its version on every mutation, so the row must still
// carry the previous version.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)

	expectedVersion := b.Version() - 1
	result := dbFrom(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"hold_expires_at":  model.HoldExpiresAt,
			"payment_status":   model.PaymentStatus,
			"guest_name":       model.GuestName,
			"guest_email":      model.GuestEmail,
			"special_requests": model.SpecialRequests,
			"cancel_reason":    model.CancelReason,
			"cancelled_at":     model.CancelledAt,
			"updated_by":       model.UpdatedBy,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Conflict("booking was modified by another transaction")
	}
	return nil
}

// MarkExpired flips a single booking to expired iff it is still held.
func (r *GormBookingRepository) MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := dbFrom(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", id, string(bookingDomain.StatusHeld)).
		Updates(map[string]interface{}{
			"status":          string(bookingDomain.StatusExpired),
			"hold_expires_at": nil,
			"updated_by":      nil,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      now,
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to mark booking expired: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormBookingRepository) findPaged(ctx context.Context, cond string, arg uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db := dbFrom(ctx, r.db)

	var total int64
	if err := db.Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// --- Conversion Helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	var paymentStatus *string
	if b.PaymentStatus() != nil {
		s := string(*b.PaymentStatus())
		paymentStatus = &s
	}

	return &BookingModel{
		ID:                 b.ID(),
		UserID:             b.UserID(),
		RoomID:             b.RoomID(),
		HotelID:            b.HotelID(),
		CheckIn:            b.Stay().CheckIn,
		CheckOut:           b.Stay().CheckOut,
		Nights:             b.Nights(),
		Status:             string(b.Status()),
		HoldExpiresAt:      b.HoldExpiresAt(),
		PaymentStatus:      paymentStatus,
		PricePerNightCents: b.PricePerNightCents(),
		TotalPriceCents:    b.TotalPriceCents(),
		GuestName:          b.Guest().Name,
		GuestEmail:         b.Guest().Email,
		SpecialRequests:    b.Guest().SpecialRequests,
		CancelReason:       b.CancelReason(),
		CancelledAt:        b.CancelledAt(),
		UpdatedBy:          b.UpdatedBy(),
		Version:            b.Version(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var paymentStatus *bookingDomain.PaymentStatus
	if m.PaymentStatus != nil {
		ps, err := bookingDomain.ParsePaymentStatus(*m.PaymentStatus)
		if err != nil {
			return nil, err
		}
		paymentStatus = &ps
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.UserID,
		m.RoomID,
		m.HotelID,
		bookingDomain.StayRange{CheckIn: m.CheckIn.UTC(), CheckOut: m.CheckOut.UTC()},
		m.Nights,
		status,
		m.HoldExpiresAt,
		paymentStatus,
		m.PricePerNightCents,
		m.TotalPriceCents,
		bookingDomain.GuestInfo{
			Name:            m.GuestName,
			Email:           m.GuestEmail,
			SpecialRequests: m.SpecialRequests,
		},
		m.CancelReason,
		m.CancelledAt,
		m.UpdatedBy,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		b, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = b
	}
	return bookings, nil
}
