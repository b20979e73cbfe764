package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lodgio/service-booking/internal/apperror"
	hotelDomain "github.com/lodgio/service-booking/internal/domain/hotel"
)

// HotelModel is the GORM model for the hotels table, owned by the hotel
// management service; the booking service only reads it.
type HotelModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;size:200"`
	IsDeleted bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HotelModel) TableName() string {
	return "hotels"
}

// HotelStaffModel maps staff users to the hotels they are assigned to.
type HotelStaffModel struct {
	HotelID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	StaffRole string    `gorm:"not null;size:20"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HotelStaffModel) TableName() string {
	return "hotel_staff"
}

// GormHotelRepository implements hotel.Repository and hotel.AccessChecker.
type GormHotelRepository struct {
	db *gorm.DB
}

// NewGormHotelRepository creates a new GormHotelRepository.
func NewGormHotelRepository(db *gorm.DB) *GormHotelRepository {
	return &GormHotelRepository{db: db}
}

// FindByID retrieves a hotel by ID. Soft-deleted hotels surface as not-found.
func (r *GormHotelRepository) FindByID(ctx context.Context, id uuid.UUID) (*hotelDomain.Hotel, error) {
	var model HotelModel
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("hotel", id.String())
		}
		return nil, fmt.Errorf("failed to find hotel by ID: %w", err)
	}
	if model.IsDeleted {
		return nil, apperror.NotFound("hotel", id.String())
	}
	return hotelDomain.Reconstruct(model.ID, model.Name, model.IsDeleted, model.CreatedAt, model.UpdatedAt), nil
}

// Membership returns the staff sub-role of the user at the given hotel.
func (r *GormHotelRepository) Membership(ctx context.Context, userID, hotelID uuid.UUID) (hotelDomain.StaffRole, bool, error) {
	var model HotelStaffModel
	err := dbFrom(ctx, r.db).
		Where("user_id = ? AND hotel_id = ?", userID, hotelID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up hotel staff membership: %w", err)
	}

	role := hotelDomain.StaffRole(model.StaffRole)
	if !role.IsValid() {
		return "", false, fmt.Errorf("unknown staff role %q for user %s", model.StaffRole, userID)
	}
	return role, true, nil
}
