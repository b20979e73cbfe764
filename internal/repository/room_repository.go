package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lodgio/service-booking/internal/apperror"
	roomDomain "github.com/lodgio/service-booking/internal/domain/room"
)

// RoomModel is the GORM model for the rooms table, owned by the inventory
// service; the booking service only reads it.
type RoomModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	HotelID        uuid.UUID `gorm:"type:uuid;index;not null"`
	Number         string    `gorm:"not null;size:20"`
	RoomType       string    `gorm:"size:50"`
	BasePriceCents int64     `gorm:"not null"`
	Status         string    `gorm:"not null;size:20;default:'available'"`
	IsDeleted      bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// GormRoomRepository is the GORM-based implementation of room.Repository.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID retrieves a room by ID. Soft-deleted rooms surface as not-found.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	return r.find(ctx, id, false)
}

// FindByIDForUpdate retrieves a room and locks its row until the surrounding
// transaction commits. Concurrent hold attempts on the same room serialize on
// this lock, making the overlap check race-free.
func (r *GormRoomRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	return r.find(ctx, id, true)
}

// ListByHotel retrieves all non-deleted rooms of a hotel.
func (r *GormRoomRepository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]*roomDomain.Room, error) {
	var models []RoomModel
	if err := dbFrom(ctx, r.db).
		Where("hotel_id = ? AND is_deleted = false", hotelID).
		Order("number ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms by hotel: %w", err)
	}

	rooms := make([]*roomDomain.Room, len(models))
	for i, m := range models {
		rooms[i] = toDomainRoom(&m)
	}
	return rooms, nil
}

func (r *GormRoomRepository) find(ctx context.Context, id uuid.UUID, forUpdate bool) (*roomDomain.Room, error) {
	db := dbFrom(ctx, r.db)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model RoomModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("room", id.String())
		}
		return nil, fmt.Errorf("failed to find room by ID: %w", err)
	}
	if model.IsDeleted {
		return nil, apperror.NotFound("room", id.String())
	}
	return toDomainRoom(&model), nil
}

func toDomainRoom(m *RoomModel) *roomDomain.Room {
	return roomDomain.Reconstruct(
		m.ID,
		m.HotelID,
		m.Number,
		m.RoomType,
		m.BasePriceCents,
		roomDomain.OperationalStatus(m.Status),
		m.IsDeleted,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
