package room

import (
	"time"

	"github.com/google/uuid"
)

// OperationalStatus describes whether a room can accept new holds.
type OperationalStatus string

const (
	StatusAvailable    OperationalStatus = "available"
	StatusMaintenance  OperationalStatus = "maintenance"
	StatusOutOfService OperationalStatus = "out_of_service"
)

// IsValid returns true if the operational status is recognized.
func (s OperationalStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusOutOfService:
		return true
	}
	return false
}

// Room is a read model of the hotel inventory collaborator. The booking core
// never mutates rooms; it reads the base price snapshot and the operational
// gate for new holds.
type Room struct {
	id             uuid.UUID
	hotelID        uuid.UUID
	number         string
	roomType       string
	basePriceCents int64
	status         OperationalStatus
	isDeleted      bool
	createdAt      time.Time
	updatedAt      time.Time
}

// Reconstruct rebuilds a Room from persistence data.
func Reconstruct(
	id, hotelID uuid.UUID,
	number, roomType string,
	basePriceCents int64,
	status OperationalStatus,
	isDeleted bool,
	createdAt, updatedAt time.Time,
) *Room {
	return &Room{
		id:             id,
		hotelID:        hotelID,
		number:         number,
		roomType:       roomType,
		basePriceCents: basePriceCents,
		status:         status,
		isDeleted:      isDeleted,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// ID returns the room's unique identifier.
func (r *Room) ID() uuid.UUID { return r.id }

// HotelID returns the identifier of the hotel owning this room.
func (r *Room) HotelID() uuid.UUID { return r.hotelID }

// Number returns the display room number.
func (r *Room) Number() string { return r.number }

// RoomType returns the room category label.
func (r *Room) RoomType() string { return r.roomType }

// BasePriceCents returns the current nightly base price.
func (r *Room) BasePriceCents() int64 { return r.basePriceCents }

// Status returns the operational status.
func (r *Room) Status() OperationalStatus { return r.status }

// IsDeleted returns the soft-delete flag.
func (r *Room) IsDeleted() bool { return r.isDeleted }

// CreatedAt returns the creation timestamp.
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// AcceptsHolds reports whether new holds may be created for this room.
func (r *Room) AcceptsHolds() bool {
	return !r.isDeleted && r.status == StatusAvailable
}
