package hotel

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole is the sub-role of a staff member within one hotel.
type StaffRole string

const (
	// StaffRoleAdmin manages bookings and room assignments for the hotel.
	StaffRoleAdmin StaffRole = "hotel_admin"
	// StaffRoleCashier handles check-in/out and payments at the desk.
	StaffRoleCashier StaffRole = "hotel_cashier"
)

// IsValid returns true if the staff role is recognized.
func (r StaffRole) IsValid() bool {
	return r == StaffRoleAdmin || r == StaffRoleCashier
}

// Hotel is a read model of the hotel collaborator.
type Hotel struct {
	id        uuid.UUID
	name      string
	isDeleted bool
	createdAt time.Time
	updatedAt time.Time
}

// Reconstruct rebuilds a Hotel from persistence data.
func Reconstruct(id uuid.UUID, name string, isDeleted bool, createdAt, updatedAt time.Time) *Hotel {
	return &Hotel{
		id:        id,
		name:      name,
		isDeleted: isDeleted,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the hotel's unique identifier.
func (h *Hotel) ID() uuid.UUID { return h.id }

// Name returns the hotel name.
func (h *Hotel) Name() string { return h.name }

// IsDeleted returns the soft-delete flag.
func (h *Hotel) IsDeleted() bool { return h.isDeleted }

// CreatedAt returns the creation timestamp.
func (h *Hotel) CreatedAt() time.Time { return h.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (h *Hotel) UpdatedAt() time.Time { return h.updatedAt }
