package room

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines read access to the room inventory. Soft-deleted rooms
// surface as not-found.
type Repository interface {
	// FindByID retrieves a room by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByIDForUpdate retrieves a room and locks its row for the duration
	// of the surrounding transaction, serializing concurrent hold attempts.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Room, error)

	// ListByHotel retrieves all non-deleted rooms of a hotel.
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]*Room, error)
}
