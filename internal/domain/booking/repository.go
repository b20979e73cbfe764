package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
// Bookings are never physically deleted; terminal states are retained for
// history and audit.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByRoom retrieves every booking for a room, for the availability scan.
	FindByRoom(ctx context.Context, roomID uuid.UUID) ([]*Booking, error)

	// FindHeld retrieves all bookings currently in the held status.
	FindHeld(ctx context.Context) ([]*Booking, error)

	// FindByUser retrieves bookings belonging to a customer with pagination.
	FindByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHotel retrieves bookings for a hotel with pagination.
	FindByHotel(ctx context.Context, hotelID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByRoomPaged retrieves bookings for a room with pagination.
	FindByRoomPaged(ctx context.Context, roomID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error

	// MarkExpired flips a single booking to expired iff it is still held,
	// guarding against a confirm racing the sweep. It reports whether a row
	// was actually updated.
	MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

// Transactor runs a function within a single store transaction. Repository
// calls made with the derived context join that transaction, so a mutation
// and its audit record commit or roll back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
