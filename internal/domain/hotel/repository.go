package hotel

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines read access to hotels. Soft-deleted hotels surface as
// not-found.
type Repository interface {
	// FindByID retrieves a hotel by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Hotel, error)
}

// AccessChecker resolves hotel-scoped staff membership. Platform admins have
// universal access and are handled before this is consulted.
type AccessChecker interface {
	// Membership returns the staff sub-role of the user at the given hotel,
	// and whether the user is assigned to it at all.
	Membership(ctx context.Context, userID, hotelID uuid.UUID) (StaffRole, bool, error)
}
