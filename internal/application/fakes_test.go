package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lodgio/service-booking/internal/apperror"
	auditDomain "github.com/lodgio/service-booking/internal/domain/audit"
	bookingDomain "github.com/lodgio/service-booking/internal/domain/booking"
	hotelDomain "github.com/lodgio/service-booking/internal/domain/hotel"
	roomDomain "github.com/lodgio/service-booking/internal/domain/room"
)

// In-memory doubles for the persistence ports. They mirror the contracts of
// the GORM implementations closely enough for service-level tests.

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*bookingDomain.Booking{}}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, apperror.NotFound("booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByRoom(_ context.Context, roomID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.RoomID() == roomID {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindHeld(_ context.Context) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.Status() == bookingDomain.StatusHeld {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindByUser(_ context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.UserID() != nil && *bk.UserID() == userID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByHotel(_ context.Context, hotelID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.HotelID() == hotelID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByRoomPaged(ctx context.Context, roomID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	out, err := r.FindByRoom(ctx, roomID)
	return out, int64(len(out)), err
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID()]; !ok {
		return apperror.NotFound("booking", b.ID().String())
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) MarkExpired(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok || bk.Status() != bookingDomain.StatusHeld {
		return false, nil
	}
	if err := bk.Expire(now); err != nil {
		return false, err
	}
	return true, nil
}

type fakeRoomRepo struct {
	rooms map[uuid.UUID]*roomDomain.Room
}

func newFakeRoomRepo(rooms ...*roomDomain.Room) *fakeRoomRepo {
	m := map[uuid.UUID]*roomDomain.Room{}
	for _, rm := range rooms {
		m[rm.ID()] = rm
	}
	return &fakeRoomRepo{rooms: m}
}

func (r *fakeRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	rm, ok := r.rooms[id]
	if !ok || rm.IsDeleted() {
		return nil, apperror.NotFound("room", id.String())
	}
	return rm, nil
}

func (r *fakeRoomRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRoomRepo) ListByHotel(_ context.Context, hotelID uuid.UUID) ([]*roomDomain.Room, error) {
	var out []*roomDomain.Room
	for _, rm := range r.rooms {
		if rm.HotelID() == hotelID && !rm.IsDeleted() {
			out = append(out, rm)
		}
	}
	return out, nil
}

type fakeHotelRepo struct {
	hotels map[uuid.UUID]*hotelDomain.Hotel
	staff  map[uuid.UUID]map[uuid.UUID]hotelDomain.StaffRole // userID -> hotelID -> role
}

func newFakeHotelRepo(hotels ...*hotelDomain.Hotel) *fakeHotelRepo {
	m := map[uuid.UUID]*hotelDomain.Hotel{}
	for _, h := range hotels {
		m[h.ID()] = h
	}
	return &fakeHotelRepo{hotels: m, staff: map[uuid.UUID]map[uuid.UUID]hotelDomain.StaffRole{}}
}

func (r *fakeHotelRepo) FindByID(_ context.Context, id uuid.UUID) (*hotelDomain.Hotel, error) {
	h, ok := r.hotels[id]
	if !ok || h.IsDeleted() {
		return nil, apperror.NotFound("hotel", id.String())
	}
	return h, nil
}

func (r *fakeHotelRepo) grantStaff(userID, hotelID uuid.UUID, role hotelDomain.StaffRole) {
	if r.staff[userID] == nil {
		r.staff[userID] = map[uuid.UUID]hotelDomain.StaffRole{}
	}
	r.staff[userID][hotelID] = role
}

func (r *fakeHotelRepo) Membership(_ context.Context, userID, hotelID uuid.UUID) (hotelDomain.StaffRole, bool, error) {
	role, ok := r.staff[userID][hotelID]
	return role, ok, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	records []*auditDomain.Record
}

func (r *fakeAuditRepo) Append(_ context.Context, rec *auditDomain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeAuditRepo) byAction(action string) []*auditDomain.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auditDomain.Record
	for _, rec := range r.records {
		if rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}

// fakeTransactor runs the function directly; the fakes have no transactions.
type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
