package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/lodgio/service-booking/internal/domain/booking"
	roomDomain "github.com/lodgio/service-booking/internal/domain/room"
)

// RoomDTO is the response representation of a bookable room.
type RoomDTO struct {
	ID             uuid.UUID `json:"id"`
	HotelID        uuid.UUID `json:"hotel_id"`
	Number         string    `json:"number"`
	RoomType       string    `json:"room_type,omitempty"`
	BasePriceCents int64     `json:"base_price_cents"`
	Status         string    `json:"status"`
}

// AvailabilityDTO reports whether one room is free for a date range.
type AvailabilityDTO struct {
	RoomID    uuid.UUID `json:"room_id"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	Available bool      `json:"available"`
}

// roomIsFree reports whether none of the room's existing bookings blocks
// the requested range. Terminal bookings and lapsed holds never block, so
// expired holds free their dates without waiting for the sweeper.
func roomIsFree(existing []*bookingDomain.Booking, requested bookingDomain.StayRange, now time.Time) bool {
	for _, bk := range existing {
		if bk.BlocksRange(requested, now) {
			return false
		}
	}
	return true
}

// CheckRoomAvailability reports whether a room is free for the requested
// dates. Public query, no authentication required.
func (s *BookingService) CheckRoomAvailability(ctx context.Context, roomID uuid.UUID, checkIn, checkOut string) (*AvailabilityDTO, error) {
	now := s.now().UTC()

	stay, _, err := bookingDomain.ValidateStayDates(checkIn, checkOut, now)
	if err != nil {
		return nil, err
	}

	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	dto := &AvailabilityDTO{
		RoomID:   rm.ID(),
		CheckIn:  stay.CheckIn.Format(dateLayout),
		CheckOut: stay.CheckOut.Format(dateLayout),
	}
	if !rm.AcceptsHolds() {
		return dto, nil
	}

	existing, err := s.bookings.FindByRoom(ctx, rm.ID())
	if err != nil {
		return nil, err
	}
	dto.Available = roomIsFree(existing, stay, now)
	return dto, nil
}

// ListAvailableRooms returns the hotel's rooms that are operational and free
// for the requested dates.
func (s *BookingService) ListAvailableRooms(ctx context.Context, hotelID uuid.UUID, checkIn, checkOut string) ([]RoomDTO, error) {
	now := s.now().UTC()

	stay, _, err := bookingDomain.ValidateStayDates(checkIn, checkOut, now)
	if err != nil {
		return nil, err
	}

	if _, err := s.hotels.FindByID(ctx, hotelID); err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	available := make([]RoomDTO, 0, len(rooms))
	for _, rm := range rooms {
		if !rm.AcceptsHolds() {
			continue
		}
		existing, err := s.bookings.FindByRoom(ctx, rm.ID())
		if err != nil {
			return nil, err
		}
		if roomIsFree(existing, stay, now) {
			available = append(available, toRoomDTO(rm))
		}
	}
	return available, nil
}

func toRoomDTO(rm *roomDomain.Room) RoomDTO {
	return RoomDTO{
		ID:             rm.ID(),
		HotelID:        rm.HotelID(),
		Number:         rm.Number(),
		RoomType:       rm.RoomType(),
		BasePriceCents: rm.BasePriceCents(),
		Status:         string(rm.Status()),
	}
}
