package booking

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/lodgio/service-booking/internal/apperror"
)

const (
	// HoldDuration is how long an unconfirmed hold blocks a room.
	HoldDuration = 15 * time.Minute

	maxStayNights  = 30
	maxAdvanceDays = 365

	day = 24 * time.Hour
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// StayRange is a half-open [CheckIn, CheckOut) calendar range. Both bounds
// are UTC-midnight instants.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// ParseDate parses a strict YYYY-MM-DD string as a UTC midnight instant.
// The format is regex-checked first so "2024-1-5" and datetime strings fail,
// then the calendar parse rejects impossible dates like 2024-02-30.
func ParseDate(s string) (time.Time, error) {
	if !dateFormat.MatchString(s) {
		return time.Time{}, fmt.Errorf("date %q is not in YYYY-MM-DD format", s)
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not a valid calendar date", s)
	}
	return t, nil
}

// NightsBetween returns the night count of a stay, ceiling division to
// tolerate sub-day drift. Callers must pre-validate checkOut > checkIn.
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(math.Ceil(float64(checkOut.Sub(checkIn)) / float64(day)))
}

// RangesOverlap reports whether two half-open ranges intersect. Touching
// ranges do not overlap, so back-to-back stays are legal.
func RangesOverlap(a, b StayRange) bool {
	return a.CheckIn.Before(b.CheckOut) && a.CheckOut.After(b.CheckIn)
}

// ValidateStayDates parses and validates a check-in/check-out pair against
// booking policy, returning the stay range and night count. Each failure
// carries a distinct user-facing reason.
func ValidateStayDates(checkIn, checkOut string, now time.Time) (StayRange, int, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return StayRange{}, 0, apperror.InvalidInput("invalid check-in date: " + err.Error())
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return StayRange{}, 0, apperror.InvalidInput("invalid check-out date: " + err.Error())
	}

	today := now.UTC().Truncate(day)
	if in.Before(today) {
		return StayRange{}, 0, apperror.InvalidInput("check-in date cannot be in the past")
	}
	if !out.After(in) {
		return StayRange{}, 0, apperror.InvalidInput("check-out date must be after check-in date")
	}

	nights := NightsBetween(in, out)
	if nights > maxStayNights {
		return StayRange{}, 0, apperror.InvalidInput(fmt.Sprintf("stay cannot exceed %d nights", maxStayNights))
	}
	if in.After(today.Add(maxAdvanceDays * day)) {
		return StayRange{}, 0, apperror.InvalidInput(fmt.Sprintf("check-in date cannot be more than %d days in the future", maxAdvanceDays))
	}

	return StayRange{CheckIn: in, CheckOut: out}, nights, nil
}

// HoldExpiration returns the deadline for confirming a hold created at now.
func HoldExpiration(now time.Time) time.Time {
	return now.Add(HoldDuration)
}

// IsHoldExpired reports whether a hold deadline has passed. A nil deadline
// never expires.
func IsHoldExpired(holdExpiresAt *time.Time, now time.Time) bool {
	return holdExpiresAt != nil && holdExpiresAt.Before(now)
}
