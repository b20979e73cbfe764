package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Booking lifecycle actions recorded in the audit log.
const (
	ActionBookingCreated        = "booking_created"
	ActionBookingConfirmed      = "booking_confirmed"
	ActionBookingCancelled      = "booking_cancelled"
	ActionBookingStatusUpdated  = "booking_status_updated"
	ActionBookingPaidCash       = "booking_payment_paid_cash"
	ActionBookingExpired        = "booking_expired"
	ActionBookingPaymentUpdated = "booking_payment_updated"
)

// TargetTypeBooking is the target type for booking audit records.
const TargetTypeBooking = "booking"

// Record is one append-only audit entry capturing who did what to which
// entity, with before/after snapshots.
type Record struct {
	ID            uuid.UUID
	ActorID       *uuid.UUID
	Action        string
	TargetType    string
	TargetID      uuid.UUID
	PreviousValue json.RawMessage
	NewValue      json.RawMessage
	Metadata      json.RawMessage
	CreatedAt     time.Time
}

// NewRecord builds an audit record, marshalling the optional snapshots and
// metadata. A nil actor marks a system action.
func NewRecord(
	actorID *uuid.UUID,
	action, targetType string,
	targetID uuid.UUID,
	previous, next, metadata interface{},
	now time.Time,
) (*Record, error) {
	rec := &Record{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		CreatedAt:  now,
	}

	var err error
	if previous != nil {
		if rec.PreviousValue, err = json.Marshal(previous); err != nil {
			return nil, err
		}
	}
	if next != nil {
		if rec.NewValue, err = json.Marshal(next); err != nil {
			return nil, err
		}
	}
	if metadata != nil {
		if rec.Metadata, err = json.Marshal(metadata); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Repository is the append-only audit sink. Appends happen inside the same
// transaction as the mutation they describe.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
}
