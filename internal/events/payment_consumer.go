package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lodgio/service-booking/internal/apperror"
	bookingDomain "github.com/lodgio/service-booking/internal/domain/booking"
	"github.com/lodgio/service-booking/internal/kafka"
)

// PaymentApplier is the slice of the booking service the consumer needs.
type PaymentApplier interface {
	ApplyPaymentUpdate(ctx context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) error
}

// PaymentEventConsumer subscribes to payment events and mirrors their
// outcome onto the booking's payment axis.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	applier  PaymentApplier
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a consumer for the payment events topic.
func NewPaymentEventConsumer(brokers []string, groupID string, applier PaymentApplier, logger *zap.Logger) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		applier:  applier,
		logger:   logger,
	}
}

// Start consumes until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	c.logger.Info("payment event consumer started", zap.String("topic", TopicPaymentEvents))
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka reader.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

// handleMessage dispatches one payment event. Malformed messages and events
// for unknown bookings are logged and committed; retrying cannot fix them.
func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Warn("skipping malformed payment event", zap.Error(err))
		return nil
	}

	var status bookingDomain.PaymentStatus
	switch ce.Type {
	case PaymentCaptured:
		status = bookingDomain.PaymentPaid
	case PaymentFailed:
		status = bookingDomain.PaymentFailed
	case PaymentRefunded:
		status = bookingDomain.PaymentRefunded
	default:
		return nil
	}

	var evt PaymentUpdateEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Warn("skipping payment event with malformed payload",
			zap.String("event_type", ce.Type),
			zap.Error(err),
		)
		return nil
	}

	if err := c.applier.ApplyPaymentUpdate(ctx, evt.BookingID, status); err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeNotFound {
			c.logger.Warn("payment event for unknown booking",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("event_type", ce.Type),
			)
			return nil
		}
		return err
	}

	c.logger.Info("applied payment update",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_status", string(status)),
	)
	return nil
}
