package service

import (
	"context"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
)

type noopPublisher struct{}

// NewNoopPublisher drops events. Used when RabbitMQ is disabled.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	logger.DebugContext(ctx, "Event publishing disabled", "type", event.Type, "bookingID", event.BookingID)
	return nil
}
