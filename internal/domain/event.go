package domain

import "time"

type BookingEventType string

const (
	EventBookingCreated   BookingEventType = "booking.created"
	EventBookingConfirmed BookingEventType = "booking.confirmed"
	EventBookingCancelled BookingEventType = "booking.cancelled"
)

// BookingEvent is published after a lifecycle transition commits.
type BookingEvent struct {
	Type          BookingEventType `json:"type"`
	BookingID     int64            `json:"booking_id"`
	CustomerID    int64            `json:"customer_id"`
	LocationID    int64            `json:"location_id"`
	BookingDate   string           `json:"booking_date"`
	StartTime     string           `json:"booking_start"`
	EndTime       string           `json:"booking_end"`
	Status        BookingStatus    `json:"booking_status"`
	PaymentStatus PaymentStatus    `json:"payment_status"`
	NetAmount     Pence            `json:"net_amount"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

func NewBookingEvent(t BookingEventType, d *BookingDetail, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          t,
		BookingID:     d.BookingNumber,
		CustomerID:    d.CustomerID,
		LocationID:    d.LocationID,
		BookingDate:   d.BookingDate,
		StartTime:     d.BookingStart,
		EndTime:       d.BookingEnd,
		Status:        d.BookingStatus,
		PaymentStatus: d.PaymentStatus,
		NetAmount:     d.NetAmount,
		OccurredAt:    at.UTC(),
	}
}
