package service

import (
	"context"

	"garage-booking/internal/domain"
)

// CreateBookingInput is a booking request as submitted by a customer or staff member.
type CreateBookingInput struct {
	CustomerID  int64                 `json:"customer_id"`
	LocationID  int64                 `json:"location_id"`
	BookingDate string                `json:"booking_date"`
	StartTime   string                `json:"start_time"`
	Vehicle     domain.VehicleDetails `json:"vehicle"`
	ServiceIDs  []int64               `json:"service_ids"`
}

type ConfirmBookingInput struct {
	PaymentMethod string `json:"payment_method"`
	DiscountID    *int64 `json:"discount_id,omitempty"`
}

type BookingService interface {
	CreateBooking(ctx context.Context, actor domain.Actor, in CreateBookingInput) (*domain.BookingDetail, error)
	ConfirmBooking(ctx context.Context, actor domain.Actor, bookingID int64, in ConfirmBookingInput) (*domain.BookingDetail, error)
	CancelBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.BookingDetail, error)
	GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.BookingDetail, error)
	ListCustomerBookings(ctx context.Context, actor domain.Actor) ([]domain.BookingSummary, error)
	ListLocationBookings(ctx context.Context, actor domain.Actor, locationID int64, date string) ([]domain.BookingSummary, error)
}

type CatalogService interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

type InventoryService interface {
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]domain.InventoryItem, error)
	Restock(ctx context.Context, actor domain.Actor, itemID int64, quantity int32) (*domain.InventoryItem, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	UserID      int64       `json:"user_id"`
	Role        domain.Role `json:"role"`
	Name        string      `json:"name"`
}

type AuthService interface {
	LoginCustomer(ctx context.Context, email, password string) (*LoginResult, error)
	LoginStaff(ctx context.Context, username, password string) (*LoginResult, error)
}

// VehicleLookup resolves a registration number to vehicle details.
type VehicleLookup interface {
	Lookup(ctx context.Context, registration string) (*domain.VehicleDetails, error)
}

type EmailService interface {
	SendBookingConfirmation(ctx context.Context, detail *domain.BookingDetail) error
	SendBookingCancellation(ctx context.Context, detail *domain.BookingDetail) error
	SendBookingReminder(ctx context.Context, booking domain.BookingHeader) error
	SendLowStockAlert(ctx context.Context, to string, items []domain.InventoryItem) error
}

// EventPublisher delivers booking lifecycle events to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
}
