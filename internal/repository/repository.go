package repository

import (
	"context"
	"time"

	"garage-booking/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// GetForUpdate locks the booking row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	GetHeader(ctx context.Context, id int64) (*domain.BookingHeader, error)
	UpdateStatus(ctx context.Context, booking *domain.Booking) error

	AddLine(ctx context.Context, line *domain.BookingLine) error
	ListLines(ctx context.Context, bookingID int64) ([]domain.BookingLine, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]domain.BookingSummary, error)
	ListByLocation(ctx context.Context, locationID int64, date *time.Time) ([]domain.BookingSummary, error)
	ListHeadersByDate(ctx context.Context, date time.Time, status domain.BookingStatus) ([]domain.BookingHeader, error)
}

type VehicleRepository interface {
	GetByRegistration(ctx context.Context, customerID int64, registration string) (*domain.Vehicle, error)
	Create(ctx context.Context, vehicle *domain.Vehicle) error
}

type CatalogRepository interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetServicesByIDs(ctx context.Context, ids []int64) ([]domain.Service, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error)
}

type LedgerRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error)
	GetDiscount(ctx context.Context, id int64) (*domain.Discount, error)
}

type InventoryRepository interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	ListLinks(ctx context.Context, serviceIDs []int64) ([]domain.ServiceInventoryLink, error)
	// AdjustStock adds delta (negative to deduct) to the item's stock level.
	AdjustStock(ctx context.Context, itemID int64, delta int32) error
	ListLowStock(ctx context.Context) ([]domain.InventoryItem, error)
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type StaffRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Staff, error)
}

// Tx exposes the repositories bound to one database transaction.
type Tx interface {
	Bookings() BookingRepository
	Vehicles() VehicleRepository
	Catalog() CatalogRepository
	Ledger() LedgerRepository
	Inventory() InventoryRepository
	// Savepoint runs fn so that its failure rolls back only its own statements.
	Savepoint(ctx context.Context, name string, fn func() error) error
}

// Transactor runs fn inside a transaction, committing when fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
