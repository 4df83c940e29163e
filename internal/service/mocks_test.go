package service

import (
	"context"
	"time"

	"garage-booking/internal/domain"
	"garage-booking/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so the service's mutations do not leak into later calls
	b := *args.Get(0).(*domain.Booking)
	return &b, args.Error(1)
}
func (m *MockBookingRepo) GetHeader(ctx context.Context, id int64) (*domain.BookingHeader, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingHeader), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) AddLine(ctx context.Context, line *domain.BookingLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}
func (m *MockBookingRepo) ListLines(ctx context.Context, bookingID int64) ([]domain.BookingLine, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.BookingLine), args.Error(1)
}
func (m *MockBookingRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.BookingSummary, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.BookingSummary), args.Error(1)
}
func (m *MockBookingRepo) ListByLocation(ctx context.Context, locationID int64, date *time.Time) ([]domain.BookingSummary, error) {
	args := m.Called(ctx, locationID, date)
	return args.Get(0).([]domain.BookingSummary), args.Error(1)
}
func (m *MockBookingRepo) ListHeadersByDate(ctx context.Context, date time.Time, status domain.BookingStatus) ([]domain.BookingHeader, error) {
	args := m.Called(ctx, date, status)
	return args.Get(0).([]domain.BookingHeader), args.Error(1)
}

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) GetByRegistration(ctx context.Context, customerID int64, registration string) (*domain.Vehicle, error) {
	args := m.Called(ctx, customerID, registration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// MockCatalogRepo
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) ListServices(ctx context.Context) ([]domain.Service, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Service), args.Error(1)
}
func (m *MockCatalogRepo) GetServicesByIDs(ctx context.Context, ids []int64) ([]domain.Service, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Service), args.Error(1)
}
func (m *MockCatalogRepo) ListLocations(ctx context.Context) ([]domain.Location, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Location), args.Error(1)
}
func (m *MockCatalogRepo) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}
func (m *MockCatalogRepo) ListOpeningHours(ctx context.Context) ([]domain.OpeningHours, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.OpeningHours), args.Error(1)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockLedgerRepo) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockLedgerRepo) GetDiscount(ctx context.Context, id int64) (*domain.Discount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}

// MockInventoryRepo
type MockInventoryRepo struct {
	mock.Mock
}

func (m *MockInventoryRepo) List(ctx context.Context) ([]domain.InventoryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryRepo) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryRepo) ListLinks(ctx context.Context, serviceIDs []int64) ([]domain.ServiceInventoryLink, error) {
	args := m.Called(ctx, serviceIDs)
	return args.Get(0).([]domain.ServiceInventoryLink), args.Error(1)
}
func (m *MockInventoryRepo) AdjustStock(ctx context.Context, itemID int64, delta int32) error {
	args := m.Called(ctx, itemID, delta)
	return args.Error(0)
}
func (m *MockInventoryRepo) ListLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}

// MockCustomerRepo
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockStaffRepo
type MockStaffRepo struct {
	mock.Mock
}

func (m *MockStaffRepo) GetByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Staff), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingConfirmation(ctx context.Context, d *domain.BookingDetail) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingCancellation(ctx context.Context, d *domain.BookingDetail) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingReminder(ctx context.Context, h domain.BookingHeader) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}
func (m *MockEmailService) SendLowStockAlert(ctx context.Context, to string, items []domain.InventoryItem) error {
	args := m.Called(ctx, to, items)
	return args.Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockVehicleLookup
type MockVehicleLookup struct {
	mock.Mock
}

func (m *MockVehicleLookup) Lookup(ctx context.Context, registration string) (*domain.VehicleDetails, error) {
	args := m.Called(ctx, registration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VehicleDetails), args.Error(1)
}

// fakeTx hands out the mock repositories and runs savepoints inline.
type fakeTx struct {
	bookings   *MockBookingRepo
	vehicles   *MockVehicleRepo
	catalog    *MockCatalogRepo
	ledger     *MockLedgerRepo
	inventory  *MockInventoryRepo
	savepoints []string
}

func (t *fakeTx) Bookings() repository.BookingRepository    { return t.bookings }
func (t *fakeTx) Vehicles() repository.VehicleRepository    { return t.vehicles }
func (t *fakeTx) Catalog() repository.CatalogRepository     { return t.catalog }
func (t *fakeTx) Ledger() repository.LedgerRepository       { return t.ledger }
func (t *fakeTx) Inventory() repository.InventoryRepository { return t.inventory }

func (t *fakeTx) Savepoint(ctx context.Context, name string, fn func() error) error {
	t.savepoints = append(t.savepoints, name)
	return fn()
}

// fakeTransactor runs fn against the same fakeTx and counts transactions.
type fakeTransactor struct {
	tx    *fakeTx
	calls int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	f.calls++
	return fn(f.tx)
}
