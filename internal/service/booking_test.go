package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"garage-booking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type bookingFixture struct {
	bookings  *MockBookingRepo
	vehicles  *MockVehicleRepo
	catalog   *MockCatalogRepo
	ledger    *MockLedgerRepo
	inventory *MockInventoryRepo
	email     *MockEmailService
	publisher *MockPublisher
	lookup    *MockVehicleLookup
	txr       *fakeTransactor
	svc       BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings:  new(MockBookingRepo),
		vehicles:  new(MockVehicleRepo),
		catalog:   new(MockCatalogRepo),
		ledger:    new(MockLedgerRepo),
		inventory: new(MockInventoryRepo),
		email:     new(MockEmailService),
		publisher: new(MockPublisher),
		lookup:    new(MockVehicleLookup),
	}
	f.txr = &fakeTransactor{tx: &fakeTx{
		bookings:  f.bookings,
		vehicles:  f.vehicles,
		catalog:   f.catalog,
		ledger:    f.ledger,
		inventory: f.inventory,
	}}
	svc := NewBookingService(f.txr, f.bookings, f.vehicles, f.ledger, f.lookup, f.email, f.publisher).(*bookingService)
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

var (
	customer = domain.Actor{ID: 3, Role: domain.RoleCustomer}
	admin    = domain.Actor{ID: 1, Role: domain.RoleAdmin}

	catalogServices = []domain.Service{
		{ID: 1, Name: "MOT", CostPence: 2999, DurationHours: 1},
		{ID: 2, Name: "Oil change", CostPence: 1500, DurationHours: 0.5},
	}
	bookingLines = []domain.BookingLine{
		{ID: 1, BookingID: 42, ServiceID: 1, ServiceName: "MOT", Quantity: 1, UnitCostPence: 2999, DurationHours: 1},
		{ID: 2, BookingID: 42, ServiceID: 2, ServiceName: "Oil change", Quantity: 1, UnitCostPence: 1500, DurationHours: 0.5},
	}
	serviceLinks = []domain.ServiceInventoryLink{
		{ServiceID: 1, ItemID: 10, QuantityRequired: 1},
		{ServiceID: 2, ItemID: 10, QuantityRequired: 1},
		{ServiceID: 2, ItemID: 11, QuantityRequired: 2},
	}
)

func validInput() CreateBookingInput {
	return CreateBookingInput{
		LocationID:  1,
		BookingDate: "2026-03-02",
		StartTime:   "9:00 AM",
		Vehicle:     domain.VehicleDetails{Registration: "ab12 cde", Make: "Ford", Colour: "Blue"},
		ServiceIDs:  []int64{1, 2},
	}
}

func activeBooking() *domain.Booking {
	return &domain.Booking{
		ID:            42,
		CustomerID:    3,
		VehicleID:     7,
		LocationID:    1,
		BookingDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:00:00",
		EndTime:       "10:30:00",
		Status:        domain.BookingStatusActive,
		PaymentStatus: domain.PaymentStatusPending,
	}
}

func confirmedBooking() *domain.Booking {
	b := activeBooking()
	at := fixedNow
	b.Status = domain.BookingStatusConfirmed
	b.PaymentStatus = domain.PaymentStatusPaid
	b.ConfirmedAt = &at
	return b
}

func headerFor(b *domain.Booking) *domain.BookingHeader {
	return &domain.BookingHeader{
		Booking:       *b,
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		LocationName:  "Leeds",
		Vehicle:       domain.Vehicle{ID: 7, CustomerID: 3, Registration: "AB12CDE", Make: "Ford"},
	}
}

func payment(method domain.PaymentMethod, amount domain.Pence) domain.Transaction {
	return domain.Transaction{ID: 100, BookingID: 42, Date: fixedNow, AmountPence: amount, Method: method}
}

// expectCreatePersistence sets up the writes of a successful two-service booking.
func (f *bookingFixture) expectCreatePersistence() {
	f.catalog.On("GetServicesByIDs", mock.Anything, []int64{1, 2}).Return(catalogServices, nil)
	f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.CustomerID == 3 && b.VehicleID == 7 && b.LocationID == 1 &&
			b.StartTime == "09:00:00" && b.EndTime == "10:30:00" &&
			b.Status == domain.BookingStatusActive && b.PaymentStatus == domain.PaymentStatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = 42
	}).Return(nil)
	f.bookings.On("AddLine", mock.Anything, mock.MatchedBy(func(l *domain.BookingLine) bool {
		return l.BookingID == 42 && l.Quantity == 1
	})).Return(nil).Twice()
	f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(headerFor(activeBooking()), nil)
	f.bookings.On("ListLines", mock.Anything, int64(42)).Return(bookingLines, nil)
	f.ledger.On("ListByBooking", mock.Anything, int64(42)).Return([]domain.Transaction{}, nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.BookingEvent) bool {
		return e.Type == domain.EventBookingCreated && e.BookingID == 42
	})).Return(nil)
}

func (f *bookingFixture) expectVehicleCreated(match func(v *domain.Vehicle) bool) {
	f.vehicles.On("Create", mock.Anything, mock.MatchedBy(match)).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Vehicle).ID = 7
	}).Return(nil)
}

func TestCreateBooking_Guards(t *testing.T) {
	tests := []struct {
		name   string
		actor  domain.Actor
		mutate func(in *CreateBookingInput)
		want   error
	}{
		{"NothingSelected", customer, func(in *CreateBookingInput) { *in = CreateBookingInput{} }, domain.ErrMissingService},
		{"NoLocation", customer, func(in *CreateBookingInput) { in.LocationID = 0; in.BookingDate = "" }, domain.ErrMissingLocation},
		{"NoDate", customer, func(in *CreateBookingInput) { in.BookingDate = ""; in.StartTime = "" }, domain.ErrMissingDate},
		{"PlaceholderTime", customer, func(in *CreateBookingInput) { in.StartTime = "Select" }, domain.ErrMissingTime},
		{"NoRegistration", customer, func(in *CreateBookingInput) { in.Vehicle.Registration = "  " }, domain.ErrMissingVehicle},
		{"BadDate", customer, func(in *CreateBookingInput) { in.BookingDate = "02/03/2026" }, domain.ErrInvalidDate},
		{"BadTime", customer, func(in *CreateBookingInput) { in.StartTime = "25:00" }, domain.ErrInvalidTime},
		{"StaffWithoutCustomer", admin, func(in *CreateBookingInput) {}, domain.ErrMissingCustomer},
		{"CustomerForSomeoneElse", customer, func(in *CreateBookingInput) { in.CustomerID = 8 }, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			in := validInput()
			tt.mutate(&in)

			detail, err := f.svc.CreateBooking(context.Background(), tt.actor, in)
			assert.Nil(t, detail)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, f.txr.calls)
			f.vehicles.AssertNotCalled(t, "GetByRegistration", mock.Anything, mock.Anything, mock.Anything)
			f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture()
		f.vehicles.On("GetByRegistration", mock.Anything, int64(3), "AB12CDE").Return(nil, domain.ErrVehicleNotFound)
		f.expectVehicleCreated(func(v *domain.Vehicle) bool {
			return v.CustomerID == 3 && v.Registration == "AB12CDE" && v.Make == "Ford"
		})
		f.expectCreatePersistence()

		detail, err := f.svc.CreateBooking(context.Background(), customer, validInput())
		require.NoError(t, err)

		assert.Equal(t, int64(42), detail.BookingNumber)
		assert.Equal(t, "44.99", detail.GrossAmount.String())
		assert.Equal(t, detail.GrossAmount, detail.NetAmount)
		assert.Equal(t, "Pending", detail.AmountPaid)
		assert.Equal(t, "Pending", detail.PaymentMethod)
		assert.Equal(t, "None", detail.DiscountApplied)
		assert.Equal(t, "MOT (x1 @ £29.99), Oil change (x1 @ £15.00)", detail.ServicesDetails)
		assert.Equal(t, domain.BookingStatusActive, detail.BookingStatus)
		assert.Equal(t, 1, f.txr.calls)
		f.lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
		f.bookings.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("StaffOnBehalfOfCustomer", func(t *testing.T) {
		f := newBookingFixture()
		f.vehicles.On("GetByRegistration", mock.Anything, int64(3), "AB12CDE").
			Return(&domain.Vehicle{ID: 7, CustomerID: 3, Registration: "AB12CDE"}, nil)
		f.expectCreatePersistence()

		in := validInput()
		in.CustomerID = 3
		_, err := f.svc.CreateBooking(context.Background(), admin, in)
		require.NoError(t, err)
		f.vehicles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("LookupFillsMissingMake", func(t *testing.T) {
		f := newBookingFixture()
		f.vehicles.On("GetByRegistration", mock.Anything, int64(3), "AB12CDE").Return(nil, domain.ErrVehicleNotFound)
		f.lookup.On("Lookup", mock.Anything, "AB12CDE").
			Return(&domain.VehicleDetails{Registration: "AB12CDE", Make: "FORD", Colour: "RED", Year: 2019, FuelType: "PETROL"}, nil)
		f.expectVehicleCreated(func(v *domain.Vehicle) bool {
			return v.Make == "FORD" && v.Colour == "Blue" && v.Year == 2019 && v.FuelType == "PETROL"
		})
		f.expectCreatePersistence()

		in := validInput()
		in.Vehicle.Make = ""
		_, err := f.svc.CreateBooking(context.Background(), customer, in)
		require.NoError(t, err)
		f.lookup.AssertExpectations(t)
		f.vehicles.AssertExpectations(t)
	})

	t.Run("LookupFailureKeepsSubmittedDetails", func(t *testing.T) {
		f := newBookingFixture()
		f.vehicles.On("GetByRegistration", mock.Anything, int64(3), "AB12CDE").Return(nil, domain.ErrVehicleNotFound)
		f.lookup.On("Lookup", mock.Anything, "AB12CDE").Return(nil, errors.New("dvla unavailable"))
		f.expectVehicleCreated(func(v *domain.Vehicle) bool { return v.Make == "" && v.Colour == "Blue" })
		f.expectCreatePersistence()

		in := validInput()
		in.Vehicle.Make = ""
		_, err := f.svc.CreateBooking(context.Background(), customer, in)
		require.NoError(t, err)
	})

	t.Run("UnknownService", func(t *testing.T) {
		f := newBookingFixture()
		f.vehicles.On("GetByRegistration", mock.Anything, int64(3), "AB12CDE").
			Return(&domain.Vehicle{ID: 7}, nil)
		f.catalog.On("GetServicesByIDs", mock.Anything, []int64{1, 99}).Return(catalogServices[:1], nil)

		in := validInput()
		in.ServiceIDs = []int64{1, 99}
		_, err := f.svc.CreateBooking(context.Background(), customer, in)
		assert.ErrorIs(t, err, domain.ErrServiceNotFound)
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("SlotPastMidnight", func(t *testing.T) {
		f := newBookingFixture()
		f.vehicles.On("GetByRegistration", mock.Anything, int64(3), "AB12CDE").
			Return(&domain.Vehicle{ID: 7}, nil)
		f.catalog.On("GetServicesByIDs", mock.Anything, []int64{1, 2}).Return(catalogServices, nil)

		in := validInput()
		in.StartTime = "11:00 PM"
		_, err := f.svc.CreateBooking(context.Background(), customer, in)
		assert.ErrorIs(t, err, domain.ErrInvalidSlot)
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

// expectConfirmWrites sets up the payment, status and stock writes of a first confirmation.
func (f *bookingFixture) expectConfirmWrites(method domain.PaymentMethod, amount domain.Pence, discountID *int64) {
	f.ledger.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
		discountOK := (discountID == nil && tx.DiscountID == nil) ||
			(discountID != nil && tx.DiscountID != nil && *tx.DiscountID == *discountID)
		return tx.BookingID == 42 && tx.AmountPence == amount && tx.Method == method && discountOK
	})).Return(nil).Once()
	f.bookings.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusConfirmed && b.PaymentStatus == domain.PaymentStatusPaid &&
			b.ConfirmedAt != nil && b.ConfirmedAt.Equal(fixedNow)
	})).Return(nil).Once()
	f.inventory.On("ListLinks", mock.Anything, []int64{1, 2}).Return(serviceLinks, nil)
	f.inventory.On("AdjustStock", mock.Anything, int64(10), int32(-2)).Return(nil).Once()
	f.inventory.On("AdjustStock", mock.Anything, int64(11), int32(-2)).Return(nil).Once()
}

func TestConfirmBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(activeBooking(), nil)
		f.bookings.On("ListLines", mock.Anything, int64(42)).Return(bookingLines, nil)
		f.expectConfirmWrites(domain.PaymentMethodCash, 4499, nil)
		f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(headerFor(confirmedBooking()), nil)
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).
			Return([]domain.Transaction{payment(domain.PaymentMethodCash, 4499)}, nil)
		f.email.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.BookingEvent) bool {
			return e.Type == domain.EventBookingConfirmed
		})).Return(nil).Once()

		detail, err := f.svc.ConfirmBooking(context.Background(), customer, 42, ConfirmBookingInput{PaymentMethod: "cash"})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, detail.BookingStatus)
		assert.Equal(t, domain.PaymentStatusPaid, detail.PaymentStatus)
		assert.Equal(t, "44.99", detail.AmountPaid)
		assert.Equal(t, "Cash", detail.PaymentMethod)
		f.ledger.AssertExpectations(t)
		f.inventory.AssertExpectations(t)
		f.email.AssertExpectations(t)
	})

	for _, method := range []domain.PaymentMethod{domain.PaymentMethodCash, domain.PaymentMethodCard} {
		t.Run("SecondConfirmIsNoOp/"+string(method), func(t *testing.T) {
			f := newBookingFixture()
			f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(activeBooking(), nil).Once()
			f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(confirmedBooking(), nil).Once()
			f.bookings.On("ListLines", mock.Anything, int64(42)).Return(bookingLines, nil)
			f.expectConfirmWrites(method, 4499, nil)
			f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(headerFor(confirmedBooking()), nil)
			f.ledger.On("ListByBooking", mock.Anything, int64(42)).
				Return([]domain.Transaction{payment(method, 4499)}, nil)
			f.email.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil)
			f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

			in := ConfirmBookingInput{PaymentMethod: string(method)}
			_, err := f.svc.ConfirmBooking(context.Background(), customer, 42, in)
			require.NoError(t, err)
			detail, err := f.svc.ConfirmBooking(context.Background(), customer, 42, in)
			require.NoError(t, err)

			assert.Equal(t, "44.99", detail.AmountPaid)
			assert.Equal(t, string(method), detail.PaymentMethod)
			f.ledger.AssertNumberOfCalls(t, "CreateTransaction", 1)
			f.bookings.AssertNumberOfCalls(t, "UpdateStatus", 1)
			f.inventory.AssertNumberOfCalls(t, "ListLinks", 1)
			f.inventory.AssertNumberOfCalls(t, "AdjustStock", 2)
			f.email.AssertNumberOfCalls(t, "SendBookingConfirmation", 1)
			f.publisher.AssertNumberOfCalls(t, "Publish", 1)
		})
	}

	t.Run("ConfirmedWithoutTimestampIsNoOp", func(t *testing.T) {
		f := newBookingFixture()
		legacy := confirmedBooking()
		legacy.ConfirmedAt = nil
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(legacy, nil)
		f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(headerFor(confirmedBooking()), nil)
		f.bookings.On("ListLines", mock.Anything, int64(42)).Return(bookingLines, nil)
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).
			Return([]domain.Transaction{payment(domain.PaymentMethodCard, 4499)}, nil)

		detail, err := f.svc.ConfirmBooking(context.Background(), customer, 42, ConfirmBookingInput{PaymentMethod: "Card"})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, detail.BookingStatus)
		f.ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
		f.inventory.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
		f.email.AssertNotCalled(t, "SendBookingConfirmation", mock.Anything, mock.Anything)
	})

	t.Run("WithDiscount", func(t *testing.T) {
		f := newBookingFixture()
		discountID := int64(5)
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(activeBooking(), nil)
		f.bookings.On("ListLines", mock.Anything, int64(42)).Return(bookingLines, nil)
		f.ledger.On("GetDiscount", mock.Anything, int64(5)).Return(&domain.Discount{ID: 5, Code: "SPRING", AmountPence: 1000}, nil)
		f.expectConfirmWrites(domain.PaymentMethodCash, 3499, &discountID)
		f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(headerFor(confirmedBooking()), nil)
		paid := payment(domain.PaymentMethodCash, 3499)
		paid.DiscountID = &discountID
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).Return([]domain.Transaction{paid}, nil)
		f.email.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		detail, err := f.svc.ConfirmBooking(context.Background(), customer, 42, ConfirmBookingInput{PaymentMethod: "cash", DiscountID: &discountID})
		require.NoError(t, err)
		assert.Equal(t, "44.99", detail.GrossAmount.String())
		assert.Equal(t, "10.00", detail.DiscountApplied)
		assert.Equal(t, "34.99", detail.NetAmount.String())
		assert.Equal(t, "34.99", detail.AmountPaid)
	})

	t.Run("InvalidPaymentMethod", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.ConfirmBooking(context.Background(), customer, 42, ConfirmBookingInput{PaymentMethod: "cheque"})
		assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
		assert.Equal(t, 0, f.txr.calls)
	})

	t.Run("Cancelled", func(t *testing.T) {
		f := newBookingFixture()
		b := activeBooking()
		b.Status = domain.BookingStatusCancelled
		b.PaymentStatus = domain.PaymentStatusRefund
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(b, nil)

		_, err := f.svc.ConfirmBooking(context.Background(), customer, 42, ConfirmBookingInput{PaymentMethod: "card"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		f.ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("OtherCustomer", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(activeBooking(), nil)

		other := domain.Actor{ID: 4, Role: domain.RoleCustomer}
		_, err := f.svc.ConfirmBooking(context.Background(), other, 42, ConfirmBookingInput{PaymentMethod: "card"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(nil, domain.ErrBookingNotFound)

		_, err := f.svc.ConfirmBooking(context.Background(), admin, 42, ConfirmBookingInput{PaymentMethod: "card"})
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})
}

func (f *bookingFixture) expectCancelled() {
	f.bookings.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusCancelled && b.PaymentStatus == domain.PaymentStatusRefund &&
			b.CancelledAt != nil
	})).Return(nil).Once()
	cancelled := activeBooking()
	cancelled.Status = domain.BookingStatusCancelled
	cancelled.PaymentStatus = domain.PaymentStatusRefund
	f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(headerFor(cancelled), nil)
	f.bookings.On("ListLines", mock.Anything, int64(42)).Return(bookingLines, nil)
	f.email.On("SendBookingCancellation", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.BookingEvent) bool {
		return e.Type == domain.EventBookingCancelled
	})).Return(nil)
}

func TestCancelBooking(t *testing.T) {
	t.Run("PaidBookingRefunded", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(confirmedBooking(), nil)
		charge := payment(domain.PaymentMethodCard, 4499)
		refund := domain.Transaction{ID: 101, BookingID: 42, AmountPence: -4499, Method: domain.PaymentMethodCard}
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).Return([]domain.Transaction{charge}, nil).Once()
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).Return([]domain.Transaction{charge, refund}, nil)
		f.ledger.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.AmountPence == -4499 && tx.Method == domain.PaymentMethodCard && tx.DiscountID == nil
		})).Return(nil).Once()
		f.inventory.On("ListLinks", mock.Anything, []int64{1, 2}).Return(serviceLinks, nil)
		f.inventory.On("AdjustStock", mock.Anything, int64(10), int32(2)).Return(nil).Once()
		f.inventory.On("AdjustStock", mock.Anything, int64(11), int32(2)).Return(nil).Once()
		f.expectCancelled()

		detail, err := f.svc.CancelBooking(context.Background(), customer, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, detail.BookingStatus)
		assert.Equal(t, domain.PaymentStatusRefund, detail.PaymentStatus)
		assert.Equal(t, "44.99", detail.AmountPaid)
		assert.Equal(t, "44.99", detail.AmountRefunded)
		assert.Equal(t, []string{"refund"}, f.txr.tx.savepoints)
		f.ledger.AssertExpectations(t)
		f.inventory.AssertExpectations(t)
		f.bookings.AssertExpectations(t)
	})

	t.Run("UnpaidBookingNoRefund", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(activeBooking(), nil)
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).Return([]domain.Transaction{}, nil)
		f.expectCancelled()

		detail, err := f.svc.CancelBooking(context.Background(), customer, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusRefund, detail.PaymentStatus)
		f.ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		f.inventory.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.txr.tx.savepoints)
	})

	t.Run("RefundFailureStillCancels", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(confirmedBooking(), nil)
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).
			Return([]domain.Transaction{payment(domain.PaymentMethodCash, 4499)}, nil)
		f.ledger.On("CreateTransaction", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))
		f.inventory.On("ListLinks", mock.Anything, []int64{1, 2}).Return(serviceLinks, nil)
		f.inventory.On("AdjustStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.expectCancelled()

		detail, err := f.svc.CancelBooking(context.Background(), admin, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, detail.BookingStatus)
		assert.Empty(t, detail.AmountRefunded)
		f.bookings.AssertCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("FullyDiscountedNoRefund", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(confirmedBooking(), nil)
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).
			Return([]domain.Transaction{payment(domain.PaymentMethodCash, 0)}, nil)
		f.inventory.On("ListLinks", mock.Anything, []int64{1, 2}).Return(serviceLinks, nil)
		f.inventory.On("AdjustStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.expectCancelled()

		detail, err := f.svc.CancelBooking(context.Background(), customer, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, detail.BookingStatus)
		assert.Empty(t, detail.AmountRefunded)
		f.ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		assert.Empty(t, f.txr.tx.savepoints)
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		f := newBookingFixture()
		b := activeBooking()
		b.Status = domain.BookingStatusCancelled
		f.bookings.On("GetForUpdate", mock.Anything, int64(42)).Return(b, nil)

		_, err := f.svc.CancelBooking(context.Background(), customer, 42)
		assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
		f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
		f.email.AssertNotCalled(t, "SendBookingCancellation", mock.Anything, mock.Anything)
	})
}

func TestGetBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(headerFor(activeBooking()), nil)
		f.bookings.On("ListLines", mock.Anything, int64(42)).Return(bookingLines, nil)
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).Return([]domain.Transaction{}, nil)

		detail, err := f.svc.GetBooking(context.Background(), customer, 42)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", detail.CustomerName)
		assert.Equal(t, "2026-03-02", detail.BookingDate)
		assert.Equal(t, "AB12CDE", detail.Vehicle.Registration)
	})

	t.Run("OtherCustomer", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(headerFor(activeBooking()), nil)
		f.bookings.On("ListLines", mock.Anything, int64(42)).Return(bookingLines, nil)
		f.ledger.On("ListByBooking", mock.Anything, int64(42)).Return([]domain.Transaction{}, nil)

		_, err := f.svc.GetBooking(context.Background(), domain.Actor{ID: 4, Role: domain.RoleCustomer}, 42)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetHeader", mock.Anything, int64(42)).Return(nil, domain.ErrBookingNotFound)

		_, err := f.svc.GetBooking(context.Background(), admin, 42)
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})
}

func TestListBookings(t *testing.T) {
	summaries := []domain.BookingSummary{{BookingID: 42, CustomerName: "Ada Lovelace", Status: domain.BookingStatusActive}}

	t.Run("Customer", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("ListByCustomer", mock.Anything, int64(3)).Return(summaries, nil)

		list, err := f.svc.ListCustomerBookings(context.Background(), customer)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("LocationByDate", func(t *testing.T) {
		f := newBookingFixture()
		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		f.bookings.On("ListByLocation", mock.Anything, int64(1), &day).Return(summaries, nil)

		list, err := f.svc.ListLocationBookings(context.Background(), admin, 1, "2026-03-02")
		require.NoError(t, err)
		assert.Equal(t, summaries, list)
	})

	t.Run("LocationAllDates", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("ListByLocation", mock.Anything, int64(1), (*time.Time)(nil)).Return(summaries, nil)

		_, err := f.svc.ListLocationBookings(context.Background(), admin, 1, "")
		require.NoError(t, err)
	})

	t.Run("LocationRequiresStaff", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.ListLocationBookings(context.Background(), customer, 1, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("LocationBadDate", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.ListLocationBookings(context.Background(), admin, 1, "tomorrow")
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})
}
