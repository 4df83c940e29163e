package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
	"garage-booking/internal/repository"
	"garage-booking/internal/utils"
)

type bookingService struct {
	txr       repository.Transactor
	bookings  repository.BookingRepository
	vehicles  repository.VehicleRepository
	ledger    repository.LedgerRepository
	lookup    VehicleLookup
	emailSvc  EmailService
	publisher EventPublisher
	now       func() time.Time
}

func NewBookingService(
	txr repository.Transactor,
	bookings repository.BookingRepository,
	vehicles repository.VehicleRepository,
	ledger repository.LedgerRepository,
	lookup VehicleLookup,
	emailSvc EmailService,
	publisher EventPublisher,
) BookingService {
	return &bookingService{
		txr:       txr,
		bookings:  bookings,
		vehicles:  vehicles,
		ledger:    ledger,
		lookup:    lookup,
		emailSvc:  emailSvc,
		publisher: publisher,
		now:       time.Now,
	}
}

// isUnselected matches an empty form field or the "select" placeholder.
func isUnselected(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "select")
}

// validateCreate applies the creation guards in order and stops at the first failure.
func validateCreate(in CreateBookingInput) error {
	if len(in.ServiceIDs) == 0 {
		return domain.ErrMissingService
	}
	if in.LocationID <= 0 {
		return domain.ErrMissingLocation
	}
	if strings.TrimSpace(in.BookingDate) == "" {
		return domain.ErrMissingDate
	}
	if isUnselected(in.StartTime) {
		return domain.ErrMissingTime
	}
	if domain.NormalizeRegistration(in.Vehicle.Registration) == "" {
		return domain.ErrMissingVehicle
	}
	if _, err := utils.ParseBookingDate(in.BookingDate); err != nil {
		return err
	}
	if _, _, err := utils.ParseClock(in.StartTime); err != nil {
		return err
	}
	return nil
}

func (s *bookingService) resolveCustomer(actor domain.Actor, requested int64) (int64, error) {
	switch {
	case actor.Role == domain.RoleCustomer:
		if requested != 0 && requested != actor.ID {
			return 0, domain.ErrForbidden
		}
		return actor.ID, nil
	case actor.Role.IsStaff():
		if requested <= 0 {
			return 0, domain.ErrMissingCustomer
		}
		return requested, nil
	default:
		return 0, domain.ErrForbidden
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor domain.Actor, in CreateBookingInput) (*domain.BookingDetail, error) {
	logger.EnterMethod("bookingService.CreateBooking", "actorID", actor.ID, "locationID", in.LocationID, "services", len(in.ServiceIDs))

	if err := validateCreate(in); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "reason", "validation")
		return nil, err
	}
	customerID, err := s.resolveCustomer(actor, in.CustomerID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "reason", "customer")
		return nil, err
	}

	details := in.Vehicle
	details.Registration = domain.NormalizeRegistration(details.Registration)
	details = s.enrichVehicle(ctx, customerID, details)

	var detail *domain.BookingDetail
	err = s.txr.WithinTx(ctx, func(tx repository.Tx) error {
		vehicle, err := findOrCreateVehicle(ctx, tx.Vehicles(), customerID, details)
		if err != nil {
			return err
		}

		services, err := tx.Catalog().GetServicesByIDs(ctx, in.ServiceIDs)
		if err != nil {
			return fmt.Errorf("load services: %w", err)
		}
		byID := make(map[int64]domain.Service, len(services))
		for _, svc := range services {
			byID[svc.ID] = svc
		}

		lines := make([]domain.BookingLine, 0, len(in.ServiceIDs))
		durations := make([]float64, 0, len(in.ServiceIDs))
		for _, id := range in.ServiceIDs {
			svc, ok := byID[id]
			if !ok {
				return domain.ErrServiceNotFound
			}
			lines = append(lines, domain.BookingLine{
				ServiceID:     svc.ID,
				ServiceName:   svc.Name,
				Quantity:      1,
				UnitCostPence: svc.CostPence,
				DurationHours: svc.DurationHours,
			})
			durations = append(durations, svc.DurationHours)
		}

		slot, err := utils.ComputeSlot(in.BookingDate, in.StartTime, durations)
		if err != nil {
			return err
		}

		booking := &domain.Booking{
			CustomerID:    customerID,
			VehicleID:     vehicle.ID,
			LocationID:    in.LocationID,
			BookingDate:   slot.Start,
			StartTime:     slot.StartText(),
			EndTime:       slot.EndText(),
			Status:        domain.BookingStatusActive,
			PaymentStatus: domain.PaymentStatusPending,
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		for i := range lines {
			lines[i].BookingID = booking.ID
			if err := tx.Bookings().AddLine(ctx, &lines[i]); err != nil {
				return fmt.Errorf("add booking line: %w", err)
			}
		}

		detail, err = loadDetail(ctx, tx.Bookings(), tx.Ledger(), booking.ID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	s.publish(ctx, domain.EventBookingCreated, detail)
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", detail.BookingNumber)
	return detail, nil
}

// enrichVehicle fills in make, colour, year and fuel from the registration
// lookup when the caller left them blank and the vehicle is not yet on file.
// A failed lookup leaves the details as submitted.
func (s *bookingService) enrichVehicle(ctx context.Context, customerID int64, details domain.VehicleDetails) domain.VehicleDetails {
	if s.lookup == nil || details.Make != "" {
		return details
	}
	if _, err := s.vehicles.GetByRegistration(ctx, customerID, details.Registration); !errors.Is(err, domain.ErrVehicleNotFound) {
		return details
	}

	found, err := s.lookup.Lookup(ctx, details.Registration)
	if err != nil {
		logger.WarnContext(ctx, "Vehicle lookup failed, using submitted details", "registration", details.Registration, "error", err)
		return details
	}
	if details.Colour == "" {
		details.Colour = found.Colour
	}
	if details.Year == 0 {
		details.Year = found.Year
	}
	if details.FuelType == "" {
		details.FuelType = found.FuelType
	}
	details.Make = found.Make
	return details
}

// findOrCreateVehicle returns the customer's vehicle with that registration,
// inserting it if absent. Existing rows are never updated.
func findOrCreateVehicle(ctx context.Context, repo repository.VehicleRepository, customerID int64, details domain.VehicleDetails) (*domain.Vehicle, error) {
	vehicle, err := repo.GetByRegistration(ctx, customerID, details.Registration)
	if err == nil {
		return vehicle, nil
	}
	if !errors.Is(err, domain.ErrVehicleNotFound) {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}

	vehicle = &domain.Vehicle{
		CustomerID:   customerID,
		Registration: details.Registration,
		Make:         details.Make,
		Colour:       details.Colour,
		Year:         details.Year,
		FuelType:     details.FuelType,
	}
	if err := repo.Create(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return vehicle, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, actor domain.Actor, bookingID int64, in ConfirmBookingInput) (*domain.BookingDetail, error) {
	logger.EnterMethod("bookingService.ConfirmBooking", "actorID", actor.ID, "bookingID", bookingID)

	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		logger.ExitMethodWithError("bookingService.ConfirmBooking", err)
		return nil, err
	}

	var (
		detail  *domain.BookingDetail
		changed bool
	)
	err = s.txr.WithinTx(ctx, func(tx repository.Tx) error {
		booking, err := tx.Bookings().GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !actor.CanAccessCustomer(booking.CustomerID) {
			return domain.ErrForbidden
		}
		if booking.Status == domain.BookingStatusCancelled {
			return domain.ErrInvalidTransition
		}

		if !booking.IsConfirmed() {
			if !booking.Status.CanTransitionTo(domain.BookingStatusConfirmed) {
				return domain.ErrInvalidTransition
			}
			if err := s.applyConfirmation(ctx, tx, booking, method, in.DiscountID); err != nil {
				return err
			}
			changed = true
		}

		detail, err = loadDetail(ctx, tx.Bookings(), tx.Ledger(), bookingID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.ConfirmBooking", err)
		return nil, err
	}

	if changed {
		s.publish(ctx, domain.EventBookingConfirmed, detail)
		if err := s.emailSvc.SendBookingConfirmation(ctx, detail); err != nil {
			logger.WarnContext(ctx, "Failed to send booking confirmation", "bookingID", bookingID, "error", err)
		}
	}
	logger.ExitMethod("bookingService.ConfirmBooking", "bookingID", bookingID, "changed", changed)
	return detail, nil
}

// applyConfirmation records the payment, marks the booking paid and deducts
// the stock its services consume.
func (s *bookingService) applyConfirmation(ctx context.Context, tx repository.Tx, booking *domain.Booking, method domain.PaymentMethod, discountID *int64) error {
	lines, err := tx.Bookings().ListLines(ctx, booking.ID)
	if err != nil {
		return fmt.Errorf("load booking lines: %w", err)
	}

	net := domain.GrossTotal(lines)
	if discountID != nil {
		discount, err := tx.Ledger().GetDiscount(ctx, *discountID)
		if err != nil {
			return err
		}
		net = discount.Apply(net)
	}

	if booking.PaymentStatus == domain.PaymentStatusPending {
		payment := &domain.Transaction{
			BookingID:   booking.ID,
			AmountPence: net,
			Method:      method,
			DiscountID:  discountID,
		}
		if err := tx.Ledger().CreateTransaction(ctx, payment); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
	}

	now := s.now()
	booking.Status = domain.BookingStatusConfirmed
	booking.PaymentStatus = domain.PaymentStatusPaid
	booking.ConfirmedAt = &now
	if err := tx.Bookings().UpdateStatus(ctx, booking); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	return moveStock(ctx, tx, lines, -1)
}

func (s *bookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.BookingDetail, error) {
	logger.EnterMethod("bookingService.CancelBooking", "actorID", actor.ID, "bookingID", bookingID)

	var detail *domain.BookingDetail
	err := s.txr.WithinTx(ctx, func(tx repository.Tx) error {
		booking, err := tx.Bookings().GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !actor.CanAccessCustomer(booking.CustomerID) {
			return domain.ErrForbidden
		}
		if booking.Status == domain.BookingStatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		if !booking.Status.CanTransitionTo(domain.BookingStatusCancelled) {
			return domain.ErrInvalidTransition
		}

		if booking.PaymentStatus == domain.PaymentStatusPaid {
			if err := s.refund(ctx, tx, booking.ID); err != nil {
				return err
			}
		}
		if booking.IsConfirmed() {
			lines, err := tx.Bookings().ListLines(ctx, booking.ID)
			if err != nil {
				return fmt.Errorf("load booking lines: %w", err)
			}
			if err := moveStock(ctx, tx, lines, 1); err != nil {
				return err
			}
		}

		now := s.now()
		booking.Status = domain.BookingStatusCancelled
		booking.PaymentStatus = domain.PaymentStatusRefund
		booking.CancelledAt = &now
		if err := tx.Bookings().UpdateStatus(ctx, booking); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		detail, err = loadDetail(ctx, tx.Bookings(), tx.Ledger(), bookingID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.CancelBooking", err)
		return nil, err
	}

	s.publish(ctx, domain.EventBookingCancelled, detail)
	if err := s.emailSvc.SendBookingCancellation(ctx, detail); err != nil {
		logger.WarnContext(ctx, "Failed to send booking cancellation", "bookingID", bookingID, "error", err)
	}
	logger.ExitMethod("bookingService.CancelBooking", "bookingID", bookingID)
	return detail, nil
}

// refund appends a negative transaction mirroring the booking's payment.
// A failed insert is logged and the cancellation proceeds without it.
func (s *bookingService) refund(ctx context.Context, tx repository.Tx, bookingID int64) error {
	txs, err := tx.Ledger().ListByBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	payment, existing := domain.SplitTransactions(txs)
	if existing != nil {
		return nil
	}
	if payment == nil {
		logger.WarnContext(ctx, "Paid booking has no payment transaction, skipping refund", "bookingID", bookingID)
		return nil
	}
	if payment.AmountPence == 0 {
		logger.DebugContext(ctx, "Nothing was charged, skipping refund", "bookingID", bookingID)
		return nil
	}

	err = tx.Savepoint(ctx, "refund", func() error {
		return tx.Ledger().CreateTransaction(ctx, &domain.Transaction{
			BookingID:   bookingID,
			AmountPence: -payment.AmountPence.Abs(),
			Method:      payment.Method,
		})
	})
	if err != nil {
		logger.ErrorContext(ctx, "Refund transaction failed, cancelling without refund", "bookingID", bookingID, "error", err)
	}
	return nil
}

// moveStock applies sign*units for every item consumed by the lines. Items are
// adjusted in id order so concurrent bookings lock rows consistently.
func moveStock(ctx context.Context, tx repository.Tx, lines []domain.BookingLine, sign int32) error {
	if len(lines) == 0 {
		return nil
	}
	serviceIDs := make([]int64, 0, len(lines))
	for _, l := range lines {
		serviceIDs = append(serviceIDs, l.ServiceID)
	}
	links, err := tx.Inventory().ListLinks(ctx, serviceIDs)
	if err != nil {
		return fmt.Errorf("load inventory links: %w", err)
	}

	moves := domain.StockMovements(lines, links)
	for _, itemID := range slices.Sorted(maps.Keys(moves)) {
		if err := tx.Inventory().AdjustStock(ctx, itemID, sign*moves[itemID]); err != nil {
			return fmt.Errorf("adjust stock for item %d: %w", itemID, err)
		}
	}
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.BookingDetail, error) {
	logger.EnterMethod("bookingService.GetBooking", "actorID", actor.ID, "bookingID", bookingID)

	detail, err := loadDetail(ctx, s.bookings, s.ledger, bookingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.GetBooking", err)
		return nil, err
	}
	if !actor.CanAccessCustomer(detail.CustomerID) {
		logger.ExitMethodWithError("bookingService.GetBooking", domain.ErrForbidden)
		return nil, domain.ErrForbidden
	}

	logger.ExitMethod("bookingService.GetBooking", "bookingID", bookingID)
	return detail, nil
}

func (s *bookingService) ListCustomerBookings(ctx context.Context, actor domain.Actor) ([]domain.BookingSummary, error) {
	logger.EnterMethod("bookingService.ListCustomerBookings", "actorID", actor.ID)

	if actor.Role != domain.RoleCustomer {
		logger.ExitMethodWithError("bookingService.ListCustomerBookings", domain.ErrForbidden)
		return nil, domain.ErrForbidden
	}
	list, err := s.bookings.ListByCustomer(ctx, actor.ID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.ListCustomerBookings", err)
		return nil, err
	}

	logger.ExitMethod("bookingService.ListCustomerBookings", "count", len(list))
	return list, nil
}

func (s *bookingService) ListLocationBookings(ctx context.Context, actor domain.Actor, locationID int64, date string) ([]domain.BookingSummary, error) {
	logger.EnterMethod("bookingService.ListLocationBookings", "actorID", actor.ID, "locationID", locationID, "date", date)

	if !actor.Role.IsStaff() {
		logger.ExitMethodWithError("bookingService.ListLocationBookings", domain.ErrForbidden)
		return nil, domain.ErrForbidden
	}

	var day *time.Time
	if strings.TrimSpace(date) != "" {
		d, err := utils.ParseBookingDate(date)
		if err != nil {
			logger.ExitMethodWithError("bookingService.ListLocationBookings", err)
			return nil, err
		}
		day = &d
	}

	list, err := s.bookings.ListByLocation(ctx, locationID, day)
	if err != nil {
		logger.ExitMethodWithError("bookingService.ListLocationBookings", err)
		return nil, err
	}

	logger.ExitMethod("bookingService.ListLocationBookings", "count", len(list))
	return list, nil
}

func (s *bookingService) publish(ctx context.Context, eventType domain.BookingEventType, detail *domain.BookingDetail) {
	if err := s.publisher.Publish(ctx, domain.NewBookingEvent(eventType, detail, s.now())); err != nil {
		logger.WarnContext(ctx, "Failed to publish booking event", "type", eventType, "bookingID", detail.BookingNumber, "error", err)
	}
}

// loadDetail builds the booking projection from the header, its lines and
// the ledger rows recorded against it.
func loadDetail(ctx context.Context, bookings repository.BookingRepository, ledger repository.LedgerRepository, bookingID int64) (*domain.BookingDetail, error) {
	header, err := bookings.GetHeader(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	lines, err := bookings.ListLines(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking lines: %w", err)
	}
	txs, err := ledger.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	payment, refund := domain.SplitTransactions(txs)
	var discount *domain.Discount
	if payment != nil && payment.DiscountID != nil {
		discount, err = ledger.GetDiscount(ctx, *payment.DiscountID)
		if err != nil {
			return nil, err
		}
	}
	return domain.NewBookingDetail(*header, lines, payment, refund, discount), nil
}
