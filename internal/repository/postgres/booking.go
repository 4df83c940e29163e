package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
	"garage-booking/internal/repository"
)

type bookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `b.booking_id, b.customer_id, b.vehicle_id, b.location_id, b.booking_date, b.booking_start, b.booking_end,
	b.booking_status, b.payment_status, b.confirmed_at, b.cancelled_at, b.created_on, b.updated_on`

const headerQuery = `SELECT ` + bookingColumns + `,
	c.first_name || ' ' || c.last_name, c.email, l.location_name,
	v.vehicle_id, v.customer_id, v.registration_number, COALESCE(v.make, ''), COALESCE(v.vehicle_colour, ''), COALESCE(v.year, 0), COALESCE(v.fuel_type, '')
	FROM bookings b
	JOIN customers c ON c.customer_id = b.customer_id
	JOIN garage_locations l ON l.location_id = b.location_id
	JOIN vehicles v ON v.vehicle_id = b.vehicle_id`

const summaryQuery = `SELECT b.booking_id, c.first_name || ' ' || c.last_name, v.registration_number, b.booking_date, b.booking_start, b.booking_end,
	COALESCE(string_agg(s.service_name, ', ' ORDER BY s.service_name), ''), b.booking_status, b.payment_status
	FROM bookings b
	JOIN customers c ON c.customer_id = b.customer_id
	JOIN vehicles v ON v.vehicle_id = b.vehicle_id
	LEFT JOIN booking_services bs ON bs.booking_id = b.booking_id
	LEFT JOIN services s ON s.service_id = bs.service_id`

func scanBooking(row rowScanner, extra ...any) (*domain.Booking, error) {
	b := &domain.Booking{}
	var confirmedAt, cancelledAt sql.NullTime
	dest := []any{
		&b.ID, &b.CustomerID, &b.VehicleID, &b.LocationID, &b.BookingDate, &b.StartTime, &b.EndTime,
		&b.Status, &b.PaymentStatus, &confirmedAt, &cancelledAt, &b.CreatedOn, &b.UpdatedOn,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.ConfirmedAt = nullTimePtr(confirmedAt)
	b.CancelledAt = nullTimePtr(cancelledAt)
	return b, nil
}

func scanHeader(row rowScanner) (*domain.BookingHeader, error) {
	h := &domain.BookingHeader{}
	b, err := scanBooking(row,
		&h.CustomerName, &h.CustomerEmail, &h.LocationName,
		&h.Vehicle.ID, &h.Vehicle.CustomerID, &h.Vehicle.Registration, &h.Vehicle.Make, &h.Vehicle.Colour, &h.Vehicle.Year, &h.Vehicle.FuelType,
	)
	if err != nil {
		return nil, err
	}
	h.Booking = *b
	return h, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "customerID", b.CustomerID, "locationID", b.LocationID)

	query := `INSERT INTO bookings (customer_id, vehicle_id, location_id, booking_date, booking_start, booking_end, booking_status, payment_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING booking_id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		b.CustomerID, b.VehicleID, b.LocationID, b.BookingDate.Format(domain.DateLayout), b.StartTime, b.EndTime,
		b.Status, b.PaymentStatus, now, now,
	).Scan(&b.ID)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err, "customerID", b.CustomerID)
		return err
	}
	b.CreatedOn = now
	b.UpdatedOn = now

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.booking_id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *bookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.booking_id = $1 FOR UPDATE`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *bookingRepository) GetHeader(ctx context.Context, id int64) (*domain.BookingHeader, error) {
	h, err := scanHeader(r.db.QueryRowContext(ctx, headerQuery+` WHERE b.booking_id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return h, err
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.UpdateStatus", "bookingID", b.ID, "status", b.Status, "paymentStatus", b.PaymentStatus)

	query := `UPDATE bookings SET booking_status = $1, payment_status = $2, confirmed_at = $3, cancelled_at = $4, updated_on = $5
	          WHERE booking_id = $6`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, b.Status, b.PaymentStatus, b.ConfirmedAt, b.CancelledAt, now, b.ID)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.UpdateStatus", err, "bookingID", b.ID)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrBookingNotFound
	}
	b.UpdatedOn = now

	logger.ExitMethod("bookingRepository.UpdateStatus", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) AddLine(ctx context.Context, line *domain.BookingLine) error {
	query := `INSERT INTO booking_services (booking_id, service_id, quantity, unit_cost_pence, duration_hours)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, line.BookingID, line.ServiceID, line.Quantity, line.UnitCostPence, line.DurationHours).Scan(&line.ID)
}

func (r *bookingRepository) ListLines(ctx context.Context, bookingID int64) ([]domain.BookingLine, error) {
	query := `SELECT bs.id, bs.booking_id, bs.service_id, s.service_name, bs.quantity, bs.unit_cost_pence, bs.duration_hours
	          FROM booking_services bs JOIN services s ON s.service_id = bs.service_id
	          WHERE bs.booking_id = $1 ORDER BY s.service_name, bs.id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.BookingLine
	for rows.Next() {
		var l domain.BookingLine
		if err := rows.Scan(&l.ID, &l.BookingID, &l.ServiceID, &l.ServiceName, &l.Quantity, &l.UnitCostPence, &l.DurationHours); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.BookingSummary, error) {
	return r.listSummaries(ctx, ` WHERE b.customer_id = $1`, ` ORDER BY b.booking_date DESC, b.booking_start DESC`, customerID)
}

func (r *bookingRepository) ListByLocation(ctx context.Context, locationID int64, date *time.Time) ([]domain.BookingSummary, error) {
	where := ` WHERE b.location_id = $1`
	args := []any{locationID}
	if date != nil {
		where += ` AND b.booking_date = $2`
		args = append(args, date.Format(domain.DateLayout))
	}
	return r.listSummaries(ctx, where, ` ORDER BY b.booking_date, b.booking_start`, args...)
}

func (r *bookingRepository) listSummaries(ctx context.Context, where, order string, args ...any) ([]domain.BookingSummary, error) {
	query := summaryQuery + where + ` GROUP BY b.booking_id, c.customer_id, v.vehicle_id` + order
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []domain.BookingSummary
	for rows.Next() {
		var s domain.BookingSummary
		var date time.Time
		if err := rows.Scan(&s.BookingID, &s.CustomerName, &s.Registration, &date, &s.StartTime, &s.EndTime, &s.Services, &s.Status, &s.PaymentStatus); err != nil {
			return nil, err
		}
		s.BookingDate = date.Format(domain.DateLayout)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *bookingRepository) ListHeadersByDate(ctx context.Context, date time.Time, status domain.BookingStatus) ([]domain.BookingHeader, error) {
	query := headerQuery + ` WHERE b.booking_date = $1 AND b.booking_status = $2 ORDER BY b.location_id, b.booking_start`
	rows, err := r.db.QueryContext(ctx, query, date.Format(domain.DateLayout), status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingHeader
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}
