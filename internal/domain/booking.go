package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "Active"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusRefund  PaymentStatus = "Refund"
)

// DateLayout is the wire and storage layout of a booking date.
const DateLayout = "2006-01-02"

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusActive:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Booking is a reserved slot at a garage location. Rows are never deleted.
type Booking struct {
	ID            int64         `json:"booking_id"`
	CustomerID    int64         `json:"customer_id"`
	VehicleID     int64         `json:"vehicle_id"`
	LocationID    int64         `json:"location_id"`
	BookingDate   time.Time     `json:"booking_date"`
	StartTime     string        `json:"booking_start"` // HH:MM:SS wall clock
	EndTime       string        `json:"booking_end"`
	Status        BookingStatus `json:"booking_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	ConfirmedAt   *time.Time    `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedOn     time.Time     `json:"created_on"`
	UpdatedOn     time.Time     `json:"updated_on"`
}

// IsConfirmed reports whether confirmation has already been applied once.
// Rows marked Confirmed without a confirmed_at stamp count as confirmed.
func (b *Booking) IsConfirmed() bool {
	return b.ConfirmedAt != nil || b.Status == BookingStatusConfirmed
}

// BookingLine is one selected service on a booking. Cost and duration are
// copied from the catalog when the booking is created.
type BookingLine struct {
	ID            int64   `json:"id"`
	BookingID     int64   `json:"booking_id"`
	ServiceID     int64   `json:"service_id"`
	ServiceName   string  `json:"service_name"`
	Quantity      int32   `json:"quantity"`
	UnitCostPence Pence   `json:"unit_cost"`
	DurationHours float64 `json:"duration_hours"`
}

func (l BookingLine) Total() Pence {
	return l.UnitCostPence * Pence(l.Quantity)
}

// Display renders the line as "Name (x1 @ £29.99)".
func (l BookingLine) Display() string {
	return fmt.Sprintf("%s (x%d @ £%s)", l.ServiceName, l.Quantity, l.UnitCostPence)
}

// GrossTotal sums the line totals.
func GrossTotal(lines []BookingLine) Pence {
	var gross Pence
	for _, l := range lines {
		gross += l.Total()
	}
	return gross
}

// ServicesDetails joins the line displays for presentation only.
func ServicesDetails(lines []BookingLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Display())
	}
	return strings.Join(parts, ", ")
}

// BookingHeader is a booking joined with the names shown alongside it.
type BookingHeader struct {
	Booking
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	LocationName  string  `json:"location_name"`
	Vehicle       Vehicle `json:"vehicle"`
}

// BookingSummary is a row of a booking listing.
type BookingSummary struct {
	BookingID     int64         `json:"booking_id"`
	CustomerName  string        `json:"customer_name"`
	Registration  string        `json:"registration_number"`
	BookingDate   string        `json:"booking_date"`
	StartTime     string        `json:"booking_start"`
	EndTime       string        `json:"booking_end"`
	Services      string        `json:"services"`
	Status        BookingStatus `json:"booking_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// VehicleSummary is the vehicle block of a booking detail.
type VehicleSummary struct {
	Registration string `json:"registration"`
	Year         int32  `json:"year"`
	Make         string `json:"make"`
	Colour       string `json:"colour"`
	FuelType     string `json:"fuel_type"`
}

// BookingDetail is the read projection returned after every lifecycle operation.
type BookingDetail struct {
	BookingNumber   int64          `json:"booking_number"`
	CustomerID      int64          `json:"customer_id"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	LocationID      int64          `json:"location_id"`
	LocationName    string         `json:"location_name"`
	BookingDate     string         `json:"booking_date"`
	BookingStart    string         `json:"booking_start"`
	BookingEnd      string         `json:"booking_end"`
	Vehicle         VehicleSummary `json:"vehicle"`
	Lines           []BookingLine  `json:"lines"`
	ServicesDetails string         `json:"services_details"`
	GrossAmount     Pence          `json:"gross_amount"`
	AmountPaid      string         `json:"amount_paid"`
	DiscountApplied string         `json:"discount_applied"`
	NetAmount       Pence          `json:"net_amount"`
	BookingStatus   BookingStatus  `json:"booking_status"`
	PaymentStatus   PaymentStatus  `json:"payment_status"`
	PaymentMethod   string         `json:"payment_method"`
	AmountRefunded  string         `json:"amount_refunded,omitempty"`
}

const (
	pendingLabel = "Pending"
	noneLabel    = "None"
)

// NewBookingDetail assembles the projection from its parts. payment and refund
// are the booking's ledger rows, if any; discount is the one recorded on the payment.
func NewBookingDetail(h BookingHeader, lines []BookingLine, payment, refund *Transaction, discount *Discount) *BookingDetail {
	gross := GrossTotal(lines)
	d := &BookingDetail{
		BookingNumber:   h.ID,
		CustomerID:      h.CustomerID,
		CustomerName:    h.CustomerName,
		CustomerEmail:   h.CustomerEmail,
		LocationID:      h.LocationID,
		LocationName:    h.LocationName,
		BookingDate:     h.BookingDate.Format(DateLayout),
		BookingStart:    h.StartTime,
		BookingEnd:      h.EndTime,
		Vehicle: VehicleSummary{
			Registration: h.Vehicle.Registration,
			Year:         h.Vehicle.Year,
			Make:         h.Vehicle.Make,
			Colour:       h.Vehicle.Colour,
			FuelType:     h.Vehicle.FuelType,
		},
		Lines:           lines,
		ServicesDetails: ServicesDetails(lines),
		GrossAmount:     gross,
		AmountPaid:      pendingLabel,
		DiscountApplied: noneLabel,
		NetAmount:       gross,
		BookingStatus:   h.Status,
		PaymentStatus:   h.PaymentStatus,
		PaymentMethod:   pendingLabel,
	}
	if discount != nil {
		d.DiscountApplied = discount.AmountPence.String()
		d.NetAmount = discount.Apply(gross)
	}
	if payment != nil {
		d.AmountPaid = payment.AmountPence.String()
		d.PaymentMethod = string(payment.Method)
	}
	if refund != nil {
		d.AmountRefunded = refund.AmountPence.Abs().String()
	}
	return d
}
