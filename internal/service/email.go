package service

import (
	"context"
	"fmt"
	"strings"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// mailSender is satisfied by *sendgrid.Client.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, toEmail, toName, subject, body string) error {
	if toEmail == "" {
		return fmt.Errorf("send %q: recipient has no email address", subject)
	}
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	logger.ExternalServiceCall("sendgrid", "Send", "to", toEmail, "subject", subject)
	resp, err := s.client.SendWithContext(ctx, message)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func bookingSummaryText(d *domain.BookingDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Booking number: %d\n", d.BookingNumber)
	fmt.Fprintf(&b, "Location: %s\n", d.LocationName)
	fmt.Fprintf(&b, "Date: %s, %s to %s\n", d.BookingDate, d.BookingStart, d.BookingEnd)
	fmt.Fprintf(&b, "Vehicle: %s %s\n", d.Vehicle.Registration, d.Vehicle.Make)
	fmt.Fprintf(&b, "Services: %s\n", d.ServicesDetails)
	fmt.Fprintf(&b, "Total: £%s\n", d.NetAmount)
	return b.String()
}

func (s *emailService) SendBookingConfirmation(ctx context.Context, d *domain.BookingDetail) error {
	subject := fmt.Sprintf("Booking %d confirmed", d.BookingNumber)
	body := fmt.Sprintf("Hello %s,\n\nYour booking is confirmed and paid by %s.\n\n%s\nSee you soon.",
		d.CustomerName, d.PaymentMethod, bookingSummaryText(d))
	return s.send(ctx, d.CustomerEmail, d.CustomerName, subject, body)
}

func (s *emailService) SendBookingCancellation(ctx context.Context, d *domain.BookingDetail) error {
	subject := fmt.Sprintf("Booking %d cancelled", d.BookingNumber)
	body := fmt.Sprintf("Hello %s,\n\nYour booking has been cancelled.", d.CustomerName)
	if d.AmountRefunded != "" {
		body += fmt.Sprintf(" A refund of £%s will be returned by %s.", d.AmountRefunded, d.PaymentMethod)
	}
	body += "\n\n" + bookingSummaryText(d)
	return s.send(ctx, d.CustomerEmail, d.CustomerName, subject, body)
}

func (s *emailService) SendBookingReminder(ctx context.Context, h domain.BookingHeader) error {
	subject := fmt.Sprintf("Reminder: your booking on %s", h.BookingDate.Format(domain.DateLayout))
	body := fmt.Sprintf("Hello %s,\n\nThis is a reminder that %s is booked in at %s on %s at %s.\n\nBooking number: %d",
		h.CustomerName, h.Vehicle.Registration, h.LocationName, h.BookingDate.Format(domain.DateLayout), h.StartTime, h.ID)
	return s.send(ctx, h.CustomerEmail, h.CustomerName, subject, body)
}

func (s *emailService) SendLowStockAlert(ctx context.Context, to string, items []domain.InventoryItem) error {
	var b strings.Builder
	b.WriteString("The following items are at or below their reorder threshold:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %d in stock (threshold %d) - %s\n", item.Name, item.StockLevel, item.StockThreshold, item.Status())
	}
	subject := fmt.Sprintf("Low stock: %d items need reordering", len(items))
	return s.send(ctx, to, "", subject, b.String())
}

type noopEmailService struct{}

// NewNoopEmailService logs instead of sending. Used when no SendGrid key is configured.
func NewNoopEmailService() EmailService {
	return noopEmailService{}
}

func (noopEmailService) SendBookingConfirmation(ctx context.Context, d *domain.BookingDetail) error {
	logger.InfoContext(ctx, "Email disabled, skipping booking confirmation", "bookingID", d.BookingNumber)
	return nil
}

func (noopEmailService) SendBookingCancellation(ctx context.Context, d *domain.BookingDetail) error {
	logger.InfoContext(ctx, "Email disabled, skipping booking cancellation", "bookingID", d.BookingNumber)
	return nil
}

func (noopEmailService) SendBookingReminder(ctx context.Context, h domain.BookingHeader) error {
	logger.InfoContext(ctx, "Email disabled, skipping booking reminder", "bookingID", h.ID)
	return nil
}

func (noopEmailService) SendLowStockAlert(ctx context.Context, to string, items []domain.InventoryItem) error {
	logger.InfoContext(ctx, "Email disabled, skipping low stock alert", "items", len(items))
	return nil
}
