package jobs

import (
	"context"
	"time"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
)

// SendBookingReminders emails every customer with a confirmed booking tomorrow (UTC).
func (jr *JobRunner) SendBookingReminders() {
	jr.runWithRecovery("SendBookingReminders", func() {
		ctx := context.Background()

		y, m, d := jr.now().UTC().Date()
		tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)

		headers, err := jr.bookings.ListHeadersByDate(ctx, tomorrow, domain.BookingStatusConfirmed)
		if err != nil {
			logger.Error("Failed to list bookings for reminders", "date", tomorrow.Format(domain.DateLayout), "error", err)
			return
		}

		sent, failed := 0, 0
		for _, h := range headers {
			if h.CustomerEmail == "" {
				logger.Warn("Booking has no customer email, skipping reminder", "bookingID", h.ID)
				failed++
				continue
			}
			if err := jr.email.SendBookingReminder(ctx, h); err != nil {
				logger.Error("Failed to send booking reminder", "bookingID", h.ID, "error", err)
				failed++
				continue
			}
			sent++
		}

		logger.Info("Booking reminders processed", "date", tomorrow.Format(domain.DateLayout), "sent", sent, "failed", failed)
	})
}
