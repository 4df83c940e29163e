package jobs

import (
	"context"

	"garage-booking/internal/logger"
)

// ReportLowStock mails the manager a list of every item at or below its reorder threshold.
func (jr *JobRunner) ReportLowStock() {
	jr.runWithRecovery("ReportLowStock", func() {
		ctx := context.Background()

		items, err := jr.inventory.ListLowStock(ctx)
		if err != nil {
			logger.Error("Failed to list low stock items", "error", err)
			return
		}
		if len(items) == 0 {
			logger.Info("No items below reorder threshold")
			return
		}

		to := jr.config.SendGrid.ManagerEmail
		if to == "" {
			logger.Warn("No manager email configured, low stock report not sent", "items", len(items))
			return
		}
		if err := jr.email.SendLowStockAlert(ctx, to, items); err != nil {
			logger.Error("Failed to send low stock report", "items", len(items), "error", err)
			return
		}
		logger.Info("Low stock report sent", "items", len(items))
	})
}
