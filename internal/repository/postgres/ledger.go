package postgres

import (
	"context"
	"database/sql"
	"errors"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
	"garage-booking/internal/repository"
)

type ledgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

// CreateTransaction appends a ledger row dated today. Refunds carry a negative amount.
func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `INSERT INTO transactions (booking_id, transaction_date, amount_pence, payment_method, discount_id)
	          VALUES ($1, CURRENT_DATE, $2, $3, $4) RETURNING transaction_id, transaction_date`
	logger.DatabaseCall("insert transaction", query, "bookingID", tx.BookingID, "amount", tx.AmountPence)
	err := r.db.QueryRowContext(ctx, query, tx.BookingID, tx.AmountPence, tx.Method, tx.DiscountID).Scan(&tx.ID, &tx.Date)
	if err != nil {
		logger.DatabaseResult("insert transaction", 0, err, "bookingID", tx.BookingID)
		return err
	}
	logger.DatabaseResult("insert transaction", 1, nil, "transactionID", tx.ID)
	return nil
}

func (r *ledgerRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	query := `SELECT transaction_id, booking_id, transaction_date, amount_pence, payment_method, discount_id
	          FROM transactions WHERE booking_id = $1 ORDER BY transaction_id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var discountID sql.NullInt64
		if err := rows.Scan(&tx.ID, &tx.BookingID, &tx.Date, &tx.AmountPence, &tx.Method, &discountID); err != nil {
			return nil, err
		}
		if discountID.Valid {
			id := discountID.Int64
			tx.DiscountID = &id
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *ledgerRepository) GetDiscount(ctx context.Context, id int64) (*domain.Discount, error) {
	d := &domain.Discount{}
	query := `SELECT discount_id, code, amount_pence FROM discounts WHERE discount_id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Code, &d.AmountPence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
