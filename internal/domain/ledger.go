package domain

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodCard PaymentMethod = "Card"
)

// ParsePaymentMethod accepts "cash" or "card" in any case.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentMethodCash, nil
	case "card":
		return PaymentMethodCard, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// Transaction is an append-only payment ledger row. Refunds carry a negative amount.
type Transaction struct {
	ID          int64         `json:"transaction_id"`
	BookingID   int64         `json:"booking_id"`
	Date        time.Time     `json:"transaction_date"`
	AmountPence Pence         `json:"amount"`
	Method      PaymentMethod `json:"payment_method"`
	DiscountID  *int64        `json:"discount_id,omitempty"`
}

func (t Transaction) IsRefund() bool {
	return t.AmountPence < 0
}

// SplitTransactions returns the booking's charge and refund rows, if present.
func SplitTransactions(txs []Transaction) (payment, refund *Transaction) {
	for i := range txs {
		if txs[i].IsRefund() {
			if refund == nil {
				refund = &txs[i]
			}
			continue
		}
		if payment == nil {
			payment = &txs[i]
		}
	}
	return payment, refund
}

// Discount is a fixed amount taken off the gross at payment time.
type Discount struct {
	ID          int64  `json:"discount_id"`
	Code        string `json:"code"`
	AmountPence Pence  `json:"amount"`
}

// Apply subtracts the discount from gross, never going below zero.
func (d Discount) Apply(gross Pence) Pence {
	net := gross - d.AmountPence
	if net < 0 {
		return 0
	}
	return net
}
