package order

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MaxInstallments is how many payments an order can record
const MaxInstallments = 4

// DepositPercent is the share of the total required before production
const DepositPercent = 25

// Installment is one recorded payment
type Installment struct {
	Number int             `json:"number"`
	Amount decimal.Decimal `json:"amount"`
	PaidAt time.Time       `json:"paid_at"`
}

// DepositAmount returns the deposit due on total
func DepositAmount(total decimal.Decimal) decimal.Decimal {
	return valueobject.PercentOf(total, DepositPercent)
}

// ComputePaymentStatus derives the payment status from what is due and what was paid.
// An order with nothing due is never fully paid; payments on it count as the deposit.
func ComputePaymentStatus(due, paid decimal.Decimal) PaymentStatus {
	if !paid.IsPositive() {
		return PaymentStatusUnpaid
	}
	if due.IsPositive() && paid.GreaterThanOrEqual(due) {
		return PaymentStatusFullyPaid
	}
	if paid.GreaterThanOrEqual(DepositAmount(due)) {
		return PaymentStatusDepositPaid
	}
	return PaymentStatusPartiallyPaid
}
