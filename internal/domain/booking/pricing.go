package booking

import (
	"fmt"
	"math"
	"time"

	"github.com/nusastay/service-rental/internal/domain/catalog"
)

// DepositFraction is the fixed share of the contract price charged when the
// customer chooses the deposit payment option.
const DepositFraction = 0.5

// PaymentOption selects how much of the booking is paid up front.
type PaymentOption string

const (
	PayFull    PaymentOption = "full"
	PayDeposit PaymentOption = "deposit"
)

// IsValid returns true if the payment option is recognized.
func (o PaymentOption) IsValid() bool {
	return o == PayFull || o == PayDeposit
}

// String returns the string representation of the payment option.
func (o PaymentOption) String() string { return string(o) }

// PricingCalculator computes contract prices for a service and date range.
// Implementations must be pure: the same inputs always yield the same amount.
type PricingCalculator interface {
	// ComputeTotal returns the full contract price for the given range.
	ComputeTotal(unit catalog.Unit, unitPrice int64, start, end time.Time) (int64, error)
}

// StandardPricingCalculator implements the default rental pricing rules.
type StandardPricingCalculator struct{}

// NewStandardPricingCalculator creates a new StandardPricingCalculator.
func NewStandardPricingCalculator() *StandardPricingCalculator {
	return &StandardPricingCalculator{}
}

// ComputeTotal computes the contract price in rupiah.
//
//   - per_hour: unitPrice x whole hours between start and end, truncated. A
//     span shorter than one hour prices at 0; callers reject non-positive
//     totals before creating a booking.
//   - per_day: unitPrice x whole days between start and end, with a same-day
//     range floored to one day so a booking is never free.
func (c *StandardPricingCalculator) ComputeTotal(unit catalog.Unit, unitPrice int64, start, end time.Time) (int64, error) {
	if unitPrice < 0 {
		return 0, fmt.Errorf("unit price cannot be negative")
	}
	if !start.Before(end) {
		return 0, fmt.Errorf("start %s must be before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	switch unit {
	case catalog.UnitPerHour:
		hours := int64(end.Sub(start).Hours())
		return unitPrice * hours, nil
	case catalog.UnitPerDay:
		days := int64(end.Sub(start).Hours() / 24)
		if days < 1 {
			days = 1
		}
		return unitPrice * days, nil
	default:
		return 0, fmt.Errorf("unknown unit for pricing: %s", unit)
	}
}

// Deposit returns the rounded deposit slice of a contract price. The contract
// price itself is never reduced by choosing the deposit option; the deposit
// is only the amount of the first payment.
func Deposit(total int64, fraction float64) int64 {
	return int64(math.Round(float64(total) * fraction))
}

// AmountDue returns how much the next payment should be for the chosen
// option given the contract price and the verified amount paid so far. The
// deposit option only applies to the first payment; once anything has been
// paid the remaining balance is due.
func AmountDue(option PaymentOption, totalPrice, totalPaid int64) (int64, error) {
	if !option.IsValid() {
		return 0, fmt.Errorf("invalid payment option: %s", option)
	}
	remaining := totalPrice - totalPaid
	if remaining < 0 {
		remaining = 0
	}
	if option == PayDeposit && totalPaid == 0 {
		return Deposit(totalPrice, DepositFraction), nil
	}
	return remaining, nil
}
