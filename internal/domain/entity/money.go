package entity

import (
	"fmt"
	"strings"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
)

// All monetary values in the ledger are integer cents. These helpers exist
// only for validation at the boundary and for human-readable messages.

// MaxAmountCents caps a single ledger movement. Anything above this is
// almost certainly a caller bug and would risk overflow in running totals.
const MaxAmountCents int64 = 1_000_000_000_00

// ValidateAmountCents checks that an amount is usable as a ledger movement.
func ValidateAmountCents(amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", errs.ErrInvalidAmount, amountCents)
	}
	if amountCents > MaxAmountCents {
		return errs.ErrAmountOverflow
	}
	return nil
}

// FormatCents renders integer cents as a decimal string, e.g. 1015 -> "10.15".
func FormatCents(amountCents int64) string {
	sign := ""
	if amountCents < 0 {
		sign = "-"
		amountCents = -amountCents
	}
	return fmt.Sprintf("%s%d.%02d", sign, amountCents/100, amountCents%100)
}

// FormatUSD renders integer cents with a dollar sign for user-facing messages.
func FormatUSD(amountCents int64) string {
	s := FormatCents(amountCents)
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}
