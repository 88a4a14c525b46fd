package entity

import (
	"time"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
)

// Account holds the authoritative per-user balances. All amounts are integer
// cents. Balances are only ever mutated through the ledger's atomic
// credit/debit operations; the struct methods exist so the mutation rules
// live in one place.
type Account struct {
	ID               uint64
	balance          int64 // total balance in cents (private, invariant >= 0)
	withdrawable     int64 // withdrawable portion, invariant <= balance
	adCredit         int64 // separate advertiser-credit bucket, invariant >= 0
	lifetimeEarnings int64 // monotonically non-decreasing
	Suspended        bool
	StreakDays       int       // consecutive daily-claim streak length
	LastStreakDay    time.Time // UTC date of the most recent streak claim (zero if none)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewAccount creates an account with zero balances.
func NewAccount(id uint64, timeProvider coreport.TimeProvider) (*Account, error) {
	if id == 0 {
		return nil, errs.ErrInvalidAccountID
	}
	now := timeProvider.Now()
	return &Account{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RestoreAccount rebuilds an account from persisted state. Used by
// repositories; skips the zero-balance initialization of NewAccount.
func RestoreAccount(id uint64, balance, withdrawable, adCredit, lifetimeEarnings int64, suspended bool) *Account {
	return &Account{
		ID:               id,
		balance:          balance,
		withdrawable:     withdrawable,
		adCredit:         adCredit,
		lifetimeEarnings: lifetimeEarnings,
		Suspended:        suspended,
	}
}

// Balance returns the total balance in cents.
func (a *Account) Balance() int64 { return a.balance }

// Withdrawable returns the withdrawable balance in cents.
func (a *Account) Withdrawable() int64 { return a.withdrawable }

// AdCredit returns the ad-credit bucket in cents.
func (a *Account) AdCredit() int64 { return a.adCredit }

// LifetimeEarnings returns the lifetime earnings in cents.
func (a *Account) LifetimeEarnings() int64 { return a.lifetimeEarnings }

// CanDebit reports whether the balance covers the given amount.
func (a *Account) CanDebit(amountCents int64) bool {
	return a.balance >= amountCents
}

// ApplyCredit increases the balances implied by the transaction type.
// Earning-like types raise balance, withdrawable and lifetime earnings;
// ad_credit moves only the ad-credit bucket; deposits raise balance only.
func (a *Account) ApplyCredit(amountCents int64, txType TransactionType, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmountCents(amountCents); err != nil {
		return err
	}
	switch {
	case txType == TypeAdCredit:
		a.adCredit += amountCents
	case txType.EarningLike():
		a.balance += amountCents
		a.withdrawable += amountCents
		a.lifetimeEarnings += amountCents
	default:
		a.balance += amountCents
	}
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// ApplyRefund restores an escrowed amount to both the total and the
// withdrawable balance. Refunds are not earnings.
func (a *Account) ApplyRefund(amountCents int64, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmountCents(amountCents); err != nil {
		return err
	}
	a.balance += amountCents
	a.withdrawable += amountCents
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// ApplyDebit decreases balance. A withdrawal must be fully covered by the
// withdrawable bucket and reduces it by exactly the amount, so a later
// refund restores the bucket to what it was. Other debit types spend the
// total balance and drain withdrawable as far as it goes. Fails without
// mutation when the covering bucket cannot pay.
func (a *Account) ApplyDebit(amountCents int64, txType TransactionType, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmountCents(amountCents); err != nil {
		return err
	}
	if a.balance < amountCents {
		return errs.NewInsufficientFundsError(a.ID, amountCents, a.balance)
	}
	if txType == TypeWithdrawal && a.withdrawable < amountCents {
		return errs.NewInsufficientFundsError(a.ID, amountCents, a.withdrawable)
	}
	a.balance -= amountCents
	if a.withdrawable > amountCents {
		a.withdrawable -= amountCents
	} else {
		a.withdrawable = 0
	}
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// RecordStreakClaim advances the streak counter for a claim on the given UTC
// day. Claiming the day after the previous claim extends the streak; a gap of
// more than one day resets it to 1.
func (a *Account) RecordStreakClaim(day time.Time) int {
	day = DateUTC(day)
	switch {
	case a.LastStreakDay.IsZero():
		a.StreakDays = 1
	case day.Sub(DateUTC(a.LastStreakDay)) == 24*time.Hour:
		a.StreakDays++
	case day.Equal(DateUTC(a.LastStreakDay)):
		// same-day claims are blocked upstream by the natural key;
		// keep the counter unchanged if one slips through
	default:
		a.StreakDays = 1
	}
	a.LastStreakDay = day
	return a.StreakDays
}

// DateUTC truncates a timestamp to its UTC calendar date.
func DateUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStartUTC returns the most recent Sunday (UTC) on or before t.
func WeekStartUTC(t time.Time) time.Time {
	d := DateUTC(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}
