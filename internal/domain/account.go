package domain

import "github.com/shopspring/decimal"

// Field limits, in bytes, of the fixed-size records.
const (
	MaxOwnerLen     = 50
	MaxStaffNameLen = 25
	MaxSecretLen    = 72
)

// MaxAmount bounds a single deposit, withdrawal, transfer, loan or opening
// balance. MaxBalance bounds what an account may hold.
var (
	MaxAmount  = decimal.New(1, 12)
	MaxBalance = decimal.New(1, 18)
)

// Account holds a customer account.
type Account struct {
	ID      int32           `json:"id"`
	Owner   string          `json:"owner"`
	PIN     string          `json:"-"`
	Balance decimal.Decimal `json:"balance"`
	Active  bool            `json:"active"`
}

// CreateAccountParams is the input data to open a customer account.
type CreateAccountParams struct {
	ID             int32
	Owner          string
	PIN            string
	OpeningBalance decimal.Decimal
}

// ValidAmount reports whether amount is positive, at most MaxAmount and has
// at most two decimal places.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.LessThanOrEqual(MaxAmount) && amount.Equal(amount.Round(2))
}
