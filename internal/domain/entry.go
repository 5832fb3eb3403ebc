package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one line of the transaction log.
type Entry struct {
	AccountID   int32           `json:"account_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	Balance     decimal.Decimal `json:"balance"`
}

// DefaultHistoryLimit is the number of recent entries returned when no limit is given.
const DefaultHistoryLimit = 10

// Transaction log descriptions.
const (
	EntryDeposit        = "DEPOSIT"
	EntryWithdrawal     = "WITHDRAWAL"
	EntryTransferOut    = "TRANSFER_OUT"
	EntryTransferIn     = "TRANSFER_IN"
	EntryLoanApproved   = "LOAN_APPROVED"
	EntryOpeningBalance = "OPENING_BALANCE"
)

// Credit formats a log description for money coming in.
func Credit(kind string, amount decimal.Decimal) string {
	return kind + " +" + amount.StringFixed(2)
}

// Debit formats a log description for money going out.
func Debit(kind string, amount decimal.Decimal) string {
	return kind + " -" + amount.StringFixed(2)
}
