package domain

import (
	"fmt"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// LoanStatus is a loan application state.
type LoanStatus int32

// Loan states. Approved and Rejected are terminal.
const (
	LoanRequested LoanStatus = iota
	LoanAssigned
	LoanApproved
	LoanRejected
)

func (s LoanStatus) String() string {
	switch s {
	case LoanRequested:
		return "requested"
	case LoanAssigned:
		return "assigned"
	case LoanApproved:
		return "approved"
	case LoanRejected:
		return "rejected"
	}

	return "unknown"
}

// MarshalText encodes the status by name.
func (s LoanStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *LoanStatus) UnmarshalText(text []byte) error {
	for _, st := range []LoanStatus{LoanRequested, LoanAssigned, LoanApproved, LoanRejected} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}

	return fmt.Errorf("%w: unknown loan status %q", ErrInvalidInput, text)
}

// Loan holds a loan application.
type Loan struct {
	ID         int32            `json:"id"`
	AccountID  int32            `json:"account_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Status     LoanStatus       `json:"status"`
	AssignedTo mo.Option[int32] `json:"assigned_to"`
}

// Decision is the outcome chosen when processing an assigned loan.
type Decision int

// Decisions.
const (
	Approve Decision = iota + 1
	Reject
)

// ParseDecision converts "approve" or "reject" into a Decision.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "approve":
		return Approve, nil
	case "reject":
		return Reject, nil
	}

	return 0, ErrInvalidInput
}
