// Package loanservice manages business logic layer of the loan workflow.
package loanservice

import (
	"context"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/loanrepo"
	"github.com/JMan003/banking-system-project/pkg/metricspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LoanRepo provides data access layer interface needed by loan service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package loanservice
type LoanRepo interface {
	Create(ctx context.Context, accountID int32, amount decimal.Decimal) (domain.Loan, error)
	Get(ctx context.Context, id int32) (domain.Loan, error)
	ListByStatus(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error)
	ListAssigned(ctx context.Context, staffID int32) ([]domain.Loan, error)
	Assign(ctx context.Context, loanID, staffID int32) (domain.Loan, error)
	Process(ctx context.Context, loanID, staffID int32, decision domain.Decision, accounts loanrepo.Creditor) (domain.Loan, domain.Account, error)
}

// AccountRepo provides the accounts that loans are credited to.
type AccountRepo interface {
	Get(ctx context.Context, id int32) (domain.Account, error)
	Deposit(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error)
}

// StaffRepo provides staff lookups for assignment.
type StaffRepo interface {
	Get(ctx context.Context, id int32) (domain.Staff, error)
}

// EntryRepo provides the transaction log.
type EntryRepo interface {
	Append(ctx context.Context, accountID int32, description string, balance decimal.Decimal) (domain.Entry, error)
}

// Service facilitates loan service layer logic.
type Service struct {
	loans    LoanRepo
	accounts AccountRepo
	staff    StaffRepo
	entries  EntryRepo
	metrics  *metricspkg.Metrics
}

// New returns loan service struct to manage loan business logic.
func New(lr LoanRepo, ar AccountRepo, sr StaffRepo, er EntryRepo, m *metricspkg.Metrics) *Service {
	return &Service{
		loans:    lr,
		accounts: ar,
		staff:    sr,
		entries:  er,
		metrics:  m,
	}
}

// Request files a loan application for an active account.
func (s *Service) Request(ctx context.Context, accountID int32, amount decimal.Decimal) (loan domain.Loan, err error) {
	defer func() { s.metrics.LedgerOp("loan_request", err) }()

	if !domain.ValidAmount(amount) {
		return domain.Loan{}, domain.ErrInvalidAmount
	}

	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return domain.Loan{}, err
	}

	if !a.Active {
		return domain.Loan{}, domain.ErrInactiveAccount
	}

	return s.loans.Create(ctx, accountID, amount)
}

// ListRequested returns loans waiting for a manager to assign them.
func (s *Service) ListRequested(ctx context.Context) ([]domain.Loan, error) {
	return s.loans.ListByStatus(ctx, domain.LoanRequested)
}

// ListAssigned returns loans waiting for staffID's decision.
func (s *Service) ListAssigned(ctx context.Context, staffID int32) ([]domain.Loan, error) {
	return s.loans.ListAssigned(ctx, staffID)
}

// Assign hands a requested loan to an employee.
func (s *Service) Assign(ctx context.Context, loanID, employeeID int32) (loan domain.Loan, err error) {
	defer func() { s.metrics.LedgerOp("loan_assign", err) }()

	employee, err := s.staff.Get(ctx, employeeID)
	if err != nil {
		return domain.Loan{}, err
	}

	if employee.Role != domain.RoleEmployee {
		return domain.Loan{}, domain.ErrWrongRole
	}

	return s.loans.Assign(ctx, loanID, employeeID)
}

// Process approves or rejects a loan assigned to staffID. Approval credits
// the account and logs the credit.
func (s *Service) Process(
	ctx context.Context, loanID, staffID int32, decision domain.Decision,
) (loan domain.Loan, err error) {
	defer func() { s.metrics.LedgerOp("loan_process", err) }()

	if decision != domain.Approve && decision != domain.Reject {
		return domain.Loan{}, domain.ErrInvalidInput
	}

	loan, account, err := s.loans.Process(ctx, loanID, staffID, decision, s.accounts)
	if err != nil {
		return domain.Loan{}, err
	}

	if decision == domain.Approve {
		description := domain.Credit(domain.EntryLoanApproved, loan.Amount)
		if _, err := s.entries.Append(ctx, account.ID, description, account.Balance); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).
				Str("severity", "critical").
				Int32("account_id", account.ID).
				Int32("loan_id", loan.ID).
				Msg("transaction log append failed after committed mutation")
		}
	}

	return loan, nil
}
