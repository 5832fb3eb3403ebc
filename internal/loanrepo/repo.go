// Package loanrepo manages repository layer of loan applications.
package loanrepo

import (
	"context"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// Creditor credits an approved loan to its account.
type Creditor interface {
	Deposit(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error)
}

// Repo facilitates loan repository layer logic.
type Repo struct {
	loans   *dbpkg.Table[domain.Loan]
	counter *dbpkg.Table[int32]
}

// NewRepo returns loan Repo.
func NewRepo(db *dbpkg.DB) *Repo {
	return &Repo{
		loans:   dbpkg.NewTable[domain.Loan](db, FileName, codec{}),
		counter: dbpkg.NewTable[int32](db, CounterFileName, counterCodec{}),
	}
}

func fail(l *zerolog.Logger, err error) error {
	if errors.Is(err, dbpkg.ErrNoRecord) {
		return domain.ErrLoanNotFound
	}

	l.Error().Err(err).Send()

	return dbpkg.Classify(err)
}

func byID(id int32) func(domain.Loan) bool {
	return func(l domain.Loan) bool { return l.ID == id }
}

// NextID issues the next loan id. The counter starts at 1 and is never reused.
func (r *Repo) NextID(ctx context.Context) (int32, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.counter.Open()
	if err != nil {
		return 0, fail(l, err)
	}
	defer h.Close()

	g, err := h.Lock(ctx, 0, dbpkg.ToEOF, dbpkg.Exclusive)
	if err != nil {
		return 0, fail(l, err)
	}
	defer g.Release()

	next, err := h.ReadAt(0)
	switch {
	case errors.Is(err, dbpkg.ErrNoRecord):
		next = 1
	case err != nil:
		return 0, fail(l, err)
	}

	if err := h.WriteAt(0, next+1); err != nil {
		return 0, fail(l, err)
	}

	return next, nil
}

// Create files a new loan application in the Requested state.
func (r *Repo) Create(ctx context.Context, accountID int32, amount decimal.Decimal) (domain.Loan, error) {
	l := zerolog.Ctx(ctx)

	id, err := r.NextID(ctx)
	if err != nil {
		return domain.Loan{}, err
	}

	loan := domain.Loan{
		ID:         id,
		AccountID:  accountID,
		Amount:     amount,
		Status:     domain.LoanRequested,
		AssignedTo: mo.None[int32](),
	}

	h, err := r.loans.Open()
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}
	defer h.Close()

	if _, err := h.Append(ctx, loan); err != nil {
		return domain.Loan{}, fail(l, err)
	}

	return loan, nil
}

// Get returns the loan with the given id.
func (r *Repo) Get(ctx context.Context, id int32) (domain.Loan, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.loans.Open()
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}
	defer h.Close()

	off, _, err := h.Locate(ctx, byID(id))
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}

	g, err := h.LockRecord(ctx, off, dbpkg.Shared)
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}
	defer g.Release()

	loan, err := h.ReadAt(off)
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}

	return loan, nil
}

func (r *Repo) list(ctx context.Context, keep func(domain.Loan) bool) ([]domain.Loan, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.loans.Open()
	if err != nil {
		return nil, fail(l, err)
	}
	defer h.Close()

	var all []domain.Loan

	err = h.Scan(ctx, func(_ int64, loan domain.Loan) error {
		all = append(all, loan)
		return nil
	})
	if err != nil {
		return nil, fail(l, err)
	}

	return lo.Filter(all, func(loan domain.Loan, _ int) bool { return keep(loan) }), nil
}

// ListByStatus returns every loan in the given state in filing order.
func (r *Repo) ListByStatus(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	return r.list(ctx, func(loan domain.Loan) bool { return loan.Status == status })
}

// ListAssigned returns the loans awaiting a decision by staffID.
func (r *Repo) ListAssigned(ctx context.Context, staffID int32) ([]domain.Loan, error) {
	return r.list(ctx, func(loan domain.Loan) bool {
		return loan.Status == domain.LoanAssigned && loan.AssignedTo == mo.Some(staffID)
	})
}

// Assign moves a Requested loan to Assigned for staffID. The status is
// re-checked after the record is locked; a loan that left Requested since it
// was listed yields ErrAlreadyProcessed.
func (r *Repo) Assign(ctx context.Context, loanID, staffID int32) (domain.Loan, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.loans.Open()
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}
	defer h.Close()

	off, _, err := h.Locate(ctx, byID(loanID))
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}

	g, err := h.LockRecord(ctx, off, dbpkg.Exclusive)
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}
	defer g.Release()

	loan, err := h.ReadAt(off)
	if err != nil {
		return domain.Loan{}, fail(l, err)
	}

	if loan.Status != domain.LoanRequested {
		return domain.Loan{}, domain.ErrAlreadyProcessed
	}

	loan.Status = domain.LoanAssigned
	loan.AssignedTo = mo.Some(staffID)

	if err := h.WriteAt(off, loan); err != nil {
		return domain.Loan{}, fail(l, err)
	}

	return loan, nil
}

// Process records staffID's decision on an Assigned loan. The loan record is
// locked first; on approval the owning account is then locked and credited by
// accounts. The returned account is the zero value on rejection.
func (r *Repo) Process(
	ctx context.Context, loanID, staffID int32, decision domain.Decision, accounts Creditor,
) (domain.Loan, domain.Account, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.loans.Open()
	if err != nil {
		return domain.Loan{}, domain.Account{}, fail(l, err)
	}
	defer h.Close()

	off, _, err := h.Locate(ctx, byID(loanID))
	if err != nil {
		return domain.Loan{}, domain.Account{}, fail(l, err)
	}

	g, err := h.LockRecord(ctx, off, dbpkg.Exclusive)
	if err != nil {
		return domain.Loan{}, domain.Account{}, fail(l, err)
	}
	defer g.Release()

	loan, err := h.ReadAt(off)
	if err != nil {
		return domain.Loan{}, domain.Account{}, fail(l, err)
	}

	switch {
	case loan.Status == domain.LoanApproved || loan.Status == domain.LoanRejected:
		return domain.Loan{}, domain.Account{}, domain.ErrAlreadyProcessed
	case loan.Status != domain.LoanAssigned || loan.AssignedTo != mo.Some(staffID):
		return domain.Loan{}, domain.Account{}, domain.ErrNotAssignee
	}

	var account domain.Account

	switch decision {
	case domain.Approve:
		account, err = accounts.Deposit(ctx, loan.AccountID, loan.Amount)
		if err != nil {
			return domain.Loan{}, domain.Account{}, err
		}

		loan.Status = domain.LoanApproved
	case domain.Reject:
		loan.Status = domain.LoanRejected
	default:
		return domain.Loan{}, domain.Account{}, domain.ErrInvalidInput
	}

	if err := h.WriteAt(off, loan); err != nil {
		if decision == domain.Approve {
			l.Error().Err(err).Int32("loan_id", loan.ID).Int32("account_id", loan.AccountID).
				Str("severity", "critical").Msg("loan credited but status not saved")
		}

		return domain.Loan{}, domain.Account{}, fail(l, err)
	}

	return loan, account, nil
}
