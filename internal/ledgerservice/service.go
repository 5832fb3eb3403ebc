// Package ledgerservice manages business logic layer of customer accounts:
// balance changes, transfers, history and account administration.
package ledgerservice

import (
	"context"
	"errors"
	"strings"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/errorspkg"
	"github.com/JMan003/banking-system-project/pkg/metricspkg"
	"github.com/JMan003/banking-system-project/pkg/passpkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountRepo provides data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type AccountRepo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id int32) (domain.Account, error)
	Deposit(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, fromID, toID int32, amount decimal.Decimal) (domain.Account, domain.Account, error)
	SetActive(ctx context.Context, id int32, active bool) (domain.Account, error)
	UpdateOwner(ctx context.Context, id int32, owner string) (domain.Account, error)
	UpdatePIN(ctx context.Context, id int32, hashedPIN string) error
}

// EntryRepo provides the transaction log.
type EntryRepo interface {
	Append(ctx context.Context, accountID int32, description string, balance decimal.Decimal) (domain.Entry, error)
	RecentByAccount(ctx context.Context, accountID int32, limit int) ([]domain.Entry, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	accounts     AccountRepo
	entries      EntryRepo
	metrics      *metricspkg.Metrics
	historyLimit int
}

// New returns ledger service struct to manage account business logic.
// metrics may be nil.
func New(ar AccountRepo, er EntryRepo, m *metricspkg.Metrics, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = domain.DefaultHistoryLimit
	}

	return &Service{
		accounts:     ar,
		entries:      er,
		metrics:      m,
		historyLimit: historyLimit,
	}
}

// record appends a log entry for a mutation that is already committed. A
// failure is reported but does not undo or fail the mutation.
func (s *Service) record(ctx context.Context, accountID int32, description string, balance decimal.Decimal) {
	if _, err := s.entries.Append(ctx, accountID, description, balance); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("severity", "critical").
			Int32("account_id", accountID).
			Str("description", description).
			Msg("transaction log append failed after committed mutation")
	}
}

// Balance returns the account.
func (s *Service) Balance(ctx context.Context, id int32) (domain.Account, error) {
	return s.accounts.Get(ctx, id)
}

// Deposit credits an active account.
func (s *Service) Deposit(ctx context.Context, id int32, amount decimal.Decimal) (a domain.Account, err error) {
	defer func() { s.metrics.LedgerOp("deposit", err) }()

	if !domain.ValidAmount(amount) {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	a, err = s.accounts.Deposit(ctx, id, amount)
	if err != nil {
		return domain.Account{}, err
	}

	s.record(ctx, id, domain.Credit(domain.EntryDeposit, amount), a.Balance)

	return a, nil
}

// Withdraw debits an active account without letting it go negative.
func (s *Service) Withdraw(ctx context.Context, id int32, amount decimal.Decimal) (a domain.Account, err error) {
	defer func() { s.metrics.LedgerOp("withdraw", err) }()

	if !domain.ValidAmount(amount) {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	a, err = s.accounts.Withdraw(ctx, id, amount)
	if err != nil {
		return domain.Account{}, err
	}

	s.record(ctx, id, domain.Debit(domain.EntryWithdrawal, amount), a.Balance)

	return a, nil
}

// Transfer moves amount from one account to another and returns the source account.
func (s *Service) Transfer(ctx context.Context, fromID, toID int32, amount decimal.Decimal) (from domain.Account, err error) {
	defer func() { s.metrics.LedgerOp("transfer", err) }()

	switch {
	case fromID == toID:
		return domain.Account{}, domain.ErrSelfTransfer
	case toID <= 0:
		return domain.Account{}, domain.ErrInvalidID
	case !domain.ValidAmount(amount):
		return domain.Account{}, domain.ErrInvalidAmount
	}

	from, to, err := s.accounts.Transfer(ctx, fromID, toID, amount)
	if err != nil {
		return domain.Account{}, err
	}

	s.record(ctx, fromID, domain.Debit(domain.EntryTransferOut, amount), from.Balance)
	s.record(ctx, toID, domain.Credit(domain.EntryTransferIn, amount), to.Balance)

	return from, nil
}

// History returns the most recent entries of the account, oldest first.
// A non-positive limit selects the configured default.
func (s *Service) History(ctx context.Context, id int32, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}

	if _, err := s.accounts.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.entries.RecentByAccount(ctx, id, limit)
}

// VerifyPIN checks the PIN of an active account.
func (s *Service) VerifyPIN(ctx context.Context, id int32, pin string) (domain.Account, error) {
	a, err := s.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, domain.ErrWrongPIN
		}

		return domain.Account{}, err
	}

	if err := passpkg.Check(pin, a.PIN); err != nil {
		zerolog.Ctx(ctx).Info().Int32("account_id", id).Msg("wrong PIN")
		return domain.Account{}, domain.ErrWrongPIN
	}

	if !a.Active {
		return domain.Account{}, domain.ErrInactiveAccount
	}

	return a, nil
}

// ChangePIN replaces the account PIN.
func (s *Service) ChangePIN(ctx context.Context, id int32, pin string) error {
	hashed, err := hashPIN(ctx, pin)
	if err != nil {
		return err
	}

	return s.accounts.UpdatePIN(ctx, id, hashed)
}

func hashPIN(ctx context.Context, pin string) (string, error) {
	switch {
	case strings.TrimSpace(pin) == "":
		return "", domain.ErrEmptySecret
	case len(pin) > domain.MaxSecretLen:
		return "", domain.ErrSecretTooLong
	}

	hashed, err := passpkg.Hash(pin)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	return hashed, nil
}

// checkOwner rejects owner names that are blank or do not fit the record.
func checkOwner(owner string) error {
	switch {
	case strings.TrimSpace(owner) == "":
		return domain.ErrEmptyName
	case len(owner) > domain.MaxOwnerLen:
		return domain.ErrNameTooLong
	}

	return nil
}

// CreateCustomer opens an account. A negative opening balance is treated as zero.
func (s *Service) CreateCustomer(
	ctx context.Context, id int32, owner, pin string, openingBalance decimal.Decimal,
) (domain.Account, error) {
	if id <= 0 {
		return domain.Account{}, domain.ErrInvalidID
	}

	if err := checkOwner(owner); err != nil {
		return domain.Account{}, err
	}

	if openingBalance.IsNegative() {
		openingBalance = decimal.Zero
	}

	openingBalance = openingBalance.Round(2)
	if openingBalance.GreaterThan(domain.MaxAmount) {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	hashed, err := hashPIN(ctx, pin)
	if err != nil {
		return domain.Account{}, err
	}

	a, err := s.accounts.Create(ctx, domain.CreateAccountParams{
		ID:             id,
		Owner:          owner,
		PIN:            hashed,
		OpeningBalance: openingBalance,
	})
	if err != nil {
		return domain.Account{}, err
	}

	s.record(ctx, id, domain.Credit(domain.EntryOpeningBalance, openingBalance), a.Balance)

	return a, nil
}

// SetActive activates or deactivates an account.
func (s *Service) SetActive(ctx context.Context, id int32, active bool) (domain.Account, error) {
	return s.accounts.SetActive(ctx, id, active)
}

// UpdateOwner renames the account owner.
func (s *Service) UpdateOwner(ctx context.Context, id int32, owner string) (domain.Account, error) {
	if err := checkOwner(owner); err != nil {
		return domain.Account{}, err
	}

	return s.accounts.UpdateOwner(ctx, id, owner)
}
