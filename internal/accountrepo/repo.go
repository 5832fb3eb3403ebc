// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo facilitates account repository layer logic.
type Repo struct {
	table *dbpkg.Table[domain.Account]
}

// NewRepo returns account Repo.
func NewRepo(db *dbpkg.DB) *Repo {
	return &Repo{
		table: dbpkg.NewTable[domain.Account](db, FileName, codec{}),
	}
}

func fail(l *zerolog.Logger, err error) error {
	if errors.Is(err, dbpkg.ErrNoRecord) {
		return domain.ErrAccountNotFound
	}

	l.Error().Err(err).Send()

	return dbpkg.Classify(err)
}

// Create appends a new account unless its id is taken.
func (r *Repo) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a := domain.Account{
		ID:      arg.ID,
		Owner:   arg.Owner,
		PIN:     arg.PIN,
		Balance: arg.OpeningBalance,
		Active:  true,
	}

	h, err := r.table.Open()
	if err != nil {
		return domain.Account{}, fail(l, err)
	}
	defer h.Close()

	if _, err := h.AppendUnique(ctx, a, byID(a.ID)); err != nil {
		if errors.Is(err, dbpkg.ErrDuplicate) {
			return domain.Account{}, domain.ErrAccountAlreadyExists
		}

		return domain.Account{}, fail(l, err)
	}

	return a, nil
}

// Get returns the account with the given id.
func (r *Repo) Get(ctx context.Context, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.table.Open()
	if err != nil {
		return domain.Account{}, fail(l, err)
	}
	defer h.Close()

	off, _, err := h.Locate(ctx, byID(id))
	if err != nil {
		return domain.Account{}, fail(l, err)
	}

	g, err := h.LockRecord(ctx, off, dbpkg.Shared)
	if err != nil {
		return domain.Account{}, fail(l, err)
	}
	defer g.Release()

	a, err := h.ReadAt(off)
	if err != nil {
		return domain.Account{}, fail(l, err)
	}

	return a, nil
}

// update runs fn on the freshly read account while its record is exclusively
// locked and writes the result back unless fn fails.
func (r *Repo) update(ctx context.Context, id int32, fn func(a *domain.Account) error) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.table.Open()
	if err != nil {
		return domain.Account{}, fail(l, err)
	}
	defer h.Close()

	off, _, err := h.Locate(ctx, byID(id))
	if err != nil {
		return domain.Account{}, fail(l, err)
	}

	g, err := h.LockRecord(ctx, off, dbpkg.Exclusive)
	if err != nil {
		return domain.Account{}, fail(l, err)
	}
	defer g.Release()

	a, err := h.ReadAt(off)
	if err != nil {
		return domain.Account{}, fail(l, err)
	}

	if err := fn(&a); err != nil {
		return domain.Account{}, err
	}

	if err := h.WriteAt(off, a); err != nil {
		return domain.Account{}, fail(l, err)
	}

	return a, nil
}

// Deposit adds amount to an active account and returns it.
func (r *Repo) Deposit(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error) {
	return r.update(ctx, id, func(a *domain.Account) error {
		if !a.Active {
			return domain.ErrInactiveAccount
		}

		balance := a.Balance.Add(amount)
		if balance.GreaterThan(domain.MaxBalance) {
			return domain.ErrBalanceLimit
		}

		a.Balance = balance

		return nil
	})
}

// Withdraw takes amount from an active account. The balance never goes negative.
func (r *Repo) Withdraw(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error) {
	return r.update(ctx, id, func(a *domain.Account) error {
		if !a.Active {
			return domain.ErrInactiveAccount
		}

		if a.Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}

		a.Balance = a.Balance.Sub(amount)

		return nil
	})
}

// SetActive activates or deactivates the account.
func (r *Repo) SetActive(ctx context.Context, id int32, active bool) (domain.Account, error) {
	return r.update(ctx, id, func(a *domain.Account) error {
		a.Active = active
		return nil
	})
}

// UpdateOwner renames the account owner.
func (r *Repo) UpdateOwner(ctx context.Context, id int32, owner string) (domain.Account, error) {
	return r.update(ctx, id, func(a *domain.Account) error {
		a.Owner = owner
		return nil
	})
}

// UpdatePIN replaces the hashed PIN.
func (r *Repo) UpdatePIN(ctx context.Context, id int32, hashedPIN string) error {
	_, err := r.update(ctx, id, func(a *domain.Account) error {
		a.PIN = hashedPIN
		return nil
	})

	return err
}

// Transfer moves amount between two accounts and returns both.
// Record locks are taken in ascending offset order whichever side is the
// source, so opposite transfers between the same pair cannot deadlock.
func (r *Repo) Transfer(ctx context.Context, fromID, toID int32, amount decimal.Decimal) (from, to domain.Account, err error) {
	l := zerolog.Ctx(ctx)

	if fromID == toID {
		return from, to, domain.ErrSelfTransfer
	}

	h, err := r.table.Open()
	if err != nil {
		return from, to, fail(l, err)
	}
	defer h.Close()

	fromOff, _, err := h.Locate(ctx, byID(fromID))
	if err != nil {
		return from, to, fail(l, err)
	}

	toOff, _, err := h.Locate(ctx, byID(toID))
	if err != nil {
		return from, to, fail(l, err)
	}

	first, second := fromOff, toOff
	if second < first {
		first, second = second, first
	}

	g1, err := h.LockRecord(ctx, first, dbpkg.Exclusive)
	if err != nil {
		return from, to, fail(l, err)
	}
	defer g1.Release()

	g2, err := h.LockRecord(ctx, second, dbpkg.Exclusive)
	if err != nil {
		return from, to, fail(l, err)
	}
	defer g2.Release()

	if from, err = h.ReadAt(fromOff); err != nil {
		return from, to, fail(l, err)
	}

	if to, err = h.ReadAt(toOff); err != nil {
		return from, to, fail(l, err)
	}

	switch {
	case !from.Active || !to.Active:
		return domain.Account{}, domain.Account{}, domain.ErrInactiveAccount
	case from.Balance.LessThan(amount):
		return domain.Account{}, domain.Account{}, domain.ErrInsufficientFunds
	case to.Balance.Add(amount).GreaterThan(domain.MaxBalance):
		return domain.Account{}, domain.Account{}, domain.ErrBalanceLimit
	}

	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)

	if err := h.WriteAt(fromOff, from); err != nil {
		return domain.Account{}, domain.Account{}, fail(l, err)
	}

	if err := h.WriteAt(toOff, to); err != nil {
		from.Balance = from.Balance.Add(amount)
		if rerr := h.WriteAt(fromOff, from); rerr != nil {
			l.Error().Err(rerr).Int32("from", fromID).Int32("to", toID).Str("severity", "critical").
				Msg("transfer debited source but could not credit destination or restore source")
		}

		return domain.Account{}, domain.Account{}, fail(l, err)
	}

	return from, to, nil
}
