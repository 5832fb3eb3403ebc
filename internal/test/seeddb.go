// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/JMan003/banking-system-project/internal/accountrepo"
	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/staffrepo"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/JMan003/banking-system-project/pkg/passpkg"
	"github.com/JMan003/banking-system-project/pkg/randompkg"
	"github.com/shopspring/decimal"
)

// SeedPIN is the PIN of every seeded account.
const SeedPIN = "1234"

// SeedAccount creates an active account with the given id and balance.
func SeedAccount(t *testing.T, db *dbpkg.DB, id int32, balance string) domain.Account {
	t.Helper()

	hashedPIN, err := passpkg.Hash(SeedPIN)
	if err != nil {
		t.Fatalf("passpkg.Hash(%q) returned error: %v", SeedPIN, err)
	}

	arg := domain.CreateAccountParams{
		ID:             id,
		Owner:          randompkg.Owner(),
		PIN:            hashedPIN,
		OpeningBalance: decimal.RequireFromString(balance),
	}

	account, err := accountrepo.NewRepo(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedStaff creates a staff member with the given id and role.
func SeedStaff(t *testing.T, db *dbpkg.DB, id int32, role domain.Role) domain.Staff {
	t.Helper()

	arg := domain.CreateStaffParams{
		ID:        id,
		FirstName: randompkg.String(6),
		LastName:  randompkg.String(8),
		Password:  randompkg.String(32),
		Role:      role,
	}

	staff, err := staffrepo.NewRepo(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("staffRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return staff
}
