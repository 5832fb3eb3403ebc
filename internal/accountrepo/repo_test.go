package accountrepo

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/JMan003/banking-system-project/pkg/passpkg"
	"github.com/JMan003/banking-system-project/pkg/randompkg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createRandomAccount(t *testing.T, repo *Repo, id int32, balance decimal.Decimal) domain.Account {
	t.Helper()

	hashedPIN, err := passpkg.Hash(randompkg.PIN())
	require.NoError(t, err)

	arg := domain.CreateAccountParams{
		ID:             id,
		Owner:          randompkg.Owner(),
		PIN:            hashedPIN,
		OpeningBalance: balance,
	}

	account, err := repo.Create(context.Background(), arg)
	require.NoError(t, err)

	require.Equal(t, arg.ID, account.ID)
	require.Equal(t, arg.Owner, account.Owner)
	require.Equal(t, arg.PIN, account.PIN)
	require.True(t, arg.OpeningBalance.Equal(account.Balance))
	require.True(t, account.Active)

	return account
}

func requireBalance(t *testing.T, repo *Repo, id int32, want string) {
	t.Helper()

	a, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Truef(t, dec(want).Equal(a.Balance), "account %d balance = %s, want %s", id, a.Balance, want)
}

func TestCreateGet(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	want := createRandomAccount(t, repo, 100, dec("500.00"))

	got, err := repo.Get(ctx, want.ID)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Owner, got.Owner)
	require.Equal(t, want.PIN, got.PIN)
	require.True(t, want.Balance.Equal(got.Balance))
	require.True(t, got.Active)

	_, err = repo.Create(ctx, domain.CreateAccountParams{ID: want.ID, Owner: "dup"})
	require.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	_, err = repo.Get(ctx, 999)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDepositWithdraw(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	createRandomAccount(t, repo, 1, dec("100.00"))

	testCases := []struct {
		name        string
		op          func() (domain.Account, error)
		wantErr     error
		wantBalance string
	}{
		{
			name:        "Deposit",
			op:          func() (domain.Account, error) { return repo.Deposit(ctx, 1, dec("50.25")) },
			wantBalance: "150.25",
		},
		{
			name:        "Withdraw",
			op:          func() (domain.Account, error) { return repo.Withdraw(ctx, 1, dec("0.25")) },
			wantBalance: "150.00",
		},
		{
			name:        "InsufficientFunds",
			op:          func() (domain.Account, error) { return repo.Withdraw(ctx, 1, dec("150.01")) },
			wantErr:     domain.ErrInsufficientFunds,
			wantBalance: "150.00",
		},
		{
			name:        "WithdrawAll",
			op:          func() (domain.Account, error) { return repo.Withdraw(ctx, 1, dec("150.00")) },
			wantBalance: "0",
		},
		{
			name:        "NotFound",
			op:          func() (domain.Account, error) { return repo.Deposit(ctx, 2, dec("1")) },
			wantErr:     domain.ErrAccountNotFound,
			wantBalance: "0",
		},
	}

	// Cases share one account and run in order.
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := tc.op()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				require.True(t, dec(tc.wantBalance).Equal(a.Balance))
			}

			requireBalance(t, repo, 1, tc.wantBalance)
		})
	}
}

func TestInactiveAccount(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	createRandomAccount(t, repo, 1, dec("10"))
	createRandomAccount(t, repo, 2, dec("10"))

	a, err := repo.SetActive(ctx, 2, false)
	require.NoError(t, err)
	require.False(t, a.Active)

	_, err = repo.Deposit(ctx, 2, dec("1"))
	require.ErrorIs(t, err, domain.ErrInactiveAccount)

	_, err = repo.Withdraw(ctx, 2, dec("1"))
	require.ErrorIs(t, err, domain.ErrInactiveAccount)

	_, _, err = repo.Transfer(ctx, 1, 2, dec("1"))
	require.ErrorIs(t, err, domain.ErrInactiveAccount)

	requireBalance(t, repo, 1, "10")
	requireBalance(t, repo, 2, "10")
}

func TestUpdateOwnerAndPIN(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	createRandomAccount(t, repo, 5, decimal.Zero)

	a, err := repo.UpdateOwner(ctx, 5, "new owner")
	require.NoError(t, err)
	require.Equal(t, "new owner", a.Owner)

	hashed, err := passpkg.Hash("4321")
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePIN(ctx, 5, hashed))

	a, err = repo.Get(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, "new owner", a.Owner)
	require.NoError(t, passpkg.Check("4321", a.PIN))
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	createRandomAccount(t, repo, 100, dec("450.00"))
	createRandomAccount(t, repo, 200, decimal.Zero)

	from, to, err := repo.Transfer(ctx, 100, 200, dec("300.00"))
	require.NoError(t, err)
	require.True(t, dec("150.00").Equal(from.Balance))
	require.True(t, dec("300.00").Equal(to.Balance))

	_, _, err = repo.Transfer(ctx, 100, 200, dec("150.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, _, err = repo.Transfer(ctx, 100, 300, dec("1"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, _, err = repo.Transfer(ctx, 300, 100, dec("1"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, _, err = repo.Transfer(ctx, 100, 100, dec("1"))
	require.ErrorIs(t, err, domain.ErrSelfTransfer)

	requireBalance(t, repo, 100, "150.00")
	requireBalance(t, repo, 200, "300.00")
}

func TestConcurrentDeposits(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	createRandomAccount(t, repo, 7, dec("500.00"))

	const n = 40

	var wg sync.WaitGroup

	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := repo.Deposit(ctx, 7, dec("2.50"))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	requireBalance(t, repo, 7, "600.00")
}

func TestConcurrentOppositeTransfers(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	createRandomAccount(t, repo, 1, dec("1000"))
	createRandomAccount(t, repo, 2, dec("1000"))

	const rounds = 50

	var wg sync.WaitGroup

	errs := make(chan error, 2*rounds)

	for i := 0; i < rounds; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_, _, err := repo.Transfer(ctx, 1, 2, dec("3"))
			errs <- err
		}()

		go func() {
			defer wg.Done()

			_, _, err := repo.Transfer(ctx, 2, 1, dec("1"))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	a1, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	a2, err := repo.Get(ctx, 2)
	require.NoError(t, err)

	require.True(t, dec("2000").Equal(a1.Balance.Add(a2.Balance)))
	require.True(t, dec("900").Equal(a1.Balance))
}

// Two DBs over one directory have separate in-process lock tables, so only
// the OS byte-range locks order their writers, as with two server processes.
func TestSeparateDBsShareRecordLocks(t *testing.T) {
	t.Parallel()

	if runtime.GOOS != "linux" {
		t.Skip("byte-range locks are only enforced on linux")
	}

	dir := t.TempDir()

	db1, err := dbpkg.Setup(dir)
	require.NoError(t, err)
	db2, err := dbpkg.Setup(dir)
	require.NoError(t, err)

	repo1, repo2 := NewRepo(db1), NewRepo(db2)
	ctx := context.Background()

	createRandomAccount(t, repo1, 1, dec("1000"))
	createRandomAccount(t, repo2, 2, dec("1000"))

	const rounds = 50

	errs := make(chan error, 4*rounds)
	done := make(chan struct{})

	go func() {
		defer close(done)

		var wg sync.WaitGroup

		for i := 0; i < rounds; i++ {
			wg.Add(4)

			go func() {
				defer wg.Done()

				_, err := repo1.Deposit(ctx, 1, dec("1.25"))
				errs <- err
			}()

			go func() {
				defer wg.Done()

				_, err := repo2.Deposit(ctx, 1, dec("0.75"))
				errs <- err
			}()

			go func() {
				defer wg.Done()

				_, _, err := repo1.Transfer(ctx, 1, 2, dec("3"))
				errs <- err
			}()

			go func() {
				defer wg.Done()

				_, _, err := repo2.Transfer(ctx, 2, 1, dec("1"))
				errs <- err
			}()
		}

		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("concurrent operations from two DBs did not finish")
	}

	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// 1000 + 50*2 deposited, 50*3 out, 50*1 back.
	requireBalance(t, repo1, 1, "1000.00")
	requireBalance(t, repo2, 2, "1100.00")
}

func TestBalanceLimit(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	createRandomAccount(t, repo, 1, domain.MaxBalance)
	createRandomAccount(t, repo, 2, dec("10"))

	_, err := repo.Deposit(ctx, 1, dec("0.01"))
	require.ErrorIs(t, err, domain.ErrBalanceLimit)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = repo.Transfer(ctx, 2, 1, dec("5"))
	require.ErrorIs(t, err, domain.ErrBalanceLimit)

	requireBalance(t, repo, 1, domain.MaxBalance.String())
	requireBalance(t, repo, 2, "10")
}

func TestMultibyteOwner(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()

	// 16 runes of 3 bytes fill 48 of the 50 owner bytes.
	owner := strings.Repeat("日", 16)

	_, err := repo.Create(ctx, domain.CreateAccountParams{ID: 3, Owner: owner, PIN: "x", OpeningBalance: dec("1")})
	require.NoError(t, err)

	got, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, owner, got.Owner)
}
