package staffrepo

import (
	"context"
	"testing"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/JMan003/banking-system-project/pkg/passpkg"
	"github.com/JMan003/banking-system-project/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func createRandomStaff(t *testing.T, repo *Repo, role domain.Role) domain.Staff {
	t.Helper()

	hashed, err := passpkg.Hash(randompkg.String(8))
	require.NoError(t, err)

	arg := domain.CreateStaffParams{
		ID:        randompkg.ID(),
		FirstName: randompkg.Owner(),
		LastName:  randompkg.Owner(),
		Password:  hashed,
		Role:      role,
	}

	s, err := repo.Create(context.Background(), arg)
	require.NoError(t, err)

	want := domain.Staff{
		ID:        arg.ID,
		FirstName: arg.FirstName,
		LastName:  arg.LastName,
		Password:  arg.Password,
		Role:      arg.Role,
	}

	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("repo.Create() returned unexpected diff: %s", diff)
	}

	return s
}

func TestCreateGet(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()

	manager := createRandomStaff(t, repo, domain.RoleManager)
	employee := createRandomStaff(t, repo, domain.RoleEmployee)

	for _, want := range []domain.Staff{manager, employee} {
		got, err := repo.Get(ctx, want.ID)
		require.NoError(t, err)

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("repo.Get(%d) returned unexpected diff: %s", want.ID, diff)
		}
	}

	_, err := repo.Create(ctx, domain.CreateStaffParams{ID: manager.ID})
	require.ErrorIs(t, err, domain.ErrStaffAlreadyExists)

	_, err = repo.Get(ctx, -1)
	require.ErrorIs(t, err, domain.ErrStaffNotFound)
}

func TestUpdates(t *testing.T) {
	t.Parallel()

	repo := NewRepo(dbpkg.SetupTestDB(t))
	ctx := context.Background()
	s := createRandomStaff(t, repo, domain.RoleEmployee)

	got, err := repo.UpdateRole(ctx, s.ID, domain.RoleManager)
	require.NoError(t, err)
	require.Equal(t, domain.RoleManager, got.Role)

	got, err = repo.UpdateName(ctx, s.ID, "Ada", "Lovelace")
	require.NoError(t, err)
	require.Equal(t, "Ada", got.FirstName)
	require.Equal(t, "Lovelace", got.LastName)

	hashed, err := passpkg.Hash("new-secret")
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePassword(ctx, s.ID, hashed))

	got, err = repo.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleManager, got.Role)
	require.NoError(t, passpkg.Check("new-secret", got.Password))

	_, err = repo.UpdateRole(ctx, s.ID+1, domain.RoleManager)
	require.ErrorIs(t, err, domain.ErrStaffNotFound)
}
