package staffservice

import (
	"context"
	"strings"
	"testing"

	"github.com/JMan003/banking-system-project/internal/adminrepo"
	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/staffrepo"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/JMan003/banking-system-project/pkg/errorspkg"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := dbpkg.SetupTestDB(t)

	return New(staffrepo.NewRepo(db), adminrepo.NewRepo(db, "root123"))
}

func TestCreateStaff(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		arg     domain.CreateStaffParams
		wantErr error
	}{
		{
			name: "OK",
			arg:  domain.CreateStaffParams{ID: 1, FirstName: "Ann", LastName: "Lee", Password: "pw", Role: domain.RoleEmployee},
		},
		{
			name:    "Duplicate",
			arg:     domain.CreateStaffParams{ID: 1, FirstName: "Bob", Password: "pw", Role: domain.RoleManager},
			wantErr: domain.ErrStaffAlreadyExists,
		},
		{
			name:    "InvalidID",
			arg:     domain.CreateStaffParams{ID: 0, FirstName: "Bob", Password: "pw"},
			wantErr: domain.ErrInvalidID,
		},
		{
			name:    "InvalidRole",
			arg:     domain.CreateStaffParams{ID: 2, FirstName: "Bob", Password: "pw", Role: domain.Role(7)},
			wantErr: domain.ErrInvalidRole,
		},
		{
			name:    "EmptyPassword",
			arg:     domain.CreateStaffParams{ID: 2, FirstName: "Bob", Role: domain.RoleManager},
			wantErr: domain.ErrEmptySecret,
		},
		{
			name:    "EmptyName",
			arg:     domain.CreateStaffParams{ID: 2, Password: "pw", Role: domain.RoleManager},
			wantErr: domain.ErrEmptyName,
		},
	}

	// Cases run in order; Duplicate depends on OK.
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			staff, err := s.CreateStaff(ctx, tc.arg)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.arg.ID, staff.ID)
			require.NotEqual(t, tc.arg.Password, staff.Password)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateStaff(ctx, domain.CreateStaffParams{ID: 5, FirstName: "Eve", Password: "secret", Role: domain.RoleEmployee})
	require.NoError(t, err)

	_, err = s.VerifyPassword(ctx, 5, "secret", domain.RoleEmployee)
	require.NoError(t, err)

	_, err = s.VerifyPassword(ctx, 5, "secret", domain.RoleManager)
	require.ErrorIs(t, err, domain.ErrWrongRole)

	_, err = s.VerifyPassword(ctx, 5, "wrong", domain.RoleEmployee)
	require.ErrorIs(t, err, domain.ErrWrongPassword)

	_, err = s.VerifyPassword(ctx, 6, "secret", domain.RoleEmployee)
	require.ErrorIs(t, err, domain.ErrWrongPassword)

	_, err = s.UpdateRole(ctx, 5, domain.RoleManager)
	require.NoError(t, err)

	require.NoError(t, s.ChangePassword(ctx, 5, "rotated"))
	require.ErrorIs(t, s.ChangePassword(ctx, 5, ""), domain.ErrEmptySecret)

	staff, err := s.VerifyPassword(ctx, 5, "rotated", domain.RoleManager)
	require.NoError(t, err)

	staff, err = s.UpdateName(ctx, staff.ID, "Eve", "Adams")
	require.NoError(t, err)
	require.Equal(t, "Adams", staff.LastName)

	_, err = s.UpdateName(ctx, staff.ID, "", "Adams")
	require.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestAdminPassword(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.VerifyAdmin(ctx, "root123"))
	require.ErrorIs(t, s.VerifyAdmin(ctx, "root"), domain.ErrWrongPassword)

	require.NoError(t, s.ChangeAdminPassword(ctx, "n3w"))
	require.NoError(t, s.VerifyAdmin(ctx, "n3w"))
	require.ErrorIs(t, s.VerifyAdmin(ctx, "root123"), domain.ErrWrongPassword)
}

func TestVerifyPasswordStorageError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	repo.EXPECT().Get(gomock.Any(), int32(1)).Return(domain.Staff{}, errorspkg.ErrIO)

	_, err := New(repo, NewMockAdminRepo(ctrl)).VerifyPassword(context.Background(), 1, "pw", domain.RoleManager)
	require.ErrorIs(t, err, errorspkg.ErrIO)
}

func TestMultibyteLimits(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	// 8 runes of 3 bytes fit a 25 byte name field, 9 do not.
	fits := strings.Repeat("日", 8)
	tooLong := strings.Repeat("日", 9)

	created, err := s.CreateStaff(ctx, domain.CreateStaffParams{
		ID: 9, FirstName: fits, LastName: fits, Password: "pw", Role: domain.RoleEmployee,
	})
	require.NoError(t, err)

	stored, err := s.Get(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, created.FirstName, stored.FirstName)
	require.Equal(t, fits, stored.LastName)

	_, err = s.CreateStaff(ctx, domain.CreateStaffParams{
		ID: 10, FirstName: tooLong, Password: "pw", Role: domain.RoleEmployee,
	})
	require.ErrorIs(t, err, domain.ErrNameTooLong)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.UpdateName(ctx, 9, fits, tooLong)
	require.ErrorIs(t, err, domain.ErrNameTooLong)

	// 30 runes pass a rune count of 72 but are 90 bytes for bcrypt.
	longPassword := strings.Repeat("日", 30)

	_, err = s.CreateStaff(ctx, domain.CreateStaffParams{
		ID: 11, FirstName: "Ann", Password: longPassword, Role: domain.RoleEmployee,
	})
	require.ErrorIs(t, err, domain.ErrSecretTooLong)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	require.ErrorIs(t, s.ChangePassword(ctx, 9, longPassword), domain.ErrSecretTooLong)
	require.ErrorIs(t, s.ChangeAdminPassword(ctx, longPassword), domain.ErrSecretTooLong)
	require.NoError(t, s.VerifyAdmin(ctx, "root123"))
}
