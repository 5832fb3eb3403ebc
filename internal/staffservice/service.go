// Package staffservice manages business logic layer of staff and admin accounts.
package staffservice

import (
	"context"
	"errors"
	"strings"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/errorspkg"
	"github.com/JMan003/banking-system-project/pkg/passpkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by staff service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package staffservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateStaffParams) (domain.Staff, error)
	Get(ctx context.Context, id int32) (domain.Staff, error)
	UpdateRole(ctx context.Context, id int32, role domain.Role) (domain.Staff, error)
	UpdateName(ctx context.Context, id int32, first, last string) (domain.Staff, error)
	UpdatePassword(ctx context.Context, id int32, hashedPassword string) error
}

// AdminRepo provides the admin password.
type AdminRepo interface {
	PasswordHash(ctx context.Context) (string, error)
	SetPasswordHash(ctx context.Context, hash string) error
}

// Service facilitates staff service layer logic.
type Service struct {
	repo  Repo
	admin AdminRepo
}

// New returns staff service struct to manage staff business logic.
func New(sr Repo, ar AdminRepo) *Service {
	return &Service{repo: sr, admin: ar}
}

func hash(ctx context.Context, secret string) (string, error) {
	switch {
	case strings.TrimSpace(secret) == "":
		return "", domain.ErrEmptySecret
	case len(secret) > domain.MaxSecretLen:
		return "", domain.ErrSecretTooLong
	}

	hashed, err := passpkg.Hash(secret)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	return hashed, nil
}

// checkName rejects a blank first name and names that do not fit the record.
func checkName(first, last string) error {
	switch {
	case strings.TrimSpace(first) == "":
		return domain.ErrEmptyName
	case len(first) > domain.MaxStaffNameLen || len(last) > domain.MaxStaffNameLen:
		return domain.ErrNameTooLong
	}

	return nil
}

// CreateStaff adds an employee or manager.
func (s *Service) CreateStaff(ctx context.Context, arg domain.CreateStaffParams) (domain.Staff, error) {
	switch {
	case arg.ID <= 0:
		return domain.Staff{}, domain.ErrInvalidID
	case !arg.Role.Valid():
		return domain.Staff{}, domain.ErrInvalidRole
	}

	if err := checkName(arg.FirstName, arg.LastName); err != nil {
		return domain.Staff{}, err
	}

	hashed, err := hash(ctx, arg.Password)
	if err != nil {
		return domain.Staff{}, err
	}

	arg.Password = hashed

	return s.repo.Create(ctx, arg)
}

// Get returns the staff member.
func (s *Service) Get(ctx context.Context, id int32) (domain.Staff, error) {
	return s.repo.Get(ctx, id)
}

// UpdateRole promotes or demotes a staff member.
func (s *Service) UpdateRole(ctx context.Context, id int32, role domain.Role) (domain.Staff, error) {
	if !role.Valid() {
		return domain.Staff{}, domain.ErrInvalidRole
	}

	return s.repo.UpdateRole(ctx, id, role)
}

// UpdateName renames a staff member.
func (s *Service) UpdateName(ctx context.Context, id int32, first, last string) (domain.Staff, error) {
	if err := checkName(first, last); err != nil {
		return domain.Staff{}, err
	}

	return s.repo.UpdateName(ctx, id, first, last)
}

// ChangePassword replaces the staff member's password.
func (s *Service) ChangePassword(ctx context.Context, id int32, password string) error {
	hashed, err := hash(ctx, password)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, id, hashed)
}

// VerifyPassword checks the password of a staff member holding role.
func (s *Service) VerifyPassword(ctx context.Context, id int32, password string, role domain.Role) (domain.Staff, error) {
	staff, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Staff{}, domain.ErrWrongPassword
		}

		return domain.Staff{}, err
	}

	if err := passpkg.Check(password, staff.Password); err != nil {
		zerolog.Ctx(ctx).Info().Int32("staff_id", id).Msg("wrong password")
		return domain.Staff{}, domain.ErrWrongPassword
	}

	if staff.Role != role {
		return domain.Staff{}, domain.ErrWrongRole
	}

	return staff, nil
}

// VerifyAdmin checks the admin password.
func (s *Service) VerifyAdmin(ctx context.Context, password string) error {
	hashed, err := s.admin.PasswordHash(ctx)
	if err != nil {
		return err
	}

	if err := passpkg.Check(password, hashed); err != nil {
		zerolog.Ctx(ctx).Warn().Msg("wrong admin password")
		return domain.ErrWrongPassword
	}

	return nil
}

// ChangeAdminPassword replaces the admin password.
func (s *Service) ChangeAdminPassword(ctx context.Context, password string) error {
	hashed, err := hash(ctx, password)
	if err != nil {
		return err
	}

	return s.admin.SetPasswordHash(ctx, hashed)
}
