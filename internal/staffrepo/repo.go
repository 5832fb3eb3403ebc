// Package staffrepo manages repository layer of bank staff.
package staffrepo

import (
	"context"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Repo facilitates staff repository layer logic.
type Repo struct {
	table *dbpkg.Table[domain.Staff]
}

// NewRepo returns staff Repo.
func NewRepo(db *dbpkg.DB) *Repo {
	return &Repo{
		table: dbpkg.NewTable[domain.Staff](db, FileName, codec{}),
	}
}

func fail(l *zerolog.Logger, err error) error {
	if errors.Is(err, dbpkg.ErrNoRecord) {
		return domain.ErrStaffNotFound
	}

	l.Error().Err(err).Send()

	return dbpkg.Classify(err)
}

func byID(id int32) func(domain.Staff) bool {
	return func(s domain.Staff) bool { return s.ID == id }
}

// Create appends a new staff member unless the id is taken.
func (r *Repo) Create(ctx context.Context, arg domain.CreateStaffParams) (domain.Staff, error) {
	l := zerolog.Ctx(ctx)

	s := domain.Staff{
		ID:        arg.ID,
		FirstName: arg.FirstName,
		LastName:  arg.LastName,
		Password:  arg.Password,
		Role:      arg.Role,
	}

	h, err := r.table.Open()
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}
	defer h.Close()

	if _, err := h.AppendUnique(ctx, s, byID(s.ID)); err != nil {
		if errors.Is(err, dbpkg.ErrDuplicate) {
			return domain.Staff{}, domain.ErrStaffAlreadyExists
		}

		return domain.Staff{}, fail(l, err)
	}

	return s, nil
}

// Get returns the staff member with the given id.
func (r *Repo) Get(ctx context.Context, id int32) (domain.Staff, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.table.Open()
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}
	defer h.Close()

	off, _, err := h.Locate(ctx, byID(id))
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}

	g, err := h.LockRecord(ctx, off, dbpkg.Shared)
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}
	defer g.Release()

	s, err := h.ReadAt(off)
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}

	return s, nil
}

func (r *Repo) update(ctx context.Context, id int32, fn func(s *domain.Staff)) (domain.Staff, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.table.Open()
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}
	defer h.Close()

	off, _, err := h.Locate(ctx, byID(id))
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}

	g, err := h.LockRecord(ctx, off, dbpkg.Exclusive)
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}
	defer g.Release()

	s, err := h.ReadAt(off)
	if err != nil {
		return domain.Staff{}, fail(l, err)
	}

	fn(&s)

	if err := h.WriteAt(off, s); err != nil {
		return domain.Staff{}, fail(l, err)
	}

	return s, nil
}

// UpdateRole changes the staff member's role.
func (r *Repo) UpdateRole(ctx context.Context, id int32, role domain.Role) (domain.Staff, error) {
	return r.update(ctx, id, func(s *domain.Staff) { s.Role = role })
}

// UpdateName changes the staff member's first and last name.
func (r *Repo) UpdateName(ctx context.Context, id int32, first, last string) (domain.Staff, error) {
	return r.update(ctx, id, func(s *domain.Staff) {
		s.FirstName = first
		s.LastName = last
	})
}

// UpdatePassword replaces the hashed password.
func (r *Repo) UpdatePassword(ctx context.Context, id int32, hashedPassword string) error {
	_, err := r.update(ctx, id, func(s *domain.Staff) { s.Password = hashedPassword })
	return err
}
