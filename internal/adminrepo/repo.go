// Package adminrepo stores the administrator password hash.
package adminrepo

import (
	"context"

	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/JMan003/banking-system-project/pkg/passpkg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FileName is the admin password file inside the data directory.
const FileName = "admin.dat"

type codec struct{}

func (codec) Size() int { return passpkg.HashSize }

func (codec) Marshal(hash string) ([]byte, error) {
	w := dbpkg.NewRecordWriter(passpkg.HashSize)
	w.String(hash, passpkg.HashSize)

	return w.Bytes()
}

func (codec) Unmarshal(b []byte) (string, error) {
	r := dbpkg.NewRecordReader(b)
	hash := r.String(passpkg.HashSize)

	return hash, r.Err()
}

// Repo facilitates admin password repository layer logic.
type Repo struct {
	table           *dbpkg.Table[string]
	defaultPassword string
}

// NewRepo returns admin Repo. defaultPassword is hashed into the file the
// first time it is read.
func NewRepo(db *dbpkg.DB, defaultPassword string) *Repo {
	return &Repo{
		table:           dbpkg.NewTable[string](db, FileName, codec{}),
		defaultPassword: defaultPassword,
	}
}

// PasswordHash returns the stored hash, writing the default one on first use.
func (r *Repo) PasswordHash(ctx context.Context) (string, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.table.Open()
	if err != nil {
		l.Error().Err(err).Send()
		return "", dbpkg.Classify(err)
	}
	defer h.Close()

	g, err := h.Lock(ctx, 0, dbpkg.ToEOF, dbpkg.Exclusive)
	if err != nil {
		l.Error().Err(err).Send()
		return "", dbpkg.Classify(err)
	}
	defer g.Release()

	hash, err := h.ReadAt(0)
	if err == nil {
		return hash, nil
	}

	if !errors.Is(err, dbpkg.ErrNoRecord) {
		l.Error().Err(err).Send()
		return "", dbpkg.Classify(err)
	}

	hash, err = passpkg.Hash(r.defaultPassword)
	if err != nil {
		l.Error().Err(err).Send()
		return "", err
	}

	if err := h.WriteAt(0, hash); err != nil {
		l.Error().Err(err).Send()
		return "", dbpkg.Classify(err)
	}

	l.Warn().Msg("admin password initialized to the configured default")

	return hash, nil
}

// SetPasswordHash replaces the stored hash.
func (r *Repo) SetPasswordHash(ctx context.Context, hash string) error {
	l := zerolog.Ctx(ctx)

	h, err := r.table.Open()
	if err != nil {
		l.Error().Err(err).Send()
		return dbpkg.Classify(err)
	}
	defer h.Close()

	g, err := h.Lock(ctx, 0, dbpkg.ToEOF, dbpkg.Exclusive)
	if err != nil {
		l.Error().Err(err).Send()
		return dbpkg.Classify(err)
	}
	defer g.Release()

	if err := h.WriteAt(0, hash); err != nil {
		l.Error().Err(err).Send()
		return dbpkg.Classify(err)
	}

	return nil
}
