// Package entryrepo manages the append-only transaction log.
package entryrepo

import (
	"context"
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo facilitates transaction log repository layer logic.
type Repo struct {
	table *dbpkg.Table[domain.Entry]
	now   func() time.Time
}

// NewRepo returns entry Repo.
func NewRepo(db *dbpkg.DB) *Repo {
	return &Repo{
		table: dbpkg.NewTable[domain.Entry](db, FileName, codec{}),
		now:   time.Now,
	}
}

// Append writes one entry stamped with the current time.
func (r *Repo) Append(ctx context.Context, accountID int32, description string, balance decimal.Decimal) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	e := domain.Entry{
		AccountID:   accountID,
		Timestamp:   r.now().UTC(),
		Description: description,
		Balance:     balance,
	}

	h, err := r.table.Open()
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Entry{}, dbpkg.Classify(err)
	}
	defer h.Close()

	if _, err := h.Append(ctx, e); err != nil {
		l.Error().Err(err).Send()
		return domain.Entry{}, dbpkg.Classify(err)
	}

	return e, nil
}

// RecentByAccount returns up to limit of the newest entries of accountID,
// oldest first. Memory use is bounded by limit whatever the log size.
func (r *Repo) RecentByAccount(ctx context.Context, accountID int32, limit int) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}

	h, err := r.table.Open()
	if err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.Classify(err)
	}
	defer h.Close()

	kept := newRing[domain.Entry](limit)

	err = h.Scan(ctx, func(_ int64, e domain.Entry) error {
		if e.AccountID == accountID {
			kept.push(e)
		}

		return nil
	})
	if err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.Classify(err)
	}

	return kept.items(), nil
}
