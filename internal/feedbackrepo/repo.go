// Package feedbackrepo manages the append-only customer feedback file.
package feedbackrepo

import (
	"context"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/rs/zerolog"
)

// FileName is the feedback file inside the data directory.
const FileName = "feedback.dat"

const recordSize = domain.MaxFeedbackLen + 1

type codec struct{}

func (codec) Size() int { return recordSize }

func (codec) Marshal(f domain.Feedback) ([]byte, error) {
	w := dbpkg.NewRecordWriter(recordSize)
	w.String(f.Text, domain.MaxFeedbackLen)
	w.Skip(1)

	return w.Bytes()
}

func (codec) Unmarshal(b []byte) (domain.Feedback, error) {
	r := dbpkg.NewRecordReader(b)
	f := domain.Feedback{Text: r.String(domain.MaxFeedbackLen)}

	return f, r.Err()
}

// Repo facilitates feedback repository layer logic.
type Repo struct {
	table *dbpkg.Table[domain.Feedback]
}

// NewRepo returns feedback Repo.
func NewRepo(db *dbpkg.DB) *Repo {
	return &Repo{table: dbpkg.NewTable[domain.Feedback](db, FileName, codec{})}
}

// Append stores one note.
func (r *Repo) Append(ctx context.Context, f domain.Feedback) error {
	l := zerolog.Ctx(ctx)

	h, err := r.table.Open()
	if err != nil {
		l.Error().Err(err).Send()
		return dbpkg.Classify(err)
	}
	defer h.Close()

	if _, err := h.Append(ctx, f); err != nil {
		l.Error().Err(err).Send()
		return dbpkg.Classify(err)
	}

	return nil
}

// List returns every note in submission order.
func (r *Repo) List(ctx context.Context) ([]domain.Feedback, error) {
	l := zerolog.Ctx(ctx)

	h, err := r.table.Open()
	if err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.Classify(err)
	}
	defer h.Close()

	var out []domain.Feedback

	err = h.Scan(ctx, func(_ int64, f domain.Feedback) error {
		out = append(out, f)
		return nil
	})
	if err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.Classify(err)
	}

	return out, nil
}
