// Package feedbackservice manages business logic layer of customer feedback.
package feedbackservice

import (
	"context"
	"strings"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
)

// Repo provides data access layer interface needed by feedback service layer.
type Repo interface {
	Append(ctx context.Context, f domain.Feedback) error
	List(ctx context.Context) ([]domain.Feedback, error)
}

// Service facilitates feedback service layer logic.
type Service struct {
	repo Repo
}

// New returns feedback service struct.
func New(r Repo) *Service {
	return &Service{repo: r}
}

// Submit stores a note, cut to the longest prefix of whole characters that fits.
func (s *Service) Submit(ctx context.Context, text string) (domain.Feedback, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Feedback{}, domain.ErrEmptyFeedback
	}

	f := domain.Feedback{Text: dbpkg.Truncate(text, domain.MaxFeedbackLen)}

	if err := s.repo.Append(ctx, f); err != nil {
		return domain.Feedback{}, err
	}

	return f, nil
}

// List returns every note in submission order.
func (s *Service) List(ctx context.Context) ([]domain.Feedback, error) {
	return s.repo.List(ctx)
}
