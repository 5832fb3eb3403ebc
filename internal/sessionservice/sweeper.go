package sessionservice

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweep ends expired sessions and reconciles stale session locks.
func (s *Service) Sweep(ctx context.Context) {
	l := zerolog.Ctx(ctx)

	expired := s.ReleaseExpired(ctx)

	stale, err := s.Reconcile(ctx)
	if err != nil {
		l.Error().Err(err).Msg("session lock reconciliation failed")
	}

	if expired > 0 || stale > 0 {
		l.Info().Int("expired", expired).Int("stale", stale).Msg("session sweep")
	}
}

// StartSweeper runs Sweep on the cron schedule until the returned cron is stopped.
func (s *Service) StartSweeper(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(schedule, func() { s.Sweep(ctx) }); err != nil {
		return nil, errors.Wrapf(err, "invalid session sweep schedule %q", schedule)
	}

	c.Start()

	return c, nil
}
