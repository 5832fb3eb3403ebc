// Package sessionservice manages business logic layer of login sessions.
// A session holds its identity's session lock from login until logout,
// expiry or server shutdown.
package sessionservice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/sessionlock"
	"github.com/JMan003/banking-system-project/pkg/errorspkg"
	"github.com/JMan003/banking-system-project/pkg/metricspkg"
	"github.com/JMan003/banking-system-project/pkg/tokenpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CustomerVerifier checks customer credentials.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type CustomerVerifier interface {
	VerifyPIN(ctx context.Context, id int32, pin string) (domain.Account, error)
}

// StaffVerifier checks staff and admin credentials.
type StaffVerifier interface {
	VerifyPassword(ctx context.Context, id int32, password string, role domain.Role) (domain.Staff, error)
	VerifyAdmin(ctx context.Context, password string) error
}

type liveSession struct {
	session domain.Session
	guard   sessionlock.Guard
}

// Service facilitates session service layer logic.
type Service struct {
	locker    sessionlock.Locker
	maker     tokenpkg.Maker
	customers CustomerVerifier
	staff     StaffVerifier
	duration  time.Duration
	metrics   *metricspkg.Metrics
	now       func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession
}

// New returns session service struct to manage logins.
func New(
	locker sessionlock.Locker,
	maker tokenpkg.Maker,
	customers CustomerVerifier,
	staff StaffVerifier,
	duration time.Duration,
	m *metricspkg.Metrics,
) *Service {
	return &Service{
		locker:    locker,
		maker:     maker,
		customers: customers,
		staff:     staff,
		duration:  duration,
		metrics:   m,
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*liveSession),
	}
}

func (s *Service) acquire(ctx context.Context, id sessionlock.Identity) (sessionlock.Guard, error) {
	guard, err := s.locker.TryAcquire(ctx, id)
	if err == nil {
		return guard, nil
	}

	if errors.Is(err, sessionlock.ErrAlreadyHeld) {
		zerolog.Ctx(ctx).Info().Str("identity", id.String()).Msg("login rejected, session already held")
		return nil, domain.ErrAlreadyHeld
	}

	zerolog.Ctx(ctx).Error().Err(err).Str("identity", id.String()).Send()

	return nil, errorspkg.ErrLock
}

// CustomerLogin opens a session for an active customer account.
func (s *Service) CustomerLogin(ctx context.Context, accountID int32, pin string) (domain.LoginResponse, error) {
	id := sessionlock.Identity{Kind: domain.KindCustomer, ID: accountID}

	guard, err := s.acquire(ctx, id)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	if _, err := s.customers.VerifyPIN(ctx, accountID, pin); err != nil {
		guard.Release(ctx)
		return domain.LoginResponse{}, err
	}

	return s.open(ctx, guard, domain.KindCustomer, accountID, tokenpkg.RoleCustomer)
}

// StaffLogin opens a session for a staff member holding role.
func (s *Service) StaffLogin(ctx context.Context, staffID int32, password string, role domain.Role) (domain.LoginResponse, error) {
	id := sessionlock.Identity{Kind: domain.KindStaff, ID: staffID}

	guard, err := s.acquire(ctx, id)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	if _, err := s.staff.VerifyPassword(ctx, staffID, password, role); err != nil {
		guard.Release(ctx)
		return domain.LoginResponse{}, err
	}

	return s.open(ctx, guard, domain.KindStaff, staffID, role.String())
}

// AdminLogin opens an admin session. Admin sessions are not exclusive.
func (s *Service) AdminLogin(ctx context.Context, password string) (domain.LoginResponse, error) {
	if err := s.staff.VerifyAdmin(ctx, password); err != nil {
		return domain.LoginResponse{}, err
	}

	return s.open(ctx, nil, domain.KindAdmin, 0, tokenpkg.RoleAdmin)
}

func (s *Service) open(
	ctx context.Context, guard sessionlock.Guard, kind domain.Kind, identityID int32, role string,
) (domain.LoginResponse, error) {
	l := zerolog.Ctx(ctx)

	token, payload, err := s.maker.CreateToken(tokenpkg.Subject{Role: role, IdentityID: identityID}, s.duration)
	if err != nil {
		l.Error().Err(err).Send()

		if guard != nil {
			guard.Release(ctx)
		}

		return domain.LoginResponse{}, errorspkg.ErrInternal
	}

	sess := domain.Session{
		ID:         payload.ID,
		Kind:       kind,
		IdentityID: identityID,
		Role:       role,
		ExpiresAt:  payload.ExpiredAt,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = &liveSession{session: sess, guard: guard}
	s.mu.Unlock()

	s.metrics.SessionOpened(kind)
	l.Info().Str("session_id", sess.ID.String()).Str("kind", string(kind)).Int32("identity_id", identityID).Msg("session opened")

	return domain.LoginResponse{
		AccessToken:          token,
		AccessTokenExpiresAt: payload.ExpiredAt,
		Session:              sess,
	}, nil
}

// Validate returns the live session a verified token belongs to.
func (s *Service) Validate(ctx context.Context, payload *tokenpkg.Payload) (domain.Session, error) {
	s.mu.Lock()
	live, ok := s.sessions[payload.ID]
	s.mu.Unlock()

	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	if !s.now().Before(live.session.ExpiresAt) {
		s.close(ctx, payload.ID)
		return domain.Session{}, domain.ErrSessionExpired
	}

	return live.session, nil
}

// Logout ends the session and frees its identity.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if !s.close(ctx, sessionID) {
		return domain.ErrSessionNotFound
	}

	return nil
}

// close removes the session and releases its lock. It reports whether the
// session was live.
func (s *Service) close(ctx context.Context, sessionID uuid.UUID) bool {
	s.mu.Lock()
	live, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return false
	}

	if live.guard != nil {
		if err := live.guard.Release(ctx); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("session_id", sessionID.String()).Msg("session lock release failed")
		}
	}

	s.metrics.SessionClosed(live.session.Kind)
	zerolog.Ctx(ctx).Info().Str("session_id", sessionID.String()).Msg("session closed")

	return true
}

func (s *Service) collect(keep func(domain.Session) bool) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uuid.UUID

	for id, live := range s.sessions {
		if keep(live.session) {
			ids = append(ids, id)
		}
	}

	return ids
}

// ReleaseExpired ends every session past its expiry and returns how many.
func (s *Service) ReleaseExpired(ctx context.Context) int {
	now := s.now()

	var n int

	for _, id := range s.collect(func(sess domain.Session) bool { return !now.Before(sess.ExpiresAt) }) {
		if s.close(ctx, id) {
			n++
		}
	}

	return n
}

// ForceRelease ends any local session of the identity and frees its lock
// wherever it is held.
func (s *Service) ForceRelease(ctx context.Context, id sessionlock.Identity) error {
	match := func(sess domain.Session) bool { return sess.Kind == id.Kind && sess.IdentityID == id.ID }

	for _, sid := range s.collect(match) {
		s.close(ctx, sid)
	}

	return s.locker.ForceRelease(ctx, id)
}

// Reconcile frees session locks left by dead processes.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	return s.locker.Reconcile(ctx)
}

// Shutdown ends every session.
func (s *Service) Shutdown(ctx context.Context) {
	for _, id := range s.collect(func(domain.Session) bool { return true }) {
		s.close(ctx, id)
	}
}

// Active returns the number of live sessions.
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
