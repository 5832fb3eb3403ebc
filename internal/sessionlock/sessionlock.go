// Package sessionlock guarantees at most one live session per identity across
// every server process sharing the same lock backend.
package sessionlock

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
)

// ErrAlreadyHeld is returned by TryAcquire when the identity is logged in elsewhere.
var ErrAlreadyHeld = domain.ErrAlreadyHeld

// Identity is the holder of a session: a customer account or a staff member.
type Identity struct {
	Kind domain.Kind
	ID   int32
}

// Name is the resource name every process derives for the identity.
func (i Identity) Name() string {
	return fmt.Sprintf("bms_sem_%s_%d", i.Kind, i.ID)
}

func (i Identity) String() string {
	return fmt.Sprintf("%s %d", i.Kind, i.ID)
}

// Guard is a held session lock.
type Guard interface {
	Identity() Identity
	// Release frees the identity. Only the first call has an effect.
	Release(ctx context.Context) error
}

// Locker acquires per-identity session locks.
type Locker interface {
	// TryAcquire never blocks. It returns ErrAlreadyHeld if another session holds id.
	TryAcquire(ctx context.Context, id Identity) (Guard, error)
	// ForceRelease frees id whoever holds it.
	ForceRelease(ctx context.Context, id Identity) error
	// Reconcile frees locks left behind by processes that died without
	// releasing them and reports how many were freed.
	Reconcile(ctx context.Context) (int, error)
}

// Holder describes who took a lock.
type Holder struct {
	Host       string    `json:"host"`
	PID        int       `json:"pid"`
	Token      string    `json:"token"`
	AcquiredAt time.Time `json:"acquired_at"`
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return h
}
