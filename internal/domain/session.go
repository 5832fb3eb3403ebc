package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the identity namespaces that hold sessions.
type Kind string

// Identity kinds.
const (
	KindCustomer Kind = "customer"
	KindStaff    Kind = "staff"
	KindAdmin    Kind = "admin"
)

// Session holds a live login.
type Session struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	IdentityID int32     `json:"identity_id"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
	Session              Session   `json:"session"`
}

// Session errors.
var (
	ErrSessionNotFound = fmt.Errorf("%w: session ended or never existed", ErrUnauthorized)
	ErrSessionExpired  = fmt.Errorf("%w: session expired", ErrUnauthorized)
)
