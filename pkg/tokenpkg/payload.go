package tokenpkg

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Different types of error returned by the VerifyToken function.
var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Roles carried by a token.
const (
	RoleCustomer = "customer"
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Subject identifies who the token was issued to.
type Subject struct {
	Role       string `json:"role"`
	IdentityID int32  `json:"identity_id"`
}

// Payload contains the payload data of the token.
type Payload struct {
	ID         uuid.UUID `json:"id"`
	Role       string    `json:"role"`
	IdentityID int32     `json:"identity_id"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiredAt  time.Time `json:"expired_at"`
}

// NewPayload creates a new token payload with a specific subject and duration.
func NewPayload(subject Subject, duration time.Duration) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		ID:         tokenID,
		Role:       subject.Role,
		IdentityID: subject.IdentityID,
		IssuedAt:   time.Now(),
		ExpiredAt:  time.Now().Add(duration),
	}

	return payload, nil
}

// Valid checks if the token payload is valid or not.
func (payload *Payload) Valid() error {
	if time.Now().After(payload.ExpiredAt) {
		return ErrExpiredToken
	}

	return nil
}
