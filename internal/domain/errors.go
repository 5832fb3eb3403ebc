// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors below wrap one of them so callers can match
// either the kind or the exact condition with errors.Is.
var (
	// ErrNotFound indicates that an account, staff member or loan is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a request rejected before any storage access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientFunds indicates that a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInactiveAccount indicates an operation on a deactivated account.
	ErrInactiveAccount = errors.New("account is inactive")
	// ErrAlreadyHeld indicates that the identity already has a live session.
	ErrAlreadyHeld = errors.New("already logged in elsewhere")
	// ErrAlreadyProcessed indicates that a loan left the expected state before it was locked.
	ErrAlreadyProcessed = errors.New("loan was already assigned or processed")
	// ErrAlreadyExists indicates a duplicate id on create.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized indicates wrong credentials.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrForbidden indicates that the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")
)

// Specific errors.
var (
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrStaffNotFound   = fmt.Errorf("staff member %w", ErrNotFound)
	ErrLoanNotFound    = fmt.Errorf("loan %w", ErrNotFound)

	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive with at most two decimal places", ErrInvalidInput)
	ErrEmptySecret   = fmt.Errorf("%w: secret must not be empty", ErrInvalidInput)
	ErrSelfTransfer  = fmt.Errorf("%w: cannot transfer to the same account", ErrInvalidInput)
	ErrEmptyFeedback = fmt.Errorf("%w: feedback must not be empty", ErrInvalidInput)
	ErrInvalidID     = fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	ErrInvalidRole   = fmt.Errorf("%w: unknown role", ErrInvalidInput)
	ErrEmptyName     = fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	ErrNameTooLong   = fmt.Errorf("%w: name is too long", ErrInvalidInput)
	ErrSecretTooLong = fmt.Errorf("%w: secret must be at most 72 bytes", ErrInvalidInput)
	ErrBalanceLimit  = fmt.Errorf("%w: balance would exceed the account limit", ErrInvalidInput)

	ErrAccountAlreadyExists = fmt.Errorf("account id %w", ErrAlreadyExists)
	ErrStaffAlreadyExists   = fmt.Errorf("staff id %w", ErrAlreadyExists)

	ErrWrongPIN      = fmt.Errorf("%w: wrong account id or PIN", ErrUnauthorized)
	ErrWrongPassword = fmt.Errorf("%w: wrong id or password", ErrUnauthorized)
	ErrWrongRole     = fmt.Errorf("%w: staff member does not have this role", ErrForbidden)
	ErrNotAssignee   = fmt.Errorf("%w: loan is not assigned to you", ErrForbidden)
)
