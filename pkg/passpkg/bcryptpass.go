// Package passpkg provides hashing and verification of PINs and passwords.
package passpkg

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashSize is the length of every hash returned by Hash.
const HashSize = 60

// Hash returns the bcrypt hash of the password.
func Hash(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedPassword), nil
}

// Check checks if the provided password is correct or not.
func Check(password string, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
