package tokenpkg

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/JMan003/banking-system-project/pkg/randompkg"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func randomSubject() Subject {
	return Subject{Role: RoleCustomer, IdentityID: randompkg.ID()}
}

func TestNewJWTMaker(t *testing.T) {
	t.Parallel()

	// OK
	secretKey := strings.Repeat("x", 32)

	_, err := NewJWTMaker(secretKey)
	if err != nil {
		t.Errorf("NewJWTMaker(%v) returned error: %v", secretKey, err)
	}

	// shortKeyError
	shortKey := strings.Repeat("x", 30)

	got, err := NewJWTMaker(shortKey)
	if err.Error() != fmt.Errorf("invalid key size: must be at least %d characters", minSecretKeySize).Error() {
		t.Errorf("NewJWTMaker(%v) returned unexpected error: %v", secretKey, err)
	}

	if got != nil {
		t.Errorf("JWTMaker = %+v, want nil", got)
	}
}

func TestJWTMaker(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewJWTMaker(secretKey)
	if err != nil {
		t.Fatalf("NewJWTMaker(%v) returned error: %v", secretKey, err)
	}

	subject := randomSubject()
	duration := time.Minute

	token, payload, err := maker.CreateToken(subject, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v) returned error: %v", subject, duration, err)
	}

	verified, err := maker.VerifyToken(token)
	if err != nil {
		t.Errorf("maker.VerifyToken(%v) returned error: %v", token, err)
	}

	want := &Payload{
		Role:       subject.Role,
		IdentityID: subject.IdentityID,
		IssuedAt:   time.Now(),
		ExpiredAt:  time.Now().Add(duration),
	}

	ignore := cmpopts.IgnoreFields(Payload{}, "ID")
	delta := cmpopts.EquateApproxTime(time.Minute)

	if diff := cmp.Diff(payload, want, ignore, delta); diff != "" {
		t.Errorf("maker.CreateToken(%v, %v) returned unexpected diff: %v", subject, duration, diff)
	}

	if diff := cmp.Diff(verified, payload, delta); diff != "" {
		t.Errorf("maker.VerifyToken(%v) returned unexpected diff: %v", token, diff)
	}
}

func TestExpiredJWTToken(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewJWTMaker(secretKey)
	if err != nil {
		t.Fatalf("NewJWTMaker(%v) returned error: %v", secretKey, err)
	}

	subject := randomSubject()
	duration := -time.Minute

	token, _, err := maker.CreateToken(subject, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v) returned error: %v", subject, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != ErrExpiredToken {
		t.Errorf("maker.VerifyToken(%v) returned unexpected error: %v", token, err)
	}
}

func TestInvalidJWTTokenAlgNone(t *testing.T) {
	t.Parallel()

	subject := randomSubject()
	duration := time.Minute

	payload, err := NewPayload(subject, duration)
	if err != nil {
		t.Errorf("NewPayload(%v, %v) returned error: %v", subject, duration, err)
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodNone, payload)

	token, err := jwtToken.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Errorf("jwtToken.SignedString(%v) returned error: %v", jwt.UnsafeAllowNoneSignatureType, err)
	}

	secretKey := randompkg.String(32)

	maker, err := NewJWTMaker(secretKey)
	if err != nil {
		t.Fatalf("NewJWTMaker(%v) returned error: %v", secretKey, err)
	}

	_, err = maker.VerifyToken(token)
	if err != ErrInvalidToken {
		t.Errorf("maker.VerifyToken(%v) returned error: %v", token, err)
	}
}

func TestNewMaker(t *testing.T) {
	t.Parallel()

	key := randompkg.String(32)

	testCases := []struct {
		name      string
		tokenType string
		wantErr   bool
	}{
		{name: "Default", tokenType: ""},
		{name: "Paseto", tokenType: "paseto"},
		{name: "JWT", tokenType: "jwt"},
		{name: "Unsupported", tokenType: "macaroon", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			maker, err := NewMaker(tc.tokenType, key)
			if tc.wantErr {
				if err == nil {
					t.Errorf("NewMaker(%q) returned nil error", tc.tokenType)
				}
				return
			}

			if err != nil || maker == nil {
				t.Errorf("NewMaker(%q) = %v, %v", tc.tokenType, maker, err)
			}
		})
	}
}
