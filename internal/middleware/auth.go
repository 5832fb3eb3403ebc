// Package middleware provides gin middleware shared by all delivery packages.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/tokenpkg"
	"github.com/JMan003/banking-system-project/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Authorization header and context keys.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
	AuthSessionKey = "authorization_session"
)

// Authorization errors.
var (
	ErrAuthHeaderNotFound  = errors.New("authorization header is not provided")
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
)

// SessionValidator reports the live session a verified token belongs to.
type SessionValidator interface {
	Validate(ctx context.Context, payload *tokenpkg.Payload) (domain.Session, error)
}

// AddAuthorization sets a bearer header with a fresh token for subject.
func AddAuthorization(
	r *http.Request,
	tokenMaker tokenpkg.Maker,
	authType string,
	subject tokenpkg.Subject,
	duration time.Duration,
) error {
	token, _, err := tokenMaker.CreateToken(subject, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))

	return nil
}

// AuthMiddleware verifies the bearer token and, when sessions is not nil,
// requires the session it names to still be live.
func AuthMiddleware(tokenMaker tokenpkg.Maker, sessions SessionValidator) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderNotFound))
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrBadAuthHeaderFormat))
			return
		}

		if strings.ToLower(fields[0]) != AuthTypeBearer {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrUnsupportedAuthType))
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			l.Info().Err(err).Send()
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		if sessions != nil {
			sess, err := sessions.Validate(gctx.Request.Context(), payload)
			if err != nil {
				l.Info().Err(err).Str("session_id", payload.ID.String()).Send()
				gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

				return
			}

			gctx.Set(AuthSessionKey, sess)
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}

// RequireRole rejects callers whose token role is not one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		payload := Payload(gctx)
		if payload == nil || !lo.Contains(roles, payload.Role) {
			gctx.AbortWithStatusJSON(http.StatusForbidden, web.Error(domain.ErrForbidden))
			return
		}

		gctx.Next()
	}
}

// Payload returns the verified token payload set by AuthMiddleware.
func Payload(gctx *gin.Context) *tokenpkg.Payload {
	v, ok := gctx.Get(AuthPayloadKey)
	if !ok {
		return nil
	}

	payload, _ := v.(*tokenpkg.Payload)

	return payload
}
