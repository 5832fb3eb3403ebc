package middleware

import (
	"errors"
	"net/http"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/errorspkg"
	"github.com/JMan003/banking-system-project/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var statuses = []struct {
	kind   error
	status int
}{
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrInactiveAccount, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrAlreadyExists, http.StatusConflict},
	{domain.ErrAlreadyHeld, http.StatusConflict},
	{domain.ErrAlreadyProcessed, http.StatusConflict},
	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{errorspkg.ErrLock, http.StatusServiceUnavailable},
}

// ErrorStatus maps a service error to its HTTP status code.
func ErrorStatus(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.kind) {
			return s.status
		}
	}

	return http.StatusInternalServerError
}

// WriteError responds with the status of err. Unexpected errors are logged and
// reported as internal.
func WriteError(gctx *gin.Context, err error) {
	status := ErrorStatus(err)

	if status == http.StatusInternalServerError {
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Send()
		gctx.JSON(status, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(status, web.Error(err))
}
