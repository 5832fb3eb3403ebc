// Package sessiondelivery manages delivery layer of login sessions.
package sessiondelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/middleware"
	"github.com/JMan003/banking-system-project/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by session delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package sessiondelivery
type Service interface {
	CustomerLogin(ctx context.Context, accountID int32, pin string) (domain.LoginResponse, error)
	StaffLogin(ctx context.Context, staffID int32, password string, role domain.Role) (domain.LoginResponse, error)
	AdminLogin(ctx context.Context, password string) (domain.LoginResponse, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

// Handler facilitates session delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns session handler.
func NewHandler(ss Service) *Handler {
	return &Handler{
		service: ss,
	}
}

type sessionData struct {
	Session domain.Session `json:"session"`
}

func loginResponse(res domain.LoginResponse) web.Response {
	return web.Response{
		AccessToken:          res.AccessToken,
		AccessTokenExpiresAt: res.AccessTokenExpiresAt.Format(time.RFC3339),
		Data:                 sessionData{Session: res.Session},
	}
}

type customerLoginRequest struct {
	AccountID int32  `json:"account_id" binding:"required,min=1"`
	PIN       string `json:"pin" binding:"required"`
}

// CustomerLogin handles http request to log a customer in.
func (h *Handler) CustomerLogin(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req customerLoginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	res, err := h.service.CustomerLogin(ctx, req.AccountID, req.PIN)
	if err != nil {
		l.Info().Err(err).Int32("account_id", req.AccountID).Msg("customer login failed")
		middleware.WriteError(gctx, err)

		return
	}

	gctx.JSON(http.StatusOK, loginResponse(res))
}

type staffLoginRequest struct {
	StaffID  int32  `json:"staff_id" binding:"required,min=1"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=manager employee"`
}

// StaffLogin handles http request to log a manager or an employee in.
func (h *Handler) StaffLogin(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req staffLoginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	res, err := h.service.StaffLogin(ctx, req.StaffID, req.Password, role)
	if err != nil {
		l.Info().Err(err).Int32("staff_id", req.StaffID).Msg("staff login failed")
		middleware.WriteError(gctx, err)

		return
	}

	gctx.JSON(http.StatusOK, loginResponse(res))
}

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin handles http request to log the administrator in.
func (h *Handler) AdminLogin(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req adminLoginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	res, err := h.service.AdminLogin(ctx, req.Password)
	if err != nil {
		l.Info().Err(err).Msg("admin login failed")
		middleware.WriteError(gctx, err)

		return
	}

	gctx.JSON(http.StatusOK, loginResponse(res))
}

// Logout handles http request to end the caller's session.
func (h *Handler) Logout(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	payload := middleware.Payload(gctx)

	if err := h.service.Logout(ctx, payload.ID); err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}
