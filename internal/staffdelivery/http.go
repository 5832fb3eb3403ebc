// Package staffdelivery manages delivery layer of staff members and the
// administrator account.
package staffdelivery

import (
	"context"
	"net/http"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/middleware"
	"github.com/JMan003/banking-system-project/internal/sessionlock"
	"github.com/JMan003/banking-system-project/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by staff delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package staffdelivery
type Service interface {
	CreateStaff(ctx context.Context, arg domain.CreateStaffParams) (domain.Staff, error)
	UpdateRole(ctx context.Context, id int32, role domain.Role) (domain.Staff, error)
	UpdateName(ctx context.Context, id int32, first, last string) (domain.Staff, error)
	ChangePassword(ctx context.Context, id int32, password string) error
	ChangeAdminPassword(ctx context.Context, password string) error
}

// Sessions ends sessions whose credentials or role changed.
type Sessions interface {
	Logout(ctx context.Context, sessionID uuid.UUID) error
	ForceRelease(ctx context.Context, id sessionlock.Identity) error
}

// Handler facilitates staff delivery layer logic.
type Handler struct {
	service  Service
	sessions Sessions
}

// NewHandler returns staff handler.
func NewHandler(ss Service, sessions Sessions) *Handler {
	return &Handler{service: ss, sessions: sessions}
}

type staffData struct {
	Staff domain.StaffResponse `json:"staff"`
}

func bindJSON(gctx *gin.Context, req any) bool {
	if err := gctx.ShouldBindJSON(req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return false
	}

	return true
}

func respondStaff(gctx *gin.Context, status int, s domain.Staff, err error) {
	if err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	gctx.JSON(status, web.Response{Data: staffData{Staff: s.Response()}})
}

type staffURI struct {
	ID int32 `uri:"id" binding:"required,min=1"`
}

func bindStaffURI(gctx *gin.Context) (int32, bool) {
	var uri staffURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		gctx.JSON(http.StatusBadRequest, web.BindError(err))
		return 0, false
	}

	return uri.ID, true
}

type createRequest struct {
	ID        int32  `json:"id" binding:"required,min=1"`
	FirstName string `json:"first_name" binding:"required,max=25"`
	LastName  string `json:"last_name" binding:"required,max=25"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	Role      string `json:"role" binding:"required,oneof=manager employee"`
}

// Create handles http request to add a staff member.
func (h *Handler) Create(gctx *gin.Context) {
	var req createRequest
	if !bindJSON(gctx, &req) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	s, err := h.service.CreateStaff(gctx.Request.Context(), domain.CreateStaffParams{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      role,
	})
	respondStaff(gctx, http.StatusCreated, s, err)
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=manager employee"`
}

// UpdateRole handles http request to change a staff member's role. Any live
// session of that staff member ends.
func (h *Handler) UpdateRole(gctx *gin.Context) {
	id, ok := bindStaffURI(gctx)
	if !ok {
		return
	}

	var req roleRequest
	if !bindJSON(gctx, &req) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	ctx := gctx.Request.Context()

	s, err := h.service.UpdateRole(ctx, id, role)
	if err == nil {
		// Tokens carry the role, so the old session must not outlive it.
		if err := h.sessions.ForceRelease(ctx, sessionlock.Identity{Kind: domain.KindStaff, ID: id}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int32("staff_id", id).Msg("ending session after role change failed")
		}
	}

	respondStaff(gctx, http.StatusOK, s, err)
}

type nameRequest struct {
	FirstName string `json:"first_name" binding:"required,max=25"`
	LastName  string `json:"last_name" binding:"required,max=25"`
}

// UpdateName handles http request to rename a staff member.
func (h *Handler) UpdateName(gctx *gin.Context) {
	id, ok := bindStaffURI(gctx)
	if !ok {
		return
	}

	var req nameRequest
	if !bindJSON(gctx, &req) {
		return
	}

	s, err := h.service.UpdateName(gctx.Request.Context(), id, req.FirstName, req.LastName)
	respondStaff(gctx, http.StatusOK, s, err)
}

type passwordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// endSession logs the caller out after a credential change.
func (h *Handler) endSession(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	payload := middleware.Payload(gctx)

	if err := h.sessions.Logout(ctx, payload.ID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", payload.ID.String()).Msg("forced logout failed")
	}

	gctx.Status(http.StatusNoContent)
}

// ChangePassword handles http request to change the caller's password. The
// session ends on success.
func (h *Handler) ChangePassword(gctx *gin.Context) {
	var req passwordRequest
	if !bindJSON(gctx, &req) {
		return
	}

	if err := h.service.ChangePassword(gctx.Request.Context(), middleware.Payload(gctx).IdentityID, req.Password); err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	h.endSession(gctx)
}

// ChangeAdminPassword handles http request to change the administrator
// password. The session ends on success.
func (h *Handler) ChangeAdminPassword(gctx *gin.Context) {
	var req passwordRequest
	if !bindJSON(gctx, &req) {
		return
	}

	if err := h.service.ChangeAdminPassword(gctx.Request.Context(), req.Password); err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	h.endSession(gctx)
}
