// Package accountdelivery manages delivery layer of customer accounts.
package accountdelivery

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
	"github.com/shopspring/decimal"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Balance(ctx context.Context, id int32) (domain.Account, error)
	Deposit(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, fromID, toID int32, amount decimal.Decimal) (domain.Account, error)
	History(ctx context.Context, id int32, limit int) ([]domain.Entry, error)
	ChangePIN(ctx context.Context, id int32, pin string) error
	CreateCustomer(ctx context.Context, id int32, owner, pin string, openingBalance decimal.Decimal) (domain.Account, error)
	SetActive(ctx context.Context, id int32, active bool) (domain.Account, error)
	UpdateOwner(ctx context.Context, id int32, owner string) (domain.Account, error)
}

// Sessions ends sessions whose credentials or status changed.
type Sessions interface {
	Logout(ctx context.Context, sessionID uuid.UUID) error
	ForceRelease(ctx context.Context, id sessionlock.Identity) error
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service  Service
	sessions Sessions
}

// NewHandler returns account handler.
func NewHandler(as Service, ss Sessions) *Handler {
	return &Handler{service: as, sessions: ss}
}

type accountData struct {
	Account domain.Account `json:"account"`
}

type transactionsData struct {
	Transactions []domain.Entry `json:"transactions"`
}

func (h *Handler) bindJSON(gctx *gin.Context, req any) bool {
	if err := gctx.ShouldBindJSON(req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return false
	}

	return true
}

func (h *Handler) respondAccount(gctx *gin.Context, a domain.Account, err error) {
	if err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{Account: a}})
}

// Me handles http request to show the caller's account.
func (h *Handler) Me(gctx *gin.Context) {
	a, err := h.service.Balance(gctx.Request.Context(), middleware.Payload(gctx).IdentityID)
	h.respondAccount(gctx, a, err)
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,amount"`
}

// Deposit handles http request to deposit into the caller's account.
func (h *Handler) Deposit(gctx *gin.Context) {
	var req amountRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	a, err := h.service.Deposit(gctx.Request.Context(), middleware.Payload(gctx).IdentityID, decimal.RequireFromString(req.Amount))
	h.respondAccount(gctx, a, err)
}

// Withdraw handles http request to withdraw from the caller's account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	var req amountRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	a, err := h.service.Withdraw(gctx.Request.Context(), middleware.Payload(gctx).IdentityID, decimal.RequireFromString(req.Amount))
	h.respondAccount(gctx, a, err)
}

type transferRequest struct {
	ToAccountID int32  `json:"to_account_id" binding:"required,min=1"`
	Amount      string `json:"amount" binding:"required,amount"`
}

// Transfer handles http request to move money from the caller's account.
func (h *Handler) Transfer(gctx *gin.Context) {
	var req transferRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	a, err := h.service.Transfer(
		gctx.Request.Context(), middleware.Payload(gctx).IdentityID, req.ToAccountID, decimal.RequireFromString(req.Amount),
	)
	h.respondAccount(gctx, a, err)
}

type historyQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (h *Handler) history(gctx *gin.Context, id int32) {
	var q historyQuery
	if err := gctx.ShouldBindQuery(&q); err != nil {
		gctx.JSON(http.StatusBadRequest, web.BindError(err))
		return
	}

	entries, err := h.service.History(gctx.Request.Context(), id, q.Limit)
	if err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transactionsData{Transactions: entries}})
}

// History handles http request to list the caller's recent transactions.
func (h *Handler) History(gctx *gin.Context) {
	h.history(gctx, middleware.Payload(gctx).IdentityID)
}

type pinRequest struct {
	PIN string `json:"pin" binding:"required,min=4,max=32"`
}

// ChangePIN handles http request to change the caller's PIN. The session
// ends on success.
func (h *Handler) ChangePIN(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	payload := middleware.Payload(gctx)

	var req pinRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	if err := h.service.ChangePIN(ctx, payload.IdentityID, req.PIN); err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	if err := h.sessions.Logout(ctx, payload.ID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", payload.ID.String()).Msg("forced logout failed")
	}

	gctx.Status(http.StatusNoContent)
}

type customerURI struct {
	ID int32 `uri:"id" binding:"required,min=1"`
}

func bindCustomerURI(gctx *gin.Context) (int32, bool) {
	var uri customerURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		gctx.JSON(http.StatusBadRequest, web.BindError(err))
		return 0, false
	}

	return uri.ID, true
}

type createCustomerRequest struct {
	ID             int32  `json:"id" binding:"required,min=1"`
	Owner          string `json:"owner" binding:"required,max=50"`
	PIN            string `json:"pin" binding:"required,min=4,max=32"`
	OpeningBalance string `json:"opening_balance" binding:"omitempty,numeric"`
}

// CreateCustomer handles http request to open a customer account.
func (h *Handler) CreateCustomer(gctx *gin.Context) {
	var req createCustomerRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	opening := decimal.Zero
	if req.OpeningBalance != "" {
		opening = decimal.RequireFromString(req.OpeningBalance)
	}

	a, err := h.service.CreateCustomer(gctx.Request.Context(), req.ID, req.Owner, req.PIN, opening)
	if err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: accountData{Account: a}})
}

type ownerRequest struct {
	Owner string `json:"owner" binding:"required,max=50"`
}

// UpdateOwner handles http request to rename a customer account.
func (h *Handler) UpdateOwner(gctx *gin.Context) {
	id, ok := bindCustomerURI(gctx)
	if !ok {
		return
	}

	var req ownerRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	a, err := h.service.UpdateOwner(gctx.Request.Context(), id, req.Owner)
	h.respondAccount(gctx, a, err)
}

type statusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetStatus handles http request to activate or deactivate a customer account.
func (h *Handler) SetStatus(gctx *gin.Context) {
	id, ok := bindCustomerURI(gctx)
	if !ok {
		return
	}

	var req statusRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	ctx := gctx.Request.Context()

	a, err := h.service.SetActive(ctx, id, *req.Active)
	if err == nil && !a.Active {
		if err := h.sessions.ForceRelease(ctx, sessionlock.Identity{Kind: domain.KindCustomer, ID: id}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int32("account_id", id).Msg("ending session of deactivated account failed")
		}
	}

	h.respondAccount(gctx, a, err)
}

// CustomerHistory handles http request to list a customer's recent transactions.
func (h *Handler) CustomerHistory(gctx *gin.Context) {
	id, ok := bindCustomerURI(gctx)
	if !ok {
		return
	}

	h.history(gctx, id)
}
