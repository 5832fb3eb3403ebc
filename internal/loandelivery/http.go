// Package loandelivery manages delivery layer of loan applications.
package loandelivery

import (
	"context"
	"net/http"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/middleware"
	"github.com/JMan003/banking-system-project/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service provides service layer interface needed by loan delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package loandelivery
type Service interface {
	Request(ctx context.Context, accountID int32, amount decimal.Decimal) (domain.Loan, error)
	ListRequested(ctx context.Context) ([]domain.Loan, error)
	ListAssigned(ctx context.Context, staffID int32) ([]domain.Loan, error)
	Assign(ctx context.Context, loanID, employeeID int32) (domain.Loan, error)
	Process(ctx context.Context, loanID, staffID int32, decision domain.Decision) (domain.Loan, error)
}

// Handler facilitates loan delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns loan handler.
func NewHandler(ls Service) *Handler {
	return &Handler{service: ls}
}

type loanData struct {
	Loan domain.Loan `json:"loan"`
}

type loansData struct {
	Loans []domain.Loan `json:"loans"`
}

func respondLoan(gctx *gin.Context, status int, loan domain.Loan, err error) {
	if err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	gctx.JSON(status, web.Response{Data: loanData{Loan: loan}})
}

func respondLoans(gctx *gin.Context, loans []domain.Loan, err error) {
	if err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	if loans == nil {
		loans = []domain.Loan{}
	}

	gctx.JSON(http.StatusOK, web.Response{Data: loansData{Loans: loans}})
}

type loanURI struct {
	ID int32 `uri:"id" binding:"required,min=1"`
}

func bindLoanURI(gctx *gin.Context) (int32, bool) {
	var uri loanURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		gctx.JSON(http.StatusBadRequest, web.BindError(err))
		return 0, false
	}

	return uri.ID, true
}

func bindJSON(gctx *gin.Context, req any) bool {
	if err := gctx.ShouldBindJSON(req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return false
	}

	return true
}

type requestLoanRequest struct {
	Amount string `json:"amount" binding:"required,amount"`
}

// Request handles http request to apply for a loan on the caller's account.
func (h *Handler) Request(gctx *gin.Context) {
	var req requestLoanRequest
	if !bindJSON(gctx, &req) {
		return
	}

	loan, err := h.service.Request(gctx.Request.Context(), middleware.Payload(gctx).IdentityID, decimal.RequireFromString(req.Amount))
	respondLoan(gctx, http.StatusCreated, loan, err)
}

// ListRequested handles http request to list loans awaiting assignment.
func (h *Handler) ListRequested(gctx *gin.Context) {
	loans, err := h.service.ListRequested(gctx.Request.Context())
	respondLoans(gctx, loans, err)
}

// ListAssigned handles http request to list loans assigned to the caller.
func (h *Handler) ListAssigned(gctx *gin.Context) {
	loans, err := h.service.ListAssigned(gctx.Request.Context(), middleware.Payload(gctx).IdentityID)
	respondLoans(gctx, loans, err)
}

type assignRequest struct {
	EmployeeID int32 `json:"employee_id" binding:"required,min=1"`
}

// Assign handles http request to hand a requested loan to an employee.
func (h *Handler) Assign(gctx *gin.Context) {
	id, ok := bindLoanURI(gctx)
	if !ok {
		return
	}

	var req assignRequest
	if !bindJSON(gctx, &req) {
		return
	}

	loan, err := h.service.Assign(gctx.Request.Context(), id, req.EmployeeID)
	respondLoan(gctx, http.StatusOK, loan, err)
}

type processRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
}

// Process handles http request to approve or reject a loan assigned to the caller.
func (h *Handler) Process(gctx *gin.Context) {
	id, ok := bindLoanURI(gctx)
	if !ok {
		return
	}

	var req processRequest
	if !bindJSON(gctx, &req) {
		return
	}

	decision, err := domain.ParseDecision(req.Decision)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	loan, err := h.service.Process(gctx.Request.Context(), id, middleware.Payload(gctx).IdentityID, decision)
	respondLoan(gctx, http.StatusOK, loan, err)
}
