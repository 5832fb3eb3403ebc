// Package feedbackdelivery manages delivery layer of customer feedback.
package feedbackdelivery

import (
	"context"
	"net/http"

	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/internal/middleware"
	"github.com/JMan003/banking-system-project/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by feedback delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package feedbackdelivery
type Service interface {
	Submit(ctx context.Context, text string) (domain.Feedback, error)
	List(ctx context.Context) ([]domain.Feedback, error)
}

// Handler facilitates feedback delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns feedback handler.
func NewHandler(fs Service) *Handler {
	return &Handler{service: fs}
}

type submitRequest struct {
	Text string `json:"text" binding:"required"`
}

// Submit handles http request to leave feedback.
func (h *Handler) Submit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req submitRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	fb, err := h.service.Submit(ctx, req.Text)
	if err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: struct {
		Feedback domain.Feedback `json:"feedback"`
	}{fb}})
}

// List handles http request to read all feedback.
func (h *Handler) List(gctx *gin.Context) {
	items, err := h.service.List(gctx.Request.Context())
	if err != nil {
		middleware.WriteError(gctx, err)
		return
	}

	if items == nil {
		items = []domain.Feedback{}
	}

	gctx.JSON(http.StatusOK, web.Response{Data: struct {
		Feedback []domain.Feedback `json:"feedback"`
	}{items}})
}
