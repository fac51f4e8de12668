package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravenlane/compo/internal/adapter/payments"
	"github.com/ravenlane/compo/internal/app"
	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/server/http/dto"
	"github.com/ravenlane/compo/internal/usecase"
)

// CheckoutHandler manages purchase creation and confirmation.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	result, err := h.facade.Checkout(c.Request.Context(), usecase.CheckoutInput{
		UserID:        OptionalUserID(c),
		CompetitionID: req.CompetitionID,
		Quantity:      req.Quantity,
		Provider:      req.Provider,
		CardToken:     req.CardToken,
		Billing: model.BillingDetails{
			Name:  req.Billing.Name,
			Email: req.Billing.Email,
			Phone: req.Billing.Phone,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrEmailRequired),
			errors.Is(err, domainErrors.ErrInvalidQuantity),
			errors.Is(err, payments.ErrUnknownProvider):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrCompetitionClosed),
			errors.Is(err, domainErrors.ErrSoldOut),
			errors.Is(err, domainErrors.ErrAlreadyExists):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, dto.CheckoutResponse{
		OrderRef:   result.Order.PublicRef.String(),
		ApproveURL: result.ApproveURL,
		Status:     string(result.Order.Status),
	})
}

// Get handles GET /api/orders/:ref.
func (h *CheckoutHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("ref"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Confirm handles POST /api/orders/:ref/confirm.
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	order, result, err := h.facade.ConfirmPayment(c.Request.Context(), c.Param("ref"))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, app.ErrCapturePending):
			c.JSON(http.StatusAccepted, dto.ConfirmResponse{
				OrderRef: order.PublicRef.String(),
				Status:   string(model.PaymentStatusPending),
			})
		case errors.Is(err, domainErrors.ErrProviderRejected):
			c.JSON(http.StatusPaymentRequired, dto.ConfirmResponse{
				OrderRef: order.PublicRef.String(),
				Status:   string(model.OrderStatusFailed),
			})
		case errors.Is(err, domainErrors.ErrSoldOut):
			c.JSON(http.StatusConflict, dto.ConfirmResponse{
				OrderRef: order.PublicRef.String(),
				Status:   string(model.OrderStatusFailed),
			})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// A replayed confirmation reports the order's settled state instead
	// of pretending a fresh settlement happened.
	status := model.OrderStatusCompleted
	if result.AlreadySettled {
		status = order.Status
	}
	response := dto.ConfirmResponse{
		OrderRef:          order.PublicRef.String(),
		Status:            string(status),
		AlreadySettled:    result.AlreadySettled,
		TicketNumbers:     order.TicketNumbers,
		CompetitionClosed: result.CompetitionClosed,
	}
	c.JSON(http.StatusOK, response)
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		Ref:           order.PublicRef.String(),
		CompetitionID: order.CompetitionID,
		Quantity:      order.Quantity,
		TicketNumbers: order.TicketNumbers,
		AmountPence:   order.AmountPence,
		Currency:      order.Currency,
		Provider:      order.Provider,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		CreatedAt:     order.CreatedAt,
	}
}
