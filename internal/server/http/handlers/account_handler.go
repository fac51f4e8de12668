package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/server/http/dto"
)

// AccountHandler serves the authenticated user's purchases.
type AccountHandler struct {
	facade AccountFacade
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(facade AccountFacade) *AccountHandler {
	return &AccountHandler{facade: facade}
}

// Orders handles GET /api/user/orders.
func (h *AccountHandler) Orders(c *gin.Context) {
	userID := CurrentUserID(c)
	orders, err := h.facade.Orders(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Tickets handles GET /api/user/tickets.
func (h *AccountHandler) Tickets(c *gin.Context) {
	userID := CurrentUserID(c)
	tickets, err := h.facade.Tickets(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(tickets) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		response = append(response, toTicketResponse(t))
	}
	c.JSON(http.StatusOK, response)
}

func toTicketResponse(ticket model.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		CompetitionID: ticket.CompetitionID,
		Number:        ticket.Number,
		Status:        string(ticket.Status),
		CreatedAt:     ticket.CreatedAt,
	}
}
