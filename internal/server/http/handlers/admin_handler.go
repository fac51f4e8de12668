package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/server/http/dto"
)

// AdminHandler covers the token-guarded admin surface.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// CreateCompetition handles POST /api/admin/competitions.
func (h *AdminHandler) CreateCompetition(c *gin.Context) {
	var req dto.CreateCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.TicketPricePence <= 0 || (req.TicketLimit != nil && *req.TicketLimit <= 0) {
		c.Status(http.StatusUnprocessableEntity)
		return
	}

	created, err := h.facade.CreateCompetition(c.Request.Context(), &model.Competition{
		Title:            req.Title,
		Description:      req.Description,
		TicketPricePence: req.TicketPricePence,
		Currency:         req.Currency,
		TicketLimit:      req.TicketLimit,
		MaxPerOrder:      req.MaxPerOrder,
		DrawAt:           req.DrawAt,
	})
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, toCompetitionResponse(*created))
}

// BustHomeFeed handles POST /api/admin/feed/bust.
func (h *AdminHandler) BustHomeFeed(c *gin.Context) {
	if err := h.facade.BustHomeFeed(c.Request.Context()); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}
