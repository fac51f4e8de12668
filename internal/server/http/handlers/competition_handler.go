package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ravenlane/compo/internal/domain/errors"
	"github.com/ravenlane/compo/internal/domain/model"
	"github.com/ravenlane/compo/internal/server/http/dto"
)

// CompetitionHandler serves the public catalogue.
type CompetitionHandler struct {
	facade CatalogFacade
}

// NewCompetitionHandler constructs CompetitionHandler.
func NewCompetitionHandler(facade CatalogFacade) *CompetitionHandler {
	return &CompetitionHandler{facade: facade}
}

// List handles GET /api/competitions.
func (h *CompetitionHandler) List(c *gin.Context) {
	live, err := h.facade.HomeFeed(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.CompetitionResponse, 0, len(live))
	for _, comp := range live {
		response = append(response, toCompetitionResponse(comp))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/competitions/:id.
func (h *CompetitionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	competition, err := h.facade.Competition(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toCompetitionResponse(*competition))
}

func toCompetitionResponse(competition model.Competition) dto.CompetitionResponse {
	return dto.CompetitionResponse{
		ID:               competition.ID,
		Title:            competition.Title,
		Description:      competition.Description,
		TicketPricePence: competition.TicketPricePence,
		Currency:         competition.Currency,
		TicketLimit:      competition.TicketLimit,
		TicketsSold:      competition.TicketsSold,
		MaxPerOrder:      competition.MaxPerOrder,
		Status:           string(competition.Status),
		DrawAt:           competition.DrawAt,
	}
}
