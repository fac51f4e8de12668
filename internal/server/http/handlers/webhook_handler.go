package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ravenlane/compo/internal/adapter/payments"
	"github.com/ravenlane/compo/internal/app"
)

// WebhookHandler receives provider webhook deliveries.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Receive handles POST /api/webhooks/:provider. Providers retry anything
// that is not a 2xx, so only genuinely retryable failures return errors.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err = h.facade.HandleWebhook(c.Request.Context(), c.Param("provider"), c.Request.Header, body)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrUnknownProvider):
			c.Status(http.StatusNotFound)
		case errors.Is(err, app.ErrInvalidSignature):
			c.Status(http.StatusBadRequest)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)
}
