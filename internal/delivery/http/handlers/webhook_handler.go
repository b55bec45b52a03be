package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/coursedesk/payment-order-service/internal/domain"
	"github.com/coursedesk/payment-order-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	Usecase usecase.WebhookUsecase
}

func NewWebhookHandler(webhookUsecase usecase.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{Usecase: webhookUsecase}
}

// HandleWebhook reads the raw body before anything touches it: the signature
// is computed over the exact bytes on the wire.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	vendor := c.Param("vendor")

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	err = h.Usecase.HandleWebhook(c.Request.Context(), vendor, c.Request.Header, rawBody)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, domain.ErrSignatureMissing), errors.Is(err, domain.ErrSignatureMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownGateway):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
