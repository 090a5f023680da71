package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

// HandlePaystackWebhook accepts gateway events. The raw body is needed
// for signature verification, so it is read before any JSON binding.
func (s *Server) HandlePaystackWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if err := s.paymentSvc.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
