package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/specbook/internal/payment/domain"
)

func (s *Server) InitializePayment(c *gin.Context) {
	var req paymentdomain.InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Initialize(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// VerifyPayment re-checks a transaction with the gateway. Used by the
// payment callback page after the customer returns from checkout.
func (s *Server) VerifyPayment(c *gin.Context) {
	resp, err := s.paymentSvc.Verify(c.Request.Context(), strings.TrimSpace(c.Param("reference")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPaymentValidationError(err error) bool {
	switch err {
	case paymentdomain.ErrInvalidID,
		paymentdomain.ErrInvalidEmail,
		paymentdomain.ErrInvalidOrganization:
		return true
	default:
		return false
	}
}
