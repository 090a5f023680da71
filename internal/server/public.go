package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bomdomain "github.com/smallbiznis/specbook/internal/bom/domain"
)

// Public share-link handlers. No identity is required; resources resolve
// by unguessable share IDs and the group is rate limited.

func (s *Server) GetPublicProposal(c *gin.Context) {
	resp, err := s.bomSvc.ProposalView(c.Request.Context(), strings.TrimSpace(c.Param("shareId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RespondPublicProposal(c *gin.Context) {
	var req bomdomain.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bomSvc.RespondProposal(c.Request.Context(), strings.TrimSpace(c.Param("shareId")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPublicProposalPDF(c *gin.Context) {
	proposal, err := s.bomSvc.ProposalView(c.Request.Context(), strings.TrimSpace(c.Param("shareId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.pdfRenderer.RenderProposal(c.Request.Context(), proposal)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="proposal-`+proposal.ShareID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) TrackPublicOrder(c *gin.Context) {
	resp, err := s.orderSvc.TrackByShareID(c.Request.Context(), strings.TrimSpace(c.Param("shareId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
