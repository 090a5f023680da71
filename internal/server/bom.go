package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bomdomain "github.com/smallbiznis/specbook/internal/bom/domain"
)

func (s *Server) CreateBOMVersion(c *gin.Context) {
	resp, err := s.bomSvc.CreateSnapshot(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBOMVersions(c *gin.Context) {
	resp, err := s.bomSvc.ListByProject(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBOMVersion(c *gin.Context) {
	resp, err := s.bomSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ShareBOMVersion(c *gin.Context) {
	resp, err := s.bomSvc.EnsureShareID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportBOMVersionCSV(c *gin.Context) {
	export, err := s.bomSvc.ExportCSV(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(export.Content))
}

func isBOMValidationError(err error) bool {
	switch err {
	case bomdomain.ErrInvalidOrganization,
		bomdomain.ErrInvalidID,
		bomdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
