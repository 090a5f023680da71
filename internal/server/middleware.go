package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/specbook/internal/orgcontext"
)

// Request identity headers. Session and token mechanics live in the
// upstream gateway; this service trusts its headers.
const (
	HeaderUser = "X-User-Id"
	HeaderOrg  = "X-Org-Id"
	HeaderRole = "X-Role"
)

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// IdentityRequired resolves the authenticated identity from gateway
// headers and injects it into the request context.
func (s *Server) IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := orgcontext.ParseID(c.GetHeader(HeaderOrg))
		if err != nil || orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity := orgcontext.Identity{
			OrgID: orgID,
			Role:  strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderRole))),
		}
		if userID, err := orgcontext.ParseID(c.GetHeader(HeaderUser)); err == nil {
			identity.UserID = userID
		}

		ctx := orgcontext.WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole gates a route to the given roles. A request with no role
// header passes IdentityRequired but fails here.
func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := orgcontext.IdentityFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}
