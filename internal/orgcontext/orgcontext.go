package orgcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Identity is the authenticated request context provided by the upstream
// auth layer. Session and token mechanics live outside this service.
type Identity struct {
	UserID snowflake.ID
	OrgID  snowflake.ID
	Role   string
}

type identityKey struct{}

// WithIdentity stores the authenticated identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the authenticated identity, if set.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// WithOrgID stores a bare org ID in the context. Used by jobs and tests
// that act without a user identity.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	id, _ := IdentityFromContext(ctx)
	id.OrgID = orgID
	return WithIdentity(ctx, id)
}

// OrgIDFromContext returns the active org ID from context, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.OrgID == 0 {
		return 0, false
	}
	return id.OrgID, true
}

// ParseID parses a snowflake ID from its string form.
func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
