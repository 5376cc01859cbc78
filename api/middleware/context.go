package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/LeDucTai-11/MyStore-BE/pkg/auth"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

type identityKey struct{}

// identity is what Auth learned about the caller. Values stay as strings so
// RequireRole and the rate limiter can key on them without parsing.
type identity struct {
	userID string
	role   string
}

func identityFrom(ctx context.Context) identity {
	if ctx == nil {
		return identity{}
	}
	id, _ := ctx.Value(identityKey{}).(identity)
	return id
}

func withIdentity(ctx context.Context, update func(*identity)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id := identityFrom(ctx)
	update(&id)
	return context.WithValue(ctx, identityKey{}, id)
}

func withClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims) context.Context {
	return withIdentity(ctx, func(id *identity) {
		id.userID = claims.UserID.String()
		id.role = string(claims.Role)
	})
}

func UserIDFromContext(ctx context.Context) string { return identityFrom(ctx).userID }

func RoleFromContext(ctx context.Context) string { return identityFrom(ctx).role }

// ActorFromContext returns the authenticated caller. ok is false when the
// request did not pass through Auth or carries a malformed identity.
func ActorFromContext(ctx context.Context) (uuid.UUID, enums.UserRole, bool) {
	id := identityFrom(ctx)
	userID, err := uuid.Parse(id.userID)
	if err != nil {
		return uuid.Nil, "", false
	}
	role := enums.UserRole(id.role)
	if !role.IsValid() {
		return uuid.Nil, "", false
	}
	return userID, role, true
}

// WithUserID and WithRole seed the caller identity for handlers mounted
// without Auth, mostly in tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withIdentity(ctx, func(id *identity) { id.userID = userID })
}

func WithRole(ctx context.Context, role string) context.Context {
	return withIdentity(ctx, func(id *identity) { id.role = role })
}
