package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/helpers"
	"github.com/marhabatours/api/internal/models"
)

// UserContextKey is where the resolved identity lives in the Gin context.
const UserContextKey = "user"

// IdentityResolver looks a token subject up in the identity store.
type IdentityResolver interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the jwt cookie set at login.
func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie("jwt"); err == nil {
		return cookie
	}
	return ""
}

// resolveIdentity runs the shared authentication pipeline: verify the token,
// resolve its subject against the identity store, reject deleted or
// deactivated accounts.
func resolveIdentity(c *gin.Context, secret string, users IdentityResolver) (*models.User, string) {
	token := extractToken(c)
	if token == "" {
		return nil, "you are not logged in"
	}
	claims, err := helpers.ValidateToken(secret, token)
	if err != nil {
		return nil, "invalid or expired token"
	}
	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, "invalid or expired token"
	}
	user, err := users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil, "the user belonging to this token no longer exists"
	}
	if !user.IsActive {
		return nil, "your account has been deactivated"
	}
	return user, ""
}

// Authenticate rejects the request unless it carries a valid token for an
// existing, active identity. On success the identity is stored in the
// context for handlers downstream.
func Authenticate(secret string, users IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, reason := resolveIdentity(c, secret, users)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": reason})
			c.Abort()
			return
		}
		c.Set(UserContextKey, user)
		c.Next()
	}
}

// OptionalAuthenticate runs the same pipeline but any failure proceeds
// unauthenticated instead of erroring, for routes that only personalize
// output when a visitor is logged in.
func OptionalAuthenticate(secret string, users IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _ := resolveIdentity(c, secret, users); user != nil {
			c.Set(UserContextKey, user)
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated identity has one of
// the allowed roles. It must run after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !allowed[user.Role] {
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity attached by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(UserContextKey)
	if !exists {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
