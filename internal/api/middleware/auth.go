// server/internal/api/middleware/auth.go
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userContextKey = "current_user"

// Authenticate validates the bearer token and loads the caller's profile.
// The profile is read on every request so permission changes apply at once.
func Authenticate(tokens *auth.TokenIssuer, users database.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		user, err := LoadUser(c, tokens, users, tokenString)
		if err != nil {
			var authErr *auth.Error
			if errors.As(err, &authErr) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authErr.Message(), "code": authErr.Code})
				return
			}
			if errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			slog.Error("failed to load user profile", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user profile"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// LoadUser resolves a token to its profile. A deleted profile yields
// auth/profile-not-found.
func LoadUser(c *gin.Context, tokens *auth.TokenIssuer, users database.UserStore, tokenString string) (models.User, error) {
	claims, err := tokens.ParseJWT(tokenString)
	if err != nil {
		return models.User{}, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID())
	if err != nil {
		return models.User{}, auth.ErrInvalidToken
	}
	user, err := users.GetUser(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		return models.User{}, auth.NewError(auth.CodeProfileNotFound)
	}
	return user, err
}

// CurrentUser returns the profile stored by Authenticate.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// SetCurrentUser is used by tests that bypass token handling.
func SetCurrentUser(c *gin.Context, user models.User) {
	c.Set(userContextKey, user)
}

// RequirePermission rejects callers whose profile lacks perm.
func RequirePermission(perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
			return
		}
		if !user.Permissions.Has(perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource", "permission": perm})
			return
		}
		c.Next()
	}
}
