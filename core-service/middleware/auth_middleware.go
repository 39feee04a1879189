package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/utils/auth"
)

const actorContextKey = "actor"

// AuthMiddleware resolves the caller from the session cookie or a Bearer
// token and stores it as a hierarchy.Actor in the gin context.
func AuthMiddleware(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c.Request, cookieName)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := auth.ValidateJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		userID, err := claims.UserUUID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user id in token"})
			return
		}

		c.Set(actorContextKey, hierarchy.Actor{ID: userID, Email: claims.Email, Role: claims.Role})
		c.Set("userID", userID)
		c.Next()
	}
}

// CurrentActor returns the actor stored by AuthMiddleware.
func CurrentActor(c *gin.Context) (hierarchy.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return hierarchy.Actor{}, false
	}
	actor, ok := v.(hierarchy.Actor)
	return actor, ok
}

// ExtractToken prefers the session cookie and falls back to the
// Authorization header.
func ExtractToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	tokenParts := strings.SplitN(authHeader, " ", 2)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(tokenParts[1])
}
