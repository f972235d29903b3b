package middleware

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// AnonymousUser owns history of requests without a valid token
	AnonymousUser = "anonymous"
	userIDKey     = "user_id"
)

// ValidateToken checks an HMAC signed access token and returns its user_id claim
func ValidateToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if tokenType, ok := claims["type"].(string); ok && tokenType == "refresh" {
		return "", fmt.Errorf("refresh token cannot be used for access")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("invalid user_id in token")
	}
	return userID, nil
}

// extractToken extracts the token from the Authorization header
func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Identity resolves the caller's user id from a bearer token. Requests
// without a valid token proceed as AnonymousUser. An empty secret disables
// token checks.
func Identity(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		userID := AnonymousUser
		if tokenString := extractToken(c.GetHeader("Authorization")); tokenString != "" && len(key) > 0 {
			if id, err := ValidateToken(tokenString, key); err == nil {
				userID = id
			} else {
				log.Debugf("Ignoring invalid token from %s: %v", c.ClientIP(), err)
			}
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the id set by Identity, or AnonymousUser
func UserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return AnonymousUser
}
