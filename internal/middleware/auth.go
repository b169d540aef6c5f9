package middleware

import (
	"context"
	"net/http"
	"strings"

	"buzz-service/internal/client"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key the auth middleware sets.
const UserIDKey = "user_id"

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// AuthValidator validates against the auth service when configured and
// falls back to local JWT validation with the shared secret.
type AuthValidator struct {
	authClient client.AuthClient
	secretKey  string
	logger     *zap.Logger
}

func NewAuthValidator(authClient client.AuthClient, secretKey string, logger *zap.Logger) *AuthValidator {
	return &AuthValidator{
		authClient: authClient,
		secretKey:  secretKey,
		logger:     logger,
	}
}

func (v *AuthValidator) ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	if v.authClient != nil {
		userID, err := v.authClient.ValidateToken(ctx, tokenString)
		if err == nil {
			return userID, nil
		}
		v.logger.Debug("auth service validation failed, falling back to local", zap.Error(err))
	}
	return v.validateLocally(tokenString)
}

func (v *AuthValidator) validateLocally(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.secretKey), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	var userIDStr string
	for _, key := range []string{"sub", "userId", "user_id"} {
		if val, exists := claims[key]; exists {
			if s, ok := val.(string); ok {
				userIDStr = s
				break
			}
		}
	}
	if userIDStr == "" {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	return uuid.Parse(userIDStr)
}

// Auth validates the bearer token and stores the user ID on the context.
// The user ID always comes from the token, never from the request body.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "No authorization header"},
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid authorization header format"},
			})
			c.Abort()
			return
		}

		userID, err := validator.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid token"},
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// CurrentUserID reads the authenticated user from the gin context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	return userID, ok
}
