package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// AuthMiddleware проверяет JWT access токен и кладёт субъекта в контекст.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// extractToken достаёт токен из заголовка Authorization либо из query
// параметра token (для WebSocket, где заголовки недоступны из браузера).
func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.Query("token")
}

// CurrentActor собирает политику доступа из контекста запроса.
func CurrentActor(c *gin.Context) (uuid.UUID, models.Role, bool) {
	rawID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil, "", false
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}

	rawRole, ok := c.Get(ContextRoleKey)
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := rawRole.(models.Role)
	if !ok {
		return uuid.Nil, "", false
	}

	return userID, role, true
}
