package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID.
// Использование: router.GET("/requests/:id", UUIDValidator("id"), handler.GetRequest)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			idStr := c.Param(name)
			if idStr == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "параметр " + name + " обязателен",
				})
				return
			}

			if _, err := uuid.Parse(idStr); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "параметр " + name + " должен быть валидным UUID",
				})
				return
			}
		}

		c.Next()
	}
}
