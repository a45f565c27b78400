package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mzhuravlev/supplyhub-backend/internal/logger"
	"github.com/mzhuravlev/supplyhub-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно. Классифицированные
// ошибки (apperror.AppError) отдаются с их кодом и статусом, всё прочее
// маскируется как внутренняя ошибка.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if logger.Log != nil && appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Log.WithFields(logrus.Fields{
					"code":   appErr.Code,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).WithError(err).Error("request error")
			}
			c.JSON(appErr.HTTPStatus, gin.H{
				"error": appErr.Message,
				"code":  appErr.Code,
			})
			return
		}

		// Неклассифицированная ошибка: текст не раскрываем.
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).WithError(err).Error("request error")
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "внутренняя ошибка сервера",
			"code":  apperror.ErrCodeInternal,
		})
	}
}
