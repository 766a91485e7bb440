package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/marketbay/marketbay-backend/internal/logger"
	"github.com/marketbay/marketbay-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			statusCode := apperror.StatusOf(err)
			code := apperror.CodeOf(err)

			message := "внутренняя ошибка сервера"
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code != apperror.ErrCodeInternal {
				message = appErr.Message
			}

			if logger.Log != nil {
				entry := logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"code":   code,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				if statusCode >= http.StatusInternalServerError {
					entry.Error("Request error")
				} else {
					entry.Warn("Request rejected")
				}
			}

			c.JSON(statusCode, gin.H{"error": message, "code": code})
		}
	}
}
