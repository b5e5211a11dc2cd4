package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery logs the panic and answers directly: the panic has already
// unwound past ErrorHandler, so nothing downstream will write a response.
func Recovery(l *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		stack := debug.Stack()
		l.LogAttrs(c.Request.Context(), slog.LevelError, "panic_recovered",
			slog.String("request_id", GetRequestID(c)),
			slog.Any("panic", recovered),
			slog.String("stack", string(stack)),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      "An unexpected error occurred.",
			"request_id": GetRequestID(c),
		})
	})
}
