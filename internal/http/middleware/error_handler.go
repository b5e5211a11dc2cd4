package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/shared/apperr"
)

// Fail records err on the context and aborts; ErrorHandler turns it into the
// final JSON response once the handler chain unwinds.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func ErrorHandler(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		publicMsg := apperr.PublicMessage(err)
		rid := GetRequestID(c)

		level := slog.LevelWarn
		if status >= 500 {
			level = slog.LevelError
		}
		l.LogAttrs(c.Request.Context(), level, "request_failed",
			slog.String("request_id", rid),
			slog.Int("status", status),
			slog.Any("err", err),
		)

		payload := gin.H{
			"error":      publicMsg,
			"request_id": rid,
		}
		if ae, ok := apperr.As(err); ok {
			if len(ae.Fields) > 0 {
				payload["fields"] = ae.Fields
			}
			if ae.Detail != nil {
				payload["gateway"] = ae.Detail
			}
		}
		c.AbortWithStatusJSON(status, payload)
	}
}
