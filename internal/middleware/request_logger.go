package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger は1リクエスト1行でログを出す。
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// echoのエラーハンドラに書かせてからstatusを読む
				c.Error(err)
			}

			req := c.Request()
			fields := logrus.Fields{
				"method":     req.Method,
				"path":       c.Path(),
				"uri":        req.RequestURI,
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remoteAddr": c.RealIP(),
				"userAgent":  req.UserAgent(),
			}
			if userID, ok := c.Get(CtxUserIDKey).(int64); ok {
				fields["user_id"] = userID
			}

			entry := log.WithFields(fields)
			if herr, ok := c.Get(CtxErrorKey).(error); ok {
				entry = entry.WithError(herr)
			}
			switch status := c.Response().Status; {
			case status >= 500:
				entry.Error("request failed")
			case status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request handled")
			}
			return nil
		}
	}
}
