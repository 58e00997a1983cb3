package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	"github.com/noah-isme/uep-attendance-analytics/pkg/middleware/requestid"
)

// Audit writes one structured audit line per successful request, attributed
// to the authenticated user.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Time("at", start),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", requestid.Value(c)),
		}
		if value, ok := c.Get(ContextUserKey); ok {
			if claims, ok := value.(*models.JWTClaims); ok {
				fields = append(fields, zap.String("user_id", claims.UserID), zap.String("role", string(claims.Role)))
			}
		}
		logger.Info("audit", fields...)
	}
}
