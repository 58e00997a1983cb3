package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uep-attendance-analytics/pkg/middleware/requestid"
)

var (
	allowHeaders  = strings.Join([]string{"Authorization", "Content-Type", requestid.Header}, ", ")
	exposeHeaders = strings.Join([]string{"Content-Disposition", requestid.Header}, ", ")
)

// New returns a CORS middleware for the analytics API. An empty origin list
// allows every origin; credentials are only allowed for listed origins.
func New(allowedOrigins []string) gin.HandlerFunc {
	listed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		listed[normalize(origin)] = struct{}{}
	}
	allowAll := len(listed) == 0

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		_, ok := listed[normalize(origin)]
		switch {
		case origin != "" && ok:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case allowAll && origin != "":
			h.Set("Access-Control-Allow-Origin", origin)
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		}
		h.Set("Access-Control-Expose-Headers", exposeHeaders)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(origin, "/"))
}
