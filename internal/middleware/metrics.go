package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver receives one observation per finished request.
type RequestObserver interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Metrics reports every request to the observer, labelled by its route
// template so /analytics/events/:id stays a single series. Unmatched paths
// are grouped under "unmatched".
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if observer == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
