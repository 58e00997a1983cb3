package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uep-attendance-analytics/pkg/middleware/requestid"
)

const (
	responseMetaKey = "response_meta"
	requestStartKey = "request_start"
)

// WithResponseMeta seeds per-request response metadata with the request id
// and remembers when the request entered the API group.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Set(responseMetaKey, meta)
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the payload was served from the report cache.
func SetCacheHit(c *gin.Context, hit bool) {
	meta(c)["cache_hit"] = hit
}

// ResponseMeta returns the metadata to embed in the envelope, stamped with
// the time spent since WithResponseMeta ran.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	m := meta(c)
	if start, ok := c.Get(requestStartKey); ok {
		if t, ok := start.(time.Time); ok {
			m["processing_time_ms"] = time.Since(t).Milliseconds()
		}
	}
	return m
}

func meta(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(responseMetaKey); ok {
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	m := map[string]interface{}{}
	c.Set(responseMetaKey, m)
	return m
}
