package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the request id in both directions.
	Header     = "X-Request-ID"
	contextKey = "request_id"
	maxLength  = 64
)

// Middleware tags every request with an id. A caller supplied id is reused
// when it is short and printable; anything else is replaced by a new UUID
// so it can be logged verbatim.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !valid(id) {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request id stored on the context, or "".
func Value(c *gin.Context) string {
	id, _ := c.Get(contextKey)
	s, _ := id.(string)
	return s
}

func valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
