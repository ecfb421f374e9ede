package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation ID between client and server.
const Header = "X-Request-ID"

const contextKey = "requestID"

// Middleware tags each request with a correlation ID. A client-supplied
// header wins so upstream gateways can trace a call end to end.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// Value returns the correlation ID for the current request, or "" when the
// middleware is not installed.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
