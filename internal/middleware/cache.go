package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Meta keys surfaced in the response envelope's meta block.
const (
	metaContextKey = "responseMeta"
	metaCacheHit   = "cacheHit"
	metaDuration   = "processingTimeMs"
)

// WithResponseMeta seeds a metadata map for the request and stamps the
// handling duration once the chain completes.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Set(metaContextKey, map[string]interface{}{})
		c.Next()
		meta := metaFor(c)
		if _, ok := meta[metaDuration]; !ok {
			meta[metaDuration] = time.Since(started).Milliseconds()
		}
	}
}

// SetCacheHit flags whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c)[metaCacheHit] = hit
}

// ExtractMeta returns the metadata accumulated for this request, or nil when
// WithResponseMeta is not installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if v, ok := c.Get(metaContextKey); ok {
		if meta, typed := v.(map[string]interface{}); typed {
			return meta
		}
	}
	return nil
}

func metaFor(c *gin.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if v, ok := c.Get(metaContextKey); ok {
		if meta, typed := v.(map[string]interface{}); typed {
			return meta
		}
	}
	meta := map[string]interface{}{}
	c.Set(metaContextKey, meta)
	return meta
}
