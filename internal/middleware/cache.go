package middleware

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// bodyCapture tees the response body so a successful reply can be cached
// after it has been sent.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func cacheKey(c *gin.Context) string {
	sum := sha1.Sum([]byte(c.Request.URL.Path + "?" + c.Request.URL.RawQuery))
	return fmt.Sprintf("cache:%x", sum)
}

// CacheReads serves GET responses from Redis for ttl. Only 200 responses are
// stored. A nil client disables caching entirely. Authenticated requests
// bypass the cache in both directions: their responses can be widened by role
// (admins see deactivated tours), and the shared key carries no identity, so
// storing or serving them would leak one caller's view to another.
func CacheReads(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || CurrentUser(c) != nil {
			c.Next()
			return
		}

		key := cacheKey(c)
		if body, err := rdb.Get(c.Request.Context(), key).Bytes(); err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Header("X-Cache", "MISS")
		c.Next()

		if capture.Status() == http.StatusOK {
			_ = rdb.SetEx(c.Request.Context(), key, capture.buf.Bytes(), ttl).Err()
		}
	}
}
