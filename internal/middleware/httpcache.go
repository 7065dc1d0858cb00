package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	httpCachePrefix     = "lm:http_cache:"
	defaultHTTPCacheTTL = 15 * time.Second
	httpCacheMaxBody    = 1 << 20 // 1 MiB
)

// HTTPCacheOptions controls the response cache middleware.
type HTTPCacheOptions struct {
	TTL       time.Duration
	Disable   bool
	SkipPaths []string
}

type cachedHTTPResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body     []byte
	overflow bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.overflow || len(data) == 0 {
		return
	}
	if len(w.body)+len(data) > httpCacheMaxBody {
		w.overflow = true
		return
	}
	w.body = append(w.body, data...)
}

// HTTPCache caches successful unauthenticated GET responses in Redis for a
// short TTL. Admin requests bypass the cache so moderation changes are seen
// immediately.
func HTTPCache(rdb *redis.Client, opts HTTPCacheOptions) gin.HandlerFunc {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultHTTPCacheTTL
	}

	return func(c *gin.Context) {
		if opts.Disable || c.Request.Method != http.MethodGet || IsAuthenticated(c) {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		for _, skip := range opts.SkipPaths {
			if strings.EqualFold(path, skip) {
				c.Next()
				return
			}
		}

		key := httpCachePrefix + c.Request.URL.RequestURI()
		ctx := c.Request.Context()

		if raw, err := rdb.Get(ctx, key).Result(); err == nil {
			var cached cachedHTTPResponse
			if json.Unmarshal([]byte(raw), &cached) == nil && cached.Status != 0 {
				if cached.ContentType != "" {
					c.Header("Content-Type", cached.ContentType)
				}
				c.Header("X-LM-Cache", "HIT")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		writer := &cacheBodyWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Header("X-LM-Cache", "MISS")
		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 || writer.overflow || len(writer.body) == 0 {
			return
		}
		payload, err := json.Marshal(cachedHTTPResponse{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body,
		})
		if err != nil {
			return
		}
		rdb.Set(context.WithoutCancel(ctx), key, payload, ttl)
	}
}

// PurgeHTTPCache deletes all cached responses and returns the count removed.
func PurgeHTTPCache(ctx context.Context, rdb *redis.Client) (int64, error) {
	var deleted int64
	iter := rdb.Scan(ctx, 0, httpCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err == nil {
			deleted++
		}
	}
	return deleted, iter.Err()
}
