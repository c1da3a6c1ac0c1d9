package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// ResponseCache memoizes GET responses per resource group, keyed by
// request URI. A group's entries are invalidated wholesale by any
// mutation routed through the same group: mutations bump the group
// generation, which orphans every cached key; orphans age out with
// the TTL.
type ResponseCache struct {
	store *cache.Cache

	mu          sync.Mutex
	generations map[string]uint64
}

func NewResponseCache(ttl, cleanup time.Duration) *ResponseCache {
	return &ResponseCache{
		store:       cache.New(ttl, cleanup),
		generations: make(map[string]uint64),
	}
}

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (rc *ResponseCache) generation(group string) uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generations[group]
}

// Invalidate orphans every cached response in the given groups.
func (rc *ResponseCache) Invalidate(groups ...string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, g := range groups {
		rc.generations[g]++
	}
}

// Middleware caches GETs under group and, on any successful mutation,
// invalidates group plus the listed extras. Extras cover nested
// listings: a course update must flush the owning patient's views too.
func (rc *ResponseCache) Middleware(group string, invalidates ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			if c.Writer.Status() < 400 {
				rc.Invalidate(append([]string{group}, invalidates...)...)
			}
			return
		}

		key := fmt.Sprintf("%s:%d:%s", group, rc.generation(group), c.Request.URL.RequestURI())
		if hit, found := rc.store.Get(key); found {
			resp := hit.(cachedResponse)
			c.Header("X-Cache", "HIT")
			c.Data(resp.status, resp.contentType, resp.body)
			c.Abort()
			return
		}

		w := &cacheWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Header("X-Cache", "MISS")

		c.Next()

		// Only JSON responses are memoized; file streams stay out of
		// the memory cache.
		contentType := c.Writer.Header().Get("Content-Type")
		if c.Writer.Status() == http.StatusOK && strings.HasPrefix(contentType, "application/json") {
			rc.store.Set(key, cachedResponse{
				status:      c.Writer.Status(),
				contentType: contentType,
				body:        w.body.Bytes(),
			}, cache.DefaultExpiration)
		}
	}
}
