package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCachedRouter(rc *ResponseCache) (*gin.Engine, *int) {
	hits := 0
	r := gin.New()

	patients := r.Group("/patients")
	patients.Use(rc.Middleware("patients"))
	patients.GET("", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"served": hits})
	})
	patients.POST("", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	patients.POST("/fail", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
	})

	courses := r.Group("/patient-treatments")
	courses.Use(rc.Middleware("patient-treatments", "patients"))
	courses.POST("", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	return r, &hits
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w
}

func TestResponseCacheServesFromCache(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)
	r, hits := newCachedRouter(rc)

	first := get(t, r, "/patients")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get(t, r, "/patients")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, *hits)
}

func TestResponseCacheKeyIncludesQuery(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)
	r, hits := newCachedRouter(rc)

	get(t, r, "/patients")
	get(t, r, "/patients?visible=true")
	assert.Equal(t, 2, *hits)

	w := get(t, r, "/patients?visible=true")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, 2, *hits)
}

func TestResponseCacheInvalidatedByMutation(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)
	r, hits := newCachedRouter(rc)

	get(t, r, "/patients")
	get(t, r, "/patients")
	require.Equal(t, 1, *hits)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/patients", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	after := get(t, r, "/patients")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.Equal(t, 2, *hits)
}

func TestResponseCacheFailedMutationKeepsCache(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)
	r, hits := newCachedRouter(rc)

	get(t, r, "/patients")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/patients/fail", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	after := get(t, r, "/patients")
	assert.Equal(t, "HIT", after.Header().Get("X-Cache"))
	assert.Equal(t, 1, *hits)
}

func TestResponseCacheCrossGroupInvalidation(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)
	r, hits := newCachedRouter(rc)

	get(t, r, "/patients")
	require.Equal(t, 1, *hits)

	// creating a course flushes the patients group as well
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/patient-treatments", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	after := get(t, r, "/patients")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.Equal(t, 2, *hits)
}
