package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-server/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func gatedRouter(enabled bool, iss *auth.Issuer) *gin.Engine {
	r := gin.New()
	api := r.Group("/api", RequireAuth(enabled, iss))
	api.GET("/users/:id", func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		uid := int64(0)
		if ok {
			uid = claims.UID
		}
		c.JSON(http.StatusOK, gin.H{"uid": uid})
	})
	api.POST("/users", func(c *gin.Context) { c.Status(http.StatusCreated) })
	api.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["code"]
}

func TestRequireAuthDisabled(t *testing.T) {
	r := gatedRouter(false, auth.NewIssuer("s", ""))
	w := do(r, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthEnabled(t *testing.T) {
	iss := auth.NewIssuer("s", "r")
	r := gatedRouter(true, iss)

	w := do(r, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing_authorization", errorCode(t, w))

	w = do(r, http.MethodGet, "/api/users/1", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_authorization", errorCode(t, w))

	w = do(r, http.MethodGet, "/api/users/1", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", errorCode(t, w))

	pair, err := iss.IssuePair(42, "a@b.c")
	require.NoError(t, err)

	// a refresh token is not a bearer credential
	w = do(r, http.MethodGet, "/api/users/1", "Bearer "+pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/users/1", "Bearer "+pair.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":42}`, w.Body.String())
}

func TestPublicRoutes(t *testing.T) {
	r := gatedRouter(true, auth.NewIssuer("s", ""))

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/users", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/login", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "").Code)

	assert.True(t, IsPublic(http.MethodGet, "/health/live"))
	assert.False(t, IsPublic(http.MethodGet, "/api/users"))
	assert.False(t, IsPublic(http.MethodPost, "/api/auth/logout"))
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(RequestID(), Logger(log), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := do(r, http.MethodGet, "/ping", "")
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, id, entry["request_id"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, "warning", entry["level"])

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/login", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	w := do(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", errorCode(t, w))

	// buckets that are not full survive cleanup
	rl.Cleanup()
	assert.Len(t, rl.limiters, 1)
}

func TestNilRateLimiterAllows(t *testing.T) {
	rl := NewRateLimiter(0, 10)
	assert.Nil(t, rl)
	assert.True(t, rl.Allow("1.2.3.4"))

	r := gin.New()
	r.POST("/login", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	}
}
