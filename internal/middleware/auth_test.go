package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"smart-task-manager/internal/auth"
	"smart-task-manager/internal/service"
)

func testTokens(t *testing.T) *auth.TokenManager {
	t.Helper()
	m, err := auth.NewTokenManager(auth.TokenConfig{Secret: "middleware-test-secret", Issuer: "i", Audience: "a"})
	require.NoError(t, err)
	return m
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := testTokens(t)
	r := gin.New()
	r.Use(JWTAuthMiddleware(tokens))
	var actor string
	r.GET("/protected", func(c *gin.Context) {
		actor = service.ActorFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	token, err := tokens.GenerateToken("user-1", "alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", actor)
}

func TestJWTAuthMiddleware_QueryToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := testTokens(t)
	r := gin.New()
	r.Use(JWTAuthMiddleware(tokens))
	r.GET("/ws", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(UsernameKey)) })

	token, err := tokens.GenerateToken("user-1", "alice")
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", w.Body.String())
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(testTokens(t)))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_BadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(testTokens(t)))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "/missing", line["path"])
	require.EqualValues(t, 404, line["status"])
}
