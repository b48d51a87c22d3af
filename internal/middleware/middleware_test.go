package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"yield_wallet/internal/domain"
	"yield_wallet/internal/store"
	"yield_wallet/internal/store/filestore"
	"yield_wallet/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": UserID(c), "role": c.GetString(RoleKey)})
	})
	r.GET("/", handlers...)
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newRouter(JWTAuthMiddleware("secret"))

	token, err := utils.GenerateJWT("u1", "admin", "secret", time.Hour)
	require.NoError(t, err)
	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":"u1","role":"admin"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token "+token).Code)

	forged, err := utils.GenerateJWT("u1", "admin", "other", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+forged).Code)
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := newRouter(func(c *gin.Context) {
		c.Set(UserIDKey, c.GetHeader("Authorization"))
		c.Next()
	}, rl.Middleware())

	assert.Equal(t, http.StatusOK, get(r, "alice").Code)
	assert.Equal(t, http.StatusOK, get(r, "alice").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "alice").Code)
	assert.Equal(t, http.StatusOK, get(r, "bob").Code)

	assert.Equal(t, 2, rl.Cleanup(time.Hour))
	assert.Equal(t, 0, rl.Cleanup(-time.Second))
}

func TestActiveUserMiddlewareThrottlesTouches(t *testing.T) {
	fs, err := filestore.Open(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	ctx := context.Background()

	recent := time.Now().UTC().Add(-10 * time.Second)
	require.NoError(t, fs.InTx(ctx, func(tx store.Tx) error {
		return tx.CreateUser(&domain.User{ID: "u1", Email: "a@example.com", ReferralCode: "REFU1", LastActive: &recent})
	}))
	r := newRouter(func(c *gin.Context) {
		c.Set(UserIDKey, "u1")
		c.Next()
	}, ActiveUserMiddleware(fs))

	assert.Equal(t, http.StatusOK, get(r, "").Code)
	u, err := fs.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u.LastActive)
	assert.True(t, u.LastActive.Equal(recent), "touch inside the interval is skipped")

	old := time.Now().UTC().Add(-2 * time.Minute)
	require.NoError(t, fs.TouchUser(ctx, "u1", domain.Activity{LastActive: &old}))
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	u, err = fs.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), *u.LastActive, 5*time.Second)
}

func TestActiveUserMiddlewareRejectsBlockedAndMissing(t *testing.T) {
	fs, err := filestore.Open(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	require.NoError(t, fs.InTx(context.Background(), func(tx store.Tx) error {
		return tx.CreateUser(&domain.User{ID: "u1", Email: "a@example.com", ReferralCode: "REFU1", IsBlocked: true})
	}))
	r := newRouter(func(c *gin.Context) {
		c.Set(UserIDKey, c.GetHeader("Authorization"))
		c.Next()
	}, ActiveUserMiddleware(fs))

	assert.Equal(t, http.StatusForbidden, get(r, "u1").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "ghost").Code)
}
