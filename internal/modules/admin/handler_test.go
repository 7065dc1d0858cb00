package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/labormap/core/internal/middleware"
	"github.com/labormap/core/internal/pkg/jwt"
)

func newTestRouter(t *testing.T, password string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	NewHandler(password, nil, zap.NewNop()).RegisterRoutes(api, middleware.Auth())
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyPasswordPlaintext(t *testing.T) {
	r := newTestRouter(t, "correct horse")

	w := postJSON(r, "/api/admin/verify-password", gin.H{"password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	claims, err := jwt.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.ScopeAdmin, claims.Scope)
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	r := newTestRouter(t, string(hash))

	w := postJSON(r, "/api/admin/verify-password", gin.H{"password": "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(r, "/api/admin/verify-password", gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestVerifyPasswordRejectsWhenUnset(t *testing.T) {
	r := newTestRouter(t, "")

	w := postJSON(r, "/api/admin/verify-password", gin.H{"password": ""})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCleanCacheRequiresAuth(t *testing.T) {
	r := newTestRouter(t, "pw")

	w := postJSON(r, "/api/admin/clean-cache", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
