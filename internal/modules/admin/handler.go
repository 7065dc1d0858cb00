package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/labormap/core/internal/middleware"
	"github.com/labormap/core/internal/pkg/jwt"
	"github.com/labormap/core/internal/pkg/redis"
	"github.com/labormap/core/internal/pkg/response"
)

const tokenTTL = 12 * time.Hour

type Handler struct {
	password string
	rc       *redis.Client
	logger   *zap.Logger
}

func NewHandler(password string, rc *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{password: password, rc: rc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/admin")
	g.POST("/verify-password", h.verifyPassword)
	g.POST("/clean-cache", authMW, h.cleanCache)
}

type verifyDTO struct {
	Password string `json:"password"`
}

// POST /admin/verify-password
func (h *Handler) verifyPassword(c *gin.Context) {
	var dto verifyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "password required")
		return
	}
	if h.password == "" || !h.matches(dto.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	}
	token, err := jwt.SignAdmin(tokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func (h *Handler) matches(candidate string) bool {
	if isBcryptHash(h.password) {
		return bcrypt.CompareHashAndPassword([]byte(h.password), []byte(candidate)) == nil
	}
	return candidate == h.password
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// POST /admin/clean-cache
func (h *Handler) cleanCache(c *gin.Context) {
	if h.rc == nil {
		response.OK(c, gin.H{"purged": 0})
		return
	}
	purged, err := middleware.PurgeHTTPCache(c.Request.Context(), h.rc.Raw())
	if err != nil {
		h.logger.Warn("cache purge failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"purged": purged})
}
