package app

import (
	"strings"

	"go.uber.org/zap"

	"github.com/labormap/core/internal/config"
	jwtpkg "github.com/labormap/core/internal/pkg/jwt"
)

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) error {
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		logger.Warn("admin_password is empty, admin login disabled")
	}
	return nil
}
