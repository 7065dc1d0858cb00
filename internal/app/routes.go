package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labormap/core/internal/middleware"
	"github.com/labormap/core/internal/modules/admin"
	"github.com/labormap/core/internal/modules/image"
	"github.com/labormap/core/internal/modules/landmark"
	"github.com/labormap/core/internal/pkg/response"
)

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth())

	if a.rc != nil {
		api.Use(middleware.RateLimit(a.rc.Raw()))
		api.Use(middleware.Idempotence(a.rc.Raw()))
		api.Use(middleware.HTTPCache(a.rc.Raw(), middleware.HTTPCacheOptions{
			TTL:     15 * time.Second,
			Disable: a.cfg.IsDev(),
			SkipPaths: []string{
				"/api/admin/verify-password",
				"/api/landmarks/import",
			},
		}))
	}

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	landmarkSvc := landmark.NewService(db, a.cfg.UploadsDir())
	importer := landmark.NewImporter(db)
	landmark.NewHandler(landmarkSvc, importer).RegisterRoutes(api, authMW)

	imageSvc := image.NewService(db, a.cfg.UploadsDir())
	imageHandler := image.NewHandler(imageSvc)
	imageHandler.RegisterRoutes(api, authMW)
	imageHandler.RegisterUploadRoutes(r.Group(""))

	admin.NewHandler(a.cfg.AdminPassword, a.rc, a.logger).RegisterRoutes(api, authMW)
}
