package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vme-analyzer.io/analyzer/internal/api/handlers"
	"vme-analyzer.io/analyzer/internal/api/middleware"
	"vme-analyzer.io/analyzer/internal/api/openapi"
	"vme-analyzer.io/analyzer/internal/config"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// defaultDevOrigins are allowed when no origins are configured.
var defaultDevOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func newRouter(cfg *config.Config, server *handlers.Server, jwtCfg middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(buildCORSConfig(cfg)))

	auth := middleware.JWTAuth(jwtCfg)

	server.RegisterHealthRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", openapi.Spec())
	})
	levelHandler := gin.WrapH(logger.LevelHandler())
	router.GET("/log/level", auth, middleware.RequirePermission(middleware.PermPlatformAdmin), levelHandler)
	router.PUT("/log/level", auth, middleware.RequirePermission(middleware.PermPlatformAdmin), levelHandler)

	api := router.Group(openapi.BasePath)
	api.Use(middleware.MustOpenAPIValidator(openapi.BasePath))
	server.RegisterRoutes(api, auth)
	return router
}

// buildCORSConfig never combines a wildcard origin with credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, handlers.SummaryHeader},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, origin := range cfg.Server.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = append(origins, defaultDevOrigins...)
	}
	c.AllowOrigins = origins
	return c
}
