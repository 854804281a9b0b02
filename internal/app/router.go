package app

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"eventforge.io/eventforge/internal/api/handlers"
	"eventforge.io/eventforge/internal/api/middleware"
	"eventforge.io/eventforge/internal/config"
	"eventforge.io/eventforge/internal/pkg/logger"
)

const apiBasePath = "/api/v1"

// Public routes that do NOT require JWT authentication.
var publicPrefixes = []string{
	"/api/v1/health/",
}

// adminPrefixes are routes that require the admin role.
var adminPrefixes = []string{
	"/api/v1/admin/",
}

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func newRouter(cfg *config.Config, server *handlers.Server, jwtCfg middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), cors.New(buildCORSConfig(cfg)))

	api := router.Group(apiBasePath)
	if cfg.Server.OpenAPIValidation {
		// Outside ErrorHandler so rendered errors are checked too.
		api.Use(middleware.MustOpenAPIValidator(apiBasePath))
	}
	api.Use(middleware.ErrorHandler())
	api.Use(jwtSkipPublic(jwtCfg))
	api.Use(adminRoutes(cfg.Security.AdminRole))

	server.RegisterRoutes(api)

	levelHandler := gin.WrapH(logger.LevelHandler())
	api.GET("/admin/log-level", levelHandler)
	api.PUT("/admin/log-level", levelHandler)
	return router
}

// jwtSkipPublic returns middleware that applies JWT auth only on non-public routes.
func jwtSkipPublic(jwtCfg middleware.JWTConfig) gin.HandlerFunc {
	jwtMw := middleware.JWTAuth(jwtCfg)
	return func(c *gin.Context) {
		if hasAnyPrefix(c.Request.URL.Path, publicPrefixes) {
			c.Next()
			return
		}
		jwtMw(c)
	}
}

// adminRoutes returns middleware enforcing role on admin endpoints.
func adminRoutes(role string) gin.HandlerFunc {
	adminMw := middleware.RequireRole(role)
	return func(c *gin.Context) {
		if hasAnyPrefix(c.Request.URL.Path, adminPrefixes) {
			adminMw(c)
			return
		}
		c.Next()
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func buildCORSConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	// Wildcard origins cannot be combined with credentials.
	if cfg.Server.UnsafeAllowAllOrigins {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
		return corsCfg
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
		origins = append(origins, defaultAllowedOrigins...)
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}
