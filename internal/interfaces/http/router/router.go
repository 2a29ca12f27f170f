// Package router assembles the gin engine: middleware chain, health probes
// and the versioned API groups.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/infrastructure/auth"
	"github.com/edusuite/backend/internal/infrastructure/config"
	"github.com/edusuite/backend/internal/infrastructure/logger"
	"github.com/edusuite/backend/internal/infrastructure/scope"
	"github.com/edusuite/backend/internal/interfaces/http/handler"
	"github.com/edusuite/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a handler's routes on the API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config bundles the router's dependencies
type Config struct {
	HTTP          config.HTTPConfig
	JWTService    *auth.JWTService
	ScopeResolver *scope.Resolver
	Logger        *zap.Logger
}

// New builds the engine with the full middleware chain and registers every
// handler under /api/v1. Order matters: request id first so everything after
// it can log it, then auth, then scope resolution.
func New(cfg Config, registrars ...RouteRegistrar) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.CORS(cfg.HTTP))

	engine.GET("/health", healthHandler)
	engine.GET("/healthz", healthHandler)

	api := engine.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTService))
	api.Use(middleware.ResolveScope(cfg.ScopeResolver, cfg.Logger))

	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return engine
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SubscriptionRoutes adapts the subscription handler to the registrar
// interface
type SubscriptionRoutes struct {
	Handler *handler.SubscriptionHandler
}

// RegisterRoutes mounts the subscription administration endpoints
func (r SubscriptionRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/subscription", r.Handler.GetActive)
	rg.POST("/subscription", r.Handler.Create)
	rg.POST("/subscriptions/:id/renew", r.Handler.Renew)
	rg.POST("/subscriptions/:id/cancel", r.Handler.Cancel)
	rg.POST("/subscriptions/:id/reactivate", r.Handler.Reactivate)
	rg.POST("/subscriptions/:id/package", r.Handler.ChangePackage)
}

// UsageRoutes adapts the usage handler to the registrar interface
type UsageRoutes struct {
	Handler *handler.UsageHandler
}

// RegisterRoutes mounts the usage endpoints
func (r UsageRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", r.Handler.Get)
	rg.POST("/usage/refresh", r.Handler.Refresh)
}

// OrgRoutes adapts the organization structure handler to the registrar
// interface
type OrgRoutes struct {
	Handler *handler.OrgHandler
}

// RegisterRoutes mounts the branch, course and assignment endpoints
func (r OrgRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/branches", r.Handler.CreateBranch)
	rg.GET("/branches/:id", r.Handler.GetBranch)
	rg.POST("/courses", r.Handler.CreateCourse)
	rg.POST("/assignments", r.Handler.CreateAssignment)
	rg.POST("/assignments/:id/revoke", r.Handler.RevokeAssignment)
}
