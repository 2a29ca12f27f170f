package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/infrastructure/scope"
	"github.com/edusuite/backend/internal/interfaces/http/dto"
)

// ScopeKey is the gin context key holding the resolved Scope
const ScopeKey = "data_scope"

// ResolveScope resolves the authenticated actor's data scope once per request
// and stores it on the context. Must run after Auth. A request whose actor
// cannot be scoped is rejected; there is no default scope to fall back to.
func ResolveScope(resolver *scope.Resolver, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Next()
			return
		}

		sc, err := resolver.Resolve(c.Request.Context(), actor)
		if err != nil {
			var resErr *scope.ResolutionError
			if errors.As(err, &resErr) {
				logger.Warn("scope resolution refused",
					zap.String("user_id", resErr.UserID.String()),
					zap.String("role", string(resErr.Role)),
					zap.String("reason", resErr.Reason))
				c.AbortWithStatusJSON(http.StatusForbidden,
					dto.NewErrorResponseWithRequestID(dto.ErrCodeScopeResolution, resErr.Error(), GetRequestID(c)))
				return
			}
			logger.Error("scope resolution failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Could not resolve data scope", GetRequestID(c)))
			return
		}

		c.Set(ScopeKey, sc)
		c.Next()
	}
}

// GetScope returns the scope resolved by ResolveScope
func GetScope(c *gin.Context) (scope.Scope, bool) {
	val, ok := c.Get(ScopeKey)
	if !ok {
		return scope.Scope{}, false
	}
	sc, ok := val.(scope.Scope)
	return sc, ok
}
