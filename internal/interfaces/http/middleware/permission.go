package middleware

import (
	"net/http"

	"github.com/dinehub/backend/internal/infrastructure/authz"
	"github.com/dinehub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PermissionConfig holds configuration for the permission middleware
type PermissionConfig struct {
	Checker authz.PermissionChecker
	// Permission asked for every request passing through the group,
	// e.g. "commands:dispatch".
	Permission string
	// OnDenied is called after the denial response is written (optional)
	OnDenied func(c *gin.Context, req authz.CheckRequest)
}

// RequirePermission gates the route group behind a single permission,
// resolved against the tenant the request is scoped to. It must run after
// the tenant middleware.
func RequirePermission(checker authz.PermissionChecker, permission string) gin.HandlerFunc {
	return RequirePermissionWithConfig(PermissionConfig{Checker: checker, Permission: permission})
}

// RequirePermissionWithConfig is RequirePermission with a denial hook
func RequirePermissionWithConfig(cfg PermissionConfig) gin.HandlerFunc {
	if cfg.Checker == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		req := authz.CheckRequest{
			ResourceType: authz.ResourceTenant,
			ResourceID:   c.GetString(TenantIDKey),
			Permission:   cfg.Permission,
			SubjectType:  authz.SubjectUser,
			SubjectID:    c.GetString(AuthUserIDKey),
		}
		if req.SubjectID == "" {
			// Terminal-originated commands authenticate as the device
			req.SubjectType = authz.SubjectTerminal
			req.SubjectID = c.GetHeader("X-Terminal-ID")
		}

		allowed, err := cfg.Checker.CheckPermission(c.Request.Context(), req)
		if err != nil {
			// Fail closed: an unreachable policy engine must not open the API
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
				"UNAVAILABLE", "Permission check unavailable", c.GetString("request_id")))
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				"FORBIDDEN", "Missing permission: "+cfg.Permission, c.GetString("request_id")))
			if cfg.OnDenied != nil {
				cfg.OnDenied(c, req)
			}
			return
		}

		c.Next()
	}
}
