package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	apperrors "vme-analyzer.io/analyzer/internal/pkg/errors"
)

// Admin API permissions carried in token claims.
const (
	PermMatrixRead    = "matrix:read"
	PermMatrixWrite   = "matrix:write"
	PermGuidanceWrite = "guidance:write"
	// PermPlatformAdmin grants every permission.
	PermPlatformAdmin = "platform:admin"
)

// AllPermissions lists every admin permission except PermPlatformAdmin.
var AllPermissions = []string{PermMatrixRead, PermMatrixWrite, PermGuidanceWrite}

// RequirePermission returns middleware that checks the authenticated token
// carries permission. It must run after JWTAuth.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, exists := c.Get("permissions")
		if !exists {
			abortForbidden(c, "no permissions in context")
			return
		}
		permList, ok := perms.([]string)
		if !ok {
			abortForbidden(c, "invalid permissions type")
			return
		}

		if slices.Contains(permList, PermPlatformAdmin) || slices.Contains(permList, permission) {
			c.Next()
			return
		}

		abortForbidden(c, "insufficient permissions")
	}
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"code": apperrors.CodePermissionDenied, "message": message,
	})
}

// Built-in roles for minted admin tokens.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

var rolePermissions = map[string][]string{
	RoleViewer: {PermMatrixRead},
	RoleEditor: {PermMatrixRead, PermMatrixWrite, PermGuidanceWrite},
	RoleAdmin:  {PermPlatformAdmin},
}

// RolePermissions returns the permissions granted by a built-in role.
func RolePermissions(role string) ([]string, bool) {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil, false
	}
	return slices.Clone(perms), true
}
