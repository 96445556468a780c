package middleware

import (
	"net/http"

	"github.com/aguszappia/proyecto-de-software/web/service"
	"github.com/aguszappia/proyecto-de-software/web/session"

	"github.com/gin-gonic/gin"
)

// PermissionRequired checks that the logged-in user's role holds the
// permission code before letting the request through.
func PermissionRequired(permissionService *service.PermissionService, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := session.GetLoginUser(c)
		if user == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !permissionService.HasPermission(user.RoleSlug(), code) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"msg":     "No tenés permisos para realizar esta acción.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RoleRequired restricts a route to a single role slug.
func RoleRequired(roleSlug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := session.GetLoginUser(c)
		if user == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if user.RoleSlug() != roleSlug {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"msg":     "No tenés permisos para realizar esta acción.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
