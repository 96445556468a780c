package middleware

import (
	"net/http"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/web/service"
	"github.com/aguszappia/proyecto-de-software/web/session"

	"github.com/gin-gonic/gin"
)

// AdminMaintenanceMiddleware blocks the panel for everyone except sysadmins
// while the admin maintenance flag is on.
func AdminMaintenanceMiddleware(flagService *service.FlagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		enabled, message := flagService.AdminMaintenance()
		if !enabled {
			c.Next()
			return
		}
		user := session.GetLoginUser(c)
		if user != nil && user.RoleSlug() == database.RoleSysAdmin {
			c.Next()
			return
		}
		if message == "" {
			message = "El panel se encuentra en mantenimiento."
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"msg":     message,
		})
		c.Abort()
	}
}

// PortalMaintenanceMiddleware answers 503 on the public API while the
// portal maintenance flag is on.
func PortalMaintenanceMiddleware(flagService *service.FlagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		enabled, message := flagService.PortalMaintenance()
		if !enabled {
			c.Next()
			return
		}
		if message == "" {
			message = "El portal se encuentra en mantenimiento."
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "maintenance",
			"message": message,
		})
		c.Abort()
	}
}
