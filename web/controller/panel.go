package controller

import (
	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/web/middleware"
	"github.com/aguszappia/proyecto-de-software/web/service"

	"github.com/gin-gonic/gin"
)

// PanelController groups the admin panel routes behind the login check and
// the per-module permission middleware.
type PanelController struct {
	BaseController

	permissionService service.PermissionService

	userController    *UserController
	flagController    *FlagController
	siteController    *SiteController
	tagController     *TagController
	imageController   *ImageController
	reviewController  *ReviewController
	historyController *HistoryController
	serverController  *ServerController
}

func NewPanelController(g *gin.RouterGroup, flagService *service.FlagService, serverService *service.ServerService) *PanelController {
	a := &PanelController{}
	a.initRouter(g, flagService, serverService)
	return a
}

func (a *PanelController) initRouter(g *gin.RouterGroup, flagService *service.FlagService, serverService *service.ServerService) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)
	g.Use(middleware.AdminMaintenanceMiddleware(flagService))

	g.GET("/", a.index)

	perm := func(code string) gin.HandlerFunc {
		return middleware.PermissionRequired(&a.permissionService, code)
	}

	users := g.Group("", perm(database.PermUserIndex))
	a.userController = NewUserController(users)

	flags := g.Group("", perm(database.PermFlagsManage))
	a.flagController = NewFlagController(flags)

	sites := g.Group("", perm(database.PermSiteIndex))
	a.siteController = NewSiteController(sites, perm(database.PermSiteExport))
	a.imageController = NewImageController(sites)
	a.historyController = NewHistoryController(sites.Group("", perm(database.PermSiteHistoryView)))

	tags := g.Group("", perm(database.PermTagsIndex))
	a.tagController = NewTagController(tags)

	reviews := g.Group("", perm(database.PermReviewsModerate))
	a.reviewController = NewReviewController(reviews)

	a.serverController = NewServerController(g, serverService, middleware.RoleRequired(database.RoleSysAdmin))
}

func (a *PanelController) index(c *gin.Context) {
	html(c, "index.html", "pages.sites.title", nil)
}
