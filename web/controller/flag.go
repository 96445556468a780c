package controller

import (
	"github.com/aguszappia/proyecto-de-software/util/common"
	"github.com/aguszappia/proyecto-de-software/web/service"
	"github.com/aguszappia/proyecto-de-software/web/session"

	"github.com/gin-gonic/gin"
)

// FlagForm is the update body for a feature flag.
type FlagForm struct {
	Enabled string `json:"enabled" form:"enabled"`
	Message string `json:"message" form:"message"`
}

// FlagController handles the feature flag management routes.
type FlagController struct {
	flagService service.FlagService
}

func NewFlagController(g *gin.RouterGroup) *FlagController {
	a := &FlagController{}
	a.initRouter(g)
	return a
}

func (a *FlagController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/flag")

	g.GET("/list", a.list)
	g.GET("/get/:key", a.get)
	g.POST("/set/:key", a.set)
}

func (a *FlagController) list(c *gin.Context) {
	flags, err := a.flagService.ListFlags()
	jsonObj(c, flags, err)
}

func (a *FlagController) get(c *gin.Context) {
	flag, err := a.flagService.GetFlag(c.Param("key"))
	if err != nil {
		jsonMsg(c, "La funcionalidad no existe", err)
		return
	}
	jsonObj(c, flag, nil)
}

func (a *FlagController) set(c *gin.Context) {
	var form FlagForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	var userId *int
	if user := session.GetLoginUser(c); user != nil {
		userId = &user.Id
	}
	flag, err := a.flagService.SetFlag(c.Param("key"), common.ParseBool(form.Enabled), form.Message, userId)
	if err != nil {
		jsonMsg(c, "No se pudo actualizar la funcionalidad", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.flags.updated"), flag, nil)
}
