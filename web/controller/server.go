package controller

import (
	"strconv"

	"github.com/aguszappia/proyecto-de-software/logger"
	"github.com/aguszappia/proyecto-de-software/web/service"

	"github.com/gin-gonic/gin"
)

// ServerController exposes the dashboard status and log endpoints.
type ServerController struct {
	serverService *service.ServerService
}

func NewServerController(g *gin.RouterGroup, serverService *service.ServerService, backupGuard gin.HandlerFunc) *ServerController {
	a := &ServerController{serverService: serverService}
	a.initRouter(g, backupGuard)
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup, backupGuard gin.HandlerFunc) {
	g = g.Group("/server")

	g.GET("/status", a.status)
	g.POST("/getLogs/:count", a.getLogs)
	g.GET("/getDb", backupGuard, a.getDb)
	g.POST("/importDB", backupGuard, a.importDb)
}

// getDb downloads the database file.
func (a *ServerController) getDb(c *gin.Context) {
	db, err := a.serverService.GetDb()
	if err != nil {
		jsonMsg(c, "No se pudo leer la base de datos", err)
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", "attachment; filename=sitios.db")
	c.Writer.Write(db)
}

// importDb replaces the database with an uploaded sqlite file.
func (a *ServerController) importDb(c *gin.Context) {
	file, _, err := c.Request.FormFile("db")
	if err != nil {
		jsonMsg(c, "No se pudo leer el archivo", err)
		return
	}
	defer file.Close()

	if err := a.serverService.ImportDB(file); err != nil {
		jsonMsg(c, "No se pudo importar la base de datos", err)
		return
	}
	jsonMsgObj(c, "Base de datos importada", nil, nil)
}

func (a *ServerController) status(c *gin.Context) {
	jsonObj(c, a.serverService.GetStatus(), nil)
}

func (a *ServerController) getLogs(c *gin.Context) {
	count, err := strconv.Atoi(c.Param("count"))
	if err != nil || count <= 0 {
		count = 50
	}
	level := c.PostForm("level")
	if level == "" {
		level = "info"
	}
	logs := logger.GetLogs(count, level)
	jsonObj(c, logs, nil)
}
