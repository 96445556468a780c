package controller

import (
	"strconv"
	"time"

	"github.com/aguszappia/proyecto-de-software/web/service"

	"github.com/gin-gonic/gin"
)

// HistoryController exposes the audit trail of a site.
type HistoryController struct {
	historyService service.HistoryService
}

func NewHistoryController(g *gin.RouterGroup) *HistoryController {
	a := &HistoryController{}
	a.initRouter(g)
	return a
}

func (a *HistoryController) initRouter(g *gin.RouterGroup) {
	g.GET("/site/:siteId/history", a.list)
}

func (a *HistoryController) list(c *gin.Context) {
	siteId, err := strconv.Atoi(c.Param("siteId"))
	if err != nil || siteId <= 0 {
		jsonMsg(c, "Identificador de sitio inválido", err)
		return
	}
	filter := service.HistoryFilter{
		UserEmail:  c.Query("user"),
		ActionType: c.Query("action"),
		Page:       queryInt(c, "page", 1),
		PerPage:    queryInt(c, "perPage", 0),
	}
	if raw := c.Query("dateFrom"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateFrom = &t
		}
	}
	if raw := c.Query("dateTo"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			filter.DateTo = &end
		}
	}
	page, err := a.historyService.ListHistory(siteId, filter)
	if err != nil {
		jsonMsg(c, "No se pudo obtener el historial", err)
		return
	}
	jsonObj(c, gin.H{"data": page.Items, "meta": pageMeta(page)}, nil)
}
