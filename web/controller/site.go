package controller

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/util/common"
	"github.com/aguszappia/proyecto-de-software/web/service"
	"github.com/aguszappia/proyecto-de-software/web/session"

	"github.com/gin-gonic/gin"
)

// SiteForm is the create/update body for a historic site. Empty strings mean
// "leave unchanged" on update.
type SiteForm struct {
	Name               string   `json:"name" form:"name"`
	ShortDescription   string   `json:"shortDescription" form:"shortDescription"`
	FullDescription    string   `json:"fullDescription" form:"fullDescription"`
	City               string   `json:"city" form:"city"`
	Province           string   `json:"province" form:"province"`
	Latitude           *float64 `json:"latitude" form:"latitude"`
	Longitude          *float64 `json:"longitude" form:"longitude"`
	ConservationStatus string   `json:"conservationStatus" form:"conservationStatus"`
	InaugurationYear   *int     `json:"inaugurationYear" form:"inaugurationYear"`
	Category           string   `json:"category" form:"category"`
	IsVisible          string   `json:"isVisible" form:"isVisible"`
	TagIds             string   `json:"tagIds" form:"tagIds"`
	HasTagIds          bool     `json:"hasTagIds" form:"hasTagIds"`
}

// SiteController handles the admin site management routes.
type SiteController struct {
	siteService service.SiteService
}

func NewSiteController(g *gin.RouterGroup, exportGuard gin.HandlerFunc) *SiteController {
	a := &SiteController{}
	a.initRouter(g, exportGuard)
	return a
}

func (a *SiteController) initRouter(g *gin.RouterGroup, exportGuard gin.HandlerFunc) {
	g = g.Group("/site")

	g.GET("/list", a.list)
	g.GET("/get/:id", a.get)
	g.GET("/export", exportGuard, a.export)
	g.POST("/add", a.add)
	g.POST("/update/:id", a.update)
	g.POST("/del/:id", a.del)
}

func filterFromQuery(c *gin.Context) service.SiteFilter {
	filter := service.SiteFilter{
		City:     c.Query("city"),
		Province: c.Query("province"),
		Query:    c.Query("q"),
		SortBy:   c.Query("sortBy"),
		SortDir:  c.Query("sortDir"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "perPage", 0),
	}
	if raw := c.Query("conservationStatus"); raw != "" {
		if status, ok := service.ParseConservationStatus(raw); ok {
			filter.ConservationStatus = status
		}
	}
	if raw := c.Query("tagIds"); raw != "" {
		filter.TagIds = common.ParseIDList(raw)
	}
	if raw := c.Query("visible"); raw != "" {
		visible := common.ParseBool(raw)
		filter.IsVisible = &visible
	}
	if raw := c.Query("createdFrom"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := c.Query("createdTo"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			filter.CreatedTo = &end
		}
	}
	return filter
}

func (a *SiteController) list(c *gin.Context) {
	page, err := a.siteService.SearchSites(filterFromQuery(c))
	if err != nil {
		jsonMsg(c, "No se pudo obtener el listado de sitios", err)
		return
	}
	jsonObj(c, gin.H{"data": page.Items, "meta": pageMeta(page)}, nil)
}

func (a *SiteController) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	site, err := a.siteService.GetSite(id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.sites.notFound"), err)
		return
	}
	jsonObj(c, site, nil)
}

func (a *SiteController) payloadFromForm(c *gin.Context, form SiteForm) service.SitePayload {
	payload := service.SitePayload{
		Latitude:         form.Latitude,
		Longitude:        form.Longitude,
		InaugurationYear: form.InaugurationYear,
	}
	if form.Name != "" {
		payload.Name = &form.Name
	}
	if form.ShortDescription != "" {
		payload.ShortDescription = &form.ShortDescription
	}
	if form.FullDescription != "" {
		payload.FullDescription = &form.FullDescription
	}
	if form.City != "" {
		payload.City = &form.City
	}
	if form.Province != "" {
		payload.Province = &form.Province
	}
	if form.ConservationStatus != "" {
		if status, ok := service.ParseConservationStatus(form.ConservationStatus); ok {
			payload.ConservationStatus = &status
		}
	}
	if form.Category != "" {
		if category, ok := service.ParseSiteCategory(form.Category); ok {
			payload.Category = &category
		}
	}
	if form.IsVisible != "" {
		visible := common.ParseBool(form.IsVisible)
		payload.IsVisible = &visible
	}
	if form.HasTagIds {
		payload.TagIds = common.ParseIDList(form.TagIds)
	}
	if user := session.GetLoginUser(c); user != nil {
		payload.PerformedBy = &user.Id
	}
	return payload
}

func (a *SiteController) add(c *gin.Context) {
	var form SiteForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	site, err := a.siteService.CreateSite(a.payloadFromForm(c, form))
	if err != nil {
		jsonMsg(c, "No se pudo crear el sitio", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.sites.created"), site, nil)
}

func (a *SiteController) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	var form SiteForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	site, err := a.siteService.UpdateSite(id, a.payloadFromForm(c, form), "", "")
	if err != nil {
		jsonMsg(c, "No se pudo actualizar el sitio", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.sites.updated"), site, nil)
}

func (a *SiteController) del(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	var performedBy *int
	if user := session.GetLoginUser(c); user != nil {
		performedBy = &user.Id
	}
	deleted, err := a.siteService.DeleteSite(id, performedBy)
	if err != nil {
		jsonMsg(c, "No se pudo eliminar el sitio", err)
		return
	}
	if !deleted {
		jsonMsg(c, I18nWeb(c, "pages.sites.notFound"), nil)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.sites.deleted"), nil)
}

// export streams the filtered listing as CSV.
func (a *SiteController) export(c *gin.Context) {
	sites, err := a.siteService.FetchSitesForExport(filterFromQuery(c))
	if err != nil {
		jsonMsg(c, "No se pudo exportar el listado", err)
		return
	}

	filename := "sitios_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "nombre", "ciudad", "provincia", "categoria", "estado_conservacion", "latitud", "longitud", "visible", "visitas", "etiquetas", "creado"})
	for _, site := range sites {
		record := []string{
			strconv.Itoa(site.Id),
			site.Name,
			site.City,
			site.Province,
			string(site.Category),
			string(site.ConservationStatus),
			fmt.Sprintf("%.6f", site.Latitude),
			fmt.Sprintf("%.6f", site.Longitude),
			strconv.FormatBool(site.IsVisible),
			strconv.FormatInt(site.Visits, 10),
			joinTagNames(&site),
			site.CreatedAt.Format(time.RFC3339),
		}
		_ = w.Write(record)
	}
	w.Flush()
}

func joinTagNames(site *model.HistoricSite) string {
	return strings.Join(service.TagNames(site), ", ")
}
