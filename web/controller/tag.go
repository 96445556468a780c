package controller

import (
	"strconv"

	"github.com/aguszappia/proyecto-de-software/web/service"

	"github.com/gin-gonic/gin"
)

// TagForm is the create/update body for a site tag.
type TagForm struct {
	Name string `json:"name" form:"name"`
}

// TagController handles the admin tag management routes.
type TagController struct {
	tagService service.TagService
}

func NewTagController(g *gin.RouterGroup) *TagController {
	a := &TagController{}
	a.initRouter(g)
	return a
}

func (a *TagController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/tag")

	g.GET("/list", a.list)
	g.GET("/get/:id", a.get)
	g.POST("/add", a.add)
	g.POST("/update/:id", a.update)
	g.POST("/del/:id", a.del)
}

func (a *TagController) list(c *gin.Context) {
	filter := service.TagFilter{
		Search:   c.Query("q"),
		OrderBy:  c.Query("orderBy"),
		OrderDir: c.Query("orderDir"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "perPage", 0),
	}
	page, err := a.tagService.PaginateTags(filter)
	if err != nil {
		jsonMsg(c, "No se pudo obtener el listado de etiquetas", err)
		return
	}
	jsonObj(c, gin.H{"data": page.Items, "meta": pageMeta(page)}, nil)
}

func (a *TagController) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	tag, err := a.tagService.GetTag(id)
	if err != nil {
		jsonMsg(c, "La etiqueta no existe", err)
		return
	}
	jsonObj(c, tag, nil)
}

func (a *TagController) add(c *gin.Context) {
	var form TagForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	tag, fieldErrors, err := a.tagService.CreateTag(form.Name)
	if err != nil {
		jsonMsg(c, "No se pudo crear la etiqueta", err)
		return
	}
	if fieldErrors.Any() {
		jsonFieldErrors(c, fieldErrors)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.tags.created"), tag, nil)
}

func (a *TagController) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	var form TagForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	tag, fieldErrors, err := a.tagService.UpdateTag(id, form.Name)
	if err != nil {
		jsonMsg(c, "No se pudo actualizar la etiqueta", err)
		return
	}
	if fieldErrors.Any() {
		jsonFieldErrors(c, fieldErrors)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.tags.updated"), tag, nil)
}

func (a *TagController) del(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	fieldErrors, err := a.tagService.DeleteTag(id)
	if err != nil {
		jsonMsg(c, "No se pudo eliminar la etiqueta", err)
		return
	}
	if fieldErrors.Any() {
		jsonFieldErrors(c, fieldErrors)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.tags.deleted"), nil)
}
