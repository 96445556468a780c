package controller

import (
	"path"
	"strconv"
	"strings"

	"github.com/aguszappia/proyecto-de-software/util/common"
	"github.com/aguszappia/proyecto-de-software/web/service"
	"github.com/aguszappia/proyecto-de-software/web/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ImageForm is the create/update body for a gallery image.
type ImageForm struct {
	Filename    string `json:"filename" form:"filename"`
	URL         string `json:"url" form:"url"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	MakeCover   string `json:"makeCover" form:"makeCover"`
}

// ImageController handles the gallery routes of a site.
type ImageController struct {
	imageService service.ImageService
}

func NewImageController(g *gin.RouterGroup) *ImageController {
	a := &ImageController{}
	a.initRouter(g)
	return a
}

func (a *ImageController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/site/:siteId/image")

	g.GET("/list", a.list)
	g.POST("/add", a.add)
	g.POST("/update/:id", a.update)
	g.POST("/cover/:id", a.cover)
	g.POST("/move/:id/:direction", a.move)
	g.POST("/del/:id", a.del)
}

func (a *ImageController) siteId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("siteId"))
	if err != nil || id <= 0 {
		jsonMsg(c, "Identificador de sitio inválido", err)
		return 0, false
	}
	return id, true
}

func (a *ImageController) list(c *gin.Context) {
	siteId, ok := a.siteId(c)
	if !ok {
		return
	}
	images, err := a.imageService.ListImages(siteId)
	jsonObj(c, images, err)
}

// objectNameFor keeps the original extension but replaces the name with a
// fresh UUID, so uploads can never collide or carry hostile names.
func objectNameFor(siteId int, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "sites/" + strconv.Itoa(siteId) + "/" + uuid.NewString() + ext
}

func (a *ImageController) add(c *gin.Context) {
	siteId, ok := a.siteId(c)
	if !ok {
		return
	}
	var form ImageForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	payload := service.ImagePayload{
		ObjectName:  objectNameFor(siteId, form.Filename),
		URL:         form.URL,
		Title:       form.Title,
		Description: form.Description,
		MakeCover:   common.ParseBool(form.MakeCover),
	}
	if user := session.GetLoginUser(c); user != nil {
		payload.PerformedBy = &user.Id
	}
	image, err := a.imageService.CreateImage(siteId, payload)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.images.limitReached"), err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.images.added"), image, nil)
}

func (a *ImageController) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	var form ImageForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	image, err := a.imageService.UpdateImage(id, service.ImagePayload{
		Title:       form.Title,
		Description: form.Description,
	})
	if err != nil {
		jsonMsg(c, "No se pudo actualizar la imagen", err)
		return
	}
	jsonObj(c, image, nil)
}

func (a *ImageController) cover(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	var performedBy *int
	if user := session.GetLoginUser(c); user != nil {
		performedBy = &user.Id
	}
	image, err := a.imageService.MarkAsCover(id, performedBy)
	if err != nil {
		jsonMsg(c, "No se pudo cambiar la portada", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.images.coverChanged"), image, nil)
}

func (a *ImageController) move(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	direction := c.Param("direction")
	var performedBy *int
	if user := session.GetLoginUser(c); user != nil {
		performedBy = &user.Id
	}
	image, err := a.imageService.MoveImage(id, direction, performedBy)
	if err != nil {
		jsonMsg(c, "No se pudo reordenar la imagen", err)
		return
	}
	jsonObj(c, image, nil)
}

func (a *ImageController) del(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	var performedBy *int
	if user := session.GetLoginUser(c); user != nil {
		performedBy = &user.Id
	}
	if err := a.imageService.DeleteImage(id, performedBy); err != nil {
		jsonMsg(c, "No se pudo eliminar la imagen", err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.images.removed"), nil)
}
