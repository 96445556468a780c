package controller

import (
	"strconv"
	"time"

	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/web/service"

	"github.com/gin-gonic/gin"
)

// RejectForm carries the moderation rejection reason.
type RejectForm struct {
	Reason string `json:"reason" form:"reason"`
}

// ReviewController handles the review moderation routes.
type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(g *gin.RouterGroup) *ReviewController {
	a := &ReviewController{}
	a.initRouter(g)
	return a
}

func (a *ReviewController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/review")

	g.GET("/list", a.list)
	g.GET("/get/:id", a.get)
	g.POST("/approve/:id", a.approve)
	g.POST("/reject/:id", a.reject)
	g.POST("/del/:id", a.del)
}

func (a *ReviewController) list(c *gin.Context) {
	filter := service.ReviewFilter{
		Status:    model.ReviewStatus(c.Query("status")),
		SiteId:    queryInt(c, "siteId", 0),
		UserQuery: c.Query("user"),
		OrderBy:   c.Query("orderBy"),
		OrderDir:  c.Query("orderDir"),
		Page:      queryInt(c, "page", 1),
		PerPage:   queryInt(c, "perPage", 0),
	}
	if raw := c.Query("ratingMin"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.RatingMin = &v
		}
	}
	if raw := c.Query("ratingMax"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.RatingMax = &v
		}
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
	page, err := a.reviewService.PaginateReviews(filter)
	if err != nil {
		jsonMsg(c, "No se pudo obtener el listado de reseñas", err)
		return
	}
	jsonObj(c, gin.H{"data": page.Items, "meta": pageMeta(page)}, nil)
}

func (a *ReviewController) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	review, err := a.reviewService.GetReviewPresenter(id)
	if err != nil {
		jsonMsg(c, "La reseña no existe", err)
		return
	}
	jsonObj(c, review, nil)
}

func (a *ReviewController) approve(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	review, err := a.reviewService.ApproveReview(id)
	if err != nil {
		jsonMsg(c, "No se pudo aprobar la reseña", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.reviews.approved"), review, nil)
}

func (a *ReviewController) reject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	var form RejectForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	review, fieldErrors, err := a.reviewService.RejectReview(id, form.Reason)
	if err != nil {
		jsonMsg(c, "No se pudo rechazar la reseña", err)
		return
	}
	if fieldErrors.Any() {
		jsonFieldErrors(c, fieldErrors)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.reviews.rejected"), review, nil)
}

func (a *ReviewController) del(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	if err := a.reviewService.DeleteReview(id); err != nil {
		jsonMsg(c, "No se pudo eliminar la reseña", err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.reviews.deleted"), nil)
}
