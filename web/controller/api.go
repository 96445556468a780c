package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/logger"
	"github.com/aguszappia/proyecto-de-software/util/common"
	"github.com/aguszappia/proyecto-de-software/web/entity"
	"github.com/aguszappia/proyecto-de-software/web/service"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "api_user"

// APILoginForm is the credential body of the public token endpoint.
type APILoginForm struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// APIRefreshForm carries a refresh token.
type APIRefreshForm struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// APIReviewForm is the create/update body of a portal review.
type APIReviewForm struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// APIController serves the public portal REST API under /api.
type APIController struct {
	userService       service.UserService
	permissionService service.PermissionService
	flagService       service.FlagService
	siteService       service.SiteService
	tagService        service.TagService
	imageService      service.ImageService
	reviewService     service.ReviewService
	tokenService      service.TokenService
}

func NewAPIController(g *gin.RouterGroup) *APIController {
	a := &APIController{}
	a.initRouter(g)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/api")

	g.POST("/auth/login", a.login)
	g.POST("/auth/refresh", a.refresh)

	g.GET("/tags", a.listTags)
	g.GET("/sites", a.listSites)
	g.GET("/sites/nearby", a.nearbySites)
	g.GET("/sites/:id", a.getSite)
	g.GET("/sites/:id/reviews", a.listReviews)
	g.GET("/sites/:id/reviews/stats", a.reviewStats)

	auth := g.Group("")
	auth.Use(a.requireToken)
	auth.GET("/me", a.me)
	auth.GET("/me/favorites", a.listFavorites)
	auth.GET("/me/reviews", a.listMyReviews)
	auth.POST("/sites/:id/favorite", a.favorite)
	auth.DELETE("/sites/:id/favorite", a.unfavorite)
	auth.POST("/sites/:id/reviews", a.createReview)
	auth.PUT("/sites/:id/reviews", a.updateReview)
	auth.DELETE("/sites/:id/reviews", a.deleteReview)
}

func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": http.StatusText(status), "message": message})
	c.Abort()
}

// requireToken validates the bearer access token and loads the user into the
// request context.
func (a *APIController) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		apiError(c, http.StatusUnauthorized, "Falta el token de acceso.")
		return
	}
	userId, err := a.tokenService.ParseToken(token, service.TokenTypeAccess)
	if err != nil {
		apiError(c, http.StatusUnauthorized, "Token inválido o expirado.")
		return
	}
	user, err := a.userService.GetUser(userId)
	if err != nil || !user.IsActive {
		apiError(c, http.StatusUnauthorized, "La cuenta no está disponible.")
		return
	}
	c.Set(contextUserKey, user)
	c.Next()
}

func apiUser(c *gin.Context) *model.User {
	if value, ok := c.Get(contextUserKey); ok {
		if user, ok := value.(*model.User); ok {
			return user
		}
	}
	return nil
}

func (a *APIController) login(c *gin.Context) {
	var form APILoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		apiError(c, http.StatusBadRequest, "Email y contraseña son obligatorios.")
		return
	}
	user := a.userService.CheckUser(form.Email, form.Password, "")
	if user == nil {
		logger.Warningf("failed portal login for \"%s\", IP: \"%s\"", form.Email, getRemoteIp(c))
		apiError(c, http.StatusUnauthorized, "Email o contraseña incorrectos.")
		return
	}
	pair, err := a.tokenService.IssueTokenPair(user.Id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo generar el token.")
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (a *APIController) refresh(c *gin.Context) {
	var form APIRefreshForm
	if err := c.ShouldBindJSON(&form); err != nil {
		apiError(c, http.StatusBadRequest, "Falta el refresh token.")
		return
	}
	userId, err := a.tokenService.ParseToken(form.RefreshToken, service.TokenTypeRefresh)
	if err != nil {
		apiError(c, http.StatusUnauthorized, "Refresh token inválido o expirado.")
		return
	}
	user, err := a.userService.GetUser(userId)
	if err != nil || !user.IsActive {
		apiError(c, http.StatusUnauthorized, "La cuenta no está disponible.")
		return
	}
	pair, err := a.tokenService.IssueTokenPair(user.Id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo generar el token.")
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (a *APIController) me(c *gin.Context) {
	user := apiUser(c)
	c.JSON(http.StatusOK, entity.Profile{
		Id:          user.Id,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.RoleSlug(),
		Permissions: a.permissionService.PermissionCodesForRole(user.RoleSlug()),
	})
}

func (a *APIController) listTags(c *gin.Context) {
	tags, err := a.tagService.ListTags()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo obtener el listado de etiquetas.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tags})
}

func (a *APIController) summarize(site model.HistoricSite) entity.SiteSummary {
	summary := entity.SiteSummary{
		Id:                 site.Id,
		Name:               site.Name,
		ShortDescription:   site.ShortDescription,
		City:               site.City,
		Province:           site.Province,
		Category:           string(site.Category),
		ConservationStatus: string(site.ConservationStatus),
		Latitude:           site.Latitude,
		Longitude:          site.Longitude,
		Tags:               service.TagNames(&site),
		Visits:             site.Visits,
	}
	if cover, err := a.imageService.GetCover(site.Id); err == nil && cover != nil {
		summary.CoverURL = cover.URL
	}
	return summary
}

func (a *APIController) listSites(c *gin.Context) {
	visible := true
	filter := service.SiteFilter{
		City:     c.Query("city"),
		Province: c.Query("province"),
		Query:    c.Query("q"),
		SortBy:   c.Query("sort"),
		SortDir:  c.Query("dir"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 0),
	}
	filter.IsVisible = &visible
	if raw := c.Query("tags"); raw != "" {
		filter.TagIds = common.ParseIDList(raw)
	}
	if raw := c.Query("conservation_status"); raw != "" {
		if status, ok := service.ParseConservationStatus(raw); ok {
			filter.ConservationStatus = status
		}
	}

	page, err := a.siteService.SearchSites(filter)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo obtener el listado de sitios.")
		return
	}
	data := make([]any, 0, len(page.Items))
	for _, site := range page.Items {
		data = append(data, a.summarize(site))
	}
	c.JSON(http.StatusOK, entity.PagedList{Data: data, Meta: pageMeta(page)})
}

func (a *APIController) getSite(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "Identificador inválido.")
		return
	}
	site, err := a.siteService.GetSite(id)
	if err != nil || !site.IsVisible {
		apiError(c, http.StatusNotFound, "El sitio no existe.")
		return
	}
	if err := a.siteService.IncrementVisits(site.Id); err == nil {
		site.Visits++
	}

	detail := entity.SiteDetail{
		SiteSummary:      a.summarize(*site),
		Description:      site.FullDescription,
		Address:          site.City + ", " + site.Province,
		InaugurationYear: site.InaugurationYear,
		CreatedAt:        site.CreatedAt,
		UpdatedAt:        site.UpdatedAt,
	}
	images, err := a.imageService.ListImages(site.Id)
	if err == nil {
		detail.Images = make([]entity.SiteImageView, 0, len(images))
		for _, image := range images {
			detail.Images = append(detail.Images, entity.NewSiteImageView(image))
		}
	}
	c.JSON(http.StatusOK, detail)
}

func (a *APIController) nearbySites(c *gin.Context) {
	lat, latOk := common.SafeFloat(c.Query("lat"))
	lon, lonOk := common.SafeFloat(c.Query("lon"))
	if !latOk || !lonOk {
		apiError(c, http.StatusBadRequest, "lat y lon son obligatorios.")
		return
	}
	radius, ok := common.SafeFloat(c.Query("radius"))
	if !ok || radius <= 0 {
		radius = 5000
	}
	sites, err := a.siteService.GetSitesByLocation(lat, lon, radius)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo buscar sitios cercanos.")
		return
	}
	data := make([]any, 0, len(sites))
	for _, site := range sites {
		data = append(data, a.summarize(site))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (a *APIController) visibleSiteId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "Identificador inválido.")
		return 0, false
	}
	site, err := a.siteService.GetSite(id)
	if err != nil || !site.IsVisible {
		apiError(c, http.StatusNotFound, "El sitio no existe.")
		return 0, false
	}
	return id, true
}

func (a *APIController) listReviews(c *gin.Context) {
	siteId, ok := a.visibleSiteId(c)
	if !ok {
		return
	}
	reviews, err := a.reviewService.ListPublicReviews(siteId)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo obtener las reseñas.")
		return
	}
	data := make([]entity.ReviewView, 0, len(reviews))
	for _, review := range reviews {
		data = append(data, entity.ReviewView{
			Id:        review.Review.Id,
			Rating:    review.Review.Rating,
			Comment:   review.Review.Comment,
			Author:    review.UserDisplay(),
			CreatedAt: review.Review.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (a *APIController) reviewStats(c *gin.Context) {
	siteId, ok := a.visibleSiteId(c)
	if !ok {
		return
	}
	stats, err := a.reviewService.GetPublicStats(siteId)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo calcular las estadísticas.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *APIController) favorite(c *gin.Context) {
	siteId, ok := a.visibleSiteId(c)
	if !ok {
		return
	}
	user := apiUser(c)
	created, err := a.siteService.MarkFavorite(siteId, user.Id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo marcar el favorito.")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"favorite": true})
}

func (a *APIController) unfavorite(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "Identificador inválido.")
		return
	}
	user := apiUser(c)
	if err := a.siteService.UnmarkFavorite(id, user.Id); err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo quitar el favorito.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": false})
}

func (a *APIController) listFavorites(c *gin.Context) {
	user := apiUser(c)
	ids, err := a.siteService.ListFavoriteSiteIds(user.Id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo obtener los favoritos.")
		return
	}
	data := make([]any, 0, len(ids))
	for _, id := range ids {
		site, err := a.siteService.GetSite(id)
		if err != nil || !site.IsVisible {
			continue
		}
		data = append(data, a.summarize(*site))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// checkReviewsEnabled answers 403 while the reviews flag is off.
func (a *APIController) checkReviewsEnabled(c *gin.Context) bool {
	if !a.flagService.ReviewsEnabled() {
		apiError(c, http.StatusForbidden, "Las reseñas están deshabilitadas temporalmente.")
		return false
	}
	return true
}

func (a *APIController) createReview(c *gin.Context) {
	if !a.checkReviewsEnabled(c) {
		return
	}
	siteId, ok := a.visibleSiteId(c)
	if !ok {
		return
	}
	user := apiUser(c)
	existing, err := a.reviewService.FindReviewByUser(siteId, user.Id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo crear la reseña.")
		return
	}
	if existing != nil {
		apiError(c, http.StatusConflict, "Ya escribiste una reseña para este sitio.")
		return
	}
	var form APIReviewForm
	if err := c.ShouldBindJSON(&form); err != nil {
		apiError(c, http.StatusBadRequest, "La calificación es obligatoria.")
		return
	}
	review, err := a.reviewService.CreateReview(siteId, user.Id, form.Rating, form.Comment)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (a *APIController) updateReview(c *gin.Context) {
	if !a.checkReviewsEnabled(c) {
		return
	}
	siteId, ok := a.visibleSiteId(c)
	if !ok {
		return
	}
	user := apiUser(c)
	existing, err := a.reviewService.FindReviewByUser(siteId, user.Id)
	if err != nil || existing == nil {
		apiError(c, http.StatusNotFound, "No escribiste una reseña para este sitio.")
		return
	}
	var form APIReviewForm
	if err := c.ShouldBindJSON(&form); err != nil {
		apiError(c, http.StatusBadRequest, "La calificación es obligatoria.")
		return
	}
	review, err := a.reviewService.UpdateReview(existing.Id, form.Rating, form.Comment)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, review)
}

func (a *APIController) deleteReview(c *gin.Context) {
	siteId, ok := a.visibleSiteId(c)
	if !ok {
		return
	}
	user := apiUser(c)
	existing, err := a.reviewService.FindReviewByUser(siteId, user.Id)
	if err != nil || existing == nil {
		apiError(c, http.StatusNotFound, "No escribiste una reseña para este sitio.")
		return
	}
	if err := a.reviewService.DeleteReview(existing.Id); err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo eliminar la reseña.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *APIController) listMyReviews(c *gin.Context) {
	user := apiUser(c)
	reviews, err := a.reviewService.ListReviewsForUser(user.Id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "No se pudo obtener tus reseñas.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reviews})
}
