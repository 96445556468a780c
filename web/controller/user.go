package controller

import (
	"strconv"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/util/common"
	"github.com/aguszappia/proyecto-de-software/web/service"
	"github.com/aguszappia/proyecto-de-software/web/session"

	"github.com/gin-gonic/gin"
)

// UserForm is the create/update body for admin-managed accounts.
type UserForm struct {
	Email     string `json:"email" form:"email"`
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName" form:"lastName"`
	Password  string `json:"password" form:"password"`
	Role      string `json:"role" form:"role"`
	IsActive  string `json:"isActive" form:"isActive"`
}

// UserController handles the admin user management routes.
type UserController struct {
	userService       service.UserService
	permissionService service.PermissionService
}

func NewUserController(g *gin.RouterGroup) *UserController {
	a := &UserController{}
	a.initRouter(g)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/user")

	g.GET("/list", a.list)
	g.GET("/get/:id", a.get)
	g.POST("/add", a.add)
	g.POST("/update/:id", a.update)
	g.POST("/del/:id", a.del)
	g.POST("/block/:id", a.block)
	g.POST("/unblock/:id", a.unblock)
}

func (a *UserController) list(c *gin.Context) {
	filter := service.UserFilter{
		EmailSearch: c.Query("email"),
		Role:        c.Query("role"),
		Order:       c.Query("order"),
		Page:        queryInt(c, "page", 1),
		PerPage:     queryInt(c, "perPage", 0),
	}
	if raw := c.Query("active"); raw != "" {
		active := common.ParseBool(raw)
		filter.Active = &active
	}
	page, err := a.userService.ListUsers(filter)
	if err != nil {
		jsonMsg(c, "No se pudo obtener el listado de usuarios", err)
		return
	}
	jsonObj(c, gin.H{"data": page.Items, "meta": pageMeta(page)}, nil)
}

func (a *UserController) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	user, err := a.userService.GetUser(id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.users.title"), err)
		return
	}
	jsonObj(c, user, nil)
}

func (a *UserController) payloadFromForm(form UserForm) service.UserPayload {
	payload := service.UserPayload{
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Password:  form.Password,
		Role:      form.Role,
	}
	if form.IsActive != "" {
		active := common.ParseBool(form.IsActive)
		payload.IsActive = &active
	}
	return payload
}

func (a *UserController) allowedRoles(c *gin.Context) []string {
	user := session.GetLoginUser(c)
	if user != nil && user.RoleSlug() == database.RoleSysAdmin {
		roles, err := a.permissionService.ListRoles()
		if err == nil {
			slugs := make([]string, 0, len(roles))
			for _, role := range roles {
				slugs = append(slugs, role.Slug)
			}
			return slugs
		}
	}
	return a.userService.AllowedRolesForAdmin()
}

func (a *UserController) add(c *gin.Context) {
	var form UserForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	user, fieldErrors, err := a.userService.CreateUser(a.payloadFromForm(form), a.allowedRoles(c))
	if err != nil {
		jsonMsg(c, "No se pudo crear el usuario", err)
		return
	}
	if fieldErrors.Any() {
		jsonFieldErrors(c, fieldErrors)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.users.created"), user, nil)
}

func (a *UserController) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	var form UserForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "Datos de formulario inválidos", err)
		return
	}
	user, fieldErrors, err := a.userService.UpdateUser(id, a.payloadFromForm(form), a.allowedRoles(c))
	if err != nil {
		jsonMsg(c, "No se pudo actualizar el usuario", err)
		return
	}
	if fieldErrors.Any() {
		jsonFieldErrors(c, fieldErrors)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.users.updated"), user, nil)
}

func (a *UserController) del(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	if err := a.userService.DeleteUser(id); err != nil {
		jsonMsg(c, "No se pudo eliminar el usuario", err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.users.deleted"), nil)
}

func (a *UserController) block(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	user, err := a.userService.DeactivateUser(id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.users.cannotDeactivate"), err)
		return
	}
	jsonObj(c, user, nil)
}

func (a *UserController) unblock(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "Identificador inválido", err)
		return
	}
	user, err := a.userService.ActivateUser(id)
	if err != nil {
		jsonMsg(c, "No se pudo activar el usuario", err)
		return
	}
	jsonObj(c, user, nil)
}
