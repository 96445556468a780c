package controller

import (
	"net/http"
	"text/template"

	"github.com/aguszappia/proyecto-de-software/config"
	"github.com/aguszappia/proyecto-de-software/logger"
	"github.com/aguszappia/proyecto-de-software/web/service"
	"github.com/aguszappia/proyecto-de-software/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Email         string `json:"email" form:"email"`
	Password      string `json:"password" form:"password"`
	TwoFactorCode string `json:"twoFactorCode" form:"twoFactorCode"`
}

// IndexController handles the main index and login-related routes.
type IndexController struct {
	BaseController

	userService service.UserService
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/logout", a.logout)

	g.POST("/login", a.login)
}

// index redirects logged-in users to the panel or shows the login page.
func (a *IndexController) index(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, "panel/")
		return
	}
	html(c, "login.html", "pages.login.title", nil)
}

// login handles user authentication and session creation.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "wrongCredentials"))
		return
	}
	if form.Email == "" || form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "wrongCredentials"))
		return
	}

	user := a.userService.CheckUser(form.Email, form.Password, form.TwoFactorCode)
	safeEmail := template.HTMLEscapeString(form.Email)

	if user == nil {
		logger.Warningf("failed panel login for \"%s\", IP: \"%s\"", safeEmail, getRemoteIp(c))
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "wrongCredentials"))
		return
	}
	session.SetMaxAge(c, config.GetSessionMaxAge()*60)
	session.SetLoginUser(c, user)
	if err := sessions.Default(c).Save(); err != nil {
		logger.Warning("Unable to save session: ", err)
		return
	}

	logger.Infof("%s logged in successfully, Ip Address: %s", safeEmail, getRemoteIp(c))
	jsonMsg(c, "login", nil)
}

// logout clears the session and redirects to the login page.
func (a *IndexController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user != nil {
		logger.Infof("%s logged out successfully", user.Email)
	}
	session.ClearSession(c)
	if err := sessions.Default(c).Save(); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
}
