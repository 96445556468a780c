package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/web/service"
	"github.com/aguszappia/proyecto-de-software/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupDB() {
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardownDB() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestPermissionRequired(t *testing.T) {
	setupDB()
	defer teardownDB()
	gin.SetMode(gin.TestMode)

	userService := service.UserService{}
	permissionService := service.PermissionService{}
	editor, fieldErrors, err := userService.CreateUser(service.UserPayload{
		Email:     "editor@example.com",
		FirstName: "Edi",
		LastName:  "Torres",
		Password:  "supersecreta",
		Role:      database.RoleEditor,
	}, nil)
	assert.NoError(t, err)
	assert.False(t, fieldErrors.Any())

	engine := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	engine.Use(sessions.Sessions("sitios", store))
	engine.GET("/login", func(c *gin.Context) {
		user, err := userService.GetUser(editor.Id)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		session.SetLoginUser(c, user)
		c.Status(http.StatusOK)
	})
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	engine.GET("/site/list", PermissionRequired(&permissionService, database.PermSiteIndex), ok)
	engine.GET("/site/export", PermissionRequired(&permissionService, database.PermSiteExport), ok)

	server := httptest.NewServer(engine)
	defer server.Close()

	// Without a session everything is unauthorized.
	resp, err := http.Get(server.URL + "/site/list")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	loginResp, err := http.Get(server.URL + "/login")
	assert.NoError(t, err)
	loginResp.Body.Close()
	cookies := loginResp.Cookies()
	assert.NotEmpty(t, cookies)

	get := func(path string) int {
		req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
		assert.NoError(t, err)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		resp, err := http.DefaultClient.Do(req)
		assert.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	// An editor can browse the listing but cannot export it.
	assert.Equal(t, http.StatusOK, get("/site/list"))
	assert.Equal(t, http.StatusForbidden, get("/site/export"))

	// The seeds reserve the export permission for admin-level roles.
	assert.True(t, permissionService.HasPermission(database.RoleAdmin, database.PermSiteExport))
	assert.True(t, permissionService.HasPermission(database.RoleSysAdmin, database.PermSiteExport))
	assert.False(t, permissionService.HasPermission(database.RoleEditor, database.PermSiteExport))
}
