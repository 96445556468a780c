package service

import (
	"os"
	"testing"

	"github.com/aguszappia/proyecto-de-software/database"

	"github.com/stretchr/testify/assert"
)

func setup() {
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestUserService(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	allowed := userService.AllowedRolesForAdmin()

	// Validation failures come back as field errors, not as a hard error.
	_, fieldErrors, err := userService.CreateUser(UserPayload{
		Email:     "not-an-email",
		FirstName: "Ana",
		LastName:  "García",
		Password:  "short",
		Role:      database.RoleEditor,
	}, allowed)
	assert.NoError(t, err)
	assert.True(t, fieldErrors.Any())
	assert.NotEmpty(t, fieldErrors["email"])
	assert.NotEmpty(t, fieldErrors["password"])

	user, fieldErrors, err := userService.CreateUser(UserPayload{
		Email:     "Ana.Garcia@Example.com",
		FirstName: "  Ana ",
		LastName:  "García",
		Password:  "supersecreta",
		Role:      database.RoleEditor,
	}, allowed)
	assert.NoError(t, err)
	assert.False(t, fieldErrors.Any())
	assert.Equal(t, "ana.garcia@example.com", user.Email)
	assert.Equal(t, "Ana", user.FirstName)
	assert.Equal(t, database.RoleEditor, user.RoleSlug())
	assert.True(t, user.IsActive)

	// Duplicate email is rejected with a field error.
	_, fieldErrors, err = userService.CreateUser(UserPayload{
		Email:     "ana.garcia@example.com",
		FirstName: "Otra",
		LastName:  "Persona",
		Password:  "supersecreta",
		Role:      database.RolePublic,
	}, allowed)
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["email"])

	// An admin cannot hand out the sysadmin role.
	_, fieldErrors, err = userService.CreateUser(UserPayload{
		Email:     "otro@example.com",
		FirstName: "Otro",
		LastName:  "Usuario",
		Password:  "supersecreta",
		Role:      database.RoleSysAdmin,
	}, allowed)
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["role"])

	// Credentials check: wrong password and unknown accounts both return nil.
	assert.NotNil(t, userService.CheckUser("ana.garcia@example.com", "supersecreta", ""))
	assert.Nil(t, userService.CheckUser("ana.garcia@example.com", "incorrecta", ""))
	assert.Nil(t, userService.CheckUser("nadie@example.com", "supersecreta", ""))

	// Blocked accounts cannot log in.
	blocked, err := userService.DeactivateUser(user.Id)
	assert.NoError(t, err)
	assert.False(t, blocked.IsActive)
	assert.Nil(t, userService.CheckUser("ana.garcia@example.com", "supersecreta", ""))

	reactivated, err := userService.ActivateUser(user.Id)
	assert.NoError(t, err)
	assert.True(t, reactivated.IsActive)

	// The seeded sysadmin cannot be deactivated.
	admin, err := userService.GetUserByEmail("admin@example.com")
	assert.NoError(t, err)
	_, err = userService.DeactivateUser(admin.Id)
	assert.Error(t, err)

	// Partial update: role change plus a new password.
	updated, fieldErrors, err := userService.UpdateUser(user.Id, UserPayload{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      database.RoleAdmin,
		Password:  "otraclave123",
	}, allowed)
	assert.NoError(t, err)
	assert.False(t, fieldErrors.Any())
	assert.Equal(t, database.RoleAdmin, updated.RoleSlug())
	assert.NotNil(t, userService.CheckUser(user.Email, "otraclave123", ""))

	// Admin-level accounts cannot be deactivated through an update either.
	inactive := false
	_, fieldErrors, err = userService.UpdateUser(user.Id, UserPayload{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      database.RoleAdmin,
		IsActive:  &inactive,
	}, allowed)
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["is_active"])
}

func TestUserListFilters(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	allowed := userService.AllowedRolesForAdmin()
	emails := []string{"uno@example.com", "dos@example.com", "tres@example.com"}
	for _, email := range emails {
		_, _, err := userService.CreateUser(UserPayload{
			Email:     email,
			FirstName: "Test",
			LastName:  "User",
			Password:  "supersecreta",
			Role:      database.RolePublic,
		}, allowed)
		assert.NoError(t, err)
	}

	page, err := userService.ListUsers(UserFilter{Role: database.RolePublic})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	page, err = userService.ListUsers(UserFilter{EmailSearch: "dos@"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "dos@example.com", page.Items[0].Email)

	// The seeded admin plus the three created users.
	active := true
	page, err = userService.ListUsers(UserFilter{Active: &active})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)

	// perPage is capped when explicit and defaults when unset.
	page, err = userService.ListUsers(UserFilter{Page: 1, PerPage: 500})
	assert.NoError(t, err)
	assert.Equal(t, maxUsersPerPage, page.PerPage)
	page, err = userService.ListUsers(UserFilter{Page: 1})
	assert.NoError(t, err)
	assert.Equal(t, DefaultPerPage, page.PerPage)
	assert.Len(t, page.Items, 4)
}
