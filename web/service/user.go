package service

import (
	"strings"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/logger"
	"github.com/aguszappia/proyecto-de-software/util/common"
	"github.com/aguszappia/proyecto-de-software/util/crypto"

	"github.com/xlzd/gotp"
	"gorm.io/gorm"
)

const maxUsersPerPage = 50

// UserPayload carries the fields accepted when creating or updating a user.
// Zero-value strings mean "not provided" on update.
type UserPayload struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
	IsActive  *bool
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	EmailSearch string
	Active      *bool
	Role        string
	Order       string // "created_at" for ascending, anything else newest first
	Page        int
	PerPage     int
}

// FieldErrors maps field names to the validation messages for that field.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

// Any reports whether at least one field failed validation.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

type UserService struct{}

func (s *UserService) ListUsers(filter UserFilter) (Page[model.User], error) {
	db := database.GetDB()
	query := db.Model(&model.User{}).Preload("Role")

	if filter.EmailSearch != "" {
		query = query.Where("email LIKE ?", "%"+strings.ToLower(filter.EmailSearch)+"%")
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Role != "" {
		query = query.Joins("JOIN roles ON roles.id = users.role_id").
			Where("roles.slug = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[model.User]{}, err
	}

	if filter.Order == "created_at" {
		query = query.Order("users.created_at ASC")
	} else {
		query = query.Order("users.created_at DESC")
	}

	page, perPage := clampPage(filter.Page, filter.PerPage, maxUsersPerPage)
	var users []model.User
	err := query.Limit(perPage).Offset(offsetFor(page, perPage)).Find(&users).Error
	if err != nil {
		return Page[model.User]{}, err
	}
	return Page[model.User]{Items: users, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Preload("Role").First(user, id).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(email string) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Preload("Role").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUser verifies portal or panel credentials. It returns nil on any
// failure so callers cannot distinguish a wrong password from a missing or
// blocked account.
func (s *UserService) CheckUser(email, password, twoFactorCode string) *model.User {
	user, err := s.GetUserByEmail(email)
	if err == gorm.ErrRecordNotFound {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}
	if !user.IsActive {
		return nil
	}
	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil
	}
	if user.TotpSecret != "" {
		if gotp.NewDefaultTOTP(user.TotpSecret).Now() != twoFactorCode {
			return nil
		}
	}
	return user
}

func (s *UserService) validatePayload(payload UserPayload, existingId int, requirePassword bool, allowedRoles []string) (map[string]any, FieldErrors) {
	db := database.GetDB()
	errors := FieldErrors{}
	clean := map[string]any{}

	email := strings.ToLower(common.CleanString(payload.Email))
	if email == "" {
		errors.add("email", "El email es obligatorio.")
	} else if !common.IsEmail(email) {
		errors.add("email", "El formato de email no es válido.")
	} else {
		clean["email"] = email
	}

	firstName := common.CleanString(payload.FirstName)
	if firstName == "" {
		errors.add("first_name", "El nombre es obligatorio.")
	} else {
		clean["first_name"] = firstName
	}

	lastName := common.CleanString(payload.LastName)
	if lastName == "" {
		errors.add("last_name", "El apellido es obligatorio.")
	} else {
		clean["last_name"] = lastName
	}

	if payload.Password != "" {
		if len(payload.Password) < 8 {
			errors.add("password", "La contraseña debe tener al menos 8 caracteres.")
		}
	} else if requirePassword {
		errors.add("password", "La contraseña es obligatoria.")
	}

	role := strings.ToLower(common.CleanString(payload.Role))
	if role == "" {
		role = database.RolePublic
	}
	if len(allowedRoles) > 0 {
		allowed := false
		for _, slug := range allowedRoles {
			if slug == role {
				allowed = true
				break
			}
		}
		if !allowed {
			errors.add("role", "El rol debe ser uno de: "+strings.Join(allowedRoles, ", ")+".")
		}
	}
	if _, bad := errors["role"]; !bad {
		clean["role"] = role
	}

	if email != "" {
		query := db.Model(&model.User{}).Where("email = ?", email)
		if existingId > 0 {
			query = query.Where("id <> ?", existingId)
		}
		var count int64
		if err := query.Count(&count).Error; err == nil && count > 0 {
			errors.add("email", "El email ya está registrado.")
		}
	}

	return clean, errors
}

// CreateUser validates the payload and stores a new user with a hashed
// password. allowedRoles limits which role slugs the caller may assign.
func (s *UserService) CreateUser(payload UserPayload, allowedRoles []string) (*model.User, FieldErrors, error) {
	db := database.GetDB()
	clean, errors := s.validatePayload(payload, 0, true, allowedRoles)
	if errors.Any() {
		return nil, errors, nil
	}

	var role model.Role
	if err := db.Where("slug = ?", clean["role"]).First(&role).Error; err != nil {
		return nil, nil, common.NewErrorf("rol desconocido: %v", clean["role"])
	}

	hash, err := crypto.HashPasswordAsBcrypt(payload.Password)
	if err != nil {
		return nil, nil, err
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}
	user := &model.User{
		Email:        clean["email"].(string),
		FirstName:    clean["first_name"].(string),
		LastName:     clean["last_name"].(string),
		PasswordHash: hash,
		IsActive:     isActive,
		RoleId:       role.Id,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, nil, err
	}
	user.Role = &role
	return user, nil, nil
}

// UpdateUser applies a partial payload. Admin-level accounts cannot be
// deactivated through an update.
func (s *UserService) UpdateUser(id int, payload UserPayload, allowedRoles []string) (*model.User, FieldErrors, error) {
	db := database.GetDB()
	user, err := s.GetUser(id)
	if err != nil {
		return nil, nil, err
	}

	clean, errors := s.validatePayload(payload, id, false, allowedRoles)
	if payload.IsActive != nil && !*payload.IsActive && s.isAdminLevel(user) {
		errors.add("is_active", "No se puede desactivar a un usuario con rol Administrador.")
	}
	if errors.Any() {
		return nil, errors, nil
	}

	user.Email = clean["email"].(string)
	user.FirstName = clean["first_name"].(string)
	user.LastName = clean["last_name"].(string)
	if payload.IsActive != nil {
		user.IsActive = *payload.IsActive
	}
	if roleSlug, ok := clean["role"].(string); ok && roleSlug != user.RoleSlug() {
		var role model.Role
		if err := db.Where("slug = ?", roleSlug).First(&role).Error; err != nil {
			return nil, nil, common.NewErrorf("rol desconocido: %v", roleSlug)
		}
		user.RoleId = role.Id
		user.Role = &role
	}
	if payload.Password != "" {
		hash, err := crypto.HashPasswordAsBcrypt(payload.Password)
		if err != nil {
			return nil, nil, err
		}
		user.PasswordHash = hash
	}

	if err := db.Save(user).Error; err != nil {
		return nil, nil, err
	}
	return user, nil, nil
}

func (s *UserService) DeleteUser(id int) error {
	return database.GetDB().Delete(&model.User{}, id).Error
}

// DeactivateUser blocks a user unless it holds an admin-level role.
func (s *UserService) DeactivateUser(id int) (*model.User, error) {
	db := database.GetDB()
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if s.isAdminLevel(user) {
		return nil, common.NewError("no se puede desactivar a un usuario con rol Administrador o System Admin")
	}
	user.IsActive = false
	if err := db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ActivateUser(id int) (*model.User, error) {
	db := database.GetDB()
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	user.IsActive = true
	if err := db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) isAdminLevel(user *model.User) bool {
	slug := user.RoleSlug()
	return slug == database.RoleAdmin || slug == database.RoleSysAdmin
}

// AllowedRolesForAdmin is the role set an admin may hand out; only seeds
// create sysadmins.
func (s *UserService) AllowedRolesForAdmin() []string {
	return []string{database.RolePublic, database.RoleEditor, database.RoleAdmin}
}
