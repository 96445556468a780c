package service

import (
	"strings"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/util/common"

	"gorm.io/gorm"
)

// PermissionService manages roles, permission codes and their assignments.
type PermissionService struct{}

func (s *PermissionService) ListRoles() ([]model.Role, error) {
	db := database.GetDB()
	var roles []model.Role
	err := db.Order("slug ASC").Find(&roles).Error
	return roles, err
}

func (s *PermissionService) GetRoleBySlug(slug string) (*model.Role, error) {
	db := database.GetDB()
	role := &model.Role{}
	err := db.Where("slug = ?", slug).First(role).Error
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *PermissionService) ListPermissions(module string) ([]model.Permission, error) {
	db := database.GetDB()
	query := db.Model(&model.Permission{})
	if module != "" {
		query = query.Where("module = ?", module)
	}
	var permissions []model.Permission
	err := query.Order("code ASC").Find(&permissions).Error
	return permissions, err
}

// EnsurePermission creates the permission when missing. The code must follow
// the module_action format.
func (s *PermissionService) EnsurePermission(code, description string) (*model.Permission, error) {
	module, action, found := strings.Cut(code, "_")
	if !found || module == "" || action == "" {
		return nil, common.NewError("el código de permiso debe seguir el formato modulo_accion")
	}

	db := database.GetDB()
	permission := &model.Permission{}
	err := db.Where("code = ?", code).First(permission).Error
	if err == nil {
		if description != "" && permission.Description != description {
			permission.Description = description
			if err := db.Save(permission).Error; err != nil {
				return nil, err
			}
		}
		return permission, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}

	permission = &model.Permission{
		Code:        code,
		Module:      module,
		Action:      action,
		Description: description,
	}
	if err := db.Create(permission).Error; err != nil {
		return nil, err
	}
	return permission, nil
}

// AssignPermission links a permission to a role, skipping duplicates.
func (s *PermissionService) AssignPermission(roleSlug, code string, assignedBy *int) (*model.RolePermission, error) {
	db := database.GetDB()
	role, err := s.GetRoleBySlug(roleSlug)
	if err != nil {
		return nil, common.NewErrorf("no existe el rol %q", roleSlug)
	}
	permission := &model.Permission{}
	if err := db.Where("code = ?", code).First(permission).Error; err != nil {
		return nil, common.NewErrorf("no existe el permiso %q", code)
	}

	link := &model.RolePermission{}
	err = db.Where("role_id = ? AND permission_id = ?", role.Id, permission.Id).First(link).Error
	if err == nil {
		return link, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}

	link = &model.RolePermission{RoleId: role.Id, PermissionId: permission.Id, AssignedById: assignedBy}
	if err := db.Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// RevokePermission removes the link and reports whether it existed.
func (s *PermissionService) RevokePermission(roleSlug, code string) (bool, error) {
	db := database.GetDB()
	role, err := s.GetRoleBySlug(roleSlug)
	if err != nil {
		return false, common.NewErrorf("no existe el rol %q", roleSlug)
	}
	permission := &model.Permission{}
	if err := db.Where("code = ?", code).First(permission).Error; err != nil {
		return false, common.NewErrorf("no existe el permiso %q", code)
	}

	result := db.Where("role_id = ? AND permission_id = ?", role.Id, permission.Id).
		Delete(&model.RolePermission{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *PermissionService) ListRolePermissions(roleSlug string) ([]model.Permission, error) {
	db := database.GetDB()
	role, err := s.GetRoleBySlug(roleSlug)
	if err != nil {
		return nil, common.NewErrorf("no existe el rol %q", roleSlug)
	}
	var permissions []model.Permission
	err = db.Model(&model.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", role.Id).
		Order("permissions.code ASC").
		Find(&permissions).Error
	return permissions, err
}

// BulkAssign assigns every code to the role, ignoring codes already linked.
func (s *PermissionService) BulkAssign(roleSlug string, codes []string, assignedBy *int) error {
	for _, code := range codes {
		if _, err := s.AssignPermission(roleSlug, code, assignedBy); err != nil {
			return err
		}
	}
	return nil
}

// HasPermission reports whether the role holds the permission code. Sysadmins
// hold everything.
func (s *PermissionService) HasPermission(roleSlug, code string) bool {
	if roleSlug == database.RoleSysAdmin {
		return true
	}
	db := database.GetDB()
	var count int64
	err := db.Model(&model.RolePermission{}).
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("roles.slug = ? AND permissions.code = ?", roleSlug, code).
		Count(&count).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return false
	}
	return count > 0
}

// PermissionCodesForRole returns the codes a role holds, for /api/me.
func (s *PermissionService) PermissionCodesForRole(roleSlug string) []string {
	permissions, err := s.ListRolePermissions(roleSlug)
	if err != nil {
		return nil
	}
	codes := make([]string, 0, len(permissions))
	for _, permission := range permissions {
		codes = append(codes, permission.Code)
	}
	return codes
}
