// Package database owns the sqlite connection and the base seed data.
package database

import (
	"bytes"
	"io"
	"io/fs"
	"log"
	"os"
	"path"

	"github.com/aguszappia/proyecto-de-software/config"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/util/crypto"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

const (
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "admin"
)

// Role slugs seeded on first start.
const (
	RolePublic   = "public"
	RoleEditor   = "editor"
	RoleAdmin    = "admin"
	RoleSysAdmin = "sysadmin"
)

// Feature flag keys the panel depends on.
const (
	FlagAdminMaintenance  = "admin_maintenance_mode"
	FlagPortalMaintenance = "portal_maintenance_mode"
	FlagReviewsEnabled    = "reviews_enabled"
)

// Permission codes the route guards check by name.
const (
	PermUserIndex       = "user_index"
	PermSiteIndex       = "site_index"
	PermSiteExport      = "site_export"
	PermSiteHistoryView = "site_history_view"
	PermTagsIndex       = "tags_index"
	PermReviewsModerate = "reviews_moderate"
	PermFlagsManage     = "featureflags_manage"
)

func initModels() error {
	models := []interface{}{
		&model.Role{},
		&model.User{},
		&model.Permission{},
		&model.RolePermission{},
		&model.FeatureFlag{},
		&model.HistoricSite{},
		&model.SiteTag{},
		&model.SiteImage{},
		&model.SiteReview{},
		&model.SiteHistory{},
		&model.SiteFavorite{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

func initRoles() error {
	empty, err := isTableEmpty("roles")
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	roles := []model.Role{
		{Slug: RolePublic, Name: "Usuario público"},
		{Slug: RoleEditor, Name: "Editor"},
		{Slug: RoleAdmin, Name: "Administrador"},
		{Slug: RoleSysAdmin, Name: "System Admin"},
	}
	return db.Create(&roles).Error
}

// permissionSeed binds a permission code to the role slugs that hold it.
type permissionSeed struct {
	code        string
	description string
	roles       []string
}

var permissionSeeds = []permissionSeed{
	{PermUserIndex, "Listar usuarios", []string{RoleAdmin, RoleSysAdmin}},
	{"user_show", "Ver detalle de usuario", []string{RoleAdmin, RoleSysAdmin}},
	{"user_new", "Crear usuario", []string{RoleAdmin, RoleSysAdmin}},
	{"user_update", "Actualizar usuario", []string{RoleAdmin, RoleSysAdmin}},
	{"user_destroy", "Eliminar usuario", []string{RoleAdmin, RoleSysAdmin}},
	{PermSiteIndex, "Gestionar listado de sitios", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
	{"site_new", "Crear sitio histórico", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
	{"site_update", "Editar sitio histórico", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
	{"site_destroy", "Eliminar sitio histórico", []string{RoleAdmin, RoleSysAdmin}},
	{PermSiteExport, "Exportar sitios históricos", []string{RoleAdmin, RoleSysAdmin}},
	{PermSiteHistoryView, "Ver historial de sitios", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
	{PermReviewsModerate, "Moderar reseñas", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
	{PermFlagsManage, "Gestionar y ver feature flags", []string{RoleSysAdmin}},
	{PermTagsIndex, "Gestionar etiquetas de sitios históricos", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
	{"tags_new", "Crear etiquetas de sitios históricos", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
	{"tags_update", "Actualizar etiquetas de sitios históricos", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
	{"tags_destroy", "Eliminar etiquetas de sitios históricos", []string{RoleEditor, RoleAdmin, RoleSysAdmin}},
}

func initPermissions() error {
	empty, err := isTableEmpty("permissions")
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	var roles []model.Role
	if err := db.Find(&roles).Error; err != nil {
		return err
	}
	roleIds := make(map[string]int, len(roles))
	for _, role := range roles {
		roleIds[role.Slug] = role.Id
	}

	for _, seed := range permissionSeeds {
		module, action, ok := splitPermissionCode(seed.code)
		if !ok {
			continue
		}
		permission := model.Permission{
			Code:        seed.code,
			Module:      module,
			Action:      action,
			Description: seed.description,
		}
		if err := db.Create(&permission).Error; err != nil {
			return err
		}
		for _, slug := range seed.roles {
			roleId, found := roleIds[slug]
			if !found {
				continue
			}
			link := model.RolePermission{RoleId: roleId, PermissionId: permission.Id}
			if err := db.Create(&link).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func splitPermissionCode(code string) (module string, action string, ok bool) {
	for i := 0; i < len(code); i++ {
		if code[i] == '_' {
			return code[:i], code[i+1:], code[:i] != "" && code[i+1:] != ""
		}
	}
	return "", "", false
}

func initFlags() error {
	empty, err := isTableEmpty("feature_flags")
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	flags := []model.FeatureFlag{
		{
			Key:         FlagAdminMaintenance,
			Name:        "Mantenimiento del panel",
			Description: "Bloquea el panel de administración (salvo sysadmins) mostrando el mensaje.",
		},
		{
			Key:         FlagPortalMaintenance,
			Name:        "Mantenimiento del portal",
			Description: "Apaga la API pública devolviendo 503 con el mensaje.",
		},
		{
			Key:         FlagReviewsEnabled,
			Name:        "Reseñas habilitadas",
			Description: "Permite crear y editar reseñas desde el portal público.",
			Enabled:     true,
		},
	}
	return db.Create(&flags).Error
}

func initAdminUser() error {
	empty, err := isTableEmpty("users")
	if err != nil {
		log.Printf("Error checking if users table is empty: %v", err)
		return err
	}
	if !empty {
		return nil
	}

	var role model.Role
	if err := db.Where("slug = ?", RoleSysAdmin).First(&role).Error; err != nil {
		return err
	}
	hash, err := crypto.HashPasswordAsBcrypt(defaultAdminPassword)
	if err != nil {
		return err
	}
	user := &model.User{
		Email:        defaultAdminEmail,
		FirstName:    "System",
		LastName:     "Admin",
		PasswordHash: hash,
		IsActive:     true,
		RoleId:       role.Id,
	}
	return db.Create(user).Error
}

func isTableEmpty(tableName string) (bool, error) {
	var count int64
	err := db.Table(tableName).Count(&count).Error
	return count == 0, err
}

func InitDB(dbPath string) error {
	dir := path.Dir(dbPath)
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return err
	}

	var gormLogger logger.Interface

	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err = gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	_, err = sqlDB.Exec("PRAGMA cache_size = -64000;")
	if err != nil {
		return err
	}
	_, err = sqlDB.Exec("PRAGMA temp_store = MEMORY;")
	if err != nil {
		return err
	}
	_, err = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	if err := initRoles(); err != nil {
		return err
	}
	if err := initPermissions(); err != nil {
		return err
	}
	if err := initFlags(); err != nil {
		return err
	}
	if err := initAdminUser(); err != nil {
		return err
	}

	return nil
}

func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

func IsSQLiteDB(file io.ReaderAt) (bool, error) {
	signature := []byte("SQLite format 3\x00")
	buf := make([]byte, len(signature))
	_, err := file.ReadAt(buf, 0)
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, signature), nil
}

func Checkpoint() error {
	err := db.Exec("PRAGMA wal_checkpoint;").Error
	if err != nil {
		return err
	}
	return nil
}
