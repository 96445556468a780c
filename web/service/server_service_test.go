package service

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aguszappia/proyecto-de-software/config"
	"github.com/aguszappia/proyecto-de-software/database"

	"github.com/stretchr/testify/assert"
)

func TestServerStatusCounts(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	createTestSite(t, &siteService, "Palacio de Justicia", "La Plata", true)

	serverService := NewServerService()
	status := serverService.GetStatus()
	assert.Equal(t, int64(1), status.Counts.Sites)
	// The seeded sysadmin.
	assert.Equal(t, int64(1), status.Counts.Users)
	assert.Equal(t, int64(0), status.Counts.PendingReviews)
	assert.True(t, status.CpuCores > 0)
}

func TestDatabaseBackupAndImport(t *testing.T) {
	t.Setenv("SITIOS_DB_FOLDER", t.TempDir())
	dbPath := config.GetDBPath()
	assert.NoError(t, database.InitDB(dbPath))
	defer func() {
		db, _ := database.GetDB().DB()
		db.Close()
	}()

	serverService := NewServerService()

	// The download is the live sqlite file.
	dump, err := serverService.GetDb()
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(dump, []byte("SQLite format 3\x00")))

	// Files without the sqlite signature are refused before any swap.
	bogusPath := filepath.Join(t.TempDir(), "bogus.db")
	assert.NoError(t, os.WriteFile(bogusPath, []byte("definitivamente no es sqlite"), 0o644))
	bogus, err := os.Open(bogusPath)
	assert.NoError(t, err)
	defer bogus.Close()
	assert.Error(t, serverService.ImportDB(bogus))

	// A real dump imports cleanly and the connection comes back seeded.
	dumpPath := filepath.Join(t.TempDir(), "restore.db")
	assert.NoError(t, os.WriteFile(dumpPath, dump, 0o644))
	restore, err := os.Open(dumpPath)
	assert.NoError(t, err)
	defer restore.Close()
	assert.NoError(t, serverService.ImportDB(restore))

	userService := UserService{}
	admin, err := userService.GetUserByEmail("admin@example.com")
	assert.NoError(t, err)
	assert.Equal(t, database.RoleSysAdmin, admin.RoleSlug())
}
