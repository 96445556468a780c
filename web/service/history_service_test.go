package service

import (
	"testing"
	"time"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"

	"github.com/stretchr/testify/assert"
)

func TestHistoryService(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	historyService := HistoryService{}
	userService := UserService{}
	site := createTestSite(t, &siteService, "Anfiteatro del Lago", "La Plata", true)

	admin, err := userService.GetUserByEmail("admin@example.com")
	assert.NoError(t, err)

	historyService.RecordEvent(site.Id, &admin.Id, HistoryEdited, "Datos editados")
	historyService.RecordEvent(site.Id, nil, HistoryImagesChange, "Imagen agregada")

	// Everything, newest first, including the creation event.
	page, err := historyService.ListHistory(site.Id, HistoryFilter{})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	// Filter by action type.
	page, err = historyService.ListHistory(site.Id, HistoryFilter{ActionType: HistoryEdited})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Datos editados", page.Items[0].Details)
	assert.Equal(t, admin.Email, page.Items[0].UserEmail)

	// Filter by acting user email; unknown emails match nothing.
	page, err = historyService.ListHistory(site.Id, HistoryFilter{UserEmail: "admin@"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	page, err = historyService.ListHistory(site.Id, HistoryFilter{UserEmail: "nadie@"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Len(t, page.Items, 0)

	// Date range filters.
	future := time.Now().Add(time.Hour)
	page, err = historyService.ListHistory(site.Id, HistoryFilter{DateFrom: &future})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestHistoryRetention(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	historyService := HistoryService{}
	site := createTestSite(t, &siteService, "Estadio Único", "La Plata", true)

	assert.Error(t, historyService.CleanOldEvents(0))
	assert.Error(t, historyService.CleanOldEvents(-5))

	// Age one event past the retention window.
	db := database.GetDB()
	old := time.Now().AddDate(0, 0, -400)
	err := db.Model(&model.SiteHistory{}).
		Where("site_id = ?", site.Id).
		UpdateColumn("created_at", old).Error
	assert.NoError(t, err)
	historyService.RecordEvent(site.Id, nil, HistoryEdited, "Evento reciente")

	assert.NoError(t, historyService.CleanOldEvents(365))

	page, err := historyService.ListHistory(site.Id, HistoryFilter{})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Evento reciente", page.Items[0].Details)
}
