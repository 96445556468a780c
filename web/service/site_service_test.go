package service

import (
	"testing"
	"time"

	"github.com/aguszappia/proyecto-de-software/database/model"

	"github.com/stretchr/testify/assert"
)

func strPtr(v string) *string     { return &v }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func statusPtr(v model.ConservationStatus) *model.ConservationStatus { return &v }
func categoryPtr(v model.SiteCategory) *model.SiteCategory           { return &v }

func createTestSite(t *testing.T, siteService *SiteService, name, city string, visible bool) *model.HistoricSite {
	t.Helper()
	site, err := siteService.CreateSite(SitePayload{
		Name:               strPtr(name),
		ShortDescription:   strPtr("Descripción corta de " + name),
		FullDescription:    strPtr("Descripción completa de " + name),
		City:               strPtr(city),
		Province:           strPtr("Buenos Aires"),
		Latitude:           floatPtr(-34.9214),
		Longitude:          floatPtr(-57.9544),
		ConservationStatus: statusPtr(model.ConservationGood),
		Category:           categoryPtr(model.CategoryArchitecture),
		IsVisible:          boolPtr(visible),
	})
	assert.NoError(t, err)
	return site
}

func TestSiteService(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	historyService := HistoryService{}
	tagService := TagService{}

	tag, _, err := tagService.CreateTag("Patrimonio")
	assert.NoError(t, err)

	actor := 1
	site, err := siteService.CreateSite(SitePayload{
		Name:               strPtr("Catedral de La Plata"),
		ShortDescription:   strPtr("Catedral neogótica"),
		FullDescription:    strPtr("La catedral más grande de la Argentina"),
		City:               strPtr("La Plata"),
		Province:           strPtr("Buenos Aires"),
		Latitude:           floatPtr(-34.9225),
		Longitude:          floatPtr(-57.9562),
		ConservationStatus: statusPtr(model.ConservationGood),
		InaugurationYear:   intPtr(1932),
		Category:           categoryPtr(model.CategoryArchitecture),
		IsVisible:          boolPtr(true),
		TagIds:             []int{tag.Id},
		PerformedBy:        &actor,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Catedral de La Plata", site.Name)
	assert.Len(t, site.Tags, 1)

	// Creation leaves an audit trail.
	events, err := historyService.ListHistory(site.Id, HistoryFilter{})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), events.Total)
	assert.Equal(t, HistoryCreated, events.Items[0].ActionType)

	// Visibility change recorded as a status change.
	updated, err := siteService.UpdateSite(site.Id, SitePayload{
		IsVisible:   boolPtr(false),
		PerformedBy: &actor,
	}, HistoryStatusChange, "Sitio ocultado")
	assert.NoError(t, err)
	assert.False(t, updated.IsVisible)
	events, err = historyService.ListHistory(site.Id, HistoryFilter{ActionType: HistoryStatusChange})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), events.Total)

	// TagIds nil leaves tags alone; an empty non-nil slice clears them.
	updated, err = siteService.UpdateSite(site.Id, SitePayload{Name: strPtr("Catedral")}, "", "")
	assert.NoError(t, err)
	assert.Len(t, updated.Tags, 1)
	updated, err = siteService.UpdateSite(site.Id, SitePayload{TagIds: []int{}}, HistoryTagsChange, "Tags quitados")
	assert.NoError(t, err)
	assert.Len(t, updated.Tags, 0)

	// Deleting returns whether anything was removed.
	deleted, err := siteService.DeleteSite(site.Id, &actor)
	assert.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = siteService.DeleteSite(site.Id, &actor)
	assert.NoError(t, err)
	assert.False(t, deleted)

	// The deletion event survives the row.
	events, err = historyService.ListHistory(site.Id, HistoryFilter{ActionType: HistoryDeleted})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), events.Total)
}

func TestSiteSearch(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	createTestSite(t, &siteService, "Teatro Argentino", "La Plata", true)
	createTestSite(t, &siteService, "Palacio Municipal", "La Plata", false)
	createTestSite(t, &siteService, "Cabildo", "Buenos Aires", true)

	// An unset page size serves the default, not a single row.
	page, err := siteService.SearchSites(SiteFilter{Page: 1, PerPage: 0})
	assert.NoError(t, err)
	assert.Equal(t, DefaultPerPage, page.PerPage)
	assert.Len(t, page.Items, 3)

	page, err = siteService.SearchSites(SiteFilter{City: "Plata"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	visible := true
	page, err = siteService.SearchSites(SiteFilter{IsVisible: &visible})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = siteService.SearchSites(SiteFilter{Query: "Teatro"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Teatro Argentino", page.Items[0].Name)

	page, err = siteService.SearchSites(SiteFilter{SortBy: "name", SortDir: "asc"})
	assert.NoError(t, err)
	assert.Equal(t, "Cabildo", page.Items[0].Name)

	future := time.Now().Add(time.Hour)
	page, err = siteService.SearchSites(SiteFilter{CreatedFrom: &future})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)

	sites, err := siteService.FetchSitesForExport(SiteFilter{City: "Plata"})
	assert.NoError(t, err)
	assert.Len(t, sites, 2)
}

func TestSitesByLocation(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	near, err := siteService.CreateSite(SitePayload{
		Name:               strPtr("Museo de La Plata"),
		ShortDescription:   strPtr("Museo de ciencias naturales"),
		City:               strPtr("La Plata"),
		Province:           strPtr("Buenos Aires"),
		Latitude:           floatPtr(-34.9097),
		Longitude:          floatPtr(-57.9386),
		ConservationStatus: statusPtr(model.ConservationGood),
		Category:           categoryPtr(model.CategoryOther),
		IsVisible:          boolPtr(true),
	})
	assert.NoError(t, err)
	_, err = siteService.CreateSite(SitePayload{
		Name:               strPtr("Obelisco"),
		ShortDescription:   strPtr("Monumento porteño"),
		City:               strPtr("Buenos Aires"),
		Province:           strPtr("Buenos Aires"),
		Latitude:           floatPtr(-34.6037),
		Longitude:          floatPtr(-58.3816),
		ConservationStatus: statusPtr(model.ConservationGood),
		Category:           categoryPtr(model.CategoryOther),
		IsVisible:          boolPtr(true),
	})
	assert.NoError(t, err)

	// A hidden site at the query center never shows up.
	hidden, err := siteService.CreateSite(SitePayload{
		Name:               strPtr("Depósito ferroviario"),
		ShortDescription:   strPtr("Galpón sin restaurar"),
		City:               strPtr("La Plata"),
		Province:           strPtr("Buenos Aires"),
		Latitude:           floatPtr(-34.9214),
		Longitude:          floatPtr(-57.9544),
		ConservationStatus: statusPtr(model.ConservationBad),
		Category:           categoryPtr(model.CategoryInfrastructure),
		IsVisible:          boolPtr(false),
	})
	assert.NoError(t, err)

	// 5 km around the center of La Plata only reaches the museum.
	sites, err := siteService.GetSitesByLocation(-34.9214, -57.9544, 5000)
	assert.NoError(t, err)
	assert.Len(t, sites, 1)
	assert.Equal(t, near.Id, sites[0].Id)
	for _, site := range sites {
		assert.NotEqual(t, hidden.Id, site.Id)
	}

	// A 100 km radius covers both cities.
	sites, err = siteService.GetSitesByLocation(-34.9214, -57.9544, 100000)
	assert.NoError(t, err)
	assert.Len(t, sites, 2)
}

func TestFavorites(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	visible := createTestSite(t, &siteService, "Pasaje Dardo Rocha", "La Plata", true)
	hidden := createTestSite(t, &siteService, "Depósito Municipal", "La Plata", false)
	userId := 1

	ok, err := siteService.MarkFavorite(visible.Id, userId)
	assert.NoError(t, err)
	assert.True(t, ok)

	// Marking twice stays idempotent.
	ok, err = siteService.MarkFavorite(visible.Id, userId)
	assert.NoError(t, err)
	assert.True(t, ok)
	ids, err := siteService.ListFavoriteSiteIds(userId)
	assert.NoError(t, err)
	assert.Equal(t, []int{visible.Id}, ids)

	// Hidden and missing sites cannot be favorited.
	ok, err = siteService.MarkFavorite(hidden.Id, userId)
	assert.NoError(t, err)
	assert.False(t, ok)
	ok, err = siteService.MarkFavorite(99999, userId)
	assert.NoError(t, err)
	assert.False(t, ok)

	isFav, err := siteService.IsFavorite(visible.Id, userId)
	assert.NoError(t, err)
	assert.True(t, isFav)

	assert.NoError(t, siteService.UnmarkFavorite(visible.Id, userId))
	// Removing again is a no-op.
	assert.NoError(t, siteService.UnmarkFavorite(visible.Id, userId))
	isFav, err = siteService.IsFavorite(visible.Id, userId)
	assert.NoError(t, err)
	assert.False(t, isFav)
}

func TestIncrementVisits(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	site := createTestSite(t, &siteService, "Estación Provincial", "La Plata", true)

	assert.NoError(t, siteService.IncrementVisits(site.Id))
	assert.NoError(t, siteService.IncrementVisits(site.Id))

	reloaded, err := siteService.GetSite(site.Id)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), reloaded.Visits)
}

func TestParseEnums(t *testing.T) {
	status, ok := ParseConservationStatus("Bueno")
	if !ok || status != model.ConservationGood {
		t.Errorf("ParseConservationStatus(Bueno) = %v, %v", status, ok)
	}
	status, ok = ParseConservationStatus("REGULAR")
	if !ok || status != model.ConservationRegular {
		t.Errorf("ParseConservationStatus(REGULAR) = %v, %v", status, ok)
	}
	if _, ok := ParseConservationStatus("pésimo"); ok {
		t.Error("ParseConservationStatus accepted an unknown value")
	}

	category, ok := ParseSiteCategory("Sitio arqueológico")
	if !ok || category != model.CategoryArchaeological {
		t.Errorf("ParseSiteCategory(Sitio arqueológico) = %v, %v", category, ok)
	}
	category, ok = ParseSiteCategory("other")
	if !ok || category != model.CategoryOther {
		t.Errorf("ParseSiteCategory(other) = %v, %v", category, ok)
	}
	if _, ok := ParseSiteCategory("castillo"); ok {
		t.Error("ParseSiteCategory accepted an unknown value")
	}
}
