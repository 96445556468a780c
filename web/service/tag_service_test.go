package service

import (
	"strings"
	"testing"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Casa Curutchet", "casa-curutchet"},
		{"accents folded", "Estación de Trenes", "estacion-de-trenes"},
		{"underscores and dashes collapse", "teatro__argentino--sala", "teatro-argentino-sala"},
		{"symbols dropped", "Museo (anexo) #2", "museo-anexo-2"},
		{"enie folded", "año nuevo", "ano-nuevo"},
		{"empty falls back", "!!!", "tag"},
		{"surrounding dashes trimmed", "  -catedral-  ", "catedral"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.input); got != tc.expected {
				t.Errorf("Slugify(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestTagService(t *testing.T) {
	setup()
	defer teardown()

	tagService := TagService{}

	// Name length bounds.
	_, fieldErrors, err := tagService.CreateTag("ab")
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["name"])
	_, fieldErrors, err = tagService.CreateTag(strings.Repeat("a", 51))
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["name"])

	tag, fieldErrors, err := tagService.CreateTag("  Arquitectura   Colonial ")
	assert.NoError(t, err)
	assert.False(t, fieldErrors.Any())
	assert.Equal(t, "Arquitectura Colonial", tag.Name)
	assert.Equal(t, "arquitectura-colonial", tag.Slug)

	// Duplicate names are rejected case-insensitively.
	_, fieldErrors, err = tagService.CreateTag("arquitectura colonial")
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["name"])

	// A different name with the same slug gets a numeric suffix.
	suffixed, fieldErrors, err := tagService.CreateTag("Arquitectura, Colonial")
	assert.NoError(t, err)
	assert.False(t, fieldErrors.Any())
	assert.Equal(t, "arquitectura-colonial-2", suffixed.Slug)

	// Updating with the same name keeps the tag's own slug.
	updated, fieldErrors, err := tagService.UpdateTag(tag.Id, "Arquitectura Colonial")
	assert.NoError(t, err)
	assert.False(t, fieldErrors.Any())
	assert.Equal(t, "arquitectura-colonial", updated.Slug)

	// Tags linked to a site cannot be deleted.
	db := database.GetDB()
	site := &model.HistoricSite{
		Name:               "Casa de Gobierno",
		ShortDescription:   "Sede del gobierno provincial",
		City:               "La Plata",
		Province:           "Buenos Aires",
		ConservationStatus: model.ConservationGood,
		Category:           model.CategoryArchitecture,
		Tags:               []model.SiteTag{*tag},
	}
	assert.NoError(t, db.Create(site).Error)

	fieldErrors, err = tagService.DeleteTag(tag.Id)
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["delete"])
	_, err = tagService.GetTag(tag.Id)
	assert.NoError(t, err)

	// Unlinked tags go away.
	fieldErrors, err = tagService.DeleteTag(suffixed.Id)
	assert.NoError(t, err)
	assert.Nil(t, fieldErrors)
	_, err = tagService.GetTag(suffixed.Id)
	assert.Error(t, err)
}

func TestTagPagination(t *testing.T) {
	setup()
	defer teardown()

	tagService := TagService{}
	names := []string{"Iglesias", "Puentes", "Museos", "Plazas"}
	for _, name := range names {
		_, fieldErrors, err := tagService.CreateTag(name)
		assert.NoError(t, err)
		assert.False(t, fieldErrors.Any())
	}

	page, err := tagService.PaginateTags(TagFilter{})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, "Iglesias", page.Items[0].Name)

	page, err = tagService.PaginateTags(TagFilter{OrderBy: "name", OrderDir: "desc"})
	assert.NoError(t, err)
	assert.Equal(t, "Puentes", page.Items[0].Name)

	page, err = tagService.PaginateTags(TagFilter{Search: "useo"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Museos", page.Items[0].Name)

	page, err = tagService.PaginateTags(TagFilter{Page: 2, PerPage: 3})
	assert.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext())
}
