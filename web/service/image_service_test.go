package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageService(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	imageService := ImageService{}
	site := createTestSite(t, &siteService, "Palacio Campodónico", "La Plata", true)

	// The first image becomes the cover on its own.
	first, err := imageService.CreateImage(site.Id, ImagePayload{
		ObjectName: "sites/1/frente.jpg",
		URL:        "http://minio.local/sitios/sites/1/frente.jpg",
		Title:      "Frente",
	})
	assert.NoError(t, err)
	assert.True(t, first.IsCover)
	assert.Equal(t, 1, first.OrderIndex)

	second, err := imageService.CreateImage(site.Id, ImagePayload{
		ObjectName: "sites/1/patio.jpg",
		URL:        "http://minio.local/sitios/sites/1/patio.jpg",
		Title:      "Patio",
	})
	assert.NoError(t, err)
	assert.False(t, second.IsCover)
	assert.Equal(t, 2, second.OrderIndex)

	// MakeCover moves the single cover flag.
	third, err := imageService.CreateImage(site.Id, ImagePayload{
		ObjectName: "sites/1/cupula.jpg",
		URL:        "http://minio.local/sitios/sites/1/cupula.jpg",
		Title:      "Cúpula",
		MakeCover:  true,
	})
	assert.NoError(t, err)
	assert.True(t, third.IsCover)
	cover, err := imageService.GetCover(site.Id)
	assert.NoError(t, err)
	assert.Equal(t, third.Id, cover.Id)
	reloaded, err := imageService.GetImage(first.Id)
	assert.NoError(t, err)
	assert.False(t, reloaded.IsCover)

	// Deleting the cover is refused while other images remain.
	err = imageService.DeleteImage(third.Id, nil)
	assert.Error(t, err)

	// MarkAsCover then delete a regular image; orders stay contiguous.
	_, err = imageService.MarkAsCover(first.Id, nil)
	assert.NoError(t, err)
	assert.NoError(t, imageService.DeleteImage(second.Id, nil))
	images, err := imageService.ListImages(site.Id)
	assert.NoError(t, err)
	assert.Len(t, images, 2)
	assert.Equal(t, 1, images[0].OrderIndex)
	assert.Equal(t, 2, images[1].OrderIndex)

	// Moving swaps with the neighbor; moving past the edge is a no-op.
	moved, err := imageService.MoveImage(images[1].Id, "up", nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, moved.OrderIndex)
	images, err = imageService.ListImages(site.Id)
	assert.NoError(t, err)
	assert.Equal(t, moved.Id, images[0].Id)

	noop, err := imageService.MoveImage(images[0].Id, "up", nil)
	assert.NoError(t, err)
	assert.Nil(t, noop)
	noop, err = imageService.MoveImage(images[1].Id, "down", nil)
	assert.NoError(t, err)
	assert.Nil(t, noop)

	// A site with a single image can drop its cover.
	cover, err = imageService.GetCover(site.Id)
	assert.NoError(t, err)
	other := images[0]
	if other.Id == cover.Id {
		other = images[1]
	}
	assert.NoError(t, imageService.DeleteImage(other.Id, nil))
	assert.NoError(t, imageService.DeleteImage(cover.Id, nil))
	count, err := imageService.CountImages(site.Id)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// The empty gallery has no cover.
	cover, err = imageService.GetCover(site.Id)
	assert.NoError(t, err)
	assert.Nil(t, cover)
}

func TestImageLimit(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	imageService := ImageService{}
	site := createTestSite(t, &siteService, "Meridiano V", "La Plata", true)

	for i := 0; i < MaxImagesPerSite; i++ {
		_, err := imageService.CreateImage(site.Id, ImagePayload{
			ObjectName: fmt.Sprintf("sites/%d/foto-%d.jpg", site.Id, i),
			URL:        fmt.Sprintf("http://minio.local/sitios/sites/%d/foto-%d.jpg", site.Id, i),
			Title:      fmt.Sprintf("Foto %d", i),
		})
		assert.NoError(t, err)
	}

	_, err := imageService.CreateImage(site.Id, ImagePayload{
		ObjectName: "sites/extra.jpg",
		URL:        "http://minio.local/sitios/sites/extra.jpg",
		Title:      "Extra",
	})
	assert.Error(t, err)
}
