package service

import (
	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/util/common"

	"gorm.io/gorm"
)

// MaxImagesPerSite caps a site's gallery.
const MaxImagesPerSite = 10

// ImagePayload carries the fields for adding or editing a gallery image.
type ImagePayload struct {
	ObjectName  string
	URL         string
	Title       string
	Description string
	MakeCover   bool
	PerformedBy *int
}

type ImageService struct {
	historyService HistoryService
}

// ListImages returns a site's gallery in display order.
func (s *ImageService) ListImages(siteId int) ([]model.SiteImage, error) {
	db := database.GetDB()
	var images []model.SiteImage
	err := db.Where("site_id = ?", siteId).
		Order("order_index ASC, created_at ASC, id ASC").
		Find(&images).Error
	return images, err
}

func (s *ImageService) CountImages(siteId int) (int64, error) {
	db := database.GetDB()
	var count int64
	err := db.Model(&model.SiteImage{}).Where("site_id = ?", siteId).Count(&count).Error
	return count, err
}

func (s *ImageService) GetImage(id int) (*model.SiteImage, error) {
	db := database.GetDB()
	image := &model.SiteImage{}
	err := db.First(image, id).Error
	if err != nil {
		return nil, err
	}
	return image, nil
}

// GetCover returns the site's cover image, or nil when the gallery is empty.
func (s *ImageService) GetCover(siteId int) (*model.SiteImage, error) {
	db := database.GetDB()
	image := &model.SiteImage{}
	err := db.Where("site_id = ? AND is_cover = ?", siteId, true).First(image).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return image, nil
}

// CreateImage appends an image at the end of the gallery. The first image of
// a site, or an explicit MakeCover, becomes the single cover.
func (s *ImageService) CreateImage(siteId int, payload ImagePayload) (*model.SiteImage, error) {
	db := database.GetDB()

	total, err := s.CountImages(siteId)
	if err != nil {
		return nil, err
	}
	if total >= MaxImagesPerSite {
		return nil, common.NewErrorf("se alcanzó el máximo de %d imágenes permitidas para este sitio", MaxImagesPerSite)
	}

	var lastOrder int
	err = db.Model(&model.SiteImage{}).
		Where("site_id = ?", siteId).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&lastOrder).Error
	if err != nil {
		return nil, err
	}

	hasCover, err := s.hasCover(siteId)
	if err != nil {
		return nil, err
	}
	shouldBeCover := payload.MakeCover || !hasCover

	image := &model.SiteImage{
		SiteId:      siteId,
		ObjectName:  payload.ObjectName,
		URL:         payload.URL,
		Title:       payload.Title,
		Description: payload.Description,
		OrderIndex:  lastOrder + 1,
		IsCover:     shouldBeCover,
	}
	if err := db.Create(image).Error; err != nil {
		return nil, err
	}
	if shouldBeCover {
		if err := s.clearCoverFlags(siteId, image.Id); err != nil {
			return nil, err
		}
	}

	s.historyService.RecordEvent(siteId, payload.PerformedBy, HistoryImagesChange, "Imagen agregada: "+payload.ObjectName)
	return image, nil
}

// UpdateImage edits metadata and optionally swaps the stored object.
func (s *ImageService) UpdateImage(id int, payload ImagePayload) (*model.SiteImage, error) {
	db := database.GetDB()
	image, err := s.GetImage(id)
	if err != nil {
		return nil, err
	}

	image.Title = payload.Title
	image.Description = payload.Description
	if payload.ObjectName != "" && payload.URL != "" {
		image.ObjectName = payload.ObjectName
		image.URL = payload.URL
	}
	if err := db.Save(image).Error; err != nil {
		return nil, err
	}

	s.historyService.RecordEvent(image.SiteId, payload.PerformedBy, HistoryImagesChange, "Imagen editada")
	return image, nil
}

// MarkAsCover flags the image as the site's single cover.
func (s *ImageService) MarkAsCover(id int, performedBy *int) (*model.SiteImage, error) {
	db := database.GetDB()
	image, err := s.GetImage(id)
	if err != nil {
		return nil, err
	}
	if err := s.clearCoverFlags(image.SiteId, image.Id); err != nil {
		return nil, err
	}
	image.IsCover = true
	if err := db.Save(image).Error; err != nil {
		return nil, err
	}

	s.historyService.RecordEvent(image.SiteId, performedBy, HistoryImagesChange, "Portada actualizada")
	return image, nil
}

// DeleteImage removes an image and renumbers the rest. Deleting the cover is
// refused while other images remain.
func (s *ImageService) DeleteImage(id int, performedBy *int) error {
	db := database.GetDB()
	image, err := s.GetImage(id)
	if err != nil {
		return err
	}
	if image.IsCover {
		total, err := s.CountImages(image.SiteId)
		if err != nil {
			return err
		}
		if total > 1 {
			return common.NewError("no podés eliminar la portada; elegí otra portada antes")
		}
	}

	siteId := image.SiteId
	if err := db.Delete(image).Error; err != nil {
		return err
	}
	if err := s.resequenceOrders(siteId); err != nil {
		return err
	}

	s.historyService.RecordEvent(siteId, performedBy, HistoryImagesChange, "Imagen eliminada")
	return nil
}

// MoveImage shifts an image one position up or down, swapping order with its
// neighbor. Out-of-range moves are no-ops.
func (s *ImageService) MoveImage(id int, direction string, performedBy *int) (*model.SiteImage, error) {
	db := database.GetDB()
	image, err := s.GetImage(id)
	if err != nil {
		return nil, err
	}

	ordered, err := s.ListImages(image.SiteId)
	if err != nil {
		return nil, err
	}
	currentIdx := -1
	for i := range ordered {
		if ordered[i].Id == image.Id {
			currentIdx = i
			break
		}
	}
	if currentIdx < 0 {
		return nil, nil
	}

	var swapIdx int
	switch direction {
	case "up":
		if currentIdx == 0 {
			return nil, nil
		}
		swapIdx = currentIdx - 1
	case "down":
		if currentIdx == len(ordered)-1 {
			return nil, nil
		}
		swapIdx = currentIdx + 1
	default:
		return nil, nil
	}

	target := ordered[swapIdx]
	currentOrder := image.OrderIndex
	targetOrder := target.OrderIndex

	// Park the moving image out of range so the swap never collides.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.SiteImage{}).Where("id = ?", image.Id).
			Update("order_index", -1).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.SiteImage{}).Where("id = ?", target.Id).
			Update("order_index", currentOrder).Error; err != nil {
			return err
		}
		return tx.Model(&model.SiteImage{}).Where("id = ?", image.Id).
			Update("order_index", targetOrder).Error
	})
	if err != nil {
		return nil, err
	}
	image.OrderIndex = targetOrder

	s.historyService.RecordEvent(image.SiteId, performedBy, HistoryImagesChange, "Orden de imágenes actualizado")
	return image, nil
}

func (s *ImageService) hasCover(siteId int) (bool, error) {
	db := database.GetDB()
	var count int64
	err := db.Model(&model.SiteImage{}).
		Where("site_id = ? AND is_cover = ?", siteId, true).
		Count(&count).Error
	return count > 0, err
}

func (s *ImageService) clearCoverFlags(siteId, keepId int) error {
	db := database.GetDB()
	return db.Model(&model.SiteImage{}).
		Where("site_id = ? AND is_cover = ? AND id <> ?", siteId, true, keepId).
		Update("is_cover", false).Error
}

// resequenceOrders renumbers a site's gallery to a contiguous 1..n.
func (s *ImageService) resequenceOrders(siteId int) error {
	db := database.GetDB()
	ordered, err := s.ListImages(siteId)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for position, image := range ordered {
			if err := tx.Model(&model.SiteImage{}).Where("id = ?", image.Id).
				Update("order_index", -(position + 1)).Error; err != nil {
				return err
			}
		}
		for position, image := range ordered {
			if err := tx.Model(&model.SiteImage{}).Where("id = ?", image.Id).
				Update("order_index", position+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
