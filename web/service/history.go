package service

import (
	"time"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/logger"
	"github.com/aguszappia/proyecto-de-software/util/common"
)

// Action types recorded against historic sites.
const (
	HistoryCreated      = "Creación"
	HistoryEdited       = "Edición"
	HistoryDeleted      = "Eliminación"
	HistoryStatusChange = "Cambio de estado"
	HistoryTagsChange   = "Cambio de tags"
	HistoryImagesChange = "Cambio de imágenes"
)

// HistoryEvent is a SiteHistory row joined with the acting user's email.
type HistoryEvent struct {
	model.SiteHistory
	UserEmail string `json:"user_email,omitempty"`
}

// HistoryFilter narrows the per-site audit listing.
type HistoryFilter struct {
	UserEmail  string
	ActionType string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PerPage    int
}

type HistoryService struct{}

// RecordEvent appends an audit row. History failures are logged but never
// abort the mutation that triggered them.
func (s *HistoryService) RecordEvent(siteId int, userId *int, actionType, details string) {
	db := database.GetDB()
	event := &model.SiteHistory{
		SiteId:     siteId,
		UserId:     userId,
		ActionType: actionType,
		Details:    details,
	}
	if err := db.Create(event).Error; err != nil {
		logger.Warningf("failed to record site history: site=%d action=%s err=%v", siteId, actionType, err)
	}
}

// ListHistory returns a site's events newest first with optional filters.
func (s *HistoryService) ListHistory(siteId int, filter HistoryFilter) (Page[HistoryEvent], error) {
	db := database.GetDB()
	query := db.Model(&model.SiteHistory{}).Where("site_id = ?", siteId)

	if filter.UserEmail != "" {
		var userIds []int
		err := db.Model(&model.User{}).
			Where("email LIKE ?", "%"+filter.UserEmail+"%").
			Pluck("id", &userIds).Error
		if err != nil {
			return Page[HistoryEvent]{}, err
		}
		if len(userIds) == 0 {
			page, perPage := clampPage(filter.Page, filter.PerPage, DefaultPerPage)
			return Page[HistoryEvent]{Items: []HistoryEvent{}, Page: page, PerPage: perPage}, nil
		}
		query = query.Where("user_id IN ?", userIds)
	}
	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[HistoryEvent]{}, err
	}

	page, perPage := clampPage(filter.Page, filter.PerPage, DefaultPerPage)
	var rows []model.SiteHistory
	err := query.Order("created_at DESC").
		Limit(perPage).Offset(offsetFor(page, perPage)).
		Find(&rows).Error
	if err != nil {
		return Page[HistoryEvent]{}, err
	}

	events := make([]HistoryEvent, 0, len(rows))
	for _, row := range rows {
		event := HistoryEvent{SiteHistory: row}
		if row.UserId != nil {
			user := &model.User{}
			if err := db.Select("email").First(user, *row.UserId).Error; err == nil {
				event.UserEmail = user.Email
			}
		}
		events = append(events, event)
	}
	return Page[HistoryEvent]{Items: events, Total: total, Page: page, PerPage: perPage}, nil
}

// CleanOldEvents drops events older than the retention window.
func (s *HistoryService) CleanOldEvents(days int) error {
	if days <= 0 {
		return common.NewError("days must be greater than 0")
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	return database.GetDB().
		Where("created_at < ?", cutoff).
		Delete(&model.SiteHistory{}).Error
}
