package service

import (
	"math"
	"strings"
	"time"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/util/json_util"

	"gorm.io/gorm"
)

const earthRadiusMeters = 6371000.0

// SitePayload carries validated fields for creating or updating a site.
// Pointer fields are skipped on update when nil.
type SitePayload struct {
	Name               *string
	ShortDescription   *string
	FullDescription    *string
	City               *string
	Province           *string
	Latitude           *float64
	Longitude          *float64
	ConservationStatus *model.ConservationStatus
	InaugurationYear   *int
	Category           *model.SiteCategory
	IsVisible          *bool
	TagIds             []int

	// PerformedBy is the acting user recorded in the audit trail.
	PerformedBy *int
}

// SiteFilter narrows the admin site search.
type SiteFilter struct {
	City               string
	Province           string
	TagIds             []int
	ConservationStatus model.ConservationStatus
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
	IsVisible          *bool
	Query              string
	SortBy             string // created_at | name | city
	SortDir            string // asc | desc
	Page               int
	PerPage            int
}

type SiteService struct {
	historyService HistoryService
}

// ParseConservationStatus matches a raw value against the enum, accepting the
// stored value or the constant name.
func ParseConservationStatus(raw string) (model.ConservationStatus, bool) {
	for _, option := range model.ConservationStatuses() {
		if raw == string(option) {
			return option, true
		}
	}
	switch strings.ToUpper(raw) {
	case "GOOD":
		return model.ConservationGood, true
	case "REGULAR":
		return model.ConservationRegular, true
	case "BAD":
		return model.ConservationBad, true
	}
	return "", false
}

// ParseSiteCategory matches a raw value against the category enum.
func ParseSiteCategory(raw string) (model.SiteCategory, bool) {
	for _, option := range model.SiteCategories() {
		if raw == string(option) {
			return option, true
		}
	}
	switch strings.ToUpper(raw) {
	case "ARCHITECTURE":
		return model.CategoryArchitecture, true
	case "INFRASTRUCTURE":
		return model.CategoryInfrastructure, true
	case "ARCHAEOLOGICAL":
		return model.CategoryArchaeological, true
	case "OTRO", "OTHER":
		return model.CategoryOther, true
	}
	return "", false
}

func (s *SiteService) ListSites() ([]model.HistoricSite, error) {
	db := database.GetDB()
	var sites []model.HistoricSite
	err := db.Preload("Tags").Find(&sites).Error
	return sites, err
}

func (s *SiteService) GetSite(id int) (*model.HistoricSite, error) {
	db := database.GetDB()
	site := &model.HistoricSite{}
	err := db.Preload("Tags").First(site, id).Error
	if err != nil {
		return nil, err
	}
	return site, nil
}

// CreateSite stores a new site with its tags and records the creation event.
func (s *SiteService) CreateSite(payload SitePayload) (*model.HistoricSite, error) {
	db := database.GetDB()

	site := &model.HistoricSite{}
	if payload.Name != nil {
		site.Name = *payload.Name
	}
	if payload.ShortDescription != nil {
		site.ShortDescription = *payload.ShortDescription
	}
	if payload.FullDescription != nil {
		site.FullDescription = *payload.FullDescription
	}
	if payload.City != nil {
		site.City = *payload.City
	}
	if payload.Province != nil {
		site.Province = *payload.Province
	}
	if payload.Latitude != nil {
		site.Latitude = *payload.Latitude
	}
	if payload.Longitude != nil {
		site.Longitude = *payload.Longitude
	}
	if payload.ConservationStatus != nil {
		site.ConservationStatus = *payload.ConservationStatus
	}
	site.InaugurationYear = payload.InaugurationYear
	if payload.Category != nil {
		site.Category = *payload.Category
	}
	if payload.IsVisible != nil {
		site.IsVisible = *payload.IsVisible
	}

	if len(payload.TagIds) > 0 {
		var tags []model.SiteTag
		if err := db.Where("id IN ?", payload.TagIds).Find(&tags).Error; err != nil {
			return nil, err
		}
		site.Tags = tags
	}

	if err := db.Create(site).Error; err != nil {
		return nil, err
	}
	s.historyService.RecordEvent(site.Id, payload.PerformedBy, HistoryCreated, "Sitio creado")
	return site, nil
}

// UpdateSite applies the provided fields, replaces tags when TagIds is
// non-nil, and records an edit event.
func (s *SiteService) UpdateSite(id int, payload SitePayload, actionType, details string) (*model.HistoricSite, error) {
	db := database.GetDB()
	site, err := s.GetSite(id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		site.Name = *payload.Name
	}
	if payload.ShortDescription != nil {
		site.ShortDescription = *payload.ShortDescription
	}
	if payload.FullDescription != nil {
		site.FullDescription = *payload.FullDescription
	}
	if payload.City != nil {
		site.City = *payload.City
	}
	if payload.Province != nil {
		site.Province = *payload.Province
	}
	if payload.Latitude != nil && payload.Longitude != nil {
		site.Latitude = *payload.Latitude
		site.Longitude = *payload.Longitude
	}
	if payload.ConservationStatus != nil {
		site.ConservationStatus = *payload.ConservationStatus
	}
	if payload.InaugurationYear != nil {
		site.InaugurationYear = payload.InaugurationYear
	}
	if payload.Category != nil {
		site.Category = *payload.Category
	}
	if payload.IsVisible != nil {
		site.IsVisible = *payload.IsVisible
	}

	if err := db.Save(site).Error; err != nil {
		return nil, err
	}

	if payload.TagIds != nil {
		var tags []model.SiteTag
		if len(payload.TagIds) > 0 {
			if err := db.Where("id IN ?", payload.TagIds).Find(&tags).Error; err != nil {
				return nil, err
			}
		}
		if err := db.Model(site).Association("Tags").Replace(tags); err != nil {
			return nil, err
		}
		site.Tags = tags
	}

	if actionType == "" {
		actionType = HistoryEdited
	}
	if details == "" {
		details = "Datos editados"
	}
	s.historyService.RecordEvent(site.Id, payload.PerformedBy, actionType, details)
	return site, nil
}

// DeleteSite removes the site, keeping a history event with the deletion
// metadata since the row itself goes away.
func (s *SiteService) DeleteSite(id int, performedBy *int) (bool, error) {
	db := database.GetDB()
	site, err := s.GetSite(id)
	if err != nil {
		if database.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	details, err := json_util.MarshalString(map[string]any{
		"message":             "Sitio \"" + site.Name + "\" eliminado",
		"name":                site.Name,
		"city":                site.City,
		"province":            site.Province,
		"category":            string(site.Category),
		"conservation_status": string(site.ConservationStatus),
		"deleted_at":          time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, err
	}
	s.historyService.RecordEvent(site.Id, performedBy, HistoryDeleted, details)

	if err := db.Model(site).Association("Tags").Clear(); err != nil {
		return false, err
	}
	if err := db.Delete(site).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *SiteService) applyFilters(query *gorm.DB, filter SiteFilter) *gorm.DB {
	for _, tagId := range filter.TagIds {
		query = query.Where(
			"EXISTS (SELECT 1 FROM site_tag_associations sta WHERE sta.historic_site_id = historic_sites.id AND sta.site_tag_id = ?)",
			tagId,
		)
	}
	if filter.City != "" {
		query = query.Where("city LIKE ?", "%"+filter.City+"%")
	}
	if filter.Province != "" {
		query = query.Where("province = ?", filter.Province)
	}
	if filter.ConservationStatus != "" {
		query = query.Where("conservation_status = ?", filter.ConservationStatus)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("historic_sites.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("historic_sites.created_at <= ?", *filter.CreatedTo)
	}
	if filter.IsVisible != nil {
		query = query.Where("is_visible = ?", *filter.IsVisible)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("name LIKE ? OR short_description LIKE ?", pattern, pattern)
	}
	return query
}

func sortClause(sortBy, sortDir string) string {
	switch sortBy {
	case "name", "city":
	default:
		sortBy = "created_at"
	}
	if sortDir != "asc" {
		sortDir = "desc"
	}
	return "historic_sites." + sortBy + " " + strings.ToUpper(sortDir)
}

// SearchSites filters, sorts and paginates the site listing.
func (s *SiteService) SearchSites(filter SiteFilter) (Page[model.HistoricSite], error) {
	db := database.GetDB()
	query := s.applyFilters(db.Model(&model.HistoricSite{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[model.HistoricSite]{}, err
	}

	page, perPage := clampPage(filter.Page, filter.PerPage, DefaultPerPage)
	var sites []model.HistoricSite
	err := query.Preload("Tags").
		Order(sortClause(filter.SortBy, filter.SortDir)).
		Limit(perPage).Offset(offsetFor(page, perPage)).
		Find(&sites).Error
	if err != nil {
		return Page[model.HistoricSite]{}, err
	}
	return Page[model.HistoricSite]{Items: sites, Total: total, Page: page, PerPage: perPage}, nil
}

// FetchSitesForExport returns every matching site without pagination, for the
// CSV export.
func (s *SiteService) FetchSitesForExport(filter SiteFilter) ([]model.HistoricSite, error) {
	db := database.GetDB()
	query := s.applyFilters(db.Model(&model.HistoricSite{}), filter)

	var sites []model.HistoricSite
	err := query.Preload("Tags").Order(sortClause(filter.SortBy, filter.SortDir)).Find(&sites).Error
	return sites, err
}

// haversineMeters computes the great-circle distance between two points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

// GetSitesByLocation returns the visible sites within radiusMeters of the
// center. sqlite has no geography type, so candidates are pre-filtered with
// a bounding box and the exact distance is checked in Go.
func (s *SiteService) GetSitesByLocation(lat, lon, radiusMeters float64) ([]model.HistoricSite, error) {
	db := database.GetDB()

	latDelta := radiusMeters / 111320.0
	lonScale := math.Cos(lat * math.Pi / 180)
	lonDelta := latDelta
	if lonScale > 0.01 {
		lonDelta = latDelta / lonScale
	}

	var candidates []model.HistoricSite
	err := db.Preload("Tags").
		Where("is_visible = ?", true).
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
		Where("longitude BETWEEN ? AND ?", lon-lonDelta, lon+lonDelta).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	sites := make([]model.HistoricSite, 0, len(candidates))
	for _, site := range candidates {
		if haversineMeters(lat, lon, site.Latitude, site.Longitude) <= radiusMeters {
			sites = append(sites, site)
		}
	}
	return sites, nil
}

// IncrementVisits bumps the public visit counter for a site.
func (s *SiteService) IncrementVisits(siteId int) error {
	db := database.GetDB()
	return db.Model(&model.HistoricSite{}).
		Where("id = ?", siteId).
		UpdateColumn("visits", gorm.Expr("visits + 1")).Error
}

// MarkFavorite adds the site to the user's favorites. It is idempotent and
// only visible sites can be favorited.
func (s *SiteService) MarkFavorite(siteId, userId int) (bool, error) {
	db := database.GetDB()
	site := &model.HistoricSite{}
	err := db.Select("id", "is_visible").First(site, siteId).Error
	if err != nil {
		if database.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if !site.IsVisible {
		return false, nil
	}

	var count int64
	err = db.Model(&model.SiteFavorite{}).
		Where("site_id = ? AND user_id = ?", siteId, userId).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	favorite := &model.SiteFavorite{SiteId: siteId, UserId: userId}
	if err := db.Create(favorite).Error; err != nil {
		return false, err
	}
	return true, nil
}

// UnmarkFavorite removes the favorite; removing a non-favorite succeeds.
func (s *SiteService) UnmarkFavorite(siteId, userId int) error {
	db := database.GetDB()
	return db.Where("site_id = ? AND user_id = ?", siteId, userId).
		Delete(&model.SiteFavorite{}).Error
}

func (s *SiteService) ListFavoriteSiteIds(userId int) ([]int, error) {
	db := database.GetDB()
	var ids []int
	err := db.Model(&model.SiteFavorite{}).
		Where("user_id = ?", userId).
		Pluck("site_id", &ids).Error
	return ids, err
}

func (s *SiteService) IsFavorite(siteId, userId int) (bool, error) {
	db := database.GetDB()
	var count int64
	err := db.Model(&model.SiteFavorite{}).
		Where("site_id = ? AND user_id = ?", siteId, userId).
		Count(&count).Error
	return count > 0, err
}

// TagNames flattens a site's tags for serialization.
func TagNames(site *model.HistoricSite) []string {
	names := make([]string, 0, len(site.Tags))
	for _, tag := range site.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// TagIds flattens a site's tag ids for the edit form.
func TagIds(site *model.HistoricSite) []int {
	ids := make([]int, 0, len(site.Tags))
	for _, tag := range site.Tags {
		ids = append(ids, tag.Id)
	}
	return ids
}
