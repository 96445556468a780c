package service

import (
	"strings"
	"time"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/util/common"
	"gorm.io/gorm"
)

// MaxRejectionLength caps the moderation rejection reason.
const MaxRejectionLength = 200

// ReviewPresenter is a review joined with the data the moderation screens
// show next to it.
type ReviewPresenter struct {
	Review         model.SiteReview `json:"review"`
	SiteId         int              `json:"site_id"`
	SiteName       string           `json:"site_name"`
	UserEmail      string           `json:"user_email"`
	UserName       string           `json:"user_name"`
	SiteCoverURL   string           `json:"site_cover_url,omitempty"`
	SiteCoverTitle string           `json:"site_cover_title,omitempty"`
}

// UserDisplay prefers the author's name, falling back to the email.
func (p ReviewPresenter) UserDisplay() string {
	name := strings.TrimSpace(p.UserName)
	if name != "" {
		return name
	}
	if p.UserEmail != "" {
		return p.UserEmail
	}
	return "Usuario desconocido"
}

// ReviewFilter narrows the moderation listing.
type ReviewFilter struct {
	Status      model.ReviewStatus
	SiteId      int
	RatingMin   *int
	RatingMax   *int
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	UserQuery   string
	OrderBy     string // created_at | rating
	OrderDir    string // asc | desc
	Page        int
	PerPage     int
}

// ReviewStats is the public aggregate over approved reviews.
type ReviewStats struct {
	AverageRating *float64 `json:"average_rating"`
	TotalReviews  int64    `json:"total_reviews"`
}

type ReviewService struct{}

// reviewRow is the joined projection behind the moderation listing.
type reviewRow struct {
	model.SiteReview
	SiteName       string
	UserEmail      string
	UserFirstName  string
	UserLastName   string
	SiteCoverURL   string
	SiteCoverTitle string
}

func (s *ReviewService) baseQuery() *gorm.DB {
	db := database.GetDB()
	return db.Model(&model.SiteReview{}).
		Select("site_reviews.*, historic_sites.name AS site_name, " +
			"users.email AS user_email, users.first_name AS user_first_name, users.last_name AS user_last_name, " +
			"site_images.url AS site_cover_url, site_images.title AS site_cover_title").
		Joins("JOIN historic_sites ON historic_sites.id = site_reviews.site_id").
		Joins("LEFT JOIN site_images ON site_images.site_id = historic_sites.id AND site_images.is_cover = 1").
		Joins("LEFT JOIN users ON users.id = site_reviews.user_id")
}

// PaginateReviews lists reviews for moderation with filters and joins.
func (s *ReviewService) PaginateReviews(filter ReviewFilter) (Page[ReviewPresenter], error) {
	query := s.baseQuery()

	if filter.Status != "" {
		query = query.Where("site_reviews.status = ?", filter.Status)
	}
	if filter.SiteId > 0 {
		query = query.Where("site_reviews.site_id = ?", filter.SiteId)
	}
	if filter.RatingMin != nil {
		query = query.Where("site_reviews.rating >= ?", *filter.RatingMin)
	}
	if filter.RatingMax != nil {
		query = query.Where("site_reviews.rating <= ?", *filter.RatingMax)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("site_reviews.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("site_reviews.created_at <= ?", *filter.CreatedTo)
	}
	if filter.UserQuery != "" {
		like := "%" + strings.TrimSpace(filter.UserQuery) + "%"
		query = query.Where("users.email LIKE ? OR users.first_name LIKE ? OR users.last_name LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[ReviewPresenter]{}, err
	}

	orderColumn := "site_reviews.created_at"
	if filter.OrderBy == "rating" {
		orderColumn = "site_reviews.rating"
	}
	orderDir := "DESC"
	if filter.OrderDir == "asc" {
		orderDir = "ASC"
	}

	page, perPage := clampPage(filter.Page, filter.PerPage, DefaultPerPage)
	var rows []reviewRow
	err := query.Order(orderColumn + " " + orderDir).
		Limit(perPage).Offset(offsetFor(page, perPage)).
		Scan(&rows).Error
	if err != nil {
		return Page[ReviewPresenter]{}, err
	}

	presenters := make([]ReviewPresenter, 0, len(rows))
	for _, row := range rows {
		presenters = append(presenters, s.present(row))
	}
	return Page[ReviewPresenter]{Items: presenters, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *ReviewService) present(row reviewRow) ReviewPresenter {
	fullName := strings.TrimSpace(strings.TrimSpace(row.UserFirstName) + " " + strings.TrimSpace(row.UserLastName))
	return ReviewPresenter{
		Review:         row.SiteReview,
		SiteId:         row.SiteReview.SiteId,
		SiteName:       row.SiteName,
		UserEmail:      row.UserEmail,
		UserName:       fullName,
		SiteCoverURL:   row.SiteCoverURL,
		SiteCoverTitle: row.SiteCoverTitle,
	}
}

func (s *ReviewService) GetReview(id int) (*model.SiteReview, error) {
	db := database.GetDB()
	review := &model.SiteReview{}
	err := db.First(review, id).Error
	if err != nil {
		return nil, err
	}
	return review, nil
}

// GetReviewPresenter returns one review with its joined display data.
func (s *ReviewService) GetReviewPresenter(id int) (*ReviewPresenter, error) {
	var row reviewRow
	err := s.baseQuery().Where("site_reviews.id = ?", id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.SiteReview.Id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	presenter := s.present(row)
	return &presenter, nil
}

// ListPublicReviews returns the approved reviews of a site, newest first.
func (s *ReviewService) ListPublicReviews(siteId int) ([]ReviewPresenter, error) {
	var rows []reviewRow
	err := s.baseQuery().
		Where("site_reviews.site_id = ? AND site_reviews.status = ?", siteId, model.ReviewApproved).
		Order("site_reviews.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	presenters := make([]ReviewPresenter, 0, len(rows))
	for _, row := range rows {
		presenters = append(presenters, s.present(row))
	}
	return presenters, nil
}

// GetPublicStats aggregates only approved reviews.
func (s *ReviewService) GetPublicStats(siteId int) (ReviewStats, error) {
	db := database.GetDB()
	var result struct {
		Avg   *float64
		Total int64
	}
	err := db.Model(&model.SiteReview{}).
		Select("AVG(rating) AS avg, COUNT(id) AS total").
		Where("site_id = ? AND status = ?", siteId, model.ReviewApproved).
		Scan(&result).Error
	if err != nil {
		return ReviewStats{}, err
	}
	return ReviewStats{AverageRating: result.Avg, TotalReviews: result.Total}, nil
}

// FindReviewByUser returns the user's review for a site, nil when absent.
func (s *ReviewService) FindReviewByUser(siteId, userId int) (*model.SiteReview, error) {
	db := database.GetDB()
	review := &model.SiteReview{}
	err := db.Where("site_id = ? AND user_id = ?", siteId, userId).First(review).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return review, nil
}

// CreateReview stores a pending review from the public portal.
func (s *ReviewService) CreateReview(siteId, userId, rating int, comment string) (*model.SiteReview, error) {
	if rating < 1 || rating > 5 {
		return nil, common.NewError("la calificación debe estar entre 1 y 5")
	}
	db := database.GetDB()
	review := &model.SiteReview{
		SiteId:  siteId,
		UserId:  userId,
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
		Status:  model.ReviewPending,
	}
	if err := db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview edits the author's review and sends it back to moderation.
func (s *ReviewService) UpdateReview(id, rating int, comment string) (*model.SiteReview, error) {
	if rating < 1 || rating > 5 {
		return nil, common.NewError("la calificación debe estar entre 1 y 5")
	}
	db := database.GetDB()
	review, err := s.GetReview(id)
	if err != nil {
		return nil, err
	}
	review.Rating = rating
	review.Comment = strings.TrimSpace(comment)
	review.Status = model.ReviewPending
	review.RejectionReason = ""
	if err := db.Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// ApproveReview clears any previous rejection reason.
func (s *ReviewService) ApproveReview(id int) (*model.SiteReview, error) {
	db := database.GetDB()
	review, err := s.GetReview(id)
	if err != nil {
		return nil, err
	}
	review.Status = model.ReviewApproved
	review.RejectionReason = ""
	if err := db.Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// RejectReview requires a non-empty reason within MaxRejectionLength.
func (s *ReviewService) RejectReview(id int, reason string) (*model.SiteReview, FieldErrors, error) {
	cleanReason := strings.TrimSpace(reason)
	errors := FieldErrors{}
	if cleanReason == "" {
		errors.add("reason", "El motivo de rechazo es obligatorio.")
	} else if len([]rune(cleanReason)) > MaxRejectionLength {
		errors.add("reason", "El motivo no puede superar los 200 caracteres.")
	}
	if errors.Any() {
		return nil, errors, nil
	}

	db := database.GetDB()
	review, err := s.GetReview(id)
	if err != nil {
		return nil, nil, err
	}
	review.Status = model.ReviewRejected
	review.RejectionReason = cleanReason
	if err := db.Save(review).Error; err != nil {
		return nil, nil, err
	}
	return review, nil, nil
}

func (s *ReviewService) DeleteReview(id int) error {
	return database.GetDB().Delete(&model.SiteReview{}, id).Error
}

// ListReviewsForUser returns the user's reviews on visible sites.
func (s *ReviewService) ListReviewsForUser(userId int) ([]ReviewPresenter, error) {
	var rows []reviewRow
	err := s.baseQuery().
		Where("site_reviews.user_id = ? AND historic_sites.is_visible = 1", userId).
		Order("site_reviews.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	presenters := make([]ReviewPresenter, 0, len(rows))
	for _, row := range rows {
		presenters = append(presenters, s.present(row))
	}
	return presenters, nil
}
