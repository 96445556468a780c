package service

import (
	"strings"
	"testing"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"

	"github.com/stretchr/testify/assert"
)

func createTestReviewer(t *testing.T, email string) *model.User {
	t.Helper()
	userService := UserService{}
	user, fieldErrors, err := userService.CreateUser(UserPayload{
		Email:     email,
		FirstName: "Vera",
		LastName:  "Pérez",
		Password:  "supersecreta",
		Role:      database.RolePublic,
	}, nil)
	assert.NoError(t, err)
	assert.False(t, fieldErrors.Any())
	return user
}

func TestReviewModeration(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	reviewService := ReviewService{}
	site := createTestSite(t, &siteService, "Casa Curutchet", "La Plata", true)
	user := createTestReviewer(t, "vera@example.com")

	// Ratings outside 1..5 are rejected.
	_, err := reviewService.CreateReview(site.Id, user.Id, 0, "malísimo")
	assert.Error(t, err)
	_, err = reviewService.CreateReview(site.Id, user.Id, 6, "buenísimo")
	assert.Error(t, err)

	review, err := reviewService.CreateReview(site.Id, user.Id, 4, "  Muy linda visita  ")
	assert.NoError(t, err)
	assert.Equal(t, model.ReviewPending, review.Status)
	assert.Equal(t, "Muy linda visita", review.Comment)

	// Rejection needs a reason within bounds.
	_, fieldErrors, err := reviewService.RejectReview(review.Id, "   ")
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["reason"])
	_, fieldErrors, err = reviewService.RejectReview(review.Id, strings.Repeat("x", MaxRejectionLength+1))
	assert.NoError(t, err)
	assert.NotEmpty(t, fieldErrors["reason"])

	rejected, fieldErrors, err := reviewService.RejectReview(review.Id, "Lenguaje inapropiado")
	assert.NoError(t, err)
	assert.False(t, fieldErrors.Any())
	assert.Equal(t, model.ReviewRejected, rejected.Status)
	assert.Equal(t, "Lenguaje inapropiado", rejected.RejectionReason)

	// Editing sends the review back to moderation and clears the reason.
	edited, err := reviewService.UpdateReview(review.Id, 5, "Le doy otra oportunidad")
	assert.NoError(t, err)
	assert.Equal(t, model.ReviewPending, edited.Status)
	assert.Empty(t, edited.RejectionReason)

	approved, err := reviewService.ApproveReview(review.Id)
	assert.NoError(t, err)
	assert.Equal(t, model.ReviewApproved, approved.Status)
	assert.Empty(t, approved.RejectionReason)

	// The joined presenter carries site and author data.
	presenter, err := reviewService.GetReviewPresenter(review.Id)
	assert.NoError(t, err)
	assert.Equal(t, "Casa Curutchet", presenter.SiteName)
	assert.Equal(t, "vera@example.com", presenter.UserEmail)
	assert.Equal(t, "Vera Pérez", presenter.UserDisplay())

	_, err = reviewService.GetReviewPresenter(99999)
	assert.Error(t, err)

	assert.NoError(t, reviewService.DeleteReview(review.Id))
	_, err = reviewService.GetReview(review.Id)
	assert.Error(t, err)
}

func TestReviewListingAndStats(t *testing.T) {
	setup()
	defer teardown()

	siteService := SiteService{}
	reviewService := ReviewService{}
	site := createTestSite(t, &siteService, "Teatro Coliseo Podestá", "La Plata", true)
	first := createTestReviewer(t, "uno@example.com")
	second := createTestReviewer(t, "dos@example.com")

	r1, err := reviewService.CreateReview(site.Id, first.Id, 5, "Excelente")
	assert.NoError(t, err)
	r2, err := reviewService.CreateReview(site.Id, second.Id, 3, "Regular")
	assert.NoError(t, err)

	// Pending reviews stay out of the public listing and stats.
	public, err := reviewService.ListPublicReviews(site.Id)
	assert.NoError(t, err)
	assert.Len(t, public, 0)
	stats, err := reviewService.GetPublicStats(site.Id)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalReviews)
	assert.Nil(t, stats.AverageRating)

	_, err = reviewService.ApproveReview(r1.Id)
	assert.NoError(t, err)
	_, err = reviewService.ApproveReview(r2.Id)
	assert.NoError(t, err)

	public, err = reviewService.ListPublicReviews(site.Id)
	assert.NoError(t, err)
	assert.Len(t, public, 2)
	stats, err = reviewService.GetPublicStats(site.Id)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalReviews)
	assert.NotNil(t, stats.AverageRating)
	assert.InDelta(t, 4.0, *stats.AverageRating, 0.001)

	// Moderation filters.
	page, err := reviewService.PaginateReviews(ReviewFilter{Status: model.ReviewApproved})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	min := 4
	page, err = reviewService.PaginateReviews(ReviewFilter{RatingMin: &min})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.Items[0].Review.Rating)

	page, err = reviewService.PaginateReviews(ReviewFilter{UserQuery: "dos@"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "dos@example.com", page.Items[0].UserEmail)

	page, err = reviewService.PaginateReviews(ReviewFilter{OrderBy: "rating", OrderDir: "asc"})
	assert.NoError(t, err)
	assert.Equal(t, 3, page.Items[0].Review.Rating)

	// One review per user per site is the caller's contract; lookup helper.
	existing, err := reviewService.FindReviewByUser(site.Id, first.Id)
	assert.NoError(t, err)
	assert.NotNil(t, existing)
	assert.Equal(t, r1.Id, existing.Id)
	missing, err := reviewService.FindReviewByUser(site.Id, 99999)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	// A hidden site drops out of the user's own listing.
	mine, err := reviewService.ListReviewsForUser(first.Id)
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
	hidden := false
	_, err = siteService.UpdateSite(site.Id, SitePayload{IsVisible: &hidden}, HistoryStatusChange, "Sitio ocultado")
	assert.NoError(t, err)
	mine, err = reviewService.ListReviewsForUser(first.Id)
	assert.NoError(t, err)
	assert.Len(t, mine, 0)
}
