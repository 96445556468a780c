// Package entity defines data structures shared by the web layer of the panel
// and the public API.
package entity

import (
	"time"

	"github.com/aguszappia/proyecto-de-software/database/model"
)

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"` // Indicates if the operation was successful
	Msg     string `json:"msg"`     // Response message text
	Obj     any    `json:"obj"`     // Optional data object
}

// PageMeta describes a paginated listing.
type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// PagedList wraps a page of items together with its metadata.
type PagedList struct {
	Data []any    `json:"data"`
	Meta PageMeta `json:"meta"`
}

// SiteSummary is the public listing shape of a historic site.
type SiteSummary struct {
	Id                 int      `json:"id"`
	Name               string   `json:"name"`
	ShortDescription   string   `json:"short_description"`
	City               string   `json:"city"`
	Province           string   `json:"province"`
	Category           string   `json:"category"`
	ConservationStatus string   `json:"conservation_status"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	Tags               []string `json:"tags"`
	CoverURL           string   `json:"cover_url,omitempty"`
	Visits             int64    `json:"visits"`
}

// SiteDetail extends the summary with everything the detail endpoint exposes.
type SiteDetail struct {
	SiteSummary
	Description      string          `json:"description"`
	Address          string          `json:"address"`
	InaugurationYear *int            `json:"inauguration_year"`
	Images           []SiteImageView `json:"images"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// SiteImageView is the public shape of a site image.
type SiteImageView struct {
	Id          int    `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
	IsCover     bool   `json:"is_cover"`
}

// ReviewView is the public shape of an approved review.
type ReviewView struct {
	Id        int       `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is what /api/me returns for the authenticated user.
type Profile struct {
	Id          int      `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// NewSiteImageView maps a stored image to its public shape.
func NewSiteImageView(image model.SiteImage) SiteImageView {
	return SiteImageView{
		Id:          image.Id,
		URL:         image.URL,
		Title:       image.Title,
		Description: image.Description,
		OrderIndex:  image.OrderIndex,
		IsCover:     image.IsCover,
	}
}
