// Package model defines the persisted entities of the sitios panel.
package model

import "time"

// ConservationStatus describes the physical state of a historic site.
type ConservationStatus string

const (
	ConservationGood    ConservationStatus = "Bueno"
	ConservationRegular ConservationStatus = "Regular"
	ConservationBad     ConservationStatus = "Malo"
)

// SiteCategory classifies a historic site.
type SiteCategory string

const (
	CategoryArchitecture   SiteCategory = "Arquitectura"
	CategoryInfrastructure SiteCategory = "Infraestructura"
	CategoryArchaeological SiteCategory = "Sitio arqueológico"
	CategoryOther          SiteCategory = "Otro"
)

// ReviewStatus is the moderation state of a site review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

type Role struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:50;not null"`
	Name      string    `json:"name" gorm:"size:120;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FirstName    string    `json:"first_name" gorm:"size:120;not null"`
	LastName     string    `json:"last_name" gorm:"size:120;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;size:255;not null"`
	TotpSecret   string    `json:"-" gorm:"size:64"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	RoleId       int       `json:"role_id" gorm:"not null"`
	Role         *Role     `json:"role,omitempty" gorm:"foreignKey:RoleId"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RoleSlug returns the role slug or the public default when the relation is
// not loaded.
func (u *User) RoleSlug() string {
	if u.Role != nil {
		return u.Role.Slug
	}
	return "public"
}

type Permission struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Code        string    `json:"code" gorm:"uniqueIndex;size:80;not null"`
	Module      string    `json:"module" gorm:"size:40;not null"`
	Action      string    `json:"action" gorm:"size:40;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RolePermission struct {
	Id           int         `json:"id" gorm:"primaryKey;autoIncrement"`
	RoleId       int         `json:"role_id" gorm:"uniqueIndex:uq_role_permissions;not null"`
	PermissionId int         `json:"permission_id" gorm:"uniqueIndex:uq_role_permissions;not null"`
	AssignedById *int        `json:"assigned_by_id"`
	AssignedAt   time.Time   `json:"assigned_at" gorm:"autoCreateTime"`
	Role         *Role       `json:"-" gorm:"foreignKey:RoleId"`
	Permission   *Permission `json:"-" gorm:"foreignKey:PermissionId"`
}

type FeatureFlag struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Key         string    `json:"key" gorm:"uniqueIndex;size:50;not null"`
	Name        string    `json:"name" gorm:"size:120;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Enabled     bool      `json:"enabled" gorm:"not null;default:false"`
	Message     string    `json:"message" gorm:"size:255;not null;default:''"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedById *int      `json:"updated_by_id"`
}

type HistoricSite struct {
	Id                 int                `json:"id" gorm:"primaryKey;autoIncrement"`
	Name               string             `json:"name" gorm:"uniqueIndex;size:255;not null"`
	ShortDescription   string             `json:"short_description" gorm:"size:255;not null"`
	FullDescription    string             `json:"full_description" gorm:"size:2000;not null"`
	City               string             `json:"city" gorm:"size:120;not null"`
	Province           string             `json:"province" gorm:"size:120;not null"`
	Latitude           float64            `json:"latitude" gorm:"not null"`
	Longitude          float64            `json:"longitude" gorm:"not null"`
	ConservationStatus ConservationStatus `json:"conservation_status" gorm:"size:20;not null"`
	InaugurationYear   *int               `json:"inauguration_year"`
	Category           SiteCategory       `json:"category" gorm:"size:40;not null"`
	IsVisible          bool               `json:"is_visible" gorm:"not null;default:false"`
	Visits             int64              `json:"visits" gorm:"not null;default:0"`
	Tags               []SiteTag          `json:"tags,omitempty" gorm:"many2many:site_tag_associations"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type SiteTag struct {
	Id        int            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string         `json:"name" gorm:"uniqueIndex;size:50;not null"`
	Slug      string         `json:"slug" gorm:"uniqueIndex;size:60;not null"`
	Sites     []HistoricSite `json:"-" gorm:"many2many:site_tag_associations"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type SiteImage struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	SiteId      int       `json:"site_id" gorm:"index;not null"`
	ObjectName  string    `json:"object_name" gorm:"size:255;not null"`
	URL         string    `json:"url" gorm:"size:500;not null"`
	Title       string    `json:"title" gorm:"size:120;not null"`
	Description string    `json:"description" gorm:"size:500"`
	OrderIndex  int       `json:"order_index" gorm:"not null"`
	IsCover     bool      `json:"is_cover" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

type SiteReview struct {
	Id              int          `json:"id" gorm:"primaryKey;autoIncrement"`
	SiteId          int          `json:"site_id" gorm:"index;not null"`
	UserId          int          `json:"user_id" gorm:"index;not null"`
	Rating          int          `json:"rating" gorm:"not null"`
	Comment         string       `json:"comment" gorm:"size:1000;not null"`
	Status          ReviewStatus `json:"status" gorm:"size:20;not null;default:'pending'"`
	RejectionReason string       `json:"rejection_reason" gorm:"size:200"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// SiteHistory rows are append-only; nothing updates or edits them.
type SiteHistory struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	SiteId     int       `json:"site_id" gorm:"index;not null"`
	UserId     *int      `json:"user_id"`
	ActionType string    `json:"action_type" gorm:"size:80;not null"`
	Details    string    `json:"details" gorm:"size:500"`
	CreatedAt  time.Time `json:"created_at"`
}

type SiteFavorite struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	SiteId    int       `json:"site_id" gorm:"uniqueIndex:uq_site_favorites;not null"`
	UserId    int       `json:"user_id" gorm:"uniqueIndex:uq_site_favorites;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// ConservationStatuses lists the accepted enum values in display order.
func ConservationStatuses() []ConservationStatus {
	return []ConservationStatus{ConservationGood, ConservationRegular, ConservationBad}
}

// SiteCategories lists the accepted enum values in display order.
func SiteCategories() []SiteCategory {
	return []SiteCategory{CategoryArchitecture, CategoryInfrastructure, CategoryArchaeological, CategoryOther}
}
