package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	minTagNameLength = 3
	maxTagNameLength = 50
	maxSlugLength    = 60
)

// TagFilter narrows the admin tag listing.
type TagFilter struct {
	Search   string
	OrderBy  string // name | created_at
	OrderDir string // asc | desc
	Page     int
	PerPage  int
}

type TagService struct{}

// CleanTagName trims and collapses whitespace in a raw tag name.
func CleanTagName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Slugify folds the name to lowercase ASCII, mapping whitespace, dashes and
// underscores to single dashes and dropping everything else. It never returns
// an empty slug.
func Slugify(text string) string {
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	lastWasDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastWasDash = false
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !lastWasDash {
				b.WriteByte('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "tag"
	}
	return slug
}

// validateTagPayload cleans the name, checks uniqueness and resolves a unique
// slug, suffixing -2, -3, … when the base slug is taken.
func (s *TagService) validateTagPayload(name string, existingId int) (string, string, FieldErrors) {
	db := database.GetDB()
	errors := FieldErrors{}

	cleanName := CleanTagName(name)
	if cleanName == "" {
		errors.add("name", "El nombre es obligatorio.")
	} else if length := len([]rune(cleanName)); length < minTagNameLength || length > maxTagNameLength {
		errors.add("name", fmt.Sprintf("El nombre debe tener entre %d y %d caracteres.", minTagNameLength, maxTagNameLength))
	}

	slug := Slugify(cleanName)
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}

	if !errors.Any() {
		query := db.Model(&model.SiteTag{}).Where("LOWER(name) = ?", strings.ToLower(cleanName))
		if existingId > 0 {
			query = query.Where("id <> ?", existingId)
		}
		var count int64
		if err := query.Count(&count).Error; err == nil && count > 0 {
			errors.add("name", "Ya existe una etiqueta con ese nombre.")
		}
	}

	if !errors.Any() {
		slug = s.uniqueSlug(slug, existingId)
	}

	return cleanName, slug, errors
}

func (s *TagService) uniqueSlug(base string, existingId int) string {
	db := database.GetDB()

	taken := func(candidate string) bool {
		query := db.Model(&model.SiteTag{}).Where("slug = ?", candidate)
		if existingId > 0 {
			query = query.Where("id <> ?", existingId)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	}

	if !taken(base) {
		return base
	}
	for counter := 2; ; counter++ {
		suffix := fmt.Sprintf("-%d", counter)
		candidate := base + suffix
		if len(candidate) > maxSlugLength {
			candidate = base[:maxSlugLength-len(suffix)] + suffix
		}
		if !taken(candidate) {
			return candidate
		}
	}
}

// ListTags returns every tag ordered by name, for selectors.
func (s *TagService) ListTags() ([]model.SiteTag, error) {
	db := database.GetDB()
	var tags []model.SiteTag
	err := db.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *TagService) PaginateTags(filter TagFilter) (Page[model.SiteTag], error) {
	db := database.GetDB()
	query := db.Model(&model.SiteTag{})

	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+strings.TrimSpace(filter.Search)+"%")
	}

	orderColumn := "name"
	if filter.OrderBy == "created_at" {
		orderColumn = "created_at"
	}
	orderDir := "ASC"
	if filter.OrderDir == "desc" {
		orderDir = "DESC"
	}
	query = query.Order(orderColumn + " " + orderDir)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[model.SiteTag]{}, err
	}

	page, perPage := clampPage(filter.Page, filter.PerPage, DefaultPerPage)
	var tags []model.SiteTag
	err := query.Limit(perPage).Offset(offsetFor(page, perPage)).Find(&tags).Error
	if err != nil {
		return Page[model.SiteTag]{}, err
	}
	return Page[model.SiteTag]{Items: tags, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *TagService) GetTag(id int) (*model.SiteTag, error) {
	db := database.GetDB()
	tag := &model.SiteTag{}
	err := db.First(tag, id).Error
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) CreateTag(name string) (*model.SiteTag, FieldErrors, error) {
	cleanName, slug, errors := s.validateTagPayload(name, 0)
	if errors.Any() {
		return nil, errors, nil
	}
	tag := &model.SiteTag{Name: cleanName, Slug: slug}
	if err := database.GetDB().Create(tag).Error; err != nil {
		return nil, nil, err
	}
	return tag, nil, nil
}

func (s *TagService) UpdateTag(id int, name string) (*model.SiteTag, FieldErrors, error) {
	tag, err := s.GetTag(id)
	if err != nil {
		return nil, nil, err
	}
	cleanName, slug, errors := s.validateTagPayload(name, id)
	if errors.Any() {
		return nil, errors, nil
	}
	tag.Name = cleanName
	tag.Slug = slug
	if err := database.GetDB().Save(tag).Error; err != nil {
		return nil, nil, err
	}
	return tag, nil, nil
}

// DeleteTag refuses to remove tags still referenced by sites.
func (s *TagService) DeleteTag(id int) (FieldErrors, error) {
	db := database.GetDB()
	tag, err := s.GetTag(id)
	if err != nil {
		return nil, err
	}

	var linked int64
	err = db.Table("site_tag_associations").Where("site_tag_id = ?", tag.Id).Count(&linked).Error
	if err != nil {
		return nil, err
	}
	if linked > 0 {
		errors := FieldErrors{}
		errors.add("delete", "No se puede eliminar una etiqueta con sitios asociados.")
		return errors, nil
	}

	return nil, db.Delete(tag).Error
}
