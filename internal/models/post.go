package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Post represents a place listing owned by a user
type Post struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	UserID    uint        `json:"user_id" gorm:"index;not null"` // Owner of the listing
	Title     string      `json:"title" gorm:"size:100;not null"`
	Address   string      `json:"address" gorm:"size:200;not null"`
	City      string      `json:"city" gorm:"size:100;index"` // Derived from Address, never set directly
	Tags      []Tag       `json:"tags" gorm:"many2many:post_tags;"`
	Images    []PostImage `json:"images,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BeforeSave re-derives the city from the address on every save
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.City = CityFromAddress(p.Address)
	return nil
}

// CityFromAddress returns the first whitespace-delimited token of an address
func CityFromAddress(address string) string {
	fields := strings.Fields(address)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// PostImage is an image attached to a post. The blob itself lives in object storage.
type PostImage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PostID      uint      `json:"post_id" gorm:"index;not null"`
	ObjectKey   string    `json:"-" gorm:"size:255;not null"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type" gorm:"size:100"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostCard pairs a post with its representative image for listings.
// Thumbnail is nil when the post has no images.
type PostCard struct {
	Post      Post       `json:"post"`
	Thumbnail *PostImage `json:"thumbnail"`
}

// PostForm holds the submitted fields of the create and update forms
type PostForm struct {
	Title      string   `json:"title" form:"title" validate:"required,min=1,max=100"`
	Address    string   `json:"address" form:"address" validate:"required,min=2,max=200"`
	Tags       string   `json:"tags" form:"tags" validate:"max=500"`
	Facilities []string `json:"facilities" form:"facilities" validate:"omitempty,dive,facility"`
}

// Normalize trims surrounding whitespace so that blank input fails the required checks
func (f *PostForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Address = strings.TrimSpace(f.Address)
	f.Tags = strings.TrimSpace(f.Tags)
	for i, code := range f.Facilities {
		f.Facilities[i] = strings.TrimSpace(code)
	}
}

// TagNames splits the comma separated tag string, trimming each tag and
// dropping empty and repeated names while keeping first-seen order.
func (f PostForm) TagNames() []string {
	return ParseTags(f.Tags)
}

// ParseTags splits a comma separated tag string into unique trimmed names
func ParseTags(raw string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// DeleteSelection lists the image and facility ids an update should remove
type DeleteSelection struct {
	ImageIDs    []uint `json:"delete_images" form:"delete_images"`
	FacilityIDs []uint `json:"delete_facilities" form:"delete_facilities"`
}
