package models

import (
	"time"

	"gorm.io/gorm"
)

type BlogPost struct {
	gorm.Model
	AuthorID    uint       `gorm:"index;not null" json:"author_id"`
	Slug        string     `gorm:"uniqueIndex;size:160;not null" json:"slug"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Excerpt     string     `gorm:"size:400" json:"excerpt"`
	Body        string     `gorm:"type:text" json:"body"`
	CoverURL    string     `json:"cover_url"`
	IsPublished bool       `gorm:"default:false;index" json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Author      User       `json:"-"`
}
