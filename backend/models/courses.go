package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Slug        string    `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	ShortDesc   string    `gorm:"size:300" json:"short_desc"`
	Description string    `gorm:"type:text" json:"description"`
	Level       string    `gorm:"size:16" json:"level"` // beginner, intermediate, advanced
	IsPro       bool      `gorm:"default:false" json:"is_pro"`
	AuthorID    uint      `gorm:"index" json:"author_id"`
	LogoURL     string    `json:"logo_url"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsPublished bool      `gorm:"default:false;index" json:"is_published"`
	Chapters    []Chapter `json:"chapters,omitempty"`
}

type Chapter struct {
	gorm.Model
	CourseID    uint     `gorm:"index;not null" json:"course_id"`
	Title       string   `gorm:"size:200;not null" json:"title"`
	SortOrder   int      `gorm:"default:0" json:"sort_order"`
	IsPublished bool     `gorm:"default:false" json:"is_published"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

type Lesson struct {
	gorm.Model
	ChapterID   uint   `gorm:"index;not null" json:"chapter_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Content     string `gorm:"type:text" json:"content"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`
	IsPublished bool   `gorm:"default:false" json:"is_published"`
	IsFree      bool   `gorm:"default:false" json:"is_free"`
	// Video metadata is optional; duration is in seconds.
	VideoURL      string         `json:"video_url,omitempty"`
	VideoDuration int            `json:"video_duration,omitempty"`
	VideoMeta     datatypes.JSON `json:"video_meta,omitempty"`
}

type Enrollment struct {
	gorm.Model
	UserID   uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"user_id"`
	CourseID uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"course_id"`
}
