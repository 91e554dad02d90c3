package models

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress is unique per (user, lesson).
type LessonProgress struct {
	gorm.Model
	UserID       uint       `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"user_id"`
	LessonID     uint       `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"lesson_id"`
	LastPosition float64    `gorm:"default:0" json:"last_position"`
	WatchTime    float64    `gorm:"default:0" json:"watch_time"`
	IsCompleted  bool       `gorm:"default:false;index" json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// CourseProgress is the per-course aggregate shown to an enrolled user.
type CourseProgress struct {
	Progress         int    `json:"progress"`
	TotalLessons     int    `json:"totalLessons"`
	CompletedCount   int    `json:"completedCount"`
	CompletedLessons []uint `json:"completedLessons"`
}
