package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"learnhub/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionThreshold is the watched fraction of a video after which the
// lesson counts as completed.
const CompletionThreshold = 0.9

type ProgressReport struct {
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

func (r ProgressReport) Validate() error {
	for _, v := range []float64{r.Timestamp, r.Duration} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("timestamp and duration must be non-negative numbers: %w", ErrValidation)
		}
	}
	return nil
}

// ReachedCompletion reports whether the position is far enough into the video.
func (r ProgressReport) ReachedCompletion() bool {
	return r.Duration > 0 && r.Timestamp >= CompletionThreshold*r.Duration
}

type RecordResult struct {
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration"`
	Persisted bool    `json:"persisted"`
	Completed bool    `json:"completed"`
}

type ProgressService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db, now: time.Now}
}

// RecordProgress stores the latest playback position of a lesson. Anonymous
// callers get a successful result without anything being written.
func (s *ProgressService) RecordProgress(ctx context.Context, who models.Identity, lessonID uint, report ProgressReport) (RecordResult, error) {
	if err := report.Validate(); err != nil {
		return RecordResult{}, err
	}
	result := RecordResult{Timestamp: report.Timestamp, Duration: report.Duration}
	if who.Anonymous() {
		return result, nil
	}

	if err := s.lessonExists(ctx, lessonID); err != nil {
		return RecordResult{}, err
	}

	now := s.now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.LessonProgress{
			UserID:       who.UserID,
			LessonID:     lessonID,
			LastPosition: report.Timestamp,
			WatchTime:    report.Duration,
		}
		// Latest report wins, rewinds included.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_position", "watch_time", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}
		if report.ReachedCompletion() {
			return markCompleted(tx, who.UserID, lessonID, now)
		}
		return nil
	})
	if err != nil {
		return RecordResult{}, err
	}

	result.Persisted = true
	result.Completed = report.ReachedCompletion()
	return result, nil
}

// MarkLessonComplete flags the lesson as completed for the user.
func (s *ProgressService) MarkLessonComplete(ctx context.Context, userID, lessonID uint) (models.LessonProgress, error) {
	if err := s.lessonExists(ctx, lessonID); err != nil {
		return models.LessonProgress{}, err
	}
	now := s.now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.LessonProgress{UserID: userID, LessonID: lessonID}).Error; err != nil {
			return err
		}
		return markCompleted(tx, userID, lessonID, now)
	})
	if err != nil {
		return models.LessonProgress{}, err
	}
	return s.LessonProgress(ctx, userID, lessonID)
}

// LessonProgress returns the stored row or a zero row for the pair.
func (s *ProgressService) LessonProgress(ctx context.Context, userID, lessonID uint) (models.LessonProgress, error) {
	var row models.LessonProgress
	err := s.db.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LessonProgress{UserID: userID, LessonID: lessonID}, nil
	}
	return row, err
}

// CourseProgress aggregates completion for an enrolled user.
func (s *ProgressService) CourseProgress(ctx context.Context, userID uint, courseSlug string) (models.CourseProgress, error) {
	db := s.db.WithContext(ctx)

	var course models.Course
	if err := db.Where("slug = ?", courseSlug).First(&course).Error; err != nil {
		return models.CourseProgress{}, fmt.Errorf("course %q: %w", courseSlug, notFound(err))
	}

	enrolled, err := isEnrolled(db, userID, course.ID)
	if err != nil {
		return models.CourseProgress{}, err
	}
	if !enrolled {
		return models.CourseProgress{}, fmt.Errorf("not enrolled in %q: %w", courseSlug, ErrForbidden)
	}
	return courseProgress(db, userID, course.ID)
}

func (s *ProgressService) lessonExists(ctx context.Context, lessonID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Lesson{}).Where("id = ?", lessonID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("lesson %d: %w", lessonID, ErrNotFound)
	}
	return nil
}

// CompletionPercent is completed/total rounded to the nearest integer and
// clamped to [0, 100]; a course without lessons is at 0.
func CompletionPercent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(completed) / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}

func markCompleted(tx *gorm.DB, userID, lessonID uint, at time.Time) error {
	// Completion is sticky; only the first completion sets completed_at.
	return tx.Model(&models.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ? AND is_completed = ?", userID, lessonID, false).
		Updates(map[string]interface{}{"is_completed": true, "completed_at": at}).Error
}

func isEnrolled(db *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// publishedLessonIDs lists the visible lessons of a course in display order.
func publishedLessonIDs(db *gorm.DB, courseID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Lesson{}).
		Joins("JOIN chapters ON chapters.id = lessons.chapter_id AND chapters.deleted_at IS NULL").
		Where("chapters.course_id = ? AND chapters.is_published = ? AND lessons.is_published = ?", courseID, true, true).
		Order("chapters.sort_order, chapters.id, lessons.sort_order, lessons.id").
		Pluck("lessons.id", &ids).Error
	return ids, err
}

func courseProgress(db *gorm.DB, userID, courseID uint) (models.CourseProgress, error) {
	lessonIDs, err := publishedLessonIDs(db, courseID)
	if err != nil {
		return models.CourseProgress{}, err
	}

	completed := []uint{}
	if len(lessonIDs) > 0 {
		if err := db.Model(&models.LessonProgress{}).
			Where("user_id = ? AND is_completed = ? AND lesson_id IN ?", userID, true, lessonIDs).
			Order("lesson_id").
			Pluck("lesson_id", &completed).Error; err != nil {
			return models.CourseProgress{}, err
		}
	}
	if completed == nil {
		completed = []uint{}
	}

	return models.CourseProgress{
		Progress:         CompletionPercent(len(completed), len(lessonIDs)),
		TotalLessons:     len(lessonIDs),
		CompletedCount:   len(completed),
		CompletedLessons: completed,
	}, nil
}
