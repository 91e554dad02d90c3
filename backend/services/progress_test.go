package services

import (
	"context"
	"math"
	"testing"
	"time"

	"learnhub/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseProgressHalfCompleted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleUser)
	course, lessons := createCourse(t, db, teacher, "go-basics", 2, 2)
	require.Len(t, lessons, 4)
	enroll(t, db, student, course)

	svc := NewProgressService(db)
	_, err := svc.MarkLessonComplete(ctx, student.ID, lessons[0].ID)
	require.NoError(t, err)
	_, err = svc.MarkLessonComplete(ctx, student.ID, lessons[2].ID)
	require.NoError(t, err)

	got, err := svc.CourseProgress(ctx, student.ID, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)
	assert.Equal(t, 4, got.TotalLessons)
	assert.Equal(t, 2, got.CompletedCount)
	assert.ElementsMatch(t, []uint{lessons[0].ID, lessons[2].ID}, got.CompletedLessons)
}

func TestCourseProgressEmptyCourse(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleUser)
	course, _ := createCourse(t, db, teacher, "empty")
	enroll(t, db, student, course)

	got, err := NewProgressService(db).CourseProgress(context.Background(), student.ID, "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, 0, got.TotalLessons)
	assert.NotNil(t, got.CompletedLessons)
	assert.Empty(t, got.CompletedLessons)
}

func TestCourseProgressCountsOnlyPublishedLessons(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleUser)
	course, lessons := createCourse(t, db, teacher, "mixed", 2)
	enroll(t, db, student, course)

	draftChapter := models.Chapter{CourseID: course.ID, Title: "Draft", SortOrder: 9}
	require.NoError(t, db.Create(&draftChapter).Error)
	require.NoError(t, db.Create(&models.Lesson{ChapterID: draftChapter.ID, Title: "Hidden", IsPublished: true}).Error)
	require.NoError(t, db.Create(&models.Lesson{ChapterID: lessons[0].ChapterID, Title: "Unpublished"}).Error)

	svc := NewProgressService(db)
	_, err := svc.MarkLessonComplete(ctx, student.ID, lessons[1].ID)
	require.NoError(t, err)

	got, err := svc.CourseProgress(ctx, student.ID, "mixed")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalLessons)
	assert.Equal(t, 50, got.Progress)
}

func TestCourseProgressErrors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleUser)
	createCourse(t, db, teacher, "go-basics", 1)

	svc := NewProgressService(db)
	_, err := svc.CourseProgress(ctx, student.ID, "go-basics")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CourseProgress(ctx, student.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordProgressAnonymousWritesNothing(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	_, lessons := createCourse(t, db, teacher, "go-basics", 1)

	res, err := NewProgressService(db).RecordProgress(context.Background(), models.Identity{}, lessons[0].ID,
		ProgressReport{Timestamp: 95, Duration: 100})
	require.NoError(t, err)
	assert.False(t, res.Persisted)
	assert.Equal(t, 95.0, res.Timestamp)
	assert.Equal(t, 100.0, res.Duration)

	var count int64
	require.NoError(t, db.Model(&models.LessonProgress{}).Where("lesson_id = ?", lessons[0].ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordProgressUpsertAndStickyCompletion(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleUser)
	_, lessons := createCourse(t, db, teacher, "go-basics", 1)
	lessonID := lessons[0].ID

	svc := NewProgressService(db)
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	res, err := svc.RecordProgress(ctx, identity(student), lessonID, ProgressReport{Timestamp: 10, Duration: 100})
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.False(t, res.Completed)

	res, err = svc.RecordProgress(ctx, identity(student), lessonID, ProgressReport{Timestamp: 90, Duration: 100})
	require.NoError(t, err)
	assert.True(t, res.Completed)

	svc.now = func() time.Time { return first.Add(time.Hour) }
	_, err = svc.RecordProgress(ctx, identity(student), lessonID, ProgressReport{Timestamp: 5, Duration: 100})
	require.NoError(t, err)

	var rows []models.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", student.ID, lessonID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 5.0, rows[0].LastPosition)
	assert.Equal(t, 100.0, rows[0].WatchTime)
	assert.True(t, rows[0].IsCompleted)
	require.NotNil(t, rows[0].CompletedAt)
	assert.True(t, first.Equal(rows[0].CompletedAt.UTC()))
}

func TestRecordProgressValidation(t *testing.T) {
	db := newTestDB(t)
	student := createUser(t, db, "student", models.RoleUser)
	svc := NewProgressService(db)

	for _, r := range []ProgressReport{
		{Timestamp: -1, Duration: 10},
		{Timestamp: 1, Duration: -10},
		{Timestamp: math.NaN(), Duration: 10},
		{Timestamp: 1, Duration: math.Inf(1)},
	} {
		_, err := svc.RecordProgress(context.Background(), identity(student), 1, r)
		assert.ErrorIs(t, err, ErrValidation, "%+v", r)
	}
}

func TestRecordProgressUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	student := createUser(t, db, "student", models.RoleUser)

	_, err := NewProgressService(db).RecordProgress(context.Background(), identity(student), 999,
		ProgressReport{Timestamp: 1, Duration: 10})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLessonProgressDefaultsToZero(t *testing.T) {
	db := newTestDB(t)
	row, err := NewProgressService(db).LessonProgress(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.Equal(t, uint(3), row.UserID)
	assert.Equal(t, uint(4), row.LessonID)
	assert.Zero(t, row.LastPosition)
	assert.False(t, row.IsCompleted)
}

func TestCompletionPercent(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{2, 4, 50},
		{1, 3, 33},
		{2, 3, 67},
		{4, 4, 100},
		{5, 4, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CompletionPercent(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

func TestProgressReportReachedCompletion(t *testing.T) {
	assert.True(t, ProgressReport{Timestamp: 90, Duration: 100}.ReachedCompletion())
	assert.False(t, ProgressReport{Timestamp: 89.9, Duration: 100}.ReachedCompletion())
	assert.False(t, ProgressReport{Timestamp: 10, Duration: 0}.ReachedCompletion())
}
