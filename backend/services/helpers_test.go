package services

import (
	"fmt"
	"strings"
	"testing"

	"learnhub/backend/database"
	"learnhub/backend/models"
	"learnhub/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	db, err := database.OpenMemory(name, utils.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.Role) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Membership:   models.MembershipFree,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// createCourse builds a published course with one published chapter per
// entry of lessonsPerChapter, each holding that many published lessons.
func createCourse(t *testing.T, db *gorm.DB, author models.User, slug string, lessonsPerChapter ...int) (models.Course, []models.Lesson) {
	t.Helper()
	course := models.Course{Slug: slug, Title: slug, AuthorID: author.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	var lessons []models.Lesson
	for ci, n := range lessonsPerChapter {
		ch := models.Chapter{CourseID: course.ID, Title: fmt.Sprintf("Chapter %d", ci+1), SortOrder: ci + 1, IsPublished: true}
		require.NoError(t, db.Create(&ch).Error)
		for li := 0; li < n; li++ {
			l := models.Lesson{ChapterID: ch.ID, Title: fmt.Sprintf("Lesson %d.%d", ci+1, li+1), SortOrder: li + 1, IsPublished: true}
			require.NoError(t, db.Create(&l).Error)
			lessons = append(lessons, l)
		}
	}
	return course, lessons
}

func enroll(t *testing.T, db *gorm.DB, user models.User, course models.Course) {
	t.Helper()
	require.NoError(t, db.Create(&models.Enrollment{UserID: user.ID, CourseID: course.ID}).Error)
}

func createQuestion(t *testing.T, db *gorm.DB, asker models.User, lesson models.Lesson) models.LessonQuestion {
	t.Helper()
	q := models.LessonQuestion{LessonID: lesson.ID, UserID: asker.ID, Title: "How does this work?", Status: models.QuestionOpen}
	require.NoError(t, db.Omit("User").Create(&q).Error)
	return q
}

func createAnswer(t *testing.T, db *gorm.DB, author models.User, q models.LessonQuestion) models.LessonAnswer {
	t.Helper()
	a := models.LessonAnswer{QuestionID: q.ID, UserID: author.ID, Body: "Like this."}
	require.NoError(t, db.Omit("User").Create(&a).Error)
	return a
}

func identity(u models.User) models.Identity {
	return models.Identity{UserID: u.ID, Role: u.Role}
}

func newPage() utils.Page {
	return utils.NewPage(1, utils.DefaultPageSize)
}
