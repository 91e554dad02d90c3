package services

import (
	"context"
	"testing"

	"learnhub/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseSlugs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleUser)
	svc := NewCourseService(db)

	first, err := svc.CreateCourse(ctx, identity(teacher), CourseInput{Title: "Go Basics", Level: "beginner"})
	require.NoError(t, err)
	assert.Equal(t, "go-basics", first.Slug)
	assert.False(t, first.IsPublished)

	second, err := svc.CreateCourse(ctx, identity(teacher), CourseInput{Title: "Go  Basics!"})
	require.NoError(t, err)
	assert.Equal(t, "go-basics-2", second.Slug)

	_, err = svc.CreateCourse(ctx, identity(student), CourseInput{Title: "Nope"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateCourse(ctx, identity(teacher), CourseInput{Title: "Go", Level: "expert"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthoringRequiresOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner", models.RoleTeacher)
	other := createUser(t, db, "other", models.RoleTeacher)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	svc := NewCourseService(db)

	course, err := svc.CreateCourse(ctx, identity(owner), CourseInput{Title: "Concurrency"})
	require.NoError(t, err)

	_, err = svc.AddChapter(ctx, identity(other), course.Slug, ChapterInput{Title: "Intro"})
	assert.ErrorIs(t, err, ErrForbidden)

	ch, err := svc.AddChapter(ctx, identity(owner), course.Slug, ChapterInput{Title: "Intro", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, 1, ch.SortOrder)

	_, err = svc.AddLesson(ctx, identity(other), ch.ID, LessonInput{Title: "Hello"})
	assert.ErrorIs(t, err, ErrForbidden)

	lesson, err := svc.AddLesson(ctx, identity(admin), ch.ID, LessonInput{Title: "Hello", IsPublished: true, VideoDuration: 120})
	require.NoError(t, err)
	assert.Equal(t, 1, lesson.SortOrder)

	_, err = svc.AddLesson(ctx, identity(owner), 999, LessonInput{Title: "Lost"})
	assert.ErrorIs(t, err, ErrNotFound)

	published, err := svc.SetPublished(ctx, identity(owner), course.Slug, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
}

func TestGetCourseVisibility(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleUser)
	course, _ := createCourse(t, db, owner, "visible", 2)
	require.NoError(t, db.Create(&models.Chapter{CourseID: course.ID, Title: "Draft", SortOrder: 5}).Error)

	svc := NewCourseService(db)
	detail, err := svc.GetCourse(ctx, "visible", models.Identity{})
	require.NoError(t, err)
	require.Len(t, detail.Chapters, 1)
	assert.Len(t, detail.Chapters[0].Lessons, 2)
	assert.Equal(t, "owner", detail.Author.Username)
	assert.False(t, detail.Enrolled)

	detail, err = svc.GetCourse(ctx, "visible", identity(owner))
	require.NoError(t, err)
	assert.Len(t, detail.Chapters, 2)

	enroll(t, db, student, course)
	detail, err = svc.GetCourse(ctx, "visible", identity(student))
	require.NoError(t, err)
	assert.True(t, detail.Enrolled)

	require.NoError(t, db.Model(&course).Update("is_published", false).Error)
	_, err = svc.GetCourse(ctx, "visible", identity(student))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetCourse(ctx, "visible", identity(owner))
	assert.NoError(t, err)
}

func TestListCourses(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner", models.RoleTeacher)
	createCourse(t, db, owner, "go-basics")
	createCourse(t, db, owner, "rust-basics")
	require.NoError(t, db.Create(&models.Course{Slug: "draft", Title: "draft", AuthorID: owner.ID}).Error)

	svc := NewCourseService(db)
	courses, total, err := svc.ListCourses(context.Background(), CourseFilter{Page: newPage()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, courses, 2)

	courses, total, err = svc.ListCourses(context.Background(), CourseFilter{Search: "RUST", Page: newPage()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "rust-basics", courses[0].Slug)
}

func TestEnroll(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleUser)
	course, lessons := createCourse(t, db, owner, "go-basics", 2)
	svc := NewCourseService(db)

	created, err := svc.Enroll(ctx, student.ID, "go-basics")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.Enroll(ctx, student.ID, "go-basics")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Enroll(ctx, student.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewProgressService(db).MarkLessonComplete(ctx, student.ID, lessons[0].ID)
	require.NoError(t, err)
	mine, err := svc.EnrolledCourses(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, course.ID, mine[0].Course.ID)
	assert.Equal(t, 50, mine[0].Progress.Progress)
}

func TestEnrollProCourse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner", models.RoleTeacher)
	free := createUser(t, db, "free", models.RoleUser)
	pro := createUser(t, db, "pro", models.RoleUser)
	require.NoError(t, db.Model(&pro).Update("membership", models.MembershipPro).Error)
	course, _ := createCourse(t, db, owner, "advanced-go", 1)
	require.NoError(t, db.Model(&course).Update("is_pro", true).Error)

	svc := NewCourseService(db)
	_, err := svc.Enroll(ctx, free.ID, "advanced-go")
	assert.ErrorIs(t, err, ErrForbidden)

	created, err := svc.Enroll(ctx, pro.ID, "advanced-go")
	require.NoError(t, err)
	assert.True(t, created)
}
