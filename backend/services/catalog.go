package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learnhub/backend/models"
	"learnhub/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseFilter struct {
	Search string
	Level  string
	Page   utils.Page
}

type CourseInput struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	ShortDesc   string `json:"short_desc" validate:"max=300"`
	Description string `json:"description"`
	Level       string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsPro       bool   `json:"is_pro"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
	SortOrder   int    `json:"sort_order"`
}

type ChapterInput struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	SortOrder   int    `json:"sort_order"`
	IsPublished bool   `json:"is_published"`
}

type LessonInput struct {
	Title         string         `json:"title" validate:"required,min=1,max=200"`
	Content       string         `json:"content"`
	SortOrder     int            `json:"sort_order"`
	IsPublished   bool           `json:"is_published"`
	IsFree        bool           `json:"is_free"`
	VideoURL      string         `json:"video_url" validate:"omitempty,url"`
	VideoDuration int            `json:"video_duration" validate:"gte=0"`
	VideoMeta     datatypes.JSON `json:"video_meta"`
}

type CourseDetail struct {
	models.Course
	Author   models.PublicProfile `json:"author"`
	Enrolled bool                 `json:"enrolled"`
}

type EnrolledCourse struct {
	Course   models.Course         `json:"course"`
	Progress models.CourseProgress `json:"progress"`
}

type CourseService struct {
	db *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

func (s *CourseService) ListCourses(ctx context.Context, f CourseFilter) ([]models.Course, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Course{}).Where("is_published = ?", true)
	if search := strings.TrimSpace(f.Search); search != "" {
		pat := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(short_desc) LIKE ?", pat, pat)
	}
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	courses := []models.Course{}
	if err := q.Order("sort_order, created_at DESC, id").
		Offset(f.Page.Offset()).Limit(f.Page.Size).
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// GetCourse returns a course with its chapters and lessons in display
// order. Unpublished content is only visible to the author and admins.
func (s *CourseService) GetCourse(ctx context.Context, slug string, who models.Identity) (CourseDetail, error) {
	db := s.db.WithContext(ctx)

	var course models.Course
	if err := db.Where("slug = ?", slug).First(&course).Error; err != nil {
		return CourseDetail{}, fmt.Errorf("course %q: %w", slug, notFound(err))
	}
	manager := canManage(who, course)
	if !course.IsPublished && !manager {
		return CourseDetail{}, fmt.Errorf("course %q: %w", slug, ErrNotFound)
	}

	visible := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Order("sort_order, id")
		if !manager {
			tx = tx.Where("is_published = ?", true)
		}
		return tx
	}
	if err := db.Preload("Chapters", visible).
		Preload("Chapters.Lessons", visible).
		First(&course, course.ID).Error; err != nil {
		return CourseDetail{}, err
	}

	var author models.User
	if err := db.First(&author, course.AuthorID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return CourseDetail{}, err
	}

	detail := CourseDetail{Course: course, Author: author.Public()}
	if !who.Anonymous() {
		enrolled, err := isEnrolled(db, who.UserID, course.ID)
		if err != nil {
			return CourseDetail{}, err
		}
		detail.Enrolled = enrolled
	}
	return detail, nil
}

func (s *CourseService) CreateCourse(ctx context.Context, who models.Identity, in CourseInput) (models.Course, error) {
	if !who.Role.CanTeach() {
		return models.Course{}, fmt.Errorf("create course: %w", ErrForbidden)
	}
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.Course{}, fmt.Errorf("course: %w", ErrValidation)
	}

	db := s.db.WithContext(ctx)
	slug, err := uniqueSlug(ctx, db, "courses", in.Title)
	if err != nil {
		return models.Course{}, err
	}

	course := models.Course{
		Slug:        slug,
		Title:       strings.TrimSpace(in.Title),
		ShortDesc:   in.ShortDesc,
		Description: in.Description,
		Level:       in.Level,
		IsPro:       in.IsPro,
		AuthorID:    who.UserID,
		LogoURL:     in.LogoURL,
		SortOrder:   in.SortOrder,
	}
	if err := db.Omit(clause.Associations).Create(&course).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (s *CourseService) AddChapter(ctx context.Context, who models.Identity, courseSlug string, in ChapterInput) (models.Chapter, error) {
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.Chapter{}, fmt.Errorf("chapter: %w", ErrValidation)
	}
	db := s.db.WithContext(ctx)

	var course models.Course
	if err := db.Where("slug = ?", courseSlug).First(&course).Error; err != nil {
		return models.Chapter{}, fmt.Errorf("course %q: %w", courseSlug, notFound(err))
	}
	if !canManage(who, course) {
		return models.Chapter{}, fmt.Errorf("course %q: %w", courseSlug, ErrForbidden)
	}

	chapter := models.Chapter{
		CourseID:    course.ID,
		Title:       strings.TrimSpace(in.Title),
		SortOrder:   in.SortOrder,
		IsPublished: in.IsPublished,
	}
	if chapter.SortOrder == 0 {
		var n int64
		if err := db.Model(&models.Chapter{}).Where("course_id = ?", course.ID).Count(&n).Error; err != nil {
			return models.Chapter{}, err
		}
		chapter.SortOrder = int(n) + 1
	}
	if err := db.Omit(clause.Associations).Create(&chapter).Error; err != nil {
		return models.Chapter{}, err
	}
	return chapter, nil
}

func (s *CourseService) AddLesson(ctx context.Context, who models.Identity, chapterID uint, in LessonInput) (models.Lesson, error) {
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.Lesson{}, fmt.Errorf("lesson: %w", ErrValidation)
	}
	db := s.db.WithContext(ctx)

	var chapter models.Chapter
	if err := db.First(&chapter, chapterID).Error; err != nil {
		return models.Lesson{}, fmt.Errorf("chapter %d: %w", chapterID, notFound(err))
	}
	var course models.Course
	if err := db.First(&course, chapter.CourseID).Error; err != nil {
		return models.Lesson{}, fmt.Errorf("course %d: %w", chapter.CourseID, notFound(err))
	}
	if !canManage(who, course) {
		return models.Lesson{}, fmt.Errorf("course %q: %w", course.Slug, ErrForbidden)
	}

	lesson := models.Lesson{
		ChapterID:     chapter.ID,
		Title:         strings.TrimSpace(in.Title),
		Content:       in.Content,
		SortOrder:     in.SortOrder,
		IsPublished:   in.IsPublished,
		IsFree:        in.IsFree,
		VideoURL:      in.VideoURL,
		VideoDuration: in.VideoDuration,
		VideoMeta:     in.VideoMeta,
	}
	if lesson.SortOrder == 0 {
		var n int64
		if err := db.Model(&models.Lesson{}).Where("chapter_id = ?", chapter.ID).Count(&n).Error; err != nil {
			return models.Lesson{}, err
		}
		lesson.SortOrder = int(n) + 1
	}
	if err := db.Create(&lesson).Error; err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (s *CourseService) SetPublished(ctx context.Context, who models.Identity, courseSlug string, published bool) (models.Course, error) {
	db := s.db.WithContext(ctx)

	var course models.Course
	if err := db.Where("slug = ?", courseSlug).First(&course).Error; err != nil {
		return models.Course{}, fmt.Errorf("course %q: %w", courseSlug, notFound(err))
	}
	if !canManage(who, course) {
		return models.Course{}, fmt.Errorf("course %q: %w", courseSlug, ErrForbidden)
	}
	if err := db.Model(&course).Update("is_published", published).Error; err != nil {
		return models.Course{}, err
	}
	course.IsPublished = published
	return course, nil
}

// Enroll grants the user access to a published course. Enrolling twice is
// a no-op; created reports whether a new enrollment row was written.
func (s *CourseService) Enroll(ctx context.Context, userID uint, courseSlug string) (created bool, err error) {
	db := s.db.WithContext(ctx)

	var course models.Course
	if err := db.Where("slug = ? AND is_published = ?", courseSlug, true).First(&course).Error; err != nil {
		return false, fmt.Errorf("course %q: %w", courseSlug, notFound(err))
	}

	if course.IsPro {
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return false, fmt.Errorf("user %d: %w", userID, notFound(err))
		}
		if user.Membership != models.MembershipPro && user.Role != models.RoleAdmin {
			return false, fmt.Errorf("course %q requires a pro membership: %w", courseSlug, ErrForbidden)
		}
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Enrollment{UserID: userID, CourseID: course.ID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// EnrolledCourses lists the user's courses with their progress, most
// recent enrollment first.
func (s *CourseService) EnrolledCourses(ctx context.Context, userID uint) ([]EnrolledCourse, error) {
	db := s.db.WithContext(ctx)

	var courses []models.Course
	if err := db.Joins("JOIN enrollments ON enrollments.course_id = courses.id AND enrollments.deleted_at IS NULL").
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.created_at DESC, courses.id").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	out := make([]EnrolledCourse, 0, len(courses))
	for _, course := range courses {
		progress, err := courseProgress(db, userID, course.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, EnrolledCourse{Course: course, Progress: progress})
	}
	return out, nil
}

func canManage(who models.Identity, course models.Course) bool {
	if who.Anonymous() {
		return false
	}
	return who.IsAdmin() || (who.Role.CanTeach() && course.AuthorID == who.UserID)
}
