package services

import (
	"context"
	"time"

	"learnhub/backend/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type PlatformStats struct {
	Users            int64 `json:"users"`
	ActiveUsers      int64 `json:"active_users"`
	Teachers         int64 `json:"teachers"`
	ProMembers       int64 `json:"pro_members"`
	Courses          int64 `json:"courses"`
	PublishedCourses int64 `json:"published_courses"`
	Lessons          int64 `json:"lessons"`
	Enrollments      int64 `json:"enrollments"`
	CompletedLessons int64 `json:"completed_lessons"`
	OpenQuestions    int64 `json:"open_questions"`
	AcceptedAnswers  int64 `json:"accepted_answers"`
	BlogPosts        int64 `json:"blog_posts"`
	LoginsLast24h    int64 `json:"logins_last_24h"`
}

type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

// Stats runs the platform counters concurrently. The first failing query
// cancels the rest.
func (s *DashboardService) Stats(ctx context.Context) (PlatformStats, error) {
	var st PlatformStats
	g, ctx := errgroup.WithContext(ctx)
	since := s.now().UTC().Add(-24 * time.Hour)

	count := func(dst *int64, model interface{}, query string, args ...interface{}) {
		g.Go(func() error {
			q := s.db.WithContext(ctx).Model(model)
			if query != "" {
				q = q.Where(query, args...)
			}
			return q.Count(dst).Error
		})
	}

	count(&st.Users, &models.User{}, "")
	count(&st.ActiveUsers, &models.User{}, "is_active = ?", true)
	count(&st.Teachers, &models.User{}, "role = ?", models.RoleTeacher)
	count(&st.ProMembers, &models.User{}, "membership = ?", models.MembershipPro)
	count(&st.Courses, &models.Course{}, "")
	count(&st.PublishedCourses, &models.Course{}, "is_published = ?", true)
	count(&st.Lessons, &models.Lesson{}, "")
	count(&st.Enrollments, &models.Enrollment{}, "")
	count(&st.CompletedLessons, &models.LessonProgress{}, "is_completed = ?", true)
	count(&st.OpenQuestions, &models.LessonQuestion{}, "status = ?", models.QuestionOpen)
	count(&st.AcceptedAnswers, &models.LessonAnswer{}, "is_accepted = ?", true)
	count(&st.BlogPosts, &models.BlogPost{}, "is_published = ?", true)
	count(&st.LoginsLast24h, &models.LoginHistory{}, "login_time >= ?", since)

	if err := g.Wait(); err != nil {
		return PlatformStats{}, err
	}
	return st, nil
}
