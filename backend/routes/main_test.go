package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"learnhub/backend/config"
	"learnhub/backend/database"
	"learnhub/backend/models"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
)

func TestMain(m *testing.M) {
	// Setup
	setup()
	// Run tests
	code := m.Run()
	// Cleanup
	teardown()
	os.Exit(code)
}

func setup() {
	cfg = &config.Config{
		JWTSecret:   "testsecret",
		JWTTTL:      time.Hour,
		CookieName:  "access_token",
		CORSOrigins: "*",
		ServerPort:  "8080",
	}
	log := utils.NewNopLogger()

	var err error
	db, err = database.OpenMemory("routes_test", log)
	if err != nil {
		panic(err)
	}

	app = NewApp(cfg, log)
	SetupRoutes(app, db, cfg, log, Deps{})
}

func teardown() {
	_ = database.Close(db)
}

// newUser stores a user and returns it with a valid access token.
func newUser(t *testing.T, username string, role models.Role) (models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Membership:   models.MembershipFree,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateJWTToken(user.ID, string(role), cfg)
	require.NoError(t, err)
	return user, token
}

// seedCourse creates a published course with n published lessons.
func seedCourse(t *testing.T, author models.User, slug string, n int) (models.Course, []models.Lesson) {
	t.Helper()
	course := models.Course{Slug: slug, Title: slug, AuthorID: author.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	chapter := models.Chapter{CourseID: course.ID, Title: "Chapter 1", SortOrder: 1, IsPublished: true}
	require.NoError(t, db.Create(&chapter).Error)

	lessons := make([]models.Lesson, 0, n)
	for i := 0; i < n; i++ {
		l := models.Lesson{ChapterID: chapter.ID, Title: fmt.Sprintf("Lesson %d", i+1), SortOrder: i + 1, IsPublished: true}
		require.NoError(t, db.Create(&l).Error)
		lessons = append(lessons, l)
	}
	return course, lessons
}

// doRequest sends body (JSON encoded unless it is a string) and decodes the
// JSON reply into a map.
func doRequest(t *testing.T, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		jsonData, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result), string(raw))
	}
	return resp, result
}
