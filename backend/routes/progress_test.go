package routes

import (
	"fmt"
	"testing"

	"learnhub/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoProgressAnonymous(t *testing.T) {
	teacher, _ := newUser(t, "vp_teacher", models.RoleTeacher)
	_, lessons := seedCourse(t, teacher, "vp-anon", 1)
	path := fmt.Sprintf("/api/lessons/%d/video/progress", lessons[0].ID)

	resp, result := doRequest(t, "POST", path, map[string]float64{"timestamp": 42.5, "duration": 300}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 42.5, result["timestamp"])
	assert.Equal(t, 300.0, result["duration"])
	assert.Equal(t, false, result["persisted"])

	var count int64
	require.NoError(t, db.Model(&models.LessonProgress{}).Where("lesson_id = ?", lessons[0].ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVideoProgressValidation(t *testing.T) {
	_, token := newUser(t, "vp_validation", models.RoleUser)

	for _, body := range []interface{}{
		`{"timestamp":"ten","duration":100}`,
		`{"timestamp":10}`,
		map[string]float64{"timestamp": -1, "duration": 100},
		`not json`,
	} {
		resp, _ := doRequest(t, "POST", "/api/lessons/1/video/progress", body, token)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "%v", body)
	}

	resp, _ := doRequest(t, "POST", "/api/lessons/abc/video/progress", map[string]float64{"timestamp": 1, "duration": 2}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCourseProgressFlow(t *testing.T) {
	teacher, _ := newUser(t, "cp_teacher", models.RoleTeacher)
	student, token := newUser(t, "cp_student", models.RoleUser)
	_, outsider := newUser(t, "cp_outsider", models.RoleUser)
	_, lessons := seedCourse(t, teacher, "cp-course", 4)

	resp, _ := doRequest(t, "GET", "/api/courses/cp-course/progress", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doRequest(t, "GET", "/api/courses/cp-missing/progress", nil, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, "GET", "/api/courses/cp-course/progress", nil, outsider)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, "POST", "/api/courses/cp-course/enroll", nil, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, _ = doRequest(t, "POST", "/api/courses/cp-course/enroll", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// One lesson watched past the threshold, one marked explicitly.
	resp, result := doRequest(t, "POST", fmt.Sprintf("/api/lessons/%d/video/progress", lessons[0].ID),
		map[string]float64{"timestamp": 95, "duration": 100}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["completed"])
	resp, _ = doRequest(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessons[1].ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result = doRequest(t, "GET", "/api/courses/cp-course/progress", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 50.0, result["progress"])
	assert.Equal(t, 4.0, result["totalLessons"])
	assert.Equal(t, 2.0, result["completedCount"])
	assert.Len(t, result["completedLessons"], 2)

	resp, result = doRequest(t, "GET", fmt.Sprintf("/api/lessons/%d/progress", lessons[0].ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	row := result["data"].(map[string]interface{})
	assert.Equal(t, 95.0, row["last_position"])
	assert.Equal(t, float64(student.ID), row["user_id"])

	resp, result = doRequest(t, "GET", "/api/me/courses", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, result["data"], 1)
}
