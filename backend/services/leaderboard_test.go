package services

import (
	"context"
	"testing"
	"time"

	"learnhub/backend/models"
	"learnhub/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryCache struct {
	entries    map[string][]models.HelpfulUser
	generation int64
	gets       int
	// afterMiss runs once after the first cache miss, before the query result is stored.
	afterMiss func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]models.HelpfulUser{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]models.HelpfulUser, bool, error) {
	m.gets++
	users, ok := m.entries[key]
	if !ok && m.afterMiss != nil {
		hook := m.afterMiss
		m.afterMiss = nil
		hook()
	}
	return users, ok, nil
}

func (m *memoryCache) Generation(context.Context) (int64, error) {
	return m.generation, nil
}

func (m *memoryCache) Set(_ context.Context, key string, users []models.HelpfulUser, _ time.Duration) error {
	m.entries[key] = users
	return nil
}

func (m *memoryCache) Invalidate(context.Context) error {
	m.generation++
	return nil
}

func acceptedAnswer(t *testing.T, db *gorm.DB, author models.User, q models.LessonQuestion, createdAt time.Time) {
	t.Helper()
	a := createAnswer(t, db, author, q)
	require.NoError(t, db.Model(&a).UpdateColumns(map[string]interface{}{
		"is_accepted": true,
		"created_at":  createdAt,
	}).Error)
}

func TestMostHelpfulRanking(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	asker := createUser(t, db, "asker", models.RoleUser)
	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	_, lessons := createCourse(t, db, teacher, "go-basics", 1)
	q := createQuestion(t, db, asker, lessons[0])

	now := time.Now().UTC()
	acceptedAnswer(t, db, bob, q, now.Add(-time.Hour))
	acceptedAnswer(t, db, bob, q, now.Add(-2*time.Hour))
	acceptedAnswer(t, db, teacher, q, now.Add(-3*time.Hour))
	acceptedAnswer(t, db, alice, q, now.Add(-4*time.Hour))
	// Outside the window and not accepted.
	acceptedAnswer(t, db, alice, q, now.AddDate(0, 0, -40))
	acceptedAnswer(t, db, alice, q, now.AddDate(0, 0, -31))
	createAnswer(t, db, alice, q)

	svc := NewLeaderboardService(db, nil, 0, utils.NewNopLogger())
	users, err := svc.MostHelpful(context.Background(), 30, 10)
	require.NoError(t, err)
	require.Len(t, users, 3)

	assert.Equal(t, bob.ID, users[0].ID)
	assert.EqualValues(t, 2, users[0].Contributions)
	// Equal counts fall back to user id.
	assert.Equal(t, teacher.ID, users[1].ID)
	assert.Equal(t, alice.ID, users[2].ID)
	assert.EqualValues(t, 1, users[2].Contributions)
}

func TestMostHelpfulLimitAndEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db, nil, 0, utils.NewNopLogger())

	users, err := svc.MostHelpful(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	asker := createUser(t, db, "asker", models.RoleUser)
	_, lessons := createCourse(t, db, teacher, "go-basics", 1)
	q := createQuestion(t, db, asker, lessons[0])
	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		acceptedAnswer(t, db, createUser(t, db, name, models.RoleUser), q, time.Now().UTC())
	}

	users, err = svc.MostHelpful(context.Background(), 30, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestMostHelpfulUsesCache(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	asker := createUser(t, db, "asker", models.RoleUser)
	_, lessons := createCourse(t, db, teacher, "go-basics", 1)
	q := createQuestion(t, db, asker, lessons[0])
	acceptedAnswer(t, db, teacher, q, time.Now().UTC())

	cache := newMemoryCache()
	svc := NewLeaderboardService(db, cache, time.Minute, utils.NewNopLogger())
	ctx := context.Background()

	first, err := svc.MostHelpful(ctx, 30, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A stale cache entry is served until invalidated.
	acceptedAnswer(t, db, asker, q, time.Now().UTC())
	cached, err := svc.MostHelpful(ctx, 30, 10)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	svc.Invalidate(ctx)
	fresh, err := svc.MostHelpful(ctx, 30, 10)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Equal(t, 3, cache.gets)
}

func TestMostHelpfulIgnoresResultsComputedBeforeInvalidation(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	asker := createUser(t, db, "asker", models.RoleUser)
	_, lessons := createCourse(t, db, teacher, "go-basics", 1)
	q := createQuestion(t, db, asker, lessons[0])
	acceptedAnswer(t, db, teacher, q, time.Now().UTC())

	cache := newMemoryCache()
	svc := NewLeaderboardService(db, cache, time.Minute, utils.NewNopLogger())
	ctx := context.Background()

	// An acceptance commits and invalidates while the first request is
	// between its cache miss and its cache write.
	cache.afterMiss = func() {
		svc.Invalidate(ctx)
	}
	first, err := svc.MostHelpful(ctx, 30, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	acceptedAnswer(t, db, asker, q, time.Now().UTC())
	next, err := svc.MostHelpful(ctx, 30, 10)
	require.NoError(t, err)
	assert.Len(t, next, 2)
}
