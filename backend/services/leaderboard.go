package services

import (
	"context"
	"fmt"
	"time"

	"learnhub/backend/models"
	"learnhub/backend/utils"

	"gorm.io/gorm"
)

const (
	DefaultHelpfulWindowDays = 30
	DefaultHelpfulLimit      = 10
	maxHelpfulLimit          = 100
)

// LeaderboardCache stores computed leaderboards. A miss is (nil, false, nil).
// Invalidate advances the generation; entries are keyed by the generation
// read before the query, so a result computed before an invalidation is never
// served after it.
type LeaderboardCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, key string) ([]models.HelpfulUser, bool, error)
	Set(ctx context.Context, key string, users []models.HelpfulUser, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type LeaderboardService struct {
	db    *gorm.DB
	cache LeaderboardCache
	ttl   time.Duration
	now   func() time.Time
	log   *utils.Logger
}

// NewLeaderboardService builds the aggregator; cache may be nil.
func NewLeaderboardService(db *gorm.DB, cache LeaderboardCache, ttl time.Duration, log *utils.Logger) *LeaderboardService {
	return &LeaderboardService{db: db, cache: cache, ttl: ttl, now: time.Now, log: log}
}

// MostHelpful ranks users by accepted answers created in the trailing
// window. Ties are ordered by user id ascending.
func (s *LeaderboardService) MostHelpful(ctx context.Context, windowDays, limit int) ([]models.HelpfulUser, error) {
	if windowDays <= 0 {
		windowDays = DefaultHelpfulWindowDays
	}
	if limit <= 0 {
		limit = DefaultHelpfulLimit
	}
	if limit > maxHelpfulLimit {
		limit = maxHelpfulLimit
	}

	useCache := s.cache != nil && s.ttl > 0
	var key string
	if useCache {
		gen, err := s.cache.Generation(ctx)
		if err != nil {
			s.log.Warn("leaderboard cache generation read failed", "error", err)
			useCache = false
		} else {
			key = fmt.Sprintf("%d:%d:%d", gen, windowDays, limit)
			users, ok, err := s.cache.Get(ctx, key)
			if err != nil {
				s.log.Warn("leaderboard cache read failed", "error", err)
			} else if ok {
				return users, nil
			}
		}
	}

	since := s.now().UTC().AddDate(0, 0, -windowDays)
	users := []models.HelpfulUser{}
	err := s.db.WithContext(ctx).
		Table("lesson_answers AS a").
		Select("u.id AS id, u.username AS username, u.full_name AS full_name, u.avatar_url AS avatar_url, COUNT(a.id) AS contributions").
		Joins("JOIN users u ON u.id = a.user_id AND u.deleted_at IS NULL").
		Where("a.is_accepted = ? AND a.created_at >= ? AND a.deleted_at IS NULL", true, since).
		Group("u.id, u.username, u.full_name, u.avatar_url").
		Order("contributions DESC, u.id ASC").
		Limit(limit).
		Scan(&users).Error
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := s.cache.Set(ctx, key, users, s.ttl); err != nil {
			s.log.Warn("leaderboard cache write failed", "error", err)
		}
	}
	return users, nil
}

// Invalidate drops cached leaderboards. Failures are logged only.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("leaderboard cache invalidation failed", "error", err)
	}
}
