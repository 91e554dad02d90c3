package services

import (
	"context"
	"fmt"
	"strings"

	"learnhub/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxSlugLen = 100

// uniqueSlug derives a slug from title that is not yet used in table.slug,
// appending -2, -3, ... and finally a random suffix.
func uniqueSlug(ctx context.Context, db *gorm.DB, table, title string) (string, error) {
	base := utils.Slugify(title, maxSlugLen-8)
	slug := base
	for i := 2; i <= 25; i++ {
		var count int64
		if err := db.WithContext(ctx).Table(table).Where("LOWER(slug) = ?", strings.ToLower(slug)).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:6]), nil
}
