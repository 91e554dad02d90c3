package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"learnhub/backend/models"
	"learnhub/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostInput struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Excerpt     string `json:"excerpt" validate:"max=400"`
	Body        string `json:"body" validate:"required"`
	CoverURL    string `json:"cover_url" validate:"omitempty,url"`
	IsPublished bool   `json:"is_published"`
}

type PostView struct {
	models.BlogPost
	Author models.PublicProfile `json:"author"`
}

type BlogService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBlogService(db *gorm.DB) *BlogService {
	return &BlogService{db: db, now: time.Now}
}

func (s *BlogService) ListPosts(ctx context.Context, page utils.Page) ([]PostView, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.BlogPost{}).Where("is_published = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.BlogPost
	if err := q.Preload("Author").
		Order("published_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, PostView{BlogPost: p, Author: p.Author.Public()})
	}
	return views, total, nil
}

// GetPost returns a published post; drafts are visible to their author
// and admins only.
func (s *BlogService) GetPost(ctx context.Context, slug string, who models.Identity) (PostView, error) {
	var post models.BlogPost
	if err := s.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
		return PostView{}, fmt.Errorf("post %q: %w", slug, notFound(err))
	}
	if !post.IsPublished && !canEditPost(who, post) {
		return PostView{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	return PostView{BlogPost: post, Author: post.Author.Public()}, nil
}

func (s *BlogService) CreatePost(ctx context.Context, who models.Identity, in PostInput) (models.BlogPost, error) {
	if !who.Role.CanTeach() {
		return models.BlogPost{}, fmt.Errorf("create post: %w", ErrForbidden)
	}
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.BlogPost{}, fmt.Errorf("post: %w", ErrValidation)
	}

	db := s.db.WithContext(ctx)
	slug, err := uniqueSlug(ctx, db, "blog_posts", in.Title)
	if err != nil {
		return models.BlogPost{}, err
	}

	post := models.BlogPost{
		AuthorID:    who.UserID,
		Slug:        slug,
		Title:       strings.TrimSpace(in.Title),
		Excerpt:     in.Excerpt,
		Body:        in.Body,
		CoverURL:    in.CoverURL,
		IsPublished: in.IsPublished,
	}
	if post.IsPublished {
		at := s.now().UTC()
		post.PublishedAt = &at
	}
	if err := db.Omit(clause.Associations).Create(&post).Error; err != nil {
		return models.BlogPost{}, err
	}
	return post, nil
}

// UpdatePost replaces the editable fields of a post. The slug is stable;
// published_at is set the first time the post goes live.
func (s *BlogService) UpdatePost(ctx context.Context, who models.Identity, slug string, in PostInput) (models.BlogPost, error) {
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.BlogPost{}, fmt.Errorf("post: %w", ErrValidation)
	}
	db := s.db.WithContext(ctx)

	var post models.BlogPost
	if err := db.Where("slug = ?", slug).First(&post).Error; err != nil {
		return models.BlogPost{}, fmt.Errorf("post %q: %w", slug, notFound(err))
	}
	if !canEditPost(who, post) {
		return models.BlogPost{}, fmt.Errorf("post %q: %w", slug, ErrForbidden)
	}

	updates := map[string]interface{}{
		"title":        strings.TrimSpace(in.Title),
		"excerpt":      in.Excerpt,
		"body":         in.Body,
		"cover_url":    in.CoverURL,
		"is_published": in.IsPublished,
	}
	if in.IsPublished && post.PublishedAt == nil {
		updates["published_at"] = s.now().UTC()
	}
	if err := db.Model(&post).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return models.BlogPost{}, err
	}
	if err := db.First(&post, post.ID).Error; err != nil {
		return models.BlogPost{}, err
	}
	return post, nil
}

func canEditPost(who models.Identity, post models.BlogPost) bool {
	if who.Anonymous() {
		return false
	}
	return who.IsAdmin() || (who.Role.CanTeach() && post.AuthorID == who.UserID)
}
