package controllers

import (
	"learnhub/backend/config"
	"learnhub/backend/middleware"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type BlogController struct {
	Blog *services.BlogService
	Cfg  *config.Config
	Log  *utils.Logger
}

func NewBlogController(blog *services.BlogService, cfg *config.Config, log *utils.Logger) *BlogController {
	return &BlogController{Blog: blog, Cfg: cfg, Log: log}
}

// ListPosts godoc
// @Summary Published blog posts, newest first
// @Tags blog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.PaginatedResponse
// @Router /blog [get]
func (bc *BlogController) ListPosts(c *fiber.Ctx) error {
	page := utils.ResolvePage(c)
	posts, total, err := bc.Blog.ListPosts(c.UserContext(), page)
	if err != nil {
		return respondError(c, bc.Log, err)
	}
	return utils.Paginate(c, posts, total, page)
}

// GetPost godoc
// @Summary Blog post by slug
// @Tags blog
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /blog/{slug} [get]
func (bc *BlogController) GetPost(c *fiber.Ctx) error {
	post, err := bc.Blog.GetPost(c.UserContext(), c.Params("slug"), middleware.CurrentIdentity(c))
	if err != nil {
		return respondError(c, bc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, post)
}

// CreatePost godoc
// @Summary Write a blog post
// @Tags blog
// @Accept json
// @Produce json
// @Param input body services.PostInput true "Post"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /blog [post]
func (bc *BlogController) CreatePost(c *fiber.Ctx) error {
	var input services.PostInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	post, err := bc.Blog.CreatePost(c.UserContext(), middleware.CurrentIdentity(c), input)
	if err != nil {
		return respondError(c, bc.Log, err)
	}
	return utils.Created(c, post)
}

// UpdatePost godoc
// @Summary Edit a blog post
// @Tags blog
// @Accept json
// @Produce json
// @Param slug path string true "Post slug"
// @Param input body services.PostInput true "Post"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /blog/{slug} [put]
func (bc *BlogController) UpdatePost(c *fiber.Ctx) error {
	var input services.PostInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	post, err := bc.Blog.UpdatePost(c.UserContext(), middleware.CurrentIdentity(c), c.Params("slug"), input)
	if err != nil {
		return respondError(c, bc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, post)
}
