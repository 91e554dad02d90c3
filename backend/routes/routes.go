package routes

import (
	"time"

	"learnhub/backend/config"
	"learnhub/backend/controllers"
	"learnhub/backend/middleware"
	"learnhub/backend/models"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the optional collaborators of the API. Nil values disable the
// feature they back.
type Deps struct {
	Leaderboard services.LeaderboardCache
	Mailer      services.Mailer
	Uploader    services.AvatarUploader
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, log *utils.Logger, deps Deps) {
	leaderboardSvc := services.NewLeaderboardService(db, deps.Leaderboard, cfg.LeaderboardTTL, log)
	progressSvc := services.NewProgressService(db)
	qaSvc := services.NewQAService(db, leaderboardSvc)
	courseSvc := services.NewCourseService(db)
	blogSvc := services.NewBlogService(db)
	userSvc := services.NewUserService(db, deps.Mailer, deps.Uploader, log)
	dashboardSvc := services.NewDashboardService(db)

	authController := controllers.NewAuthController(userSvc, cfg, log)
	progressController := controllers.NewProgressController(progressSvc, cfg, log)
	qaController := controllers.NewQAController(qaSvc, leaderboardSvc, cfg, log)
	coursesController := controllers.NewCoursesController(courseSvc, cfg, log)
	blogController := controllers.NewBlogController(blogSvc, cfg, log)
	userController := controllers.NewUserController(userSvc, cfg, log)
	adminController := controllers.NewAdminController(userSvc, dashboardSvc, cfg, log)

	// Middleware
	requireAuth := middleware.RequireAuth()
	optionalAuth := middleware.OptionalAuth()
	teacherOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", middleware.Authenticate(cfg, db))
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	auth := api.Group("/auth")
	authLimit := middleware.RateLimit(10, time.Minute)
	auth.Post("/register", authLimit, authController.Register)
	auth.Post("/login", authLimit, authController.Login)
	auth.Post("/logout", authController.Logout)
	auth.Get("/me", requireAuth, authController.Me)

	// Catalog routes
	api.Get("/courses", optionalAuth, coursesController.ListCourses)
	api.Get("/courses/:slug", optionalAuth, coursesController.GetCourse)
	api.Post("/courses/:slug/enroll", requireAuth, coursesController.Enroll)
	api.Get("/courses/:slug/progress", requireAuth, progressController.GetCourseProgress)
	api.Get("/me/courses", requireAuth, coursesController.MyCourses)

	teach := api.Group("/teach", teacherOnly)
	teach.Post("/courses", coursesController.CreateCourse)
	teach.Post("/courses/:slug/chapters", coursesController.AddChapter)
	teach.Patch("/courses/:slug/publish", coursesController.SetPublished)
	teach.Post("/chapters/:id/lessons", coursesController.AddLesson)

	// Lesson progress and Q&A routes
	lessons := api.Group("/lessons")
	lessons.Post("/:id/video/progress", optionalAuth, progressController.RecordVideoProgress)
	lessons.Get("/:id/progress", requireAuth, progressController.GetLessonProgress)
	lessons.Post("/:id/complete", requireAuth, progressController.CompleteLesson)
	lessons.Get("/questions/:id", optionalAuth, qaController.GetQuestion)
	lessons.Post("/questions/:id/answers", requireAuth, qaController.PostAnswer)
	lessons.Post("/questions/:id/like", requireAuth, qaController.LikeQuestion)
	lessons.Post("/answers/:id/like", requireAuth, qaController.LikeAnswer)
	lessons.Post("/answers/:id/accept", requireAuth, qaController.AcceptAnswer)
	lessons.Get("/:id/questions", optionalAuth, qaController.ListQuestions)
	lessons.Post("/:id/questions", requireAuth, qaController.AskQuestion)

	api.Get("/qa/most-helpful", qaController.MostHelpful)

	// Blog routes
	api.Get("/blog", blogController.ListPosts)
	api.Get("/blog/:slug", optionalAuth, blogController.GetPost)
	api.Post("/blog", teacherOnly, blogController.CreatePost)
	api.Put("/blog/:slug", teacherOnly, blogController.UpdatePost)

	// User routes
	users := api.Group("/users")
	users.Get("/profile", requireAuth, userController.GetProfile)
	users.Put("/profile", requireAuth, userController.UpdateProfile)
	users.Post("/profile/avatar", requireAuth, userController.UploadAvatar)
	users.Get("/profile/activity", requireAuth, userController.GetActivity)
	users.Get("/:username", userController.GetPublicProfile)

	// Admin routes
	admin := api.Group("/admin", adminOnly)
	admin.Get("/stats", adminController.Stats)
	admin.Get("/users", adminController.ListUsers)
	admin.Patch("/users/:id/role", adminController.SetRole)
	admin.Patch("/users/:id/active", adminController.SetActive)
}
