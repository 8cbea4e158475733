package routes

import (
	"log"

	"ecoaware/backend/config"
	"ecoaware/backend/controllers"
	"ecoaware/backend/middleware"
	"ecoaware/backend/services/activity"
	"ecoaware/backend/utils"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NewApp builds the configured Fiber application with every route mounted.
func NewApp(db *gorm.DB, cfg *config.Config, logger *log.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "EcoAware API",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: utils.ErrorHandler(logger),
	})

	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.CorsMiddleware(cfg.AllowedOrigins))
	app.Use(middleware.LoggingMiddleware(logger))

	SetupRoutes(app, db, cfg)
	return app
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	if cfg.RateLimit {
		api.Use(middleware.GlobalRateLimiter())
	}

	requireAuth := middleware.RequireAuth(db, cfg)
	optionalAuth := middleware.OptionalAuth(db, cfg)
	adminOnly := middleware.AdminOnly()
	tracker := activity.NewTracker(db)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	auth := api.Group("/auth")
	if cfg.RateLimit {
		auth.Post("/register", middleware.RegisterRateLimiter(), authController.Register)
		auth.Post("/login", middleware.LoginRateLimiter(), authController.Login)
	} else {
		auth.Post("/register", authController.Register)
		auth.Post("/login", authController.Login)
	}
	auth.Post("/logout", authController.Logout)
	auth.Get("/status", optionalAuth, authController.Status)
	auth.Get("/me", requireAuth, authController.Me)
	auth.Put("/me", requireAuth, authController.UpdateMe)
	auth.Put("/change-password", requireAuth, authController.ChangePassword)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	api.Get("/user/profile", requireAuth, userController.GetProfile)
	api.Get("/user/progress", requireAuth, userController.GetProgress)

	// Overview routes
	overviewController := controllers.NewOverviewController(db, cfg)
	api.Get("/overview/articles", overviewController.SearchArticles)
	api.Get("/overview/tests", overviewController.SearchTests)

	// Game routes
	gamesController := controllers.NewGamesController(db, cfg)
	games := api.Group("/games/trash-sorting")
	games.Post("/results", requireAuth, gamesController.SaveResult)
	games.Get("/leaderboard", gamesController.Leaderboard)
	games.Get("/stats", optionalAuth, gamesController.Stats)
	games.Get("/recommendations", requireAuth, gamesController.Recommendations)

	// Tests routes; fixed paths before /:id
	testsController := controllers.NewTestsController(db, cfg, tracker)
	tests := api.Group("/tests")
	tests.Get("/", testsController.GetTests)
	tests.Get("/completed", requireAuth, testsController.GetCompletedTests)
	tests.Post("/track-completion", requireAuth, testsController.TrackCompletion)
	tests.Get("/category/:name", testsController.GetTestsByCategory)
	tests.Get("/search/:query", testsController.SearchTests)
	tests.Get("/:id", testsController.GetTest)
	tests.Get("/:id/start", testsController.StartTest)
	tests.Post("/:id/check", testsController.CheckTest)
	tests.Post("/", requireAuth, adminOnly, testsController.CreateTest)
	tests.Put("/:id", requireAuth, adminOnly, testsController.UpdateTest)
	tests.Delete("/:id", requireAuth, adminOnly, testsController.DeleteTest)

	// Articles routes
	articlesController := controllers.NewArticlesController(db, cfg, tracker)
	articles := api.Group("/articles")
	articles.Get("/", articlesController.GetArticles)
	articles.Get("/viewed", requireAuth, articlesController.GetViewedArticles)
	articles.Post("/track-view", requireAuth, articlesController.TrackView)
	articles.Get("/:id", articlesController.GetArticle)
	articles.Post("/", requireAuth, adminOnly, articlesController.CreateArticle)
	articles.Put("/:id", requireAuth, adminOnly, articlesController.UpdateArticle)
	articles.Delete("/:id", requireAuth, adminOnly, articlesController.DeleteArticle)
}
