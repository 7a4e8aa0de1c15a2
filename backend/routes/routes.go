package routes

import (
	"quitcoach/backend/config"
	"quitcoach/backend/controllers"
	"quitcoach/backend/middleware"
	"quitcoach/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	progressSvc := services.NewProgressService(db, cfg)
	planSvc := services.NewPlanService(db, cfg, progressSvc)
	statsSvc := services.NewStatsService(db, cfg)
	achievementSvc := services.NewAchievementService(db, cfg)
	coachSvc := services.NewCoachService(db, cfg)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Plan routes
	planController := controllers.NewPlanController(planSvc, cfg)
	coachController := controllers.NewCoachController(coachSvc, cfg)
	plans := app.Group("/api/plans", authMiddleware)
	plans.Post("/", planController.CreatePlan)
	plans.Get("/", planController.ListPlans)
	plans.Put("/:id/activate", planController.ActivatePlan)
	plans.Put("/:id/complete", planController.CompletePlan)
	plans.Delete("/:id", planController.DeletePlan)
	plans.Post("/:id/interactions", coachController.RecordInteraction)
	plans.Get("/:id/history", coachController.PlanHistory)

	// Progress routes
	progressController := controllers.NewProgressController(progressSvc, statsSvc, cfg)
	progress := app.Group("/api/progress", authMiddleware)
	progress.Post("/checkin", progressController.RecordCheckin)
	progress.Get("/", progressController.ListCheckins)
	progress.Get("/stats", progressController.GetStats)
	progress.Get("/chart", progressController.GetChart)
	progress.Put("/:date", progressController.UpdateCheckin)
	progress.Delete("/:date", progressController.DeleteCheckin)

	// Achievement routes
	achievementController := controllers.NewAchievementController(achievementSvc, cfg)
	achievements := app.Group("/api/achievements", authMiddleware)
	achievements.Get("/", achievementController.ListAchievements)
	achievements.Post("/evaluate", achievementController.Evaluate)
	achievements.Post("/award", adminMiddleware, achievementController.Award)
}
