package app

import (
	"sst_backend/docs"
	"sst_backend/internal/config"
	"sst_backend/internal/middleware"
	"sst_backend/internal/model"
	"sst_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Health)

	// Public routes
	public := router.Group("/api")
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.GET("/certificates/verify/:code", c.certificate.Verify)
	}

	// Authenticated routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		api.GET("/auth/me", c.auth.Me)

		// Catalog
		api.GET("/courses", c.course.List)
		api.GET("/courses/:id", c.course.Get)
		api.GET("/courses/:id/progress", c.progress.CourseProgress)

		// Enrollment lifecycle
		api.POST("/enrollments", c.enrollment.Enroll)
		api.GET("/enrollments/mine", c.enrollment.Mine)
		api.POST("/enrollments/:id/start", c.enrollment.Start)
		api.POST("/enrollments/:id/cancel", c.enrollment.Cancel)

		// Material progress
		api.POST("/materials/:id/start", c.progress.StartMaterial)
		api.PUT("/materials/:id/progress", c.progress.UpdateMaterial)
		api.POST("/materials/:id/complete", c.progress.CompleteMaterial)
		api.GET("/progress/mine", c.progress.MyProgress)

		// Interactive lessons
		api.GET("/lessons/:id", c.lesson.Get)
		api.POST("/lessons/:id/start", c.lesson.Start)
		api.POST("/lessons/:id/slides/:slideId/view", c.lesson.ViewSlide)
		api.POST("/lessons/:id/slides/:slideId/quiz", c.lesson.SubmitQuiz)
		api.POST("/lessons/:id/complete", c.lesson.Complete)

		// Evaluations
		api.GET("/evaluations/:id", c.evaluation.Get)
		api.POST("/evaluations/:id/attempts", c.evaluation.StartAttempt)
		api.GET("/evaluations/:id/attempts", c.evaluation.Attempts)
		api.POST("/attempts/:attemptId/submit", c.evaluation.SubmitAttempt)
		api.GET("/attempts/:attemptId", c.evaluation.AttemptReview)

		// Surveys
		api.GET("/surveys", c.survey.List)
		api.GET("/surveys/:id", c.survey.Get)
		api.POST("/surveys/:id/responses", c.survey.Respond)
		api.GET("/surveys/:id/status", c.survey.MyStatus)

		// Certificates
		api.GET("/certificates/mine", c.certificate.Mine)
		api.GET("/certificates/:id", c.certificate.Get)

		// Notifications
		api.GET("/notifications", c.notification.List)
		api.POST("/notifications/:id/read", c.notification.MarkRead)
		api.GET("/notifications/unread-count", c.notification.UnreadCount)
	}

	// Trainer / admin routes
	staff := router.Group("/api")
	staff.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Trainer, model.Supervisor))
	{
		staff.POST("/courses", c.course.Create)
		staff.PUT("/courses/:id", c.course.Update)
		staff.POST("/courses/:id/publish", c.course.Publish)
		staff.POST("/courses/:id/archive", c.course.Archive)
		staff.POST("/courses/:id/modules", c.course.AddModule)
		staff.POST("/modules/:moduleId/materials", c.course.AddMaterial)
		staff.POST("/modules/:moduleId/lessons", c.lesson.Create)
		staff.POST("/lessons/:id/publish", c.lesson.Publish)
		staff.POST("/materials/:id/file", c.course.UploadMaterialFile)
		staff.DELETE("/materials/:id", c.course.DeleteMaterial)
		staff.DELETE("/materials/:id/progress/:userId", c.progress.ResetMaterial)

		staff.GET("/courses/:id/enrollments", c.enrollment.ByCourse)
		staff.POST("/enrollments/:id/suspend", c.enrollment.Suspend)
		staff.POST("/enrollments/:id/resume", c.enrollment.Resume)
		staff.POST("/enrollments/:id/complete", c.enrollment.Complete)

		staff.POST("/surveys", c.survey.Create)
		staff.POST("/surveys/:id/publish", c.survey.Publish)
		staff.GET("/surveys/:id/responses", c.survey.Responses)
		staff.GET("/evaluations/:id/results", c.evaluation.Results)

		staff.POST("/workers", c.worker.Create)
		staff.GET("/workers", c.worker.List)
		staff.GET("/workers/:id", c.worker.Get)
		staff.POST("/workers/:id/link", c.worker.LinkUser)
		staff.DELETE("/workers/:id/link", c.worker.UnlinkUser)
		staff.POST("/workers/:id/reinductions", c.worker.ScheduleReinduction)
		staff.GET("/workers/:id/reinductions", c.worker.Reinductions)

		staff.GET("/dashboard", c.dashboard.Overview)
	}

	// Admin-only routes
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/certificates/:id/revoke", c.certificate.Revoke)
	}
}
