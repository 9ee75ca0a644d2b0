package app

import (
	"cptncf_backend/docs"
	"cptncf_backend/internal/config"
	"cptncf_backend/internal/middleware"
	"cptncf_backend/internal/model"

	"cptncf_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware())
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerFacultyRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)

	// Assessment catalog, read side
	rg.GET("/assessments", c.assessment.List)
	rg.GET("/assessments/available", c.assessment.ListAvailable)
	rg.GET("/assessments/:id", c.assessment.Get)

	// Attempt lifecycle
	rg.POST("/attempts", c.attempt.Start)
	rg.GET("/attempts", c.attempt.History)
	rg.GET("/attempts/:id", c.attempt.State)
	rg.PUT("/attempts/:id/answer", c.attempt.SelectAnswer)
	rg.POST("/attempts/:id/lock", c.attempt.LockAnswer)
	rg.PUT("/attempts/:id/rationale", c.attempt.SelectRationale)
	rg.POST("/attempts/:id/submit", c.attempt.SubmitRationale)
	rg.POST("/attempts/:id/flag", c.attempt.Flag)
	rg.PUT("/attempts/:id/navigate", c.attempt.Navigate)
	rg.POST("/attempts/:id/abandon", c.attempt.Abandon)

	// Peer teaching evaluations
	rg.POST("/evaluations", c.evaluation.Submit)
	rg.GET("/evaluations/received", c.evaluation.Received)
	rg.GET("/evaluations/given", c.evaluation.Given)

	// Weekly reflections
	rg.POST("/reflections", c.reflection.Submit)
	rg.GET("/reflections", c.reflection.Mine)

	// Grades, own view
	rg.GET("/grades/me", c.grade.MyGrade)

	// Teaching materials
	rg.POST("/materials", c.material.Upload)
	rg.GET("/materials", c.material.Mine)
	rg.GET("/groups/:id/materials", c.material.ByGroupWeek)
	rg.DELETE("/materials/:id", c.material.Delete)
}

func (a *App) registerFacultyRoutes(rg *gin.RouterGroup, c *controllers) {
	faculty := rg.Group("/")
	faculty.Use(middleware.RoleMiddleware(model.Faculty))
	{
		// Assessment authoring
		faculty.POST("/assessments", c.assessment.Create)
		faculty.PUT("/assessments/:id", c.assessment.Update)
		faculty.DELETE("/assessments/:id", c.assessment.Delete)
		faculty.POST("/assessments/:id/publish", c.assessment.Publish)
		faculty.POST("/assessments/:id/questions", c.assessment.AddQuestion)
		faculty.GET("/assessments/:id/results", c.attempt.Results)
		faculty.DELETE("/questions/:id", c.assessment.DeleteQuestion)

		// Gaming-pattern analytics and intervention alerts
		faculty.GET("/analytics/class", c.analytics.ClassOverview)
		faculty.GET("/analytics/patterns", c.analytics.ListPatterns)
		faculty.GET("/analytics/students/:id/patterns", c.analytics.StudentPatterns)
		faculty.GET("/analytics/students/:id/interventions", c.analytics.Interventions)
		faculty.POST("/analytics/students/:id/recompute", c.analytics.Recompute)
		faculty.GET("/analytics/alerts", c.analytics.ListAlerts)
		faculty.POST("/analytics/alerts/:id/acknowledge", c.analytics.AcknowledgeAlert)
		faculty.POST("/analytics/alerts/:id/resolve", c.analytics.ResolveAlert)

		// Grade administration
		faculty.GET("/grades", c.grade.List)
		faculty.GET("/grades/students/:id", c.grade.StudentGrade)
		faculty.GET("/grades/students/:id/report", c.grade.Report)
		faculty.POST("/grades/recompute", c.grade.RecomputeAll)

		// Evaluation oversight
		faculty.GET("/evaluations", c.evaluation.ByWeek)

		// Reflection review
		faculty.POST("/reflections/:id/review", c.reflection.Review)
		faculty.GET("/reflections/students/:id", c.reflection.StudentReflections)

		// Roster and study groups
		faculty.GET("/students", c.user.ListStudents)
		faculty.PUT("/students/:id/attendance", c.user.SetAttendance)
		faculty.GET("/groups", c.user.ListGroups)
		faculty.POST("/groups", c.user.CreateGroup)
		faculty.POST("/groups/:id/members", c.user.AssignMember)
		faculty.POST("/groups/:id/rotate", c.user.Rotate)
	}
}
