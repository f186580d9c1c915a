package app

import (
	"qbank_review_backend/docs"
	"qbank_review_backend/internal/config"
	"qbank_review_backend/internal/middleware"
	"qbank_review_backend/internal/model"
	"qbank_review_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/taxonomy/exams", c.taxonomy.ListExams)
		public.GET("/taxonomy/subjects", c.taxonomy.ListSubjects)
		public.GET("/taxonomy/topics", c.taxonomy.ListTopics)
	}

	// 需要登录的路由
	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		auth.GET("/me", c.auth.Me)
		auth.GET("/users/:id", c.user.GetProfile)
		auth.GET("/users", c.user.List)

		// 题目查询对全部流水线角色开放，学生只能看到已上架的题
		auth.GET("/questions", c.question.List)
		auth.GET("/questions/:id", c.question.Get)
		auth.GET("/questions/:id/history", c.question.History)
		auth.GET("/questions/:id/comments", c.question.Comments)
		auth.POST("/questions/:id/comments", c.question.AddComment)
		auth.GET("/questions/:id/variants", c.variant.List)

		// 看板
		auth.GET("/dashboard/queues", c.dashboard.QueueCounts)
		auth.GET("/dashboard/classifications", c.dashboard.Classifications)

		// 采集员
		gatherer := auth.Group("")
		gatherer.Use(middleware.RoleMiddleware(model.Gatherer))
		{
			gatherer.POST("/questions", c.question.Create)
			gatherer.POST("/questions/:id/resubmit", c.question.Resubmit)
		}

		// 审核员
		processor := auth.Group("")
		processor.Use(middleware.RoleMiddleware(model.Processor))
		{
			processor.POST("/questions/:id/approve", c.question.Approve)
			processor.POST("/questions/:id/reject", c.question.Reject)
			processor.PUT("/questions/:id/visibility", c.question.ToggleVisibility)
			processor.POST("/questions/:id/flag/review", c.flag.Review)
			processor.POST("/questions/:id/flag/counter-reject", c.flag.CounterReject)
		}

		// 创题人
		creator := auth.Group("")
		creator.Use(middleware.RoleMiddleware(model.Creator))
		{
			creator.POST("/questions/:id/submit-creator", c.question.SubmitByCreator)
			creator.POST("/questions/:id/variants", c.variant.Create)
		}

		// 讲解员
		explainer := auth.Group("")
		explainer.Use(middleware.RoleMiddleware(model.Explainer))
		{
			explainer.POST("/questions/:id/submit-explainer", c.question.SubmitByExplainer)
			explainer.POST("/questions/:id/explanation", c.question.AddExplanation)
		}

		// 质疑：提出方因题目状态而异，细粒度权限由服务层校验
		auth.POST("/questions/:id/flag", c.flag.Raise)
		auth.POST("/questions/:id/flag/dispute", c.flag.Dispute)
		auth.POST("/questions/:id/flag/correct", c.flag.Correct)

		// 媒体上传：创作链路角色可用
		media := auth.Group("/media")
		media.Use(middleware.RoleMiddleware(model.Gatherer, model.Creator, model.Explainer))
		{
			media.POST("/diagram", c.media.UploadDiagram)
			media.POST("/solution-video", c.media.UploadSolutionVideo)
		}
	}

	// 管理端
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.SuperadminMiddleware())
	{
		admin.PUT("/users/:id/status", c.user.SetStatus)
		admin.POST("/taxonomy/exams", c.taxonomy.CreateExam)
		admin.POST("/taxonomy/subjects", c.taxonomy.CreateSubject)
		admin.POST("/taxonomy/topics", c.taxonomy.CreateTopic)
	}
}
