package app

import (
	"lingo_edu_backend/docs"
	"lingo_edu_backend/internal/config"
	"lingo_edu_backend/internal/middleware"
	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 路线浏览对游客开放，已登录用户按角色放宽可见范围
		public.GET("/roadmaps", middleware.TryAuthMiddleware(cfg), c.roadmap.List)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

// registerStudentRoutes 学生及通用接口
func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)
	rg.PATCH("/me", c.auth.UpdateProfile)

	// 班级
	rg.POST("/classes/join", c.class.Join)

	// 路线与主题
	rg.GET("/roadmaps/:id", c.roadmap.Get)

	// 词汇学习
	rg.GET("/topics/:topicId/vocab", c.vocab.ByTopic)
	rg.GET("/topics/:topicId/progress", c.vocab.Progress)
	rg.GET("/vocab/search", c.vocab.Search)
	rg.POST("/vocab/:id/toggle", c.vocab.ToggleLearned)

	// 练习（合并视图）
	rg.GET("/topics/:topicId/exercises", c.exercise.List)
	rg.POST("/topics/:topicId/exercises/refresh", c.exercise.Refresh)
}

// registerTeacherRoutes 教师接口，管理员天然放行
func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		// 班级管理
		teacher.POST("/classes", c.class.Create)
		teacher.GET("/classes", c.class.List)
		teacher.GET("/classes/:id", c.class.Get)
		teacher.PUT("/classes/:id", c.class.Update)
		teacher.DELETE("/classes/:id", c.class.Delete)
		teacher.GET("/classes/:id/students", c.class.Students)
		teacher.DELETE("/classes/:id/students/:userId", c.class.RemoveStudent)
		teacher.POST("/classes/:id/students/import", c.class.ImportStudents)

		// 路线编辑
		teacher.POST("/roadmaps", c.roadmap.Create)
		teacher.PUT("/roadmaps/:id", c.roadmap.Update)
		teacher.DELETE("/roadmaps/:id", c.roadmap.Delete)
		teacher.POST("/roadmaps/:id/topics", c.roadmap.AddTopic)
		teacher.PUT("/roadmaps/:id/topics/reorder", c.roadmap.ReorderTopics)
		teacher.PUT("/topics/:topicId", c.roadmap.UpdateTopic)
		teacher.DELETE("/topics/:topicId", c.roadmap.DeleteTopic)

		// 词汇编辑
		teacher.POST("/topics/:topicId/vocab", c.vocab.Create)
		teacher.PATCH("/vocab/:id", c.vocab.Update)
		teacher.DELETE("/vocab/:id", c.vocab.Delete)

		// 练习编辑
		teacher.POST("/topics/:topicId/exercises", c.exercise.Create)
		teacher.PATCH("/exercises/:id", c.exercise.Update)
		teacher.DELETE("/exercises/:id", c.exercise.Delete)

		// AI内容生成与媒体上传
		teacher.POST("/topics/:topicId/vocab/generate", c.content.GenerateVocab)
		teacher.POST("/topics/:topicId/exercises/generate", c.content.GenerateExercises)
		teacher.POST("/media", c.content.UploadMedia)

		// 报表
		teacher.GET("/reports/classes/:id", c.report.ClassProgress)
	}
}

// registerAdminRoutes 管理员接口
func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/reports/roles", c.report.RoleDistribution)
	}
}
