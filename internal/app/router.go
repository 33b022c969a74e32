package app

import (
	"mentorprog_backend/docs"
	"mentorprog_backend/internal/config"
	"mentorprog_backend/internal/middleware"
	"mentorprog_backend/internal/model"
	"mentorprog_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 学生视角：浏览内容、做题、看自己的进度
		authGroup.GET("/subjects", c.subject.ListSubjects)
		authGroup.GET("/subjects/:subjectId", c.subject.GetSubject)
		authGroup.GET("/subjects/:subjectId/topics", c.topic.ListTopics)
		authGroup.GET("/subjects/:subjectId/topics/:topicId", c.topic.GetTopic)
		authGroup.GET("/subjects/:subjectId/topics/:topicId/quizzes", c.quiz.ListQuizzes)
		authGroup.POST("/subjects/:subjectId/topics/:topicId/quizzes/:quizId/submit", c.quiz.SubmitQuiz)
		authGroup.GET("/progress", c.progress.GetUserProgress)

		// 教师/管理员：内容创作和结果表
		teacher := authGroup.Group("")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/subjects", c.subject.CreateSubject)
			teacher.PUT("/subjects/:subjectId", c.subject.UpdateSubject)
			teacher.DELETE("/subjects/:subjectId", c.subject.DeleteSubject)
			teacher.POST("/subjects/:subjectId/topics", c.topic.CreateTopic)
			teacher.PUT("/subjects/:subjectId/topics/:topicId", c.topic.UpdateTopic)
			teacher.DELETE("/subjects/:subjectId/topics/:topicId", c.topic.DeleteTopic)
			teacher.GET("/subjects/:subjectId/topics/:topicId/attempts", c.progress.ListTopicAttempts)
		}
	}
}
