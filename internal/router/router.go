package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/config"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/handlers"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
	"gorm.io/gorm"
)

// SetupRouter wires middleware, handlers and routes.
func SetupRouter(cfg *config.Config, logger *logrus.Logger, db *gorm.DB, svc *services.Services) *gin.Engine {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Route not found")
	})

	healthHandler := handlers.NewHealthHandler(db, cfg.ProjectName, cfg.ProjectVersion)
	authHandler := handlers.NewAuthHandler(svc.Auth)
	userHandler := handlers.NewUserHandler(svc.Users)
	projectHandler := handlers.NewProjectHandler(svc.Projects)
	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	commentHandler := handlers.NewCommentHandler(svc.Comments)
	ganttHandler := handlers.NewGanttHandler(svc.Gantt)

	requireAuth := middleware.RequireAuth(svc.Auth)

	r.GET("/health", healthHandler.Health)
	r.POST("/signup", authHandler.Signup)
	r.POST("/token", authHandler.Token)
	r.POST("/logout", requireAuth, authHandler.Logout)

	api := r.Group("/api/v1", requireAuth)
	{
		userinfo := api.Group("/userinfo")
		{
			userinfo.GET("/", userHandler.GetMe)
			userinfo.PATCH("/", userHandler.UpdateMe)
		}

		users := api.Group("/users", middleware.RequireAdmin(svc.Access))
		{
			users.GET("/", userHandler.ListUsers)
			users.POST("/", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.POST("/:id/reset-password", userHandler.ResetPassword)
		}

		projects := api.Group("/projects")
		{
			projects.GET("/", projectHandler.ListProjects)
			projects.POST("/", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.GET("/:id/members", projectHandler.ListMembers)
			projects.POST("/:id/members", projectHandler.AddMember)
			projects.DELETE("/:id/members/:user_id", projectHandler.RemoveMember)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("/", taskHandler.ListTasks)
			tasks.GET("/mine", taskHandler.ListMyTasks)
			tasks.POST("/", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		api.GET("/gantt/:project_id", ganttHandler.GetGantt)

		comments := api.Group("/comments")
		{
			comments.GET("/:task_id", commentHandler.ListComments)
			comments.POST("/", commentHandler.CreateComment)
			comments.DELETE("/:comment_id", commentHandler.DeleteComment)
		}
	}

	return r
}
