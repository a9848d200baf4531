package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"smart-task-manager/internal/auth"
	"smart-task-manager/internal/handlers"
	"smart-task-manager/internal/middleware"
)

// SetupRoutes builds the gin engine and wraps it with CORS handling.
func SetupRoutes(h *handlers.Handler, tokens *auth.TokenManager, log zerolog.Logger, corsOrigins []string) http.Handler {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(log))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Smart Task Manager API is running",
		})
	})

	requireAuth := middleware.JWTAuthMiddleware(tokens)

	// Browsers cannot set headers on websocket upgrades; the middleware also
	// accepts ?token=.
	ginRouter.GET("/ws", requireAuth, h.WebSocket)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", h.Login)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/register", h.Register)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(requireAuth)
	{
		protectedRoutes.GET("/auth/me", h.Me)

		// Task endpoints
		protectedRoutes.GET("/tasks", h.GetTasks)
		protectedRoutes.GET("/tasks/overdue", h.GetOverdueTasks)
		protectedRoutes.GET("/tasks/status/:status", h.GetTasksByStatus)
		protectedRoutes.GET("/tasks/user/:userId", h.GetTasksByUser)
		protectedRoutes.GET("/tasks/:id", h.GetTaskByID)
		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.PUT("/tasks/:id", h.UpdateTask)
		protectedRoutes.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
		protectedRoutes.PATCH("/tasks/:id/assign", h.AssignTask)
		protectedRoutes.PATCH("/tasks/:id/priority", h.UpdateTaskPriority)
		protectedRoutes.DELETE("/tasks/:id", h.DeleteTask)
		protectedRoutes.GET("/stats/:userid", h.GetStatsByUser)

		// Project endpoints
		protectedRoutes.GET("/projects", h.GetProjects)
		protectedRoutes.POST("/projects", h.CreateProject)
		protectedRoutes.GET("/projects/:id", h.GetProjectByID)
		protectedRoutes.GET("/projects/:id/users", h.GetProjectUsers)
		protectedRoutes.GET("/projects/:id/tasks", h.GetProjectTasks)

		// Users endpoints
		protectedRoutes.GET("/users", h.GetAllUsers)
		protectedRoutes.POST("/users", h.CreateUser)
		protectedRoutes.GET("/users/:username", h.GetUserByUsername)
		protectedRoutes.PUT("/users/:username", h.UpdateUser)
		protectedRoutes.DELETE("/users/:username", h.DeleteUser)

		protectedRoutes.POST("/ai/classify-task", h.ClassifyTask)
	}

	return cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "Origin", "Cache-Control", "X-Requested-With", "X-CSRF-Token"},
		AllowCredentials: true,
	}).Handler(ginRouter)
}
