package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-timesheet-api/internal/config"
	"github.com/yukikurage/crm-timesheet-api/internal/handlers"
	"github.com/yukikurage/crm-timesheet-api/internal/middleware"
	"github.com/yukikurage/crm-timesheet-api/internal/models"
	"github.com/yukikurage/crm-timesheet-api/internal/repository"
	"github.com/yukikurage/crm-timesheet-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Tasks     *handlers.TaskHandler
	Timesheet *handlers.TimesheetHandler
	Dashboard *handlers.DashboardHandler
}

// Setup wires repositories, services and handlers over db and returns the engine.
func Setup(db *gorm.DB, cfg *config.Config, log *zap.Logger) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewTimesheetRepository(db)
	reportRepo := repository.NewReportRepository(db)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL)
	authService := services.NewAuthService(userRepo, tokens)
	userService := services.NewUserService(userRepo)

	var drafter services.TaskDrafter
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	taskService := services.NewTaskService(taskRepo, userRepo, drafter)
	timesheetService := services.NewTimesheetService(entryRepo, taskService)
	reportService := services.NewReportService(reportRepo)

	var sessions middleware.SessionChecker
	if cfg.RevokeOnCredentialChange {
		sessions = authService
	}
	gate := middleware.NewGate(tokens, sessions, log)

	return New(Handlers{
		Auth:      handlers.NewAuthHandler(authService, tokens.TTL(), log),
		Users:     handlers.NewUserHandler(userService, log),
		Tasks:     handlers.NewTaskHandler(taskService, log),
		Timesheet: handlers.NewTimesheetHandler(timesheetService, log),
		Dashboard: handlers.NewDashboardHandler(reportService, log),
	}, gate, log)
}

// New mounts the route table.
func New(h Handlers, gate *middleware.Gate, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(log),
		middleware.SecurityHeaders(),
		middleware.Preflight(),
	)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CRM Timesheet API is running",
		})
	})

	authenticated := gate.Require()
	adminOnly := gate.Require(models.RoleAdmin)
	privileged := gate.Require(models.RoleAdmin, models.RoleHR)
	withID := middleware.RequireIDParam()

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.GET("/me", authenticated, h.Auth.Me)
			auth.POST("/change-password", authenticated, h.Auth.ChangePassword)
		}

		// User administration (Admin only, except the assignee picker)
		users := api.Group("/users")
		{
			users.GET("/assignable", authenticated, h.Users.ListAssignable)
			users.GET("", adminOnly, h.Users.ListUsers)
			users.POST("", adminOnly, h.Users.CreateUser)
			users.POST("/:id/reset", adminOnly, withID, h.Users.ResetPassword)
			users.POST("/:id/disable", adminOnly, withID, h.Users.DisableUser)
			users.POST("/:id/enable", adminOnly, withID, h.Users.EnableUser)
			users.PATCH("/:id/enable", adminOnly, withID, h.Users.EnableUser)
			users.DELETE("/:id", adminOnly, withID, h.Users.DeleteUser)
		}

		// Task routes; listing is open to anonymous callers
		tasks := api.Group("/tasks")
		{
			tasks.GET("", gate.Optional(), h.Tasks.ListTasks)
			tasks.POST("", authenticated, h.Tasks.CreateTask)
			tasks.POST("/generate", authenticated, h.Tasks.GenerateTasks)
			tasks.GET("/:id", authenticated, withID, h.Tasks.GetTask)
			tasks.PUT("/:id", authenticated, withID, h.Tasks.UpdateTask)
			tasks.PATCH("/:id", authenticated, withID, h.Tasks.UpdateTask)
			tasks.PATCH("/:id/assign", authenticated, withID, h.Tasks.AssignTask)
			tasks.DELETE("/:id", authenticated, withID, h.Tasks.DeleteTask)
		}

		// Timesheet routes
		timesheet := api.Group("/timesheet")
		timesheet.Use(authenticated)
		{
			timesheet.GET("", h.Timesheet.ListEntries)
			timesheet.POST("", h.Timesheet.CreateEntry)
			timesheet.POST("/bulk", h.Timesheet.BulkCreate)
			timesheet.PUT("/:id", withID, h.Timesheet.UpdateEntry)
			timesheet.PATCH("/:id", withID, h.Timesheet.UpdateEntry)
			timesheet.DELETE("/:id", withID, h.Timesheet.DeleteEntry)
			timesheet.POST("/tasks/:id/complete", withID, h.Timesheet.CompleteTask)
			timesheet.POST("/tasks/:id/reopen", privileged, withID, h.Timesheet.ReopenTask)
		}

		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("/summary", authenticated, h.Dashboard.Summary)
		}
	}

	return r
}
