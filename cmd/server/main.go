package main

import (
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/config"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/database"
	"github.com/tasklight/tasklight/internal/handlers"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/repository"
	"github.com/tasklight/tasklight/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()
	r.Use(middleware.RequestID())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo)
	projectService := services.NewProjectService(projectRepo, taskRepo)
	categoryService := services.NewCategoryService(categoryRepo, taskRepo)
	tagService := services.NewTagService(tagRepo, taskRepo)
	reminderService := services.NewReminderService(reminderRepo, taskRepo, settingsRepo, services.LogNotifier{})
	settingsService := services.NewSettingsService(settingsRepo)
	suggestionService := services.NewSuggestionService(suggestionRepo, taskRepo)
	analyticsService := services.NewAnalyticsService(taskRepo, projectRepo)
	aiService := services.NewAIService(cfg.OpenAIAPIKey)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	projectHandler := handlers.NewProjectHandler(projectService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	tagHandler := handlers.NewTagHandler(tagService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	aiHandler := handlers.NewAIHandler(aiService, suggestionService)

	// Background reminder processing
	scheduler := services.NewScheduler(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.ReminderInterval, func() {
		processed, err := reminderService.ProcessDue(time.Now())
		if err != nil {
			log.Printf("reminder batch failed: %v", err)
			return
		}
		if processed > 0 {
			log.Printf("dispatched %d reminders", processed)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule reminder batch: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Tasklight API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PATCH("/me", middleware.RequireAuth(), authHandler.UpdateProfile)
		}

		// Task routes: reads degrade to empty without a session, writes
		// require one.
		tasks := api.Group("/tasks")
		{
			tasks.GET("", middleware.OptionalAuth(), taskHandler.ListTasks)
			tasks.GET("/today", middleware.OptionalAuth(), taskHandler.ListToday)
			tasks.GET("/upcoming", middleware.OptionalAuth(), taskHandler.ListUpcoming)
			tasks.GET("/overdue", middleware.OptionalAuth(), taskHandler.ListOverdue)
			tasks.GET("/search", middleware.OptionalAuth(), taskHandler.SearchTasks)
			tasks.GET("/:id", middleware.OptionalAuth(), taskHandler.GetTask)
			tasks.GET("/:id/subtasks", middleware.OptionalAuth(), taskHandler.ListSubtasks)
			tasks.GET("/:id/tags", middleware.OptionalAuth(), tagHandler.ListTagsForTask)
			tasks.GET("/:id/reminders", middleware.OptionalAuth(), reminderHandler.ListByTask)

			tasks.POST("", middleware.RequireAuth(), taskHandler.CreateTask)
			tasks.PATCH("/:id", middleware.RequireAuth(), taskHandler.UpdateTask)
			tasks.POST("/:id/toggle", middleware.RequireAuth(), taskHandler.ToggleTask)
			tasks.POST("/:id/complete", middleware.RequireAuth(), taskHandler.CompleteTask)
			tasks.DELETE("/:id", middleware.RequireAuth(), taskHandler.DeleteTask)
			tasks.POST("/:id/restore", middleware.RequireAuth(), taskHandler.RestoreTask)
			tasks.DELETE("/:id/permanent", middleware.RequireAuth(), taskHandler.HardDeleteTask)
			tasks.POST("/:id/subtasks", middleware.RequireAuth(), taskHandler.CreateSubtasks)
			tasks.POST("/:id/tags/:tagId", middleware.RequireAuth(), tagHandler.AddTagToTask)
			tasks.DELETE("/:id/tags/:tagId", middleware.RequireAuth(), tagHandler.RemoveTagFromTask)
		}

		// Project routes
		projects := api.Group("/projects")
		{
			projects.GET("", middleware.OptionalAuth(), projectHandler.ListProjects)
			projects.GET("/:id", middleware.OptionalAuth(), projectHandler.GetProject)
			projects.POST("", middleware.RequireAuth(), projectHandler.CreateProject)
			projects.PATCH("/:id", middleware.RequireAuth(), projectHandler.UpdateProject)
			projects.DELETE("/:id", middleware.RequireAuth(), projectHandler.DeleteProject)
		}

		// Category routes
		categories := api.Group("/categories")
		{
			categories.GET("", middleware.OptionalAuth(), categoryHandler.ListCategories)
			categories.GET("/:id", middleware.OptionalAuth(), categoryHandler.GetCategory)
			categories.POST("", middleware.RequireAuth(), categoryHandler.CreateCategory)
			categories.PATCH("/:id", middleware.RequireAuth(), categoryHandler.UpdateCategory)
			categories.DELETE("/:id", middleware.RequireAuth(), categoryHandler.DeleteCategory)
		}

		// Tag routes
		tags := api.Group("/tags")
		{
			tags.GET("", middleware.OptionalAuth(), tagHandler.ListTags)
			tags.GET("/:id/tasks", middleware.OptionalAuth(), tagHandler.ListTasksForTag)
			tags.POST("", middleware.RequireAuth(), tagHandler.CreateTag)
			tags.PATCH("/:id", middleware.RequireAuth(), tagHandler.UpdateTag)
			tags.DELETE("/:id", middleware.RequireAuth(), tagHandler.DeleteTag)
		}

		// Reminder routes
		reminders := api.Group("/reminders")
		{
			reminders.GET("", middleware.OptionalAuth(), reminderHandler.ListReminders)
			reminders.GET("/upcoming", middleware.OptionalAuth(), reminderHandler.ListUpcoming)
			reminders.GET("/overdue", middleware.OptionalAuth(), reminderHandler.ListOverdue)
			reminders.GET("/:id", middleware.OptionalAuth(), reminderHandler.GetReminder)
			reminders.PATCH("/:id", middleware.RequireAuth(), reminderHandler.UpdateReminder)
			reminders.POST("", middleware.RequireAuth(), reminderHandler.CreateReminder)
			reminders.POST("/from-task", middleware.RequireAuth(), reminderHandler.CreateFromTask)
			reminders.POST("/:id/notified", middleware.RequireAuth(), reminderHandler.MarkNotified)
			reminders.DELETE("/:id", middleware.RequireAuth(), reminderHandler.DeleteReminder)
		}

		// Settings routes (protected)
		settings := api.Group("/settings")
		settings.Use(middleware.RequireAuth())
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.PATCH("", settingsHandler.UpdateSettings)
			settings.POST("/reset", settingsHandler.ResetSettings)
		}

		// Analytics routes (protected)
		analytics := api.Group("/analytics")
		analytics.Use(middleware.RequireAuth())
		{
			analytics.GET("/completion-rate", analyticsHandler.GetCompletionRate)
			analytics.GET("/overdue", analyticsHandler.GetOverdueStats)
			analytics.GET("/weekly-summary", analyticsHandler.GetWeeklySummary)
			analytics.GET("/trends", analyticsHandler.GetProductivityTrends)
			analytics.GET("/by-priority", analyticsHandler.GetStatsByPriority)
			analytics.GET("/by-project", analyticsHandler.GetStatsByProject)
		}

		// Suggestion routes (protected)
		ai := api.Group("/ai")
		ai.Use(middleware.RequireAuth())
		{
			ai.POST("/priority", aiHandler.SuggestPriority)
			ai.POST("/deadline", aiHandler.RecommendDeadline)
			ai.POST("/breakdown", aiHandler.BreakdownTask)
			ai.GET("/summary", aiHandler.GetProductivitySummary)
			ai.GET("/insights", aiHandler.GetInsights)
			ai.POST("/suggestions", aiHandler.CacheSuggestion)
			ai.GET("/suggestions", aiHandler.GetCachedSuggestion)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
