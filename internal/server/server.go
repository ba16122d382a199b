package server

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/hirestack/hirestack-backend/internal/handler"
	"github.com/hirestack/hirestack-backend/internal/middleware"
	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/internal/service"
	"github.com/hirestack/hirestack-backend/pkg/realtime"
	"github.com/hirestack/hirestack-backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	jobRepo := repository.NewJobRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	// Initialize Meilisearch
	meiliHost := os.Getenv("MEILISEARCH_HOST")
	if meiliHost == "" {
		meiliHost = "http://localhost:7700"
	}
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(os.Getenv("MEILI_MASTER_KEY")))
	searchSvc := service.NewSearchService(meiliClient)

	// Live delivery: the directory tracks who is connected where, the
	// pusher publishes to the connection's channel.
	directory := realtime.NewDirectory()
	pusher := realtime.NewRedisPusher(redisClient)

	notificationSvc := service.NewNotificationService(notificationRepo, directory, pusher)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, directory, redisClient)

	guard := service.NewOwnershipGuard(jobRepo, applicationRepo)

	applicationSvc := service.NewApplicationService(applicationRepo, jobRepo, userRepo, adminRepo, notificationSvc, guard)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)

	jobSvc := service.NewJobService(jobRepo, companyRepo, userRepo, adminRepo, notificationSvc, guard, searchSvc)
	jobHandler := handler.NewJobHandler(jobSvc)

	companySvc := service.NewCompanyService(companyRepo)
	companyHandler := handler.NewCompanyHandler(companySvc)

	authSvc := service.NewAuthService(userRepo, companyRepo, adminRepo)
	authHandler := handler.NewAuthHandler(authSvc)

	uploadHandler := handler.NewUploadHandler(fileStorage, userRepo)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware()

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register/user", authHandler.RegisterUser)
		auth.POST("/register/company", authHandler.RegisterCompany)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRole(model.RoleAdmin))
		{
			adminGroup.DELETE("/companies/:id", companyHandler.DeleteCompany)
		}

		// Job routes
		protected.GET("/jobs", jobHandler.GetAllJobs)
		protected.GET("/jobs/:id", jobHandler.GetJob)

		companyJobs := protected.Group("")
		companyJobs.Use(authMiddleware.RequireRole(model.RoleCompany))
		{
			companyJobs.POST("/jobs", jobHandler.CreateJob)
			companyJobs.DELETE("/jobs/:id", jobHandler.DeleteJob)
			companyJobs.GET("/jobs/:id/applications", applicationHandler.GetApplicationsForJob)
			companyJobs.GET("/company/applications", applicationHandler.GetCompanyApplications)
			companyJobs.GET("/company/applications/count", applicationHandler.CountCompanyApplications)
			companyJobs.PUT("/applications/:id/status", applicationHandler.UpdateStatus)
			companyJobs.PUT("/applications/:id/interview", applicationHandler.ScheduleInterview)
		}

		// Applicant routes
		applicant := protected.Group("")
		applicant.Use(authMiddleware.RequireRole(model.RoleUser))
		{
			applicant.POST("/applications", applicationHandler.SubmitApplication)
			applicant.GET("/applications/me", applicationHandler.GetMyApplications)
			applicant.POST("/upload/resume", uploadHandler.UploadResume)
		}

		protected.GET("/applications/:id", applicationHandler.GetApplicationByID)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", notificationHandler.DeleteNotification)
		protected.DELETE("/notifications", notificationHandler.DeleteAllNotifications)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
