package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/services"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type HandlerManager struct {
	authHandler         *AuthHandler
	userHandler         *UserHandler
	quizHandler         *QuizHandler
	paymentHandler      *PaymentHandler
	resultHandler       *ResultHandler
	notificationHandler *NotificationHandler
	mentorshipHandler   *MentorshipHandler
	dashboardHandler    *DashboardHandler
	authMiddleware      *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	jwtSecret string,
) *HandlerManager {
	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), validator, logger),
		userHandler:         NewUserHandler(serviceManager.User(), validator, logger),
		quizHandler:         NewQuizHandler(serviceManager.Quiz(), validator, logger),
		paymentHandler:      NewPaymentHandler(serviceManager.Payment(), validator, logger),
		resultHandler:       NewResultHandler(serviceManager.Result(), validator, logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), validator, logger),
		mentorshipHandler:   NewMentorshipHandler(serviceManager.Mentorship(), validator, logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:      NewAuthMiddleware(jwtSecret),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	staffOnly := hm.authMiddleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	superadminOnly := hm.authMiddleware.RequireRole(models.RoleSuperAdmin)

	api := router.Group("/api")
	{
		// Auth routes (public except password change)
		auth := api.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/verify-otp", hm.authHandler.VerifyOTP)
			auth.POST("/resend-otp", hm.authHandler.ResendOTP)
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/change-password", hm.authMiddleware.Authenticate(), hm.authHandler.ChangePassword)
		}

		// User routes
		users := api.Group("/users")
		users.Use(hm.authMiddleware.Authenticate())
		{
			users.GET("/me", hm.userHandler.GetProfile)
			users.PUT("/me", hm.userHandler.UpdateProfile)
			users.GET("/me/stats", hm.userHandler.GetStats)

			// Administration - superadmin only
			users.GET("", superadminOnly, hm.userHandler.ListUsers)
			users.GET("/admins", superadminOnly, hm.userHandler.ListAdmins)
			users.GET("/:id", superadminOnly, hm.userHandler.GetUser)
			users.PUT("/:id", staffOnly, hm.userHandler.UpdateUser)
			users.DELETE("/:id", superadminOnly, hm.userHandler.DeleteUser)
			users.PUT("/role", superadminOnly, hm.userHandler.UpdateRole)
			users.PUT("/status", superadminOnly, hm.userHandler.UpdateStatus)
		}

		// Quiz routes
		quizzes := api.Group("/quizzes")
		{
			// Public catalog views
			quizzes.GET("/featured", hm.quizHandler.GetFeatured)
			quizzes.GET("/categories", hm.quizHandler.GetCategories)

			// Authenticated views
			quizzes.GET("", hm.authMiddleware.Authenticate(), hm.quizHandler.ListQuizzes)
			quizzes.GET("/registered", hm.authMiddleware.Authenticate(), hm.quizHandler.GetRegistered)
			quizzes.GET("/mine", hm.authMiddleware.Authenticate(), staffOnly, hm.quizHandler.GetMyQuizzes)
			quizzes.GET("/:id", hm.authMiddleware.Authenticate(), hm.quizHandler.GetQuiz)
			quizzes.GET("/:id/stats", hm.authMiddleware.Authenticate(), staffOnly, hm.quizHandler.GetQuizStats)

			// Management - admins and superadmins
			quizzes.POST("", hm.authMiddleware.Authenticate(), staffOnly, hm.quizHandler.CreateQuiz)
			quizzes.PUT("/:id", hm.authMiddleware.Authenticate(), staffOnly, hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.authMiddleware.Authenticate(), staffOnly, hm.quizHandler.DeleteQuiz)
		}

		// Payment routes
		payments := api.Group("/payments")
		payments.Use(hm.authMiddleware.Authenticate())
		{
			payments.POST("/create-order", hm.paymentHandler.CreateOrder)
			payments.POST("/verify", hm.paymentHandler.VerifyPayment)
			payments.GET("/key", hm.paymentHandler.GetKey)
			payments.GET("/orders", hm.paymentHandler.GetMyOrders)
			payments.GET("/orders/:order_id", hm.paymentHandler.GetOrder)

			admin := payments.Group("/admin", staffOnly)
			{
				admin.GET("/orders", hm.paymentHandler.ListOrders)
				admin.PUT("/orders/:order_id/status", hm.paymentHandler.UpdateOrderStatus)
			}
		}

		// Result routes
		results := api.Group("/results")
		results.Use(hm.authMiddleware.Authenticate())
		{
			results.POST("/submit", hm.resultHandler.SubmitResult)
			results.GET("/mine", hm.resultHandler.GetMyResults)
			results.GET("/leaderboard/:quiz_id", hm.resultHandler.GetLeaderboard)
			results.GET("/:id", hm.resultHandler.GetResult)

			results.GET("/quiz/:quiz_id", staffOnly, hm.resultHandler.GetQuizResults)
			results.GET("/admin", staffOnly, hm.resultHandler.GetAdminResults)
			results.GET("/admin/export", staffOnly, hm.resultHandler.ExportResults)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		notifications.Use(hm.authMiddleware.Authenticate())
		{
			notifications.GET("", hm.notificationHandler.GetMyNotifications)
			notifications.PUT("/read", hm.notificationHandler.MarkRead)
			notifications.POST("/send", superadminOnly, hm.notificationHandler.SendNotification)
		}

		// Mentorship routes
		mentorship := api.Group("/mentorship")
		{
			mentorship.GET("", hm.mentorshipHandler.ListVideos)
			mentorship.GET("/:id", hm.mentorshipHandler.GetVideo)
			mentorship.POST("/:id/view", hm.mentorshipHandler.RecordView)

			mentorship.POST("", hm.authMiddleware.Authenticate(), staffOnly, hm.mentorshipHandler.CreateVideo)
			mentorship.PUT("/:id", hm.authMiddleware.Authenticate(), staffOnly, hm.mentorshipHandler.UpdateVideo)
			mentorship.DELETE("/:id", hm.authMiddleware.Authenticate(), staffOnly, hm.mentorshipHandler.DeleteVideo)
		}

		// Analytics routes
		analytics := api.Group("/analytics")
		analytics.Use(hm.authMiddleware.Authenticate(), staffOnly)
		{
			analytics.GET("/kpis", hm.dashboardHandler.GetKPIs)
			analytics.GET("/charts", hm.dashboardHandler.GetCharts)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-platform",
		})
	})
}
