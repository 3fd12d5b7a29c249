package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"referral-app-server/internal/config"
	"referral-app-server/internal/handlers"
	"referral-app-server/internal/middleware"
	"referral-app-server/internal/models"
	"referral-app-server/internal/services"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize services
	referralService := services.NewReferralService(db)
	appointmentService := services.NewAppointmentService(db)
	bookingService := services.NewBookingService(db)
	doctorService := services.NewDoctorService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	hospitalHandler := handlers.NewHospitalHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db, doctorService)
	referralHandler := handlers.NewReferralHandler(referralService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, bookingService)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// User management routes (admin-only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		// Patient records: admin/staff manage, doctors can read
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff, models.RoleDoctor), patientHandler.GetPatients)
			patientRoutes.GET("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff, models.RoleDoctor), patientHandler.GetPatientByID)
			patientRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), patientHandler.CreatePatient)
			patientRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), patientHandler.UpdatePatient)
		}

		// Hospital directory: readable by all authenticated users
		hospitalRoutes := private.Group("/hospitals")
		{
			hospitalRoutes.GET("", hospitalHandler.GetHospitals)
			hospitalRoutes.GET("/:id", hospitalHandler.GetHospitalByID)
			hospitalRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), hospitalHandler.CreateHospital)
			hospitalRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), hospitalHandler.UpdateHospital)
		}

		// Doctor directory and affiliations
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)
			doctorRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), doctorHandler.CreateDoctor)

			// Affiliation add/remove; fine-grained authorization in the service
			doctorRoutes.POST("/:id/affiliations", doctorHandler.AddAffiliation)
			doctorRoutes.DELETE("/:id/affiliations/:hospitalId", doctorHandler.RemoveAffiliation)
		}

		// Referral lifecycle; policy-scoped listing and per-record checks in the service
		referralRoutes := private.Group("/referrals")
		{
			referralRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleStaff, models.RoleAdmin), referralHandler.CreateReferral)
			referralRoutes.GET("", referralHandler.GetReferrals)
			referralRoutes.GET("/:id", referralHandler.GetReferralByID)
			referralRoutes.PATCH("/:id/status", referralHandler.UpdateReferralStatus)
			referralRoutes.PATCH("/:id/notes", referralHandler.UpdateReferralNotes)
		}

		// Appointment lifecycle and referral booking
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.POST("/book", appointmentHandler.BookFromReferral)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
