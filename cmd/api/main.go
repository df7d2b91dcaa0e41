package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cleanwave/cleanwave-backend/internal/database"
	"github.com/cleanwave/cleanwave-backend/internal/handlers"
	"github.com/cleanwave/cleanwave-backend/internal/middleware"
	"github.com/cleanwave/cleanwave-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored uploads
	r.Static("/uploads", "/app/uploads")

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		api.GET("/service-types", handlers.GetServiceTypes(db))

		// Guest checkout allowed; identity is attached when present
		api.POST("/bookings", middleware.OptionalAuthMiddleware(), handlers.CreateBooking(db))

		// PayFast server-to-server webhook
		api.POST("/bookings/payfast/notify", handlers.HandlePaymentNotification(db, hub))

		api.POST("/waitlist", handlers.SubmitWaitlistEmail(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.GetNotifications(db))
				notifications.PUT("/:id/read", handlers.MarkNotificationRead(db))
			}

			adminOnly := middleware.RequireRole("admin")

			bookings := protected.Group("/bookings")
			{
				bookings.GET("/:id", handlers.GetBooking(db))
				bookings.GET("/upcoming", handlers.GetUpcomingBookings(db))
				bookings.GET("/history", handlers.GetBookingHistory(db))

				bookings.GET("", adminOnly, handlers.GetAllBookings(db))
				bookings.GET("/analytics", adminOnly, handlers.GetBookingAnalytics(db))
				bookings.PUT("/:id/assign", adminOnly, handlers.AssignBooking(db, hub))
				bookings.PUT("/:id/assign/reset", adminOnly, handlers.ResetBookingAssignment(db))
				bookings.PUT("/:id/status", adminOnly, handlers.UpdateBookingStatus(db, hub))
				bookings.PUT("/:id", adminOnly, handlers.UpdateBooking(db))
				bookings.DELETE("/:id", adminOnly, handlers.DeleteBooking(db))
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(adminOnly)
			{
				admin.GET("/cleaners", handlers.GetCleaners(db))
				admin.POST("/cleaners", handlers.CreateCleaner(db))
				admin.POST("/cleaners/:id/image", handlers.UploadCleanerImage(db))
				admin.GET("/drivers", handlers.GetDrivers(db))
				admin.POST("/drivers", handlers.CreateDriver(db))
				admin.POST("/drivers/:id/image", handlers.UploadDriverImage(db))

				admin.POST("/service-types", handlers.CreateServiceType(db))
				admin.GET("/dispatch-notes", handlers.GetAllDispatchNotes(db))
				admin.GET("/waitlist", handlers.GetWaitlist(db))
			}

			// Cleaner dashboard routes
			cleaner := protected.Group("/cleaner")
			cleaner.Use(middleware.RequireRole("cleaner"))
			{
				cleaner.GET("/bookings", handlers.GetCleanerBookings(db))
				cleaner.PUT("/bookings/:id/status", handlers.UpdateCleanerBookingStatus(db, hub))
				cleaner.GET("/availability", handlers.GetCleanerAvailability(db))
				cleaner.PUT("/availability", handlers.UpdateCleanerAvailability(db))
			}

			// Driver dashboard routes
			driver := protected.Group("/driver")
			driver.Use(middleware.RequireRole("driver"))
			{
				driver.GET("/bookings", handlers.GetDriverAssignedBookings(db))
				driver.PUT("/bookings/:id/status", handlers.UpdateDriverBookingStatus(db, hub))
				driver.POST("/bookings/:id/notes", handlers.LogDispatchNote(db))
				driver.GET("/availability", handlers.GetDriverAvailability(db))
				driver.PUT("/availability", handlers.UpdateDriverAvailability(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
