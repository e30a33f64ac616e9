package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell-api/config"
	"github.com/inkwell-labs/inkwell-api/controllers"
	"github.com/inkwell-labs/inkwell-api/middleware"
	"github.com/inkwell-labs/inkwell-api/models"
	"github.com/inkwell-labs/inkwell-api/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Basic logging
	log.Println("Starting Inkwell API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.StatusUpdate{},
		&models.Comment{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Seed the demo accounts so a fresh install is usable right away
	if err := seedUsers(db); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	// Pick the attachment store: S3 when a bucket is configured,
	// local disk otherwise
	var attachments services.AttachmentStore
	if cfg.AWSS3Bucket != "" {
		attachments, err = services.NewS3AttachmentStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3 attachment store: %v", err)
		}
		log.Printf("Attachments stored in S3 bucket %s", cfg.AWSS3Bucket)
	} else {
		attachments, err = services.NewLocalAttachmentStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize local attachment store: %v", err)
		}
		log.Printf("Attachments stored in %s", cfg.UploadDir)
	}

	router := setupRouter(db, cfg, attachments)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires every controller into the Gin engine. Components
// receive their dependencies here; nothing reaches for globals.
func setupRouter(db *gorm.DB, cfg *config.Config, attachments services.AttachmentStore) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	notifier := services.NewNotificationService()
	authController := controllers.NewAuthController(db, cfg.JWTSecret)
	orderController := controllers.NewOrderController(db, notifier, attachments)
	commentController := controllers.NewCommentController(db, notifier)
	notificationController := controllers.NewNotificationController(db, notifier)
	adminController := controllers.NewAdminController(db, notifier, attachments)
	userController := controllers.NewUserController(db)

	authenticated := middleware.EnsureValidToken(cfg.JWTSecret)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus(db))

		v1.POST("/auth/register", authController.Register)
		v1.POST("/auth/login", authController.Login)

		v1.GET("/notifications", authenticated, notificationController.ListNotifications)
		v1.POST("/notifications/read", authenticated, notificationController.MarkNotificationsRead)

		v1.POST("/orders", authenticated, orderController.CreateOrder)
		v1.GET("/orders", authenticated, orderController.ListOrders)
		v1.GET("/orders/:id", authenticated, orderController.GetOrder)
		v1.POST("/orders/:id/status", authenticated, orderController.UpdateStatus)
		v1.POST("/orders/:id/comments", authenticated, commentController.AddComment)

		v1.GET("/users/role/:role", authenticated, userController.ListUsersByRole)
		v1.GET("/earnings", authenticated, userController.Earnings)

		admin := v1.Group("/admin", authenticated)
		{
			admin.GET("/stats", middleware.RequirePermission(models.ActionViewStats), adminController.Stats)
			admin.GET("/analytics", middleware.RequirePermission(models.ActionViewStats), adminController.Analytics)
			admin.GET("/users", middleware.RequirePermission(models.ActionManageUsers), adminController.ListUsers)
			admin.PUT("/users/:id", middleware.RequirePermission(models.ActionManageUsers), adminController.UpdateUser)
			admin.DELETE("/users/:id", middleware.RequirePermission(models.ActionManageUsers), adminController.DeleteUser)
			admin.PUT("/orders/:id", middleware.RequirePermission(models.ActionManageOrders), adminController.UpdateOrder)
			admin.DELETE("/orders/:id", middleware.RequirePermission(models.ActionManageOrders), adminController.DeleteOrder)
			admin.POST("/assign", middleware.RequirePermission(models.ActionAssignOrders), adminController.Assign)
		}
	}

	return router
}

// seedUsers creates one account per staff role when none exists yet
func seedUsers(db *gorm.DB) error {
	seeds := []models.User{
		{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: models.RoleAdmin},
		{Name: "John Writer", Email: "writer@example.com", Password: "writer123", Role: models.RoleWriter},
		{Name: "Mike Delivery", Email: "delivery@example.com", Password: "delivery123", Role: models.RoleDelivery},
	}

	for _, seed := range seeds {
		var count int64
		if err := db.Model(&models.User{}).Where("role = ?", seed.Role).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		seed.Password = string(hash)
		if err := db.Create(&seed).Error; err != nil {
			return err
		}
		log.Printf("Seeded %s account %s", seed.Role, seed.Email)
	}
	return nil
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Inkwell API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the underlying SQL database to check connection
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		// Ping the database to verify connection
		if err := sqlDB.Ping(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		// Get list of tables
		var tables []string
		if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
