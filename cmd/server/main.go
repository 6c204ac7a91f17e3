package main

import (
	"context"
	"log"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/config"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/automation"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/courier"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/handler"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/middleware"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func buildCourier(cfg config.CourierConfig) courier.Courier {
	switch cfg.Provider {
	case "delhivery":
		return courier.NewDelhivery(cfg.BaseURL, cfg.APIKey, cfg.RequestTimeout)
	default:
		return courier.NewSimulated()
	}
}

func buildNotifier(cfg config.NotifyConfig) *notify.Notifier {
	senders := map[string]notify.Sender{}
	if cfg.Mode == "http" {
		senders[notify.ChannelEmail] = notify.NewEmailSender(cfg.EmailURL, cfg.EmailAPIKey, cfg.FromEmail)
		senders[notify.ChannelSMS] = notify.NewSMSSender(cfg.SMSURL, cfg.SMSAccountID, cfg.SMSToken, cfg.FromPhone)
	} else {
		sim := notify.NewLogSender()
		senders[notify.ChannelEmail] = sim
		senders[notify.ChannelSMS] = sim
	}
	return notify.NewNotifier(senders)
}

func main() {
	// 1. Load Configuration
	config.LoadConfig()

	// 2. Connect to Database
	database.Connect()

	// 3. Auto-Migrate Models
	log.Println("Running migrations...")

	err := database.DB.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.LoginHistory{},
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Shipment{},
		&models.TrackingUpdate{},
		&models.ReturnRequest{},
		&models.Review{},
		&models.Activity{},
		&models.SiteSettings{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully.")

	// 3a. Seed Data
	database.SeedRolesAndAdmin()
	database.SeedSiteSettings()

	// 4. Core services
	store := repository.NewGormStore(database.DB, config.AppConfig.Defaults.ActivityLogCap)
	shipper := buildCourier(config.AppConfig.Courier)
	notifier := buildNotifier(config.AppConfig.Notify)
	engine := automation.NewEngine(store, shipper, notifier, config.AppConfig.Automation)

	// 5. Initialize Router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 6. Setup Routes
	authHandler := &handler.AuthHandler{}
	authRoutes := r.Group("/api/v1/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	userRoutes := r.Group("/api/v1/user")
	userRoutes.Use(middleware.AuthMiddleware())
	{
		userRoutes.PUT("/password", authHandler.ChangePassword)
	}

	adminHandler := &handler.AdminHandler{}
	adminRoutes := r.Group("/api/v1/admin")
	adminRoutes.Use(middleware.AuthMiddleware("admin"))
	{
		adminRoutes.POST("/employees", adminHandler.CreateEmployee)
		adminRoutes.GET("/employees", adminHandler.ListEmployees)
		adminRoutes.PUT("/employees/:id", adminHandler.UpdateEmployee)
		adminRoutes.PUT("/employees/:id/role", adminHandler.UpdateEmployeeRole)
		adminRoutes.PUT("/employees/:id/status", adminHandler.UpdateEmployeeStatus)
		adminRoutes.PUT("/employees/:id/password", adminHandler.ResetEmployeePassword)
		adminRoutes.GET("/login-history", adminHandler.GetLoginHistory)
		adminRoutes.GET("/dashboard", adminHandler.GetDashboardStats)
	}

	catalogHandler := &handler.CatalogHandler{Store: store}
	catalogRoutes := r.Group("/api/v1/catalog")
	catalogRoutes.Use(middleware.AuthMiddleware("admin", "manager"))
	{
		catalogRoutes.GET("/products", catalogHandler.ListProducts)
		catalogRoutes.POST("/products", catalogHandler.CreateProduct)
		catalogRoutes.PUT("/products/:id", catalogHandler.UpdateProduct)
		catalogRoutes.DELETE("/products/:id", catalogHandler.DeleteProduct)
		catalogRoutes.PUT("/products/:id/stock", catalogHandler.AdjustStock)
		catalogRoutes.GET("/alerts", catalogHandler.GetLowStockAlerts)
		catalogRoutes.GET("/categories", catalogHandler.ListCategories)
		catalogRoutes.POST("/categories", catalogHandler.CreateCategory)
		catalogRoutes.DELETE("/categories/:id", catalogHandler.DeleteCategory)
	}

	ordersHandler := &handler.OrdersHandler{Notifier: notifier, Store: store}
	orderRoutes := r.Group("/api/v1/orders")
	orderRoutes.Use(middleware.AuthMiddleware("admin", "manager", "support"))
	{
		orderRoutes.GET("", ordersHandler.ListOrders)
		orderRoutes.GET("/:id", ordersHandler.GetOrder)
		orderRoutes.PUT("/:id/status", ordersHandler.UpdateOrderStatus)
		orderRoutes.POST("/:id/cancel", ordersHandler.CancelOrder)
	}

	customerRoutes := r.Group("/api/v1/customers")
	customerRoutes.Use(middleware.AuthMiddleware("admin", "manager", "support"))
	{
		customerRoutes.GET("", ordersHandler.ListCustomers)
		customerRoutes.PUT("/:id/status", ordersHandler.UpdateCustomerStatus)
	}

	shippingHandler := &handler.ShippingHandler{Courier: shipper, Notifier: notifier, Store: store}
	shippingRoutes := r.Group("/api/v1/shipping")
	shippingRoutes.Use(middleware.AuthMiddleware("admin", "manager"))
	{
		shippingRoutes.GET("/shipments", shippingHandler.ListShipments)
		shippingRoutes.POST("/shipments", shippingHandler.CreateShipment)
		shippingRoutes.GET("/shipments/:id/label", shippingHandler.GetLabel)
		shippingRoutes.POST("/shipments/:id/cancel", shippingHandler.CancelShipment)
		shippingRoutes.POST("/shipments/:id/refresh", shippingHandler.RefreshTracking)
		shippingRoutes.POST("/rates", shippingHandler.QuoteRate)
	}

	returnsHandler := &handler.ReturnsHandler{Notifier: notifier, Store: store}
	returnRoutes := r.Group("/api/v1/returns")
	returnRoutes.Use(middleware.AuthMiddleware("admin", "manager", "support"))
	{
		returnRoutes.GET("", returnsHandler.ListReturns)
		returnRoutes.POST("/:id/approve", returnsHandler.ApproveReturn)
		returnRoutes.POST("/:id/reject", returnsHandler.RejectReturn)
		returnRoutes.POST("/:id/refund", returnsHandler.ProcessRefund)
	}

	reviewsHandler := &handler.ReviewsHandler{Store: store}
	reviewRoutes := r.Group("/api/v1/reviews")
	reviewRoutes.Use(middleware.AuthMiddleware("admin", "manager", "support"))
	{
		reviewRoutes.GET("", reviewsHandler.ListReviews)
		reviewRoutes.POST("/:id/approve", reviewsHandler.ApproveReview)
		reviewRoutes.POST("/:id/reject", reviewsHandler.RejectReview)
	}

	settingsHandler := &handler.SettingsHandler{Engine: engine}
	settingsRoutes := r.Group("/api/v1/settings")
	settingsRoutes.Use(middleware.AuthMiddleware("admin"))
	{
		settingsRoutes.GET("", settingsHandler.GetSettings)
		settingsRoutes.PUT("", settingsHandler.UpdateSettings)
		settingsRoutes.GET("/automation", settingsHandler.AutomationStatus)
		settingsRoutes.POST("/automation/start", settingsHandler.StartAutomation)
		settingsRoutes.POST("/automation/stop", settingsHandler.StopAutomation)
		settingsRoutes.POST("/automation/tick", settingsHandler.RunAutomationTick)
	}

	r.GET("/api/v1/activity", middleware.AuthMiddleware("admin", "manager", "support"), settingsHandler.GetActivity)

	dashboardHandler := &handler.DashboardHandler{}
	dashboardRoutes := r.Group("/api/v1/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware("admin", "manager"))
	{
		dashboardRoutes.GET("/stats", dashboardHandler.GetStats)
		dashboardRoutes.GET("/revenue", dashboardHandler.GetRevenueChart)
		dashboardRoutes.GET("/top-products", dashboardHandler.GetTopProducts)
	}

	storefrontHandler := &handler.StorefrontHandler{Notifier: notifier, Store: store}
	publicRoutes := r.Group("/api/v1/public")
	{
		publicRoutes.GET("/products", storefrontHandler.ListProducts)
		publicRoutes.GET("/products/:id", storefrontHandler.GetProduct)
		publicRoutes.GET("/products/:id/reviews", storefrontHandler.ListProductReviews)
		publicRoutes.GET("/site-info", storefrontHandler.GetSiteInfo)
		publicRoutes.GET("/payment-config", storefrontHandler.GetPaymentConfig)
		publicRoutes.POST("/checkout", storefrontHandler.Checkout)
		publicRoutes.GET("/orders/:order_no/track", storefrontHandler.TrackOrder)
		publicRoutes.POST("/reviews", storefrontHandler.SubmitReview)
		publicRoutes.POST("/returns", storefrontHandler.RequestReturn)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 7. Start Lifecycle Engine
	if config.AppConfig.Automation.Enabled {
		engine.Start(context.Background())
	}

	// 8. Start Server
	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
