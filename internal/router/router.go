// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/handlers"
	"github.com/marketbay/storefront-backend/internal/middleware"
	"github.com/marketbay/storefront-backend/internal/services"
	"github.com/marketbay/storefront-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg, logger)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	userService := services.NewUserService(db, cfg)
	catalogService := services.NewCatalogService(db)
	cartService := services.NewCartService(db)
	wishlistService := services.NewWishlistService(db)
	orderService := services.NewOrderService(db, cfg, notificationService)
	paymentService := services.NewPaymentService(db, cfg, notificationService)
	receiptService := services.NewReceiptService(db, cfg, storageService, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	orderHandler := handlers.NewOrderHandler(orderService, receiptService, notificationService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	receiptHandler := handlers.NewReceiptHandler(receiptService, orderService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/otp/request", authHandler.RequestOTP)
			auth.POST("/otp/verify", authHandler.VerifyOTP)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.PUT("/profile", userHandler.UpdateProfile)
		}

		// Catalog routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), catalogHandler.SearchProducts)
			products.GET("/:id", middleware.OptionalAuth(), catalogHandler.GetProduct)
			products.POST("/:id/rating", middleware.AuthRequired(), catalogHandler.RateProduct)
		}
		v1.GET("/categories", catalogHandler.ListCategories)

		// Seller routes
		seller := v1.Group("/seller")
		seller.Use(middleware.AuthRequired(), middleware.SellerRequired())
		{
			seller.GET("/products", catalogHandler.ListSellerProducts)
			seller.POST("/products", catalogHandler.CreateProduct)
			seller.PUT("/products/:id", catalogHandler.UpdateProduct)
			seller.DELETE("/products/:id", catalogHandler.DeleteProduct)
			seller.POST("/products/images", catalogHandler.UploadProductImage)
		}

		// Cart routes
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:productId", cartHandler.UpdateItem)
			cart.DELETE("/items/:productId", cartHandler.RemoveItem)
		}

		// Wishlist routes
		wishlist := v1.Group("/wishlist")
		wishlist.Use(middleware.AuthRequired())
		{
			wishlist.GET("", wishlistHandler.GetWishlist)
			wishlist.POST("/items/:productId", wishlistHandler.AddItem)
			wishlist.DELETE("/items/:productId", wishlistHandler.RemoveItem)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.CheckoutRateLimit(), orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/status", orderHandler.UpdateStatus)
			orders.PUT("/:id/receive", orderHandler.ConfirmReceipt)
			orders.POST("/:id/payment-intent", paymentHandler.CreatePaymentIntent)
			orders.GET("/:id/receipt", receiptHandler.GetReceipt)
		}

		// Wallet settlement of an existing unpaid order
		v1.POST("/payments/balance", middleware.AuthRequired(), middleware.CheckoutRateLimit(), paymentHandler.PayWithBalance)

		// Payment provider callbacks, no auth, verified by signature
		v1.POST("/payments/webhook", paymentHandler.Webhook)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/users", userHandler.ListUsers)
			admin.GET("/users/:id", userHandler.GetUser)
			admin.PUT("/users/:id/role", userHandler.ChangeRole)
			admin.POST("/users/:id/balance", userHandler.CreditBalance)
			admin.DELETE("/users/:id", userHandler.DeleteUser)

			admin.POST("/categories", catalogHandler.CreateCategory)
			admin.PUT("/categories/:id", catalogHandler.UpdateCategory)
			admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)
		}
	}

	return r
}
