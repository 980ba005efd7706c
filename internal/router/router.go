// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/cache"
	"github.com/storefront/storefront-backend/internal/config"
	"github.com/storefront/storefront-backend/internal/gateway"
	"github.com/storefront/storefront-backend/internal/handlers"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/internal/services"
	"github.com/storefront/storefront-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Shared infrastructure: Redis when configured, in-process
	// fallbacks otherwise
	var cacheClient cache.Cache
	if addr := cfg.RedisAddr(); addr != "" {
		cacheClient = cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
	} else {
		cacheClient = cache.NewMemoryCache()
	}

	var paymentGateway gateway.Gateway = gateway.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.Currency)

	return InitializeWith(db, cfg, cacheClient, paymentGateway)
}

// InitializeWith wires the full route table against explicit cache and
// gateway implementations.
func InitializeWith(db *gorm.DB, cfg *config.Config, cacheClient cache.Cache, paymentGateway gateway.Gateway) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	productService := services.NewProductService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db)
	checkoutService := services.NewCheckoutService(db, cartService, orderService, paymentGateway, cacheClient, cfg.Payment.Currency)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, checkoutService)
	paymentHandler := handlers.NewPaymentHandler(checkoutService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
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

	// Local image uploads when S3 is not configured
	r.Static("/uploads", "./uploads")

	api := r.Group("/api")
	{
		// Authentication and wishlist routes
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)

			auth.GET("/wishlist", middleware.AuthRequired(), userHandler.GetWishlist)
			auth.POST("/wishlist", middleware.AuthRequired(), userHandler.AddToWishlist)
			auth.DELETE("/wishlist", middleware.AuthRequired(), userHandler.RemoveFromWishlist)
		}

		// Product catalog routes
		products := api.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.POST("/:id/reviews", middleware.AuthRequired(), productHandler.AddReview)

			admin := products.Group("")
			admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				admin.POST("", productHandler.Create)
				admin.PUT("/:id", productHandler.Update)
				admin.DELETE("/:id", productHandler.Delete)
				admin.POST("/:id/image", productHandler.UploadImage)
			}
		}

		// Cart routes
		cart := api.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.Get)
			cart.POST("/add", cartHandler.Add)
			cart.POST("/remove", cartHandler.Remove)
			cart.POST("/clear", cartHandler.Clear)
		}

		// Order routes
		orders := api.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.CheckoutRateLimit(), orderHandler.Create)
			orders.GET("/myorders", orderHandler.MyOrders)
			orders.GET("/:id", orderHandler.Get)
			orders.POST("/:id/pay", orderHandler.Pay)

			orders.GET("", middleware.AdminRequired(), orderHandler.ListAll)
			orders.PUT("/:id/deliver", middleware.AdminRequired(), orderHandler.SetDelivered)
		}

		// Payment routes
		payment := api.Group("/payment")
		payment.Use(middleware.AuthRequired())
		{
			payment.POST("/create-order", middleware.CheckoutRateLimit(), paymentHandler.CreateOrder)
		}
	}

	return r
}
