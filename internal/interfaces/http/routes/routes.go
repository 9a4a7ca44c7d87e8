// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/handlers"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/middleware"
)

// SetupRoutes wires every API route group onto the v1 router
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	profileHandler := handlers.NewUserProfileHandler(db, cfg)
	cardHandler := handlers.NewCardHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)
	companyHandler := handlers.NewCompanyHandler(db, redisClient, cfg)
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)
	couponHandler := handlers.NewCouponHandler(db, redisClient, cfg)
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	favoriteHandler := handlers.NewFavoriteHandler(db, redisClient, cfg)
	reviewHandler := handlers.NewReviewHandler(db, cfg)
	uploadHandler := handlers.NewUploadHandler(db, cfg)
	userAdminHandler := handlers.NewUserAdminHandler(db, cfg)

	// Public auth endpoints
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/change-password", authHandler.ChangePassword)
		}
	}

	// Public catalog endpoints
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/seasons", productHandler.GetSeasons)
		products.GET("/colors", productHandler.GetColors)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/reviews", reviewHandler.GetProductReviews)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/tree", categoryHandler.GetCategoryTree)
		categories.GET("/:id", categoryHandler.GetCategory)
	}

	companies := rg.Group("/companies")
	{
		companies.GET("", companyHandler.GetCompanies)
		companies.GET("/:id", companyHandler.GetCompany)
	}

	branches := rg.Group("/branches")
	{
		branches.GET("", companyHandler.GetBranches)
		branches.GET("/:id", companyHandler.GetBranch)
	}

	// Coupon lookup is public, redemption status is per-user
	coupons := rg.Group("/coupons")
	{
		coupons.GET("/best", couponHandler.GetBestCoupon)
		coupons.GET("/code/:code", couponHandler.GetCouponByCode)

		protected := coupons.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/:id/redemption", couponHandler.CheckRedemption)
		}
	}

	// Authenticated user endpoints
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/profile", profileHandler.GetProfile)
		users.PUT("/profile", profileHandler.UpdateProfile)
		users.POST("/devices", profileHandler.RegisterDevice)
		users.DELETE("/devices", profileHandler.UnregisterDevice)

		users.GET("/cards", cardHandler.GetCards)
		users.POST("/cards", cardHandler.AddCard)
		users.DELETE("/cards/:id", cardHandler.DeleteCard)
		users.PUT("/cards/:id/default", cardHandler.SetDefaultCard)
	}

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:id", cartHandler.UpdateLine)
		cart.DELETE("/items/:id", cartHandler.RemoveLine)
		cart.DELETE("", cartHandler.ClearCart)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.POST("", orderHandler.Checkout)
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
	}

	favorites := rg.Group("/favorites")
	favorites.Use(middleware.AuthMiddleware(cfg))
	{
		favorites.GET("", favoriteHandler.GetFavorites)
		favorites.GET("/:id", favoriteHandler.CheckFavorite)
		favorites.POST("", favoriteHandler.AddFavorite)
		favorites.DELETE("/:id", favoriteHandler.RemoveFavorite)
		favorites.POST("/:id/move-to-cart", favoriteHandler.MoveToCart)
	}

	reviews := rg.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware(cfg))
	{
		reviews.POST("", reviewHandler.CreateReview)
		reviews.DELETE("/:id", reviewHandler.DeleteReview)
	}

	// Admin endpoints
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		adminProducts := admin.Group("/products")
		{
			adminProducts.POST("", productHandler.CreateProduct)
			adminProducts.PUT("/:id", productHandler.UpdateProduct)
			adminProducts.DELETE("/:id", productHandler.DeleteProduct)
		}

		adminVariants := admin.Group("/variants")
		{
			adminVariants.PUT("/:id", productHandler.UpdateVariant)
		}

		adminCategories := admin.Group("/categories")
		{
			adminCategories.POST("", categoryHandler.CreateCategory)
			adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
			adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		adminCoupons := admin.Group("/coupons")
		{
			adminCoupons.GET("", couponHandler.GetCoupons)
			adminCoupons.POST("", couponHandler.CreateCoupon)
			adminCoupons.DELETE("/:id", couponHandler.DeactivateCoupon)
		}

		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("", orderHandler.GetOrders)
			adminOrders.GET("/number/:number", orderHandler.GetOrderByNumber)
			adminOrders.PUT("/:id/delivered", orderHandler.MarkDelivered)
		}

		adminUsers := admin.Group("/users")
		{
			adminUsers.GET("", userAdminHandler.GetUsers)
			adminUsers.GET("/:id", userAdminHandler.GetUser)
			adminUsers.PUT("/:id/status", userAdminHandler.UpdateUserStatus)
			adminUsers.PUT("/:id/admin", userAdminHandler.ToggleUserAdmin)
		}

		adminUploads := admin.Group("/uploads")
		{
			adminUploads.GET("", uploadHandler.GetImages)
			adminUploads.POST("", uploadHandler.UploadImage)
			adminUploads.DELETE("/:id", uploadHandler.DeleteImage)
		}
	}
}
