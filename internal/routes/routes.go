package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/handlers/admin"
	"farmlyf_back_end/internal/handlers/content"
	"farmlyf_back_end/internal/handlers/payment"
	"farmlyf_back_end/internal/handlers/product"
	"farmlyf_back_end/internal/handlers/user"
	"farmlyf_back_end/internal/middleware"
)

// RegisterRoutes mounts the storefront and admin APIs on r.
func RegisterRoutes(r *gin.Engine, d *handlers.Deps, logger *zap.Logger) {
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
		cors.New(cors.Config{
			AllowOrigins:     d.Config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-Cache"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthRequired(d.Tokens, d.Cache)
	optional := middleware.OptionalAuth(d.Tokens, d.Cache)
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(d.Stores.Audit, action, resource)
	}

	users := user.New(d)
	catalog := product.New(d)
	payments := payment.New(d)
	cms := content.New(d)
	backoffice := admin.New(d)

	// Stripe signs the raw body; keep the webhook outside the rate limiter.
	r.POST("/api/payments/webhook", payments.Webhook)

	api := r.Group("/api", middleware.APIRateLimit(d.Cache))

	// 🔑 Accounts
	u := api.Group("/users")
	{
		u.POST("/otp/request", middleware.OTPRequestLimit(d.Cache), users.RequestOTP)
		u.POST("/otp/verify", users.VerifyOTP)
		u.POST("/refresh", users.Refresh)
		u.POST("/logout", auth, users.Logout)
		u.GET("/me", auth, users.Me)
		u.PUT("/me", auth, users.UpdateMe)
	}
	api.GET("/auth/:provider", users.BeginAuth)
	api.GET("/auth/:provider/callback", users.CallbackAuth)

	// 🛒 Catalog
	api.GET("/categories", catalog.ListCategories)
	api.GET("/products", catalog.ListProducts)
	api.GET("/products/:id", optional, catalog.GetProduct)
	api.GET("/products/:id/reviews", catalog.ListReviews)
	api.POST("/products/:id/reviews", auth, catalog.CreateReview)
	api.GET("/products/search", catalog.SearchProducts)

	// 📦 Orders and returns
	orders := api.Group("/orders", auth)
	{
		orders.POST("", users.CreateOrder)
		orders.GET("/my", users.GetMyOrders)
		orders.GET("/:id", users.GetOrder)
		orders.POST("/:id/cancel", users.CancelOrder)
		orders.GET("/:id/invoice", users.Invoice)
		orders.GET("/:id/upi-qr", users.UPIQR)
	}
	returns := api.Group("/returns", auth)
	{
		returns.POST("", users.CreateReturn)
		returns.GET("/my", users.GetMyReturns)
		returns.GET("/order/:orderId/returnable", users.Returnable)
		returns.GET("/:id", users.GetReturn)
	}
	api.POST("/payments/intent", auth, payments.CreateIntent)

	// 📝 Content
	api.GET("/banners", cms.ListBanners)
	api.GET("/content/:key", cms.GetSection)
	api.GET("/blogs", cms.ListBlogs)
	api.GET("/blogs/:slug", cms.GetBlog)

	// 🔐 Back office
	api.POST("/admin/login", middleware.AdminLoginLimit(d.Cache), backoffice.Login)

	adm := api.Group("/admin", auth, middleware.RequireAdmin)
	{
		adm.GET("/dashboard", backoffice.Dashboard)

		adm.GET("/orders", backoffice.ListOrders)
		adm.PUT("/orders/:id/status", audit("order.status", "order"), backoffice.UpdateOrderStatus)

		adm.GET("/returns", backoffice.ListReturns)
		adm.GET("/returns/:id", backoffice.GetReturn)
		adm.PUT("/returns/:id/status", audit("return.status", "return"), backoffice.UpdateReturnStatus)

		adm.GET("/users", backoffice.ListUsers)
		adm.PUT("/users/:id/role", audit("user.role", "user"), backoffice.SetUserRole)

		adm.GET("/notifications", backoffice.ListNotifications)
		adm.GET("/notifications/unread-count", backoffice.UnreadCount)
		adm.PUT("/notifications/:id/read", backoffice.MarkRead)
		adm.PUT("/notifications/read-all", backoffice.MarkAllRead)
		adm.GET("/notifications/ws", backoffice.NotificationSocket)

		adm.GET("/audit", backoffice.GetAuditLogs)
		adm.GET("/audit/stats", backoffice.GetAuditStats)

		adm.POST("/categories", audit("category.create", "category"), catalog.CreateCategory)
		adm.PUT("/categories/:id", audit("category.update", "category"), catalog.UpdateCategory)
		adm.DELETE("/categories/:id", audit("category.delete", "category"), catalog.DeleteCategory)

		adm.GET("/products", catalog.AdminListProducts)
		adm.POST("/products", audit("product.create", "product"), catalog.CreateProduct)
		adm.PUT("/products/:id", audit("product.update", "product"), catalog.UpdateProduct)
		adm.DELETE("/products/:id", audit("product.delete", "product"), catalog.DeleteProduct)
		adm.POST("/products/images", catalog.UploadImage)
		adm.DELETE("/reviews/:id", audit("review.delete", "review"), catalog.DeleteReview)

		adm.GET("/banners", cms.AdminListBanners)
		adm.POST("/banners", audit("banner.create", "banner"), cms.CreateBanner)
		adm.PUT("/banners/reorder", audit("banner.reorder", "banner"), cms.ReorderBanners)
		adm.PUT("/banners/:id", audit("banner.update", "banner"), cms.UpdateBanner)
		adm.DELETE("/banners/:id", audit("banner.delete", "banner"), cms.DeleteBanner)

		adm.PUT("/content/:key", audit("content.update", "content"), cms.PutSection)

		adm.GET("/blogs", cms.AdminListBlogs)
		adm.POST("/blogs", audit("blog.create", "blog"), cms.CreateBlog)
		adm.POST("/blogs/cover", cms.UploadCover)
		adm.PUT("/blogs/:id", audit("blog.update", "blog"), cms.UpdateBlog)
		adm.DELETE("/blogs/:id", audit("blog.delete", "blog"), cms.DeleteBlog)
	}
}
