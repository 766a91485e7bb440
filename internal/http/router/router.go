package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketbay/marketbay-backend/internal/config"
	"github.com/marketbay/marketbay-backend/internal/http/handlers"
	"github.com/marketbay/marketbay-backend/internal/http/middleware"
	"github.com/marketbay/marketbay-backend/internal/models"
	"github.com/marketbay/marketbay-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	walletHandler *handlers.WalletHandler,
	orderHandler *handlers.OrderHandler,
	disputeHandler *handlers.DisputeHandler,
	redFlagHandler *handlers.RedFlagHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)

		wallet := protected.Group("/wallet")
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.GET("/transactions", walletHandler.ListTransactions)
			wallet.POST("/deposit", walletHandler.Deposit)
			wallet.POST("/withdraw", walletHandler.Withdraw)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListMyOrders)
			orders.GET("/:id", middleware.UUIDValidator("id"), orderHandler.GetOrder)
			orders.GET("/:id/history", middleware.UUIDValidator("id"), orderHandler.ListStatusHistory)
			orders.POST("/:id/pay", middleware.UUIDValidator("id"), orderHandler.PayOrder)
			orders.POST("/:id/start", middleware.UUIDValidator("id"), orderHandler.StartOrder)
			orders.POST("/:id/complete", middleware.UUIDValidator("id"), orderHandler.CompleteOrder)
			orders.POST("/:id/cancel", middleware.UUIDValidator("id"), orderHandler.CancelOrder)
			orders.POST("/:id/dispute", middleware.UUIDValidator("id"), disputeHandler.CreateDispute)
			orders.GET("/:id/dispute", middleware.UUIDValidator("id"), disputeHandler.GetDisputeByOrder)
		}

		disputes := protected.Group("/disputes")
		{
			disputes.GET("", disputeHandler.ListMyDisputes)
			disputes.GET("/:id", middleware.UUIDValidator("id"), disputeHandler.GetDispute)
			disputes.GET("/:id/messages", middleware.UUIDValidator("id"), disputeHandler.ListMessages)
			disputes.POST("/:id/messages", middleware.UUIDValidator("id"), disputeHandler.AddMessage)
			disputes.POST("/:id/escalate", middleware.UUIDValidator("id"), disputeHandler.EscalateDispute)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.CountUnread)
			notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
			notifications.POST("/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		}
	}

	// Админская зона
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/wallet/credit", walletHandler.AdminCredit)
		admin.POST("/wallet/debit", walletHandler.AdminDebit)
		admin.POST("/wallet/deactivate", walletHandler.AdminDeactivate)

		adminDisputes := admin.Group("/disputes")
		{
			adminDisputes.GET("", disputeHandler.ListDisputes)
			adminDisputes.GET("/stats", disputeHandler.GetStats)
			adminDisputes.POST("/:id/assign", middleware.UUIDValidator("id"), disputeHandler.AssignDispute)
			adminDisputes.POST("/:id/request-response", middleware.UUIDValidator("id"), disputeHandler.RequestResponse)
			adminDisputes.POST("/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.ResolveDispute)
			adminDisputes.POST("/:id/close", middleware.UUIDValidator("id"), disputeHandler.CloseDispute)
			adminDisputes.DELETE("/:id", middleware.UUIDValidator("id"), disputeHandler.DeleteDispute)
		}

		redFlags := admin.Group("/red-flags")
		{
			redFlags.POST("", redFlagHandler.RaiseFlag)
			redFlags.GET("", redFlagHandler.ListFlags)
			redFlags.GET("/stats", redFlagHandler.GetStats)
			redFlags.PATCH("/bulk-status", redFlagHandler.BulkUpdateStatus)
			redFlags.GET("/:id", middleware.UUIDValidator("id"), redFlagHandler.GetFlag)
			redFlags.POST("/:id/assign", middleware.UUIDValidator("id"), redFlagHandler.AssignFlag)
			redFlags.PATCH("/:id/status", middleware.UUIDValidator("id"), redFlagHandler.UpdateStatus)
			redFlags.POST("/:id/resolve", middleware.UUIDValidator("id"), redFlagHandler.ResolveFlag)
			redFlags.POST("/:id/notes", middleware.UUIDValidator("id"), redFlagHandler.AddNote)
			redFlags.GET("/:id/notes", middleware.UUIDValidator("id"), redFlagHandler.ListNotes)
		}
	}

	return r
}
