package router

import (
	"aguipuntos_backend/internal/handlers"
	"aguipuntos_backend/internal/middleware"
	"aguipuntos_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the public authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/bootstrap-admin", authHandler.BootstrapAdmin)
	}
}

// SetupBotWebhookRoute sets up the public Telegram webhook.
func SetupBotWebhookRoute(apiGroup *gin.RouterGroup, botHandler *handlers.BotHandler) {
	apiGroup.POST("/bot/webhook", botHandler.Webhook)
}

// SetupPointsRoutes sets up the balance mutation routes.
func SetupPointsRoutes(authenticatedGroup *gin.RouterGroup, pointsHandler *handlers.PointsHandler) {
	pointsRoutes := authenticatedGroup.Group("/points")
	pointsRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		pointsRoutes.POST("/load", pointsHandler.LoadPoints)
		pointsRoutes.POST("/redeem-custom", pointsHandler.RedeemCustom)
		pointsRoutes.POST("/redeem-prize", pointsHandler.RedeemPrize)
		// Legacy alias kept for older frontends.
		pointsRoutes.POST("/redeem", pointsHandler.RedeemPrize)
	}
}

// SetupCustomerRoutes sets up the customer routes. Reads and creation are
// open to cashiers; the bulk import is admin-only.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	customerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/by-dni/:dni", customerHandler.GetCustomerByDNI)
		customerRoutes.GET("/by-id/:id", customerHandler.GetCustomerByID)
		customerRoutes.GET("/:id/transactions", customerHandler.GetCustomerTransactions)
		customerRoutes.GET("/:id/transactions/export", customerHandler.ExportCustomerTransactions)
	}

	adminCustomerRoutes := authenticatedGroup.Group("/customers")
	adminCustomerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminCustomerRoutes.POST("/import", customerHandler.ImportCustomers)
	}
}

// SetupPrizeRoutes sets up the prize catalog routes. Listing and redemption
// are open to cashiers; catalog management is admin-only.
func SetupPrizeRoutes(authenticatedGroup *gin.RouterGroup, prizeHandler *handlers.PrizeHandler, pointsHandler *handlers.PointsHandler) {
	prizeRoutes := authenticatedGroup.Group("/prizes")
	prizeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		prizeRoutes.GET("", prizeHandler.GetPrizes)
		// Legacy alias for POST /points/redeem-prize.
		prizeRoutes.POST("/redeem", pointsHandler.RedeemPrize)
	}

	adminPrizeRoutes := authenticatedGroup.Group("/prizes")
	adminPrizeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminPrizeRoutes.POST("", prizeHandler.CreatePrize)
		adminPrizeRoutes.PUT("/:id", prizeHandler.UpdatePrize)
		adminPrizeRoutes.DELETE("/:id", prizeHandler.DeletePrize)
	}
}

// SetupTransactionRoutes sets up the void routes.
func SetupTransactionRoutes(authenticatedGroup *gin.RouterGroup, transactionHandler *handlers.TransactionHandler) {
	transactionRoutes := authenticatedGroup.Group("/transactions")
	transactionRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		transactionRoutes.POST("/:id/void", transactionHandler.VoidTransaction)
	}
}

// SetupReportRoutes sets up the reporting routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		reportRoutes.GET("/points-loaded", reportHandler.GetPointsLoadedReport)
		reportRoutes.GET("/daily-summary", reportHandler.GetDailySummary)
	}
}

// SetupUserRoutes sets up the staff account routes.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, userHandler *handlers.UserHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		userRoutes.GET("", userHandler.GetUsers)
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.PATCH("/:id/password", userHandler.UpdateUserPassword)
		userRoutes.DELETE("/:id", userHandler.DeleteUser)
	}
}

// SetupBotRoutes sets up the authenticated Telegram bot routes.
func SetupBotRoutes(authenticatedGroup *gin.RouterGroup, botHandler *handlers.BotHandler) {
	botRoutes := authenticatedGroup.Group("/bot")
	botRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		botRoutes.POST("/daily-summary", botHandler.SendDailySummary)
	}
}
