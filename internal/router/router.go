package router

import (
	"database/sql"

	"aguipuntos_backend/internal/bot"
	"aguipuntos_backend/internal/handlers"
	"aguipuntos_backend/internal/middleware"
	"aguipuntos_backend/internal/repositories"
	"aguipuntos_backend/internal/services"
	"aguipuntos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	customerRepo := repositories.NewCustomerRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	prizeRepo := repositories.NewPrizeRepository(db)
	userRepo := repositories.NewUserRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// Initialize Services
	timezone := utils.Getenv("REPORT_TIMEZONE", services.DefaultTimezone)
	bootstrapSecret := utils.Getenv("BOOTSTRAP_SECRET", "")
	telegramToken := utils.Getenv("TELEGRAM_BOT_TOKEN", "")
	telegramClient := bot.NewClient(bot.TelegramAPIBase, telegramToken)

	pointsService := services.NewPointsService(customerRepo, transactionRepo, prizeRepo, db)
	voidService := services.NewVoidService(customerRepo, transactionRepo, db)
	reportService := services.NewReportService(transactionRepo, timezone)
	summaryService := services.NewDailySummaryService(transactionRepo, timezone)
	customerService := services.NewCustomerService(customerRepo, transactionRepo, db, timezone)
	prizeService := services.NewPrizeService(prizeRepo, db)
	authService := services.NewAuthService(userRepo, bootstrapSecret)
	userService := services.NewUserService(userRepo)
	botService := services.NewBotService(settingRepo, summaryService, telegramClient)

	// Initialize Handlers
	pointsHandler := handlers.NewPointsHandler(pointsService)
	transactionHandler := handlers.NewTransactionHandler(voidService)
	reportHandler := handlers.NewReportHandler(reportService, summaryService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	prizeHandler := handlers.NewPrizeHandler(prizeService)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	botHandler := handlers.NewBotHandler(botService)

	api := engine.Group("/api")

	// Public routes: login, bootstrap and the Telegram webhook. The webhook
	// only registers chats that sent /start, so it carries no session.
	SetupAuthRoutes(api, authHandler)
	SetupBotWebhookRoute(api, botHandler)

	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupPointsRoutes(authenticated, pointsHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupPrizeRoutes(authenticated, prizeHandler, pointsHandler)

		// Admin-only surfaces
		SetupTransactionRoutes(authenticated, transactionHandler)
		SetupReportRoutes(authenticated, reportHandler)
		SetupUserRoutes(authenticated, userHandler)
		SetupBotRoutes(authenticated, botHandler)
	}
}
