// Package router assembles the HTTP API: services, handlers and the gin route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "expensetracker/internal/docs" // swagger docs
	"expensetracker/internal/handlers"
	"expensetracker/internal/middleware"
	"expensetracker/internal/notify"
	"expensetracker/internal/services"
)

// Services bundles the business services shared by the HTTP API and the notifier.
type Services struct {
	Users        services.UserServicer
	Transactions services.TransactionServicer
	Budgets      services.BudgetServicer
	Reports      services.ReportServicer
	Audit        services.AuditServicer
}

// NewServices wires the gorm-backed services. queue may be nil, in which case
// notification jobs are dropped.
func NewServices(db *gorm.DB, queue notify.Queue, windowMode string) *Services {
	users := services.NewUserService(db, queue)
	transactions := services.NewTransactionService(db, users, queue)
	budgets := services.NewBudgetService(db)
	return &Services{
		Users:        users,
		Transactions: transactions,
		Budgets:      budgets,
		Reports:      services.NewReportService(users, budgets, transactions, windowMode),
		Audit:        services.NewAuditService(db),
	}
}

// New builds the gin engine with every route mounted.
func New(svc *Services, tokens *middleware.TokenManager) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, tokens)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Reports, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Reports, svc.Audit)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/preferences", authHandler.UpdatePreferences)
	protected.PUT("/profile/push-token", authHandler.SetPushToken)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/summary", transactionHandler.GetTransactionSummary)
	transactions.GET("/categories", transactionHandler.GetCategoryBreakdown)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/summary", budgetHandler.GetBudgetSummary)
	budgets.GET("/notifications", budgetHandler.GetBudgetNotifications)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/status", budgetHandler.GetBudgetStatus)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
