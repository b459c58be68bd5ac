// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"szafa/internal/app"
	"szafa/internal/infrastructure/http/v1/handlers"
	"szafa/internal/infrastructure/http/v1/middleware"
	"szafa/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Services *app.Services

	// DB backs the readiness probe; nil skips the check
	DB handlers.Pinger

	// Logger for request logging
	Logger *logger.Logger

	// NumberingRetries bounds retries of number-allocating requests on collisions
	NumberingRetries int

	// Debug keeps gin in debug mode
	Debug bool
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Order matters: ErrorHandler must see errors set by Recovery.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	{
		registerCatalogRoutes(v1, cfg)
		registerEmployeeRoutes(v1, cfg)
		registerDocumentRoutes(v1, cfg)
		registerStockRoutes(v1, cfg)
		registerPendingRoutes(v1, cfg)
		registerReportRoutes(v1, cfg)
	}

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewCatalogHandler(handlers.NewBaseHandler(), cfg.Services.Products, cfg.Services.Dictionaries)

	products := rg.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
	}

	dictionaries := rg.Group("/dictionaries/:kind")
	{
		dictionaries.GET("", h.ListDictionary)
		dictionaries.POST("", h.CreateDictionaryEntry)
		dictionaries.DELETE("/:id", h.DeleteDictionaryEntry)
	}
}

func registerEmployeeRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewEmployeeHandler(handlers.NewBaseHandler(), cfg.Services.Employees)

	employees := rg.Group("/employees")
	{
		employees.GET("", h.List)
		employees.POST("", h.Create)
		employees.GET("/:id", h.Get)
		employees.PUT("/:id", h.Update)
		employees.DELETE("/:id", h.Delete)
		employees.POST("/:id/periods", h.CreatePeriod)
		employees.PUT("/:id/periods/:periodId", h.UpdatePeriod)
		employees.DELETE("/:id/periods/:periodId", h.DeletePeriod)
	}
}

func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()

	issues := handlers.NewIssueHandler(base, cfg.Services.Issues, cfg.NumberingRetries)
	_, issueItems := RegisterDocumentRoutes(rg, "/issues", "/issue-items", issues)
	issueItems.POST("/:id/use", issues.MarkUsed)
	issueItems.POST("/:id/return", issues.Return)

	receipts := handlers.NewReceiptHandler(base, cfg.Services.Receipts, cfg.NumberingRetries)
	RegisterDocumentRoutes(rg, "/receipts", "/receipt-items", receipts)
}

func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewStockHandler(handlers.NewBaseHandler(), cfg.Services.Stock)

	stock := rg.Group("/stock")
	{
		stock.GET("", h.Balances)
		stock.GET("/movements", h.Movements)
		stock.POST("/adjustments", h.Adjust)
	}
}

func registerPendingRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewPendingHandler(handlers.NewBaseHandler(), cfg.Services.Pending, cfg.NumberingRetries)

	pending := rg.Group("/pending")
	{
		pending.POST("/products/import", h.ImportProducts)
		pending.GET("/products", h.ListProducts)
		pending.POST("/products/approve", h.ApproveProducts)
		pending.POST("/products/reject", h.RejectProducts)
		pending.POST("/receipts/import", h.ImportReceipt)
		pending.GET("/receipts/:id", h.GetReceipt)
		pending.POST("/receipts/:id/approve", h.ApproveReceipt)
		pending.DELETE("/receipts/:id", h.RejectReceipt)
		pending.POST("/relink", h.Relink)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewReportHandler(handlers.NewBaseHandler(), cfg.Services.Reports)

	reports := rg.Group("/reports")
	{
		reports.GET("/issues", h.Issues)
		reports.GET("/receipts", h.Receipts)
		reports.GET("/demand", h.Demand)
		reports.GET("/order-demand", h.OrderDemand)
	}
}
