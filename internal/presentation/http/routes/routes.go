package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/checkout-api/internal/config"
	domainRepo "github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/internal/presentation/http/handler"
	"github.com/sangkips/checkout-api/internal/presentation/http/middleware"
	"github.com/sangkips/checkout-api/pkg/utils"
)

// Roles allowed to change stock, prices and credit terms.
var backOfficeRoles = []string{"manager", "admin"}

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Checkout  *handler.CheckoutHandler
	Catalog   *handler.CatalogHandler
	Inventory *handler.InventoryHandler
	Sale      *handler.SaleHandler
	Credit    *handler.CreditHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.TerminalRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))

		registerCheckoutRoutes(protected, h)
		registerCatalogRoutes(protected, h)
		registerInventoryRoutes(protected, h)
		registerSaleRoutes(protected, h)
		registerCreditRoutes(protected, h)
		registerPrinterRoutes(protected, h)
	}

	return router
}

func registerCheckoutRoutes(rg *gin.RouterGroup, h *Handlers) {
	checkouts := rg.Group("/checkouts")
	{
		checkouts.POST("", h.Checkout.Open)
		checkouts.GET("/:id", h.Checkout.Get)
		checkouts.POST("/:id/lines", h.Checkout.AddLine)
		checkouts.PUT("/:id/lines/:lineId", h.Checkout.SetLineQuantity)
		checkouts.DELETE("/:id/lines/:lineId", h.Checkout.RemoveLine)
		checkouts.POST("/:id/commit", h.Checkout.Commit)
		checkouts.DELETE("/:id", h.Checkout.Abort)
	}
}

func registerCatalogRoutes(rg *gin.RouterGroup, h *Handlers) {
	catalog := rg.Group("/catalog")
	{
		catalog.GET("", h.Catalog.Lookup)
		catalog.GET("/low-stock", h.Inventory.LowStock)
		catalog.GET("/:id", h.Catalog.Get)
		catalog.GET("/:id/fefo", h.Inventory.SelectBatch)
		catalog.POST("", middleware.RequireRole(backOfficeRoles...), h.Catalog.Create)
	}
}

func registerInventoryRoutes(rg *gin.RouterGroup, h *Handlers) {
	batches := rg.Group("/batches")
	{
		batches.POST("", middleware.RequireRole(backOfficeRoles...), h.Inventory.ReceiveBatch)
		batches.GET("/:id/movements", h.Inventory.Movements)
	}
}

func registerSaleRoutes(rg *gin.RouterGroup, h *Handlers) {
	sales := rg.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		sales.GET("/:id", h.Sale.Get)
		sales.GET("/:id/receipt", h.Printer.ReceiptText)
		sales.POST("/:id/receipt/print", h.Printer.PrintReceipt)
	}
}

func registerCreditRoutes(rg *gin.RouterGroup, h *Handlers) {
	credit := rg.Group("/credit-accounts/:id")
	{
		credit.GET("", h.Credit.GetAccount)
		credit.PUT("", middleware.RequireRole(backOfficeRoles...), h.Credit.Configure)
		credit.POST("/payments", h.Credit.RecordPayment)
		credit.GET("/entries", h.Credit.ListEntries)
	}
}

func registerPrinterRoutes(rg *gin.RouterGroup, h *Handlers) {
	printer := rg.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
	}
}
