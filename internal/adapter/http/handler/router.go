package handler

import (
	"storefront-wallet/internal/adapter/http/middleware"
	"storefront-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	CartSvc        ports.CartService
	Catalog        ports.CatalogClient
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies the snapshot backend)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	productHandler := NewProductHandler(deps.Catalog)
	products := v1.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	cartHandler := NewCartHandler(deps.CartSvc, deps.Catalog)
	cart := v1.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:id", cartHandler.UpdateQuantity)
		cart.DELETE("/items/:id", cartHandler.RemoveItem)
		cart.POST("/checkout", cartHandler.Checkout)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := v1.Group("/wallet")
	{
		wallet.GET("", walletHandler.GetWallet)
		wallet.POST("/topup", walletHandler.TopUp)
		wallet.POST("/refund", walletHandler.Refund)
		wallet.GET("/transactions", walletHandler.ListTransactions)
		wallet.GET("/transactions/:id", walletHandler.GetTransaction)
	}

	return r
}
