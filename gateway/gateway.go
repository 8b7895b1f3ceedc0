package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/example/fooddash/pkg/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Gateway struct {
	config   *config.GatewayConfig
	services Services
	tokens   TokenParser
	health   HealthChecker
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
}

func NewGateway(cfg *config.GatewayConfig, services Services, tokens TokenParser, health HealthChecker, logger *zap.Logger) *Gateway {
	logger = logger.Named("gateway")

	router := gin.New()
	router.Use(recovery(logger))
	router.Use(loggerMiddleware(logger))
	if cfg.RateLimit > 0 {
		router.Use(newRateLimiter(cfg.RateLimit, cfg.RateBurst).middleware())
	}

	g := &Gateway{
		config:   cfg,
		services: services,
		tokens:   tokens,
		health:   health,
		logger:   logger,
		router:   router,
	}
	g.SetupRoutes()
	return g
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", g.healthCheck)

	api := g.router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", g.register)
			authRoutes.POST("/login", g.login)
			authRoutes.GET("/me", g.requireAuth(), g.me)
			authRoutes.PUT("/profile", g.requireAuth(), g.updateProfile)
		}

		api.GET("/products", g.listProducts)
		api.GET("/products/:id", g.getProduct)
		api.GET("/categories", g.listCategories)
		api.GET("/restaurants", g.listRestaurants)

		cart := api.Group("/cart", g.cartOwner())
		{
			cart.GET("/", g.getCart)
			cart.POST("/add", g.addToCart)
			cart.PUT("/update", g.updateCartItem)
			cart.DELETE("/remove/:productId", g.removeFromCart)
			cart.DELETE("/clear", g.clearCart)
		}

		orders := api.Group("/orders")
		{
			orders.GET("/trend", g.optionalAuth(), g.purchaseTrend)

			authed := orders.Group("", g.requireAuth())
			authed.POST("", g.createOrder)
			authed.GET("", g.listOrders)
			authed.GET("/:id", g.getOrder)
			authed.GET("/:id/history", g.orderHistory)
			authed.PUT("/:id/cancel", g.cancelOrder)
			authed.PUT("/:id/received", g.markReceived)
			authed.PUT("/:id/payment", g.updatePaymentStatus)
		}

		payments := api.Group("/payments", g.requireAuth())
		{
			payments.POST("", g.recordPayment)
			payments.GET("", g.listPayments)
		}
	}

	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start serves until Shutdown is called.
func (g *Gateway) Start() error {
	addr := g.config.Addr()
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))

	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func (g *Gateway) healthCheck(c *gin.Context) {
	if g.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := g.health.Ping(ctx); err != nil {
			g.logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
