package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"portfolio-tracker/internal/logger"
)

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

func newEngine(allowedOrigins []string, log *zap.SugaredLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(log), corsMiddleware(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	return router
}

type APIRouterConfig struct {
	Auth           *AuthHandler
	Portfolio      *PortfolioHandler
	RateLimiter    *RateLimiter
	AllowedOrigins []string
	Log            *zap.SugaredLogger
}

func NewAPIRouter(cfg APIRouterConfig) *gin.Engine {
	router := newEngine(cfg.AllowedOrigins, cfg.Log)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Portfolio Tracker API",
			"endpoints": []string{
				"POST /signup",
				"POST /signin",
				"GET /me",
				"GET /portfolio",
				"GET /portfolio/summary",
				"GET /portfolio/performance",
				"GET /stocks",
				"GET /stocks/:symbol",
				"POST /stocks/:symbol/buy",
				"GET /mutual-funds",
				"GET /mutual-funds/:symbol",
			},
		})
	})

	public := router.Group("/")
	if cfg.RateLimiter != nil {
		public.Use(cfg.RateLimiter.Middleware())
	}
	public.POST("/signup", cfg.Auth.Signup)
	public.POST("/signin", cfg.Auth.Signin)

	auth := router.Group("/")
	auth.Use(cfg.Auth.AuthMiddleware())
	{
		auth.GET("/me", cfg.Auth.GetCurrentUser)
		auth.GET("/portfolio", cfg.Portfolio.GetPortfolio)
		auth.GET("/portfolio/summary", cfg.Portfolio.GetSummary)
		auth.GET("/portfolio/performance", cfg.Portfolio.GetPerformance)
		auth.GET("/stocks", cfg.Portfolio.ListStocks)
		auth.GET("/stocks/:symbol", cfg.Portfolio.GetStock)
		auth.POST("/stocks/:symbol/buy", cfg.Portfolio.BuyStock)
		auth.GET("/mutual-funds", cfg.Portfolio.ListFunds)
		auth.GET("/mutual-funds/:symbol", cfg.Portfolio.GetFund)
	}

	return router
}

// NewFeedRouter serves the live price feed at / and /ws plus plain JSON
// snapshots under /market.
func NewFeedRouter(market *MarketHandler, allowedOrigins []string, log *zap.SugaredLogger) *gin.Engine {
	router := newEngine(allowedOrigins, log)

	router.GET("/", market.ServeWS)
	router.GET("/ws", market.ServeWS)
	router.GET("/market", market.GetSnapshot)
	router.GET("/market/stocks/:symbol", market.GetStockPrice)
	router.GET("/market/mutual-funds/:symbol", market.GetFundPrice)

	return router
}
