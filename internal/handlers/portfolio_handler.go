package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"portfolio-tracker/internal/models"
	"portfolio-tracker/internal/services"
	"portfolio-tracker/internal/store"
)

type PortfolioHandler struct {
	portfolioService *services.PortfolioService
	log              *zap.SugaredLogger
}

func NewPortfolioHandler(portfolioService *services.PortfolioService, log *zap.SugaredLogger) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, log: log}
}

// BuyStockRequest - shares bought, price paid per share and the latest price
type BuyStockRequest struct {
	Shares        float64 `json:"shares" binding:"required,gt=0"`
	PurchasePrice float64 `json:"purchasePrice" binding:"required,gt=0"`
	CurrentPrice  float64 `json:"currentPrice" binding:"required,gt=0"`
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	portfolio, err := h.portfolioService.GetPortfolio(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	summary, err := h.portfolioService.GetSummary(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *PortfolioHandler) GetPerformance(c *gin.Context) {
	report, err := h.portfolioService.GetPerformance(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *PortfolioHandler) ListStocks(c *gin.Context) {
	stocks, err := h.portfolioService.ListStocks(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func (h *PortfolioHandler) GetStock(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		respondError(c, http.StatusBadRequest, "Symbol is required")
		return
	}

	stock, err := h.portfolioService.GetStock(c.Request.Context(), c.GetString(userIDKey), symbol)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Stock not found")
			return
		}
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (h *PortfolioHandler) ListFunds(c *gin.Context) {
	funds, err := h.portfolioService.ListFunds(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, funds)
}

func (h *PortfolioHandler) GetFund(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		respondError(c, http.StatusBadRequest, "Symbol is required")
		return
	}

	fund, err := h.portfolioService.GetFund(c.Request.Context(), c.GetString(userIDKey), symbol)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Mutual fund not found")
			return
		}
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, fund)
}

// BuyStock answers 201 when a new holding was created and 200 when the lot
// was merged into an existing one.
func (h *PortfolioHandler) BuyStock(c *gin.Context) {
	var req BuyStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	stock, created, err := h.portfolioService.BuyStock(c.Request.Context(), c.GetString(userIDKey), models.StockLot{
		Symbol:        c.Param("symbol"),
		Shares:        req.Shares,
		PurchasePrice: req.PurchasePrice,
		CurrentPrice:  req.CurrentPrice,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidLot) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		internalError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, stock)
}
