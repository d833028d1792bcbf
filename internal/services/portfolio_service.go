package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"portfolio-tracker/internal/models"
	"portfolio-tracker/internal/store"
)

var ErrInvalidLot = errors.New("shares, purchasePrice and currentPrice must be positive numbers")

type PortfolioService struct {
	holdings store.HoldingStore
	log      *zap.SugaredLogger
}

func NewPortfolioService(holdings store.HoldingStore, log *zap.SugaredLogger) *PortfolioService {
	return &PortfolioService{holdings: holdings, log: log}
}

func (s *PortfolioService) ListStocks(ctx context.Context, userID string) ([]models.StockWithMetrics, error) {
	stocks, err := s.holdings.ListStocks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return AnnotateStocks(stocks), nil
}

// GetStock returns store.ErrNotFound when the user holds no such stock.
func (s *PortfolioService) GetStock(ctx context.Context, userID, symbol string) (*models.StockWithMetrics, error) {
	stock, err := s.holdings.GetStock(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	annotated := AnnotateStock(*stock)
	return &annotated, nil
}

func (s *PortfolioService) ListFunds(ctx context.Context, userID string) ([]models.FundWithMetrics, error) {
	funds, err := s.holdings.ListFunds(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list mutual funds: %w", err)
	}
	return AnnotateFunds(funds), nil
}

func (s *PortfolioService) GetFund(ctx context.Context, userID, symbol string) (*models.FundWithMetrics, error) {
	fund, err := s.holdings.GetFund(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	annotated := AnnotateFund(*fund)
	return &annotated, nil
}

// loadHoldings fetches both asset classes concurrently.
func (s *PortfolioService) loadHoldings(ctx context.Context, userID string) ([]models.Stock, []models.MutualFund, error) {
	var (
		stocks []models.Stock
		funds  []models.MutualFund
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if stocks, err = s.holdings.ListStocks(gctx, userID); err != nil {
			return fmt.Errorf("list stocks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if funds, err = s.holdings.ListFunds(gctx, userID); err != nil {
			return fmt.Errorf("list mutual funds: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return stocks, funds, nil
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, userID string) (*models.Portfolio, error) {
	stocks, funds, err := s.loadHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Portfolio{
		Summary:     Summarize(stocks, funds),
		Stocks:      AnnotateStocks(stocks),
		MutualFunds: AnnotateFunds(funds),
	}, nil
}

func (s *PortfolioService) GetSummary(ctx context.Context, userID string) (*models.PortfolioSummary, error) {
	stocks, funds, err := s.loadHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(stocks, funds)
	return &summary, nil
}

func (s *PortfolioService) GetPerformance(ctx context.Context, userID string) (*models.PerformanceReport, error) {
	stocks, funds, err := s.loadHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}
	report := Report(stocks, funds)
	return &report, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// BuyStock merges the lot into an existing holding (weighted-average cost,
// summed shares, latest current price) or creates one. The store does the
// merge atomically.
func (s *PortfolioService) BuyStock(ctx context.Context, userID string, lot models.StockLot) (*models.Stock, bool, error) {
	lot.Symbol = models.NormalizeStockSymbol(lot.Symbol)
	if lot.Symbol == "" || !positive(lot.Shares) || !positive(lot.PurchasePrice) || !positive(lot.CurrentPrice) {
		return nil, false, ErrInvalidLot
	}

	stock, created, err := s.holdings.BuyStock(ctx, userID, lot)
	if err != nil {
		return nil, false, err
	}

	s.log.Infow("stock bought",
		"userID", userID,
		"symbol", stock.Symbol,
		"shares", lot.Shares,
		"price", lot.PurchasePrice,
		"created", created,
	)
	return stock, created, nil
}
