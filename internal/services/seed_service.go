package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"portfolio-tracker/internal/models"
	"portfolio-tracker/internal/store"
)

const (
	DemoEmail    = "demo@example.com"
	DemoUsername = "DemoUser"
	DemoPassword = "securepassword"
)

var demoStocks = []models.StockLot{
	{Symbol: "AAPL", Shares: 10, PurchasePrice: 150, CurrentPrice: 195},
	{Symbol: "GOOGL", Shares: 5, PurchasePrice: 2500, CurrentPrice: 2850},
	{Symbol: "TSLA", Shares: 8, PurchasePrice: 800, CurrentPrice: 900},
	{Symbol: "MSFT", Shares: 12, PurchasePrice: 300, CurrentPrice: 340},
	{Symbol: "AMZN", Shares: 7, PurchasePrice: 3300, CurrentPrice: 3560},
	{Symbol: "META", Shares: 6, PurchasePrice: 250, CurrentPrice: 280},
	{Symbol: "NFLX", Shares: 4, PurchasePrice: 500, CurrentPrice: 610},
	{Symbol: "NVDA", Shares: 3, PurchasePrice: 600, CurrentPrice: 820},
	{Symbol: "IBM", Shares: 15, PurchasePrice: 120, CurrentPrice: 138},
	{Symbol: "ORCL", Shares: 10, PurchasePrice: 90, CurrentPrice: 110},
}

var demoFunds = []models.MutualFund{
	{Symbol: "HDFC AMC", Fund: "Equity Large Cap", Units: 120, NAV: 8, CurrentPrice: 8.75},
	{Symbol: "SBI Bluechip", Fund: "Large Cap", Units: 200, NAV: 15, CurrentPrice: 15.6},
	{Symbol: "ICICI Pru Tech", Fund: "Sectoral - Technology", Units: 150, NAV: 25, CurrentPrice: 26.2},
	{Symbol: "Axis Small Cap", Fund: "Small Cap", Units: 100, NAV: 60, CurrentPrice: 62.4},
	{Symbol: "Kotak Emerging", Fund: "Mid Cap", Units: 90, NAV: 48, CurrentPrice: 50.5},
	{Symbol: "Nippon Pharma", Fund: "Sectoral - Pharma", Units: 70, NAV: 110, CurrentPrice: 114},
	{Symbol: "UTI Flexi Cap", Fund: "Flexi Cap", Units: 130, NAV: 45, CurrentPrice: 46.8},
}

type SeedService struct {
	auth      *AuthService
	users     store.UserStore
	holdings  store.HoldingStore
	portfolio *PortfolioService
	log       *zap.SugaredLogger
}

func NewSeedService(auth *AuthService, users store.UserStore, holdings store.HoldingStore, log *zap.SugaredLogger) *SeedService {
	return &SeedService{
		auth:      auth,
		users:     users,
		holdings:  holdings,
		portfolio: NewPortfolioService(holdings, log),
		log:       log,
	}
}

// SeedDemo makes sure the demo user exists and resets their holdings to the
// demo portfolio. Safe to run repeatedly.
func (s *SeedService) SeedDemo(ctx context.Context) (*models.User, *models.PortfolioSummary, error) {
	user, err := s.users.GetUserByEmail(ctx, DemoEmail)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.auth.Signup(ctx, DemoUsername, DemoEmail, DemoPassword)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("demo user: %w", err)
	}
	s.log.Infow("seeding demo portfolio", "email", user.Email)

	if err = s.holdings.DeleteHoldings(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("clear holdings: %w", err)
	}

	for _, lot := range demoStocks {
		if _, _, err = s.holdings.BuyStock(ctx, user.ID, lot); err != nil {
			return nil, nil, fmt.Errorf("seed stock %s: %w", lot.Symbol, err)
		}
	}
	for _, f := range demoFunds {
		f.UserID = user.ID
		if err = s.holdings.CreateFund(ctx, &f); err != nil {
			return nil, nil, fmt.Errorf("seed fund %s: %w", f.Symbol, err)
		}
	}

	summary, err := s.portfolio.GetSummary(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	pct, _ := summary.TotalGainLossPercentage.Value()
	s.log.Infow("seed completed",
		"stocks", len(demoStocks),
		"funds", len(demoFunds),
		"totalInvestment", summary.TotalInvestment,
		"currentValue", summary.CurrentValue,
		"gainLoss", summary.TotalGainLoss,
		"gainLossPercentage", pct,
	)
	return user, summary, nil
}
