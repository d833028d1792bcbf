package services

import (
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"portfolio-tracker/internal/models"
)

const (
	stockVolatility = 0.025
	fundVolatility  = 0.015
)

var ErrUnknownSymbol = errors.New("unknown symbol")

var initialStocks = []models.MarketStock{
	{Symbol: "AAPL", Name: "Apple Inc.", CurrentPrice: 195.0},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", CurrentPrice: 2850.0},
	{Symbol: "TSLA", Name: "Tesla Inc.", CurrentPrice: 900.0},
	{Symbol: "MSFT", Name: "Microsoft Corp.", CurrentPrice: 340.0},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", CurrentPrice: 3560.0},
	{Symbol: "META", Name: "Meta Platforms", CurrentPrice: 280.0},
	{Symbol: "NFLX", Name: "Netflix Inc.", CurrentPrice: 610.0},
	{Symbol: "NVDA", Name: "NVIDIA Corp.", CurrentPrice: 820.0},
	{Symbol: "IBM", Name: "IBM Corp.", CurrentPrice: 138.0},
	{Symbol: "ORCL", Name: "Oracle Corp.", CurrentPrice: 110.0},
}

var initialFunds = []models.MarketFund{
	{Symbol: "HDFC AMC", Fund: "Equity Large Cap", CurrentPrice: 8.75},
	{Symbol: "SBI Bluechip", Fund: "Large Cap", CurrentPrice: 15.6},
	{Symbol: "ICICI Pru Tech", Fund: "Sectoral - Technology", CurrentPrice: 26.2},
	{Symbol: "Axis Small Cap", Fund: "Small Cap", CurrentPrice: 62.4},
	{Symbol: "Kotak Emerging", Fund: "Mid Cap", CurrentPrice: 50.5},
	{Symbol: "Nippon Pharma", Fund: "Sectoral - Pharma", CurrentPrice: 114.0},
	{Symbol: "UTI Flexi Cap", Fund: "Flexi Cap", CurrentPrice: 46.8},
	{Symbol: "Reliance Growth", Fund: "Growth", CurrentPrice: 78.5},
	{Symbol: "Motilal ELSS", Fund: "Tax Saver", CurrentPrice: 92.3},
	{Symbol: "DSP Mid Cap", Fund: "Mid Cap", CurrentPrice: 156.7},
}

// MarketDataService holds the simulated market: one list of stocks and one
// of funds, process-wide and never persisted.
type MarketDataService struct {
	mu        sync.RWMutex
	simulator *PriceSimulator
	stocks    []models.MarketStock
	funds     []models.MarketFund
}

func NewMarketDataService(simulator *PriceSimulator) *MarketDataService {
	return NewMarketDataServiceWith(simulator, initialStocks, initialFunds)
}

// NewMarketDataServiceWith starts the market from the given entries. Previous
// price is seeded with the current one and change is zero.
func NewMarketDataServiceWith(simulator *PriceSimulator, stocks []models.MarketStock, funds []models.MarketFund) *MarketDataService {
	m := &MarketDataService{
		simulator: simulator,
		stocks:    make([]models.MarketStock, len(stocks)),
		funds:     make([]models.MarketFund, len(funds)),
	}
	for i, s := range stocks {
		s.PreviousPrice, s.Change, s.ChangePercent = s.CurrentPrice, 0, 0
		m.stocks[i] = s
	}
	for i, f := range funds {
		f.PreviousPrice, f.Change, f.ChangePercent = f.CurrentPrice, 0, 0
		m.funds[i] = f
	}
	return m
}

// Advance moves every entry one tick.
func (m *MarketDataService) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.stocks {
		s := &m.stocks[i]
		s.PreviousPrice = s.CurrentPrice
		s.CurrentPrice, s.Change, s.ChangePercent = m.move(s.CurrentPrice, stockVolatility)
	}
	for i := range m.funds {
		f := &m.funds[i]
		f.PreviousPrice = f.CurrentPrice
		f.CurrentPrice, f.Change, f.ChangePercent = m.move(f.CurrentPrice, fundVolatility)
	}
}

func (m *MarketDataService) move(previous, volatility float64) (price, change, changePercent float64) {
	price = round2(m.simulator.NextPrice(previous, volatility))
	diff := price - previous
	return price, round2(diff), round2(diff / previous * 100)
}

// Snapshot copies the current state out from under the lock.
func (m *MarketDataService) Snapshot() models.MarketSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return models.MarketSnapshot{
		Stocks:      append([]models.MarketStock(nil), m.stocks...),
		MutualFunds: append([]models.MarketFund(nil), m.funds...),
	}
}

func (m *MarketDataService) GetStockPrice(symbol string) (*models.MarketStock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbol = models.NormalizeStockSymbol(symbol)
	for _, s := range m.stocks {
		if s.Symbol == symbol {
			return &s, nil
		}
	}
	return nil, ErrUnknownSymbol
}

func (m *MarketDataService) GetFundPrice(symbol string) (*models.MarketFund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbol = strings.TrimSpace(symbol)
	for _, f := range m.funds {
		if strings.EqualFold(f.Symbol, symbol) {
			return &f, nil
		}
	}
	return nil, ErrUnknownSymbol
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
