package models

import (
	"strings"
	"time"
)

type AssetClass string

const (
	AssetClassStock      AssetClass = "stock"
	AssetClassMutualFund AssetClass = "mutual_fund"
)

type Stock struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Symbol        string    `json:"symbol"`
	Shares        float64   `json:"shares"`
	PurchasePrice float64   `json:"purchasePrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type MutualFund struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Symbol       string    `json:"symbol"`
	Fund         string    `json:"fund"`
	Units        float64   `json:"units"`
	NAV          float64   `json:"nav"` // purchase NAV, the fund's cost basis
	CurrentPrice float64   `json:"currentPrice"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StockLot is one buy of a stock: the shares bought, what was paid for each
// and the latest known market price.
type StockLot struct {
	Symbol        string
	Shares        float64
	PurchasePrice float64
	CurrentPrice  float64
}

// NormalizeStockSymbol upper-cases a ticker the way stocks are stored.
func NormalizeStockSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Holding is the common view the metrics code works on.
type Holding interface {
	Quantity() float64
	CostBasis() float64
	MarketPrice() float64
}

func (s Stock) Quantity() float64    { return s.Shares }
func (s Stock) CostBasis() float64   { return s.PurchasePrice }
func (s Stock) MarketPrice() float64 { return s.CurrentPrice }

func (f MutualFund) Quantity() float64    { return f.Units }
func (f MutualFund) CostBasis() float64   { return f.NAV }
func (f MutualFund) MarketPrice() float64 { return f.CurrentPrice }
