package store

import (
	"context"
	"errors"

	"portfolio-tracker/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type UserStore interface {
	// CreateUser fills in ID and timestamps. Returns ErrDuplicate when the
	// email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type HoldingStore interface {
	ListStocks(ctx context.Context, userID string) ([]models.Stock, error)
	// GetStock looks up by the upper-cased symbol.
	GetStock(ctx context.Context, userID, symbol string) (*models.Stock, error)
	ListFunds(ctx context.Context, userID string) ([]models.MutualFund, error)
	// GetFund matches the symbol case-insensitively.
	GetFund(ctx context.Context, userID, symbol string) (*models.MutualFund, error)

	// BuyStock atomically merges a lot into the user's holding for the
	// symbol, creating it when absent. Concurrent buys for the same
	// user/symbol never lose an update or create a second row.
	BuyStock(ctx context.Context, userID string, lot models.StockLot) (stock *models.Stock, created bool, err error)
	CreateFund(ctx context.Context, fund *models.MutualFund) error
	DeleteHoldings(ctx context.Context, userID string) error
}

type Store interface {
	UserStore
	HoldingStore
	Close(ctx context.Context) error
}

// mergeLot is the weighted-average cost merge shared by the in-process stores.
func mergeLot(existing models.Stock, lot models.StockLot) models.Stock {
	totalShares := existing.Shares + lot.Shares
	existing.PurchasePrice = (existing.Shares*existing.PurchasePrice + lot.Shares*lot.PurchasePrice) / totalShares
	existing.Shares = totalShares
	existing.CurrentPrice = lot.CurrentPrice
	return existing
}
