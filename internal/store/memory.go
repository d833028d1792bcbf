package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"portfolio-tracker/internal/models"
)

// MemoryStore keeps everything in process memory. Used for local runs and
// tests; all state is lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[string]models.User
	stocks map[string]models.Stock
	funds  map[string]models.MutualFund
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]models.User),
		stocks: make(map[string]models.Stock),
		funds:  make(map[string]models.MutualFund),
		now:    time.Now,
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}

	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) ListStocks(_ context.Context, userID string) ([]models.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []models.Stock{}
	for _, st := range s.stocks {
		if st.UserID == userID {
			list = append(list, st)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Symbol < list[j].Symbol })
	return list, nil
}

func (s *MemoryStore) GetStock(_ context.Context, userID, symbol string) (*models.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.findStock(userID, models.NormalizeStockSymbol(symbol))
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (s *MemoryStore) findStock(userID, symbol string) (models.Stock, bool) {
	for _, st := range s.stocks {
		if st.UserID == userID && st.Symbol == symbol {
			return st, true
		}
	}
	return models.Stock{}, false
}

func (s *MemoryStore) ListFunds(_ context.Context, userID string) ([]models.MutualFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []models.MutualFund{}
	for _, f := range s.funds {
		if f.UserID == userID {
			list = append(list, f)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Symbol < list[j].Symbol })
	return list, nil
}

func (s *MemoryStore) GetFund(_ context.Context, userID, symbol string) (*models.MutualFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = strings.TrimSpace(symbol)
	for _, f := range s.funds {
		if f.UserID == userID && strings.EqualFold(f.Symbol, symbol) {
			return &f, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) BuyStock(_ context.Context, userID string, lot models.StockLot) (*models.Stock, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := models.NormalizeStockSymbol(lot.Symbol)
	now := s.now()

	if existing, ok := s.findStock(userID, symbol); ok {
		merged := mergeLot(existing, lot)
		merged.UpdatedAt = now
		s.stocks[merged.ID] = merged
		return &merged, false, nil
	}

	st := models.Stock{
		ID:            uuid.NewString(),
		UserID:        userID,
		Symbol:        symbol,
		Shares:        lot.Shares,
		PurchasePrice: lot.PurchasePrice,
		CurrentPrice:  lot.CurrentPrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.stocks[st.ID] = st
	return &st, true, nil
}

func (s *MemoryStore) CreateFund(_ context.Context, fund *models.MutualFund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.funds {
		if f.UserID == fund.UserID && strings.EqualFold(f.Symbol, fund.Symbol) {
			return ErrDuplicate
		}
	}

	now := s.now()
	fund.ID = uuid.NewString()
	fund.CreatedAt = now
	fund.UpdatedAt = now
	s.funds[fund.ID] = *fund
	return nil
}

func (s *MemoryStore) DeleteHoldings(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range s.stocks {
		if st.UserID == userID {
			delete(s.stocks, id)
		}
	}
	for id, f := range s.funds {
		if f.UserID == userID {
			delete(s.funds, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}
