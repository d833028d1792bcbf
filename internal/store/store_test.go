package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"portfolio-tracker/internal/models"
)

// runStoreSuite exercises the behaviour every Store implementation shares.
func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()

	newUser := func(t *testing.T, email string) *models.User {
		u := &models.User{Username: "alice", Email: email, Password: "hash"}
		require.NoError(t, s.CreateUser(ctx, u))
		require.NotEmpty(t, u.ID)
		return u
	}

	t.Run("users", func(t *testing.T) {
		u := newUser(t, "users@x.com")

		byEmail, err := s.GetUserByEmail(ctx, "users@x.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)
		require.Equal(t, "hash", byEmail.Password)

		byID, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "users@x.com", byID.Email)

		err = s.CreateUser(ctx, &models.User{Username: "bob", Email: "users@x.com", Password: "p"})
		require.ErrorIs(t, err, ErrDuplicate)

		_, err = s.GetUserByEmail(ctx, "nobody@x.com")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByID(ctx, "not-an-id")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("buy creates then merges", func(t *testing.T) {
		u := newUser(t, "buy@x.com")

		st, created, err := s.BuyStock(ctx, u.ID, models.StockLot{Symbol: "aapl", Shares: 10, PurchasePrice: 150, CurrentPrice: 195})
		require.NoError(t, err)
		require.True(t, created)
		require.Equal(t, "AAPL", st.Symbol)

		st, created, err = s.BuyStock(ctx, u.ID, models.StockLot{Symbol: "AAPL", Shares: 5, PurchasePrice: 170, CurrentPrice: 200})
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, 15.0, st.Shares)
		require.InDelta(t, (10*150.0+5*170.0)/15, st.PurchasePrice, 1e-9)
		require.Equal(t, 200.0, st.CurrentPrice)

		got, err := s.GetStock(ctx, u.ID, "aapl")
		require.NoError(t, err)
		require.Equal(t, st.ID, got.ID)

		list, err := s.ListStocks(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("concurrent buys of a new symbol", func(t *testing.T) {
		u := newUser(t, "race@x.com")

		const buyers = 8
		type result struct {
			shares  float64
			created bool
			err     error
		}
		var wg sync.WaitGroup
		results := make(chan result, buyers)
		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				st, created, err := s.BuyStock(ctx, u.ID, models.StockLot{Symbol: "TSLA", Shares: 1, PurchasePrice: 100, CurrentPrice: 100})
				r := result{created: created, err: err}
				if st != nil {
					r.shares = st.Shares
				}
				results <- r
			}()
		}
		wg.Wait()
		close(results)

		// Each buy sees the holding exactly as its own merge left it.
		seen := map[float64]bool{}
		creators := 0
		for r := range results {
			require.NoError(t, r.err)
			require.False(t, seen[r.shares], "two buys returned %v shares", r.shares)
			seen[r.shares] = true
			if r.created {
				creators++
				require.Equal(t, 1.0, r.shares)
			}
		}
		require.Equal(t, 1, creators)

		list, err := s.ListStocks(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, float64(buyers), list[0].Shares)
	})

	t.Run("funds", func(t *testing.T) {
		u := newUser(t, "funds@x.com")

		for i, sym := range []string{"SBI Bluechip", "HDFC AMC"} {
			f := &models.MutualFund{UserID: u.ID, Symbol: sym, Fund: fmt.Sprintf("fund %d", i), Units: 10, NAV: 5, CurrentPrice: 6}
			require.NoError(t, s.CreateFund(ctx, f))
			require.NotEmpty(t, f.ID)
		}

		list, err := s.ListFunds(ctx, u.ID)
		require.NoError(t, err)
		symbols := []string{}
		for _, f := range list {
			symbols = append(symbols, f.Symbol)
		}
		require.Equal(t, "", cmp.Diff([]string{"HDFC AMC", "SBI Bluechip"}, symbols))

		f, err := s.GetFund(ctx, u.ID, "hdfc amc")
		require.NoError(t, err)
		require.Equal(t, "HDFC AMC", f.Symbol)

		_, err = s.GetFund(ctx, u.ID, "nope")
		require.ErrorIs(t, err, ErrNotFound)

		// Fund symbols are unique the same way they are looked up.
		dup := &models.MutualFund{UserID: u.ID, Symbol: "sbi BLUECHIP", Fund: "copy", Units: 1, NAV: 1, CurrentPrice: 1}
		require.ErrorIs(t, s.CreateFund(ctx, dup), ErrDuplicate)
		list, err = s.ListFunds(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)

		require.NoError(t, s.DeleteHoldings(ctx, u.ID))
		list, err = s.ListFunds(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, list)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestMemoryStore_isolatesUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, _, err := s.BuyStock(ctx, "u1", models.StockLot{Symbol: "IBM", Shares: 1, PurchasePrice: 1, CurrentPrice: 1})
	require.NoError(t, err)

	_, err = s.GetStock(ctx, "u2", "IBM")
	require.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListStocks(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@localhost:5432/db", migrateURL("postgres://u:p@localhost:5432/db"))
	require.Equal(t, "pgx5://localhost/db", migrateURL("postgresql://localhost/db"))
}
