package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"portfolio-tracker/internal/store"
)

func TestSeedService_seedDemo(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	auth := NewAuthService(db, testSecret, time.Hour, nopLog)
	seed := NewSeedService(auth, db, db, nopLog)

	user, summary, err := seed.SeedDemo(ctx)
	require.NoError(t, err)
	require.Equal(t, DemoEmail, user.Email)
	require.InDelta(t, 86680.0, summary.TotalInvestment, 1e-6)
	require.Greater(t, summary.CurrentValue, summary.TotalInvestment)

	// Running it again resets rather than duplicates.
	again, summaryAgain, err := seed.SeedDemo(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
	require.Equal(t, summary.TotalInvestment, summaryAgain.TotalInvestment)

	stocks, err := db.ListStocks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stocks, len(demoStocks))
	funds, err := db.ListFunds(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, funds, len(demoFunds))

	_, err = auth.Signin(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
}
