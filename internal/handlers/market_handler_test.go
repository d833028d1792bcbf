package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"portfolio-tracker/internal/models"
	"portfolio-tracker/internal/services"
)

func newFeedServer(t *testing.T, interval time.Duration) (*httptest.Server, *services.WebSocketHub) {
	t.Helper()
	market := services.NewMarketDataService(services.NewPriceSimulator())
	hub := services.NewWebSocketHub(market, interval, nopLog)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(NewFeedRouter(NewMarketHandler(market, hub, nil, nopLog), nil, nopLog))
	t.Cleanup(func() {
		cancel()
		<-stopped
		srv.Close()
	})
	return srv, hub
}

func dialFeed(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFeed(t *testing.T, conn *websocket.Conn) models.FeedMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg models.FeedMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestFeed_initThenUpdates(t *testing.T) {
	srv, _ := newFeedServer(t, 25*time.Millisecond)

	for _, path := range []string{"/", "/ws"} {
		t.Run(path, func(t *testing.T) {
			conn := dialFeed(t, srv, path)

			first := readFeed(t, conn)
			require.Equal(t, models.FeedInit, first.Type)
			require.NotEmpty(t, first.Stocks)
			require.NotEmpty(t, first.MutualFunds)

			update := readFeed(t, conn)
			require.Equal(t, models.FeedUpdate, update.Type)
			require.Len(t, update.Stocks, len(first.Stocks))
			require.Len(t, update.MutualFunds, len(first.MutualFunds))
			for _, s := range update.Stocks {
				require.GreaterOrEqual(t, s.CurrentPrice, 0.01)
			}
		})
	}
}

func TestFeed_disconnectUnsubscribes(t *testing.T) {
	srv, hub := newFeedServer(t, time.Hour)

	conn := dialFeed(t, srv, "/ws")
	readFeed(t, conn)
	require.Equal(t, 1, hub.Subscribers())

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMarketEndpoints(t *testing.T) {
	srv, _ := newFeedServer(t, time.Hour)

	resp, err := http.Get(srv.URL + "/market")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for path, want := range map[string]int{
		"/market/stocks/aapl":             http.StatusOK,
		"/market/stocks/NOPE":             http.StatusNotFound,
		"/market/mutual-funds/hdfc%20amc": http.StatusOK,
		"/market/mutual-funds/Nope":       http.StatusNotFound,
		"/health":                         http.StatusOK,
	} {
		r, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		r.Body.Close()
		require.Equal(t, want, r.StatusCode, path)
	}
}
