package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"portfolio-tracker/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var ErrHubStopped = errors.New("feed hub stopped")

// WebSocketHub owns the simulated market. Its Run loop is the only thing that
// advances prices: one ticker for the whole process, with every snapshot
// fanned out to all subscribers.
type WebSocketHub struct {
	market      *MarketDataService
	interval    time.Duration
	log         *zap.SugaredLogger
	subscribers map[*Subscription]bool
	register    chan *Subscription
	unregister  chan *Subscription
	done        chan struct{}
	count       atomic.Int64
}

// Subscription receives encoded feed messages until it is unsubscribed or the
// hub stops, at which point Messages is closed.
type Subscription struct {
	hub  *WebSocketHub
	send chan []byte
}

type WebSocketClient struct {
	*Subscription
	conn *websocket.Conn
}

func NewWebSocketHub(market *MarketDataService, interval time.Duration, log *zap.SugaredLogger) *WebSocketHub {
	return &WebSocketHub{
		market:      market,
		interval:    interval,
		log:         log,
		subscribers: make(map[*Subscription]bool),
		register:    make(chan *Subscription),
		unregister:  make(chan *Subscription),
		done:        make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled.
func (h *WebSocketHub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer func() {
		ticker.Stop()
		for sub := range h.subscribers {
			h.drop(sub)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			h.subscribers[sub] = true
			h.count.Add(1)
			if msg, err := h.encode(models.FeedInit); err == nil {
				h.deliver(sub, msg)
			}
			h.log.Infow("subscriber connected", "subscribers", len(h.subscribers))

		case sub := <-h.unregister:
			if h.subscribers[sub] {
				h.drop(sub)
				h.log.Infow("subscriber disconnected", "subscribers", len(h.subscribers))
			}

		case <-ticker.C:
			h.market.Advance()
			msg, err := h.encode(models.FeedUpdate)
			if err != nil {
				continue
			}
			for sub := range h.subscribers {
				h.deliver(sub, msg)
			}
		}
	}
}

func (h *WebSocketHub) encode(kind models.FeedMessageType) ([]byte, error) {
	msg, err := json.Marshal(models.FeedMessage{Type: kind, MarketSnapshot: h.market.Snapshot()})
	if err != nil {
		h.log.Errorw("error marshaling market snapshot", "error", err)
	}
	return msg, err
}

// deliver never blocks the hub: a subscriber whose buffer is full is dropped.
func (h *WebSocketHub) deliver(sub *Subscription, msg []byte) {
	select {
	case sub.send <- msg:
	default:
		h.log.Warnw("dropping slow subscriber")
		h.drop(sub)
	}
}

func (h *WebSocketHub) drop(sub *Subscription) {
	delete(h.subscribers, sub)
	close(sub.send)
	h.count.Add(-1)
}

// Subscribers reports how many subscribers are currently registered.
func (h *WebSocketHub) Subscribers() int {
	return int(h.count.Load())
}

func (h *WebSocketHub) Subscribe() (*Subscription, error) {
	sub := &Subscription{hub: h, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- sub:
		return sub, nil
	case <-h.done:
		return nil, ErrHubStopped
	}
}

func (s *Subscription) Messages() <-chan []byte {
	return s.send
}

func (s *Subscription) Unsubscribe() {
	select {
	case s.hub.unregister <- s:
	case <-s.hub.done:
	}
}

// RegisterClient subscribes a websocket connection. The caller starts the
// pumps.
func (h *WebSocketHub) RegisterClient(conn *websocket.Conn) (*WebSocketClient, error) {
	sub, err := h.Subscribe()
	if err != nil {
		return nil, err
	}
	return &WebSocketClient{Subscription: sub, conn: conn}, nil
}

// ReadPump only watches for the peer going away; clients send nothing.
// Leaving it unsubscribes, which in turn ends WritePump.
func (c *WebSocketClient) ReadPump() {
	defer c.Unsubscribe()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) }
	extend("")
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warnw("feed subscriber read failed", "error", err)
			}
			return
		}
	}
}

func (c *WebSocketClient) write(messageType int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, payload)
}

// WritePump owns every write to the connection and closes it once the
// subscription ends or a write fails.
func (c *WebSocketClient) WritePump() {
	keepalive := time.NewTicker(pingPeriod)
	defer keepalive.Stop()
	defer c.conn.Close()

	for {
		var err error
		select {
		case snapshot, open := <-c.Messages():
			if !open {
				c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			err = c.write(websocket.TextMessage, snapshot)
		case <-keepalive.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			c.hub.log.Debugw("feed subscriber write failed", "error", err)
			return
		}
	}
}
