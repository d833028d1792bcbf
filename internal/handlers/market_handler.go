package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"portfolio-tracker/internal/services"
)

type MarketHandler struct {
	marketService *services.MarketDataService
	hub           *services.WebSocketHub
	upgrader      websocket.Upgrader
	log           *zap.SugaredLogger
}

// NewMarketHandler serves the simulated market. checkOrigin nil allows every
// origin; the feed carries no user data.
func NewMarketHandler(marketService *services.MarketDataService, hub *services.WebSocketHub, checkOrigin func(*http.Request) bool, log *zap.SugaredLogger) *MarketHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &MarketHandler{
		marketService: marketService,
		hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: log,
	}
}

func (h *MarketHandler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.marketService.Snapshot())
}

func (h *MarketHandler) GetStockPrice(c *gin.Context) {
	stock, err := h.marketService.GetStockPrice(c.Param("symbol"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Stock not found")
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (h *MarketHandler) GetFundPrice(c *gin.Context) {
	fund, err := h.marketService.GetFundPrice(c.Param("symbol"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Mutual fund not found")
		return
	}
	c.JSON(http.StatusOK, fund)
}

// ServeWS upgrades the connection and hands it to the hub. No auth: the
// feed is the same for everyone.
func (h *MarketHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warnw("failed to upgrade connection", "error", err)
		return
	}

	client, err := h.hub.RegisterClient(conn)
	if err != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed stopped"))
		conn.Close()
		return
	}
	h.log.Infow("websocket connection established", "remote", c.ClientIP())

	go client.WritePump()
	go client.ReadPump()
}
