package models

type MarketStock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"currentPrice"`
	PreviousPrice float64 `json:"previousPrice"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type MarketFund struct {
	Symbol        string  `json:"symbol"`
	Fund          string  `json:"fund"`
	CurrentPrice  float64 `json:"currentPrice"`
	PreviousPrice float64 `json:"previousPrice"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type MarketSnapshot struct {
	Stocks      []MarketStock `json:"stocks"`
	MutualFunds []MarketFund  `json:"mutualFunds"`
}

type FeedMessageType string

const (
	FeedInit   FeedMessageType = "init"
	FeedUpdate FeedMessageType = "update"
)

// FeedMessage is pushed over the websocket. Both kinds carry the full snapshot.
type FeedMessage struct {
	Type FeedMessageType `json:"type"`
	MarketSnapshot
}
