package models

import (
	"bytes"
	"encoding/json"
	"math"
)

// Metric is a derived number that may be undefined, e.g. a percentage whose
// base is zero. Undefined metrics serialize as JSON null.
type Metric struct {
	value   float64
	defined bool
}

func DefinedMetric(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{value: v, defined: true}
}

func UndefinedMetric() Metric {
	return Metric{}
}

// Percent returns part/base*100, undefined when base is zero or either side
// is not finite.
func Percent(part, base float64) Metric {
	if base == 0 {
		return UndefinedMetric()
	}
	return DefinedMetric(part / base * 100)
}

func (m Metric) Value() (float64, bool) {
	return m.value, m.defined
}

func (m Metric) Defined() bool {
	return m.defined
}

// Less orders metrics with undefined values below every defined one.
func (m Metric) Less(o Metric) bool {
	if !m.defined {
		return o.defined
	}
	if !o.defined {
		return false
	}
	return m.value < o.value
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = UndefinedMetric()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = DefinedMetric(v)
	return nil
}

type StockWithMetrics struct {
	Stock
	TotalValue         float64 `json:"totalValue"`
	GainLoss           float64 `json:"gainLoss"`
	GainLossPercentage Metric  `json:"gainLossPercentage"`
}

type FundWithMetrics struct {
	MutualFund
	TotalValue         float64 `json:"totalValue"`
	GainLoss           float64 `json:"gainLoss"`
	GainLossPercentage Metric  `json:"gainLossPercentage"`
}

type PortfolioSummary struct {
	TotalInvestment         float64 `json:"totalInvestment"`
	CurrentValue            float64 `json:"currentValue"`
	TotalGainLoss           float64 `json:"totalGainLoss"`
	TotalGainLossPercentage Metric  `json:"totalGainLossPercentage"`
}

type Portfolio struct {
	Summary     PortfolioSummary   `json:"summary"`
	Stocks      []StockWithMetrics `json:"stocks"`
	MutualFunds []FundWithMetrics  `json:"mutualFunds"`
}

type Performer struct {
	Symbol             string     `json:"symbol"`
	Type               AssetClass `json:"type"`
	GainLossPercentage Metric     `json:"gainLossPercentage"`
	TotalValue         float64    `json:"totalValue"`
}

type Allocation struct {
	Value      float64 `json:"value"`
	Percentage Metric  `json:"percentage"`
}

type AssetAllocation struct {
	Stocks      Allocation `json:"stocks"`
	MutualFunds Allocation `json:"mutualFunds"`
}

type PerformanceReport struct {
	TopPerformers       []Performer     `json:"topPerformers"`
	WorstPerformers     []Performer     `json:"worstPerformers"`
	Allocation          AssetAllocation `json:"allocation"`
	TotalPortfolioValue float64         `json:"totalPortfolioValue"`
}
