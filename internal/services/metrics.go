package services

import (
	"sort"

	"portfolio-tracker/internal/models"
)

// performerCount is how many entries the top and worst lists hold.
const performerCount = 5

func investment(h models.Holding) float64 {
	return h.Quantity() * h.CostBasis()
}

func totalValue(h models.Holding) float64 {
	return h.Quantity() * h.MarketPrice()
}

func gainLoss(h models.Holding) (value, gain float64, pct models.Metric) {
	value = totalValue(h)
	invested := investment(h)
	gain = value - invested
	return value, gain, models.Percent(gain, invested)
}

func AnnotateStock(s models.Stock) models.StockWithMetrics {
	value, gain, pct := gainLoss(s)
	return models.StockWithMetrics{Stock: s, TotalValue: value, GainLoss: gain, GainLossPercentage: pct}
}

func AnnotateFund(f models.MutualFund) models.FundWithMetrics {
	value, gain, pct := gainLoss(f)
	return models.FundWithMetrics{MutualFund: f, TotalValue: value, GainLoss: gain, GainLossPercentage: pct}
}

func AnnotateStocks(stocks []models.Stock) []models.StockWithMetrics {
	out := make([]models.StockWithMetrics, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, AnnotateStock(s))
	}
	return out
}

func AnnotateFunds(funds []models.MutualFund) []models.FundWithMetrics {
	out := make([]models.FundWithMetrics, 0, len(funds))
	for _, f := range funds {
		out = append(out, AnnotateFund(f))
	}
	return out
}

// Summarize totals investment and current value over both asset classes.
// The percentage is undefined when nothing has been invested.
func Summarize(stocks []models.Stock, funds []models.MutualFund) models.PortfolioSummary {
	var stockInvested, stockValue, fundInvested, fundValue float64
	for _, s := range stocks {
		stockInvested += investment(s)
		stockValue += totalValue(s)
	}
	for _, f := range funds {
		fundInvested += investment(f)
		fundValue += totalValue(f)
	}

	invested := stockInvested + fundInvested
	current := stockValue + fundValue
	gain := current - invested
	return models.PortfolioSummary{
		TotalInvestment:         invested,
		CurrentValue:            current,
		TotalGainLoss:           gain,
		TotalGainLossPercentage: models.Percent(gain, invested),
	}
}

func performer(symbol string, class models.AssetClass, h models.Holding) models.Performer {
	return models.Performer{
		Symbol:             symbol,
		Type:               class,
		GainLossPercentage: models.Percent(h.MarketPrice()-h.CostBasis(), h.CostBasis()),
		TotalValue:         totalValue(h),
	}
}

// Report ranks every holding by per-unit gain percentage. Top and worst lists
// may overlap when there are fewer than ten holdings. Undefined percentages
// rank below every defined one.
func Report(stocks []models.Stock, funds []models.MutualFund) models.PerformanceReport {
	ranked := make([]models.Performer, 0, len(stocks)+len(funds))
	var stockValue, fundValue float64
	for _, s := range stocks {
		p := performer(s.Symbol, models.AssetClassStock, s)
		stockValue += p.TotalValue
		ranked = append(ranked, p)
	}
	for _, f := range funds {
		p := performer(f.Symbol, models.AssetClassMutualFund, f)
		fundValue += p.TotalValue
		ranked = append(ranked, p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[j].GainLossPercentage.Less(ranked[i].GainLossPercentage)
	})

	top := ranked[:min(performerCount, len(ranked))]
	tail := ranked[len(ranked)-min(performerCount, len(ranked)):]
	worst := make([]models.Performer, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		worst = append(worst, tail[i])
	}

	total := stockValue + fundValue
	return models.PerformanceReport{
		TopPerformers:   append([]models.Performer{}, top...),
		WorstPerformers: worst,
		Allocation: models.AssetAllocation{
			Stocks:      models.Allocation{Value: stockValue, Percentage: models.Percent(stockValue, total)},
			MutualFunds: models.Allocation{Value: fundValue, Percentage: models.Percent(fundValue, total)},
		},
		TotalPortfolioValue: total,
	}
}
