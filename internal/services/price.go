package services

import (
	"math"
	"math/rand"
	"time"
)

const (
	minPrice = 0.01

	// driftPeriodMillis sets how slowly the shared sine drift cycles.
	driftPeriodMillis = 100000
	driftAmplitude    = 0.3
)

// PriceSimulator produces the next synthetic price from the current one: a
// bounded uniform jump plus a gentle sine drift keyed to wall-clock time, so
// every symbol drifts in the same phase.
type PriceSimulator struct {
	random func() float64
	now    func() time.Time
}

func NewPriceSimulator() *PriceSimulator {
	return &PriceSimulator{random: rand.Float64, now: time.Now}
}

// NextPrice never returns less than 0.01.
func (p *PriceSimulator) NextPrice(current, volatility float64) float64 {
	randomChange := (p.random() - 0.5) * 2
	maxChange := current * volatility
	priceChange := randomChange * maxChange

	trend := math.Sin(float64(p.now().UnixMilli())/driftPeriodMillis) * driftAmplitude
	finalChange := priceChange + trend*maxChange*0.5

	return math.Max(minPrice, current+finalChange)
}
