package services

import (
	"time"

	"go.uber.org/zap"
)

var nopLog = zap.NewNop().Sugar()

// fixedSimulator always draws r and reads the clock at the Unix epoch, where
// the drift term is zero.
func fixedSimulator(r float64) *PriceSimulator {
	return &PriceSimulator{
		random: func() float64 { return r },
		now:    func() time.Time { return time.UnixMilli(0) },
	}
}
