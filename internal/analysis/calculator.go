package analysis

import (
	"math"

	"stock-pulse/internal/domain"
)

// Calculator derives the technical indicator bundle from a price
// series. It is stateless; one instance can be shared freely.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// CalculateAll computes every indicator over the trailing windows of the
// supplied series. It returns nil when fewer than MinimumHistory points
// are supplied or when timestamps are not strictly ascending; callers
// must treat nil as "insufficient history", not an error. The input
// slice is never mutated or retained.
func (c *Calculator) CalculateAll(ticker string, prices []domain.PricePoint) *domain.IndicatorBundle {
	if len(prices) < MinimumHistory {
		return nil
	}
	for i := 1; i < len(prices); i++ {
		if !prices[i].Timestamp.After(prices[i-1].Timestamp) {
			return nil
		}
	}

	closes := extractCloses(prices)
	last := prices[len(prices)-1]

	middle, std := meanStd(closes[len(closes)-bollingerPeriod:])
	macdLine, signalLine := macdSeries(closes, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	macd := macdLine[len(macdLine)-1]
	macdSignal := signalLine[len(signalLine)-1]

	return &domain.IndicatorBundle{
		Ticker:          ticker,
		Timestamp:       last.Timestamp.UTC(),
		SMAShort:        mean(closes[len(closes)-smaShortPeriod:]),
		SMALong:         mean(closes[len(closes)-smaLongPeriod:]),
		RSI:             rsiValue(closes, rsiPeriod),
		MACD:            macd,
		MACDSignal:      macdSignal,
		MACDHistogram:   macd - macdSignal,
		BollingerUpper:  middle + bollingerStdDevs*std,
		BollingerMiddle: middle,
		BollingerLower:  middle - bollingerStdDevs*std,
		CurrentPrice:    last.Close,
	}
}

func extractCloses(prices []domain.PricePoint) []float64 {
	values := make([]float64, len(prices))
	for i := range prices {
		values[i] = prices[i].Close
	}
	return values
}

// rsiValue computes the oscillator from average gains over average
// losses across the trailing window. One-directional series clamp to
// the bounds instead of dividing by zero: all-gain is 100, all-loss is
// 0, and a flat window is 50.
func rsiValue(closes []float64, period int) float64 {
	window := closes[len(closes)-period-1:]

	var gainSum, lossSum float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50
	case avgLoss == 0:
		return 100
	}
	rsi := 100 - 100/(1+avgGain/avgLoss)
	return math.Max(0, math.Min(100, rsi))
}

func macdSeries(values []float64, fast, slow, signal int) ([]float64, []float64) {
	fastEMA := emaSeries(values, fast)
	slowEMA := emaSeries(values, slow)
	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := emaSeries(macdLine, signal)
	return macdLine, signalLine
}

func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanStd(values []float64) (m, std float64) {
	m = mean(values)
	if len(values) < 2 {
		return m, 0
	}
	for _, v := range values {
		d := v - m
		std += d * d
	}
	std = math.Sqrt(std / float64(len(values)))
	return m, std
}
