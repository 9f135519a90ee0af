package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"stock-pulse/internal/domain"
)

var ErrNilIndicators = errors.New("indicator bundle is required")

// Generator turns an indicator bundle into a directional signal with a
// bounded confidence and structured reasoning. Stateless.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// cue is one technical vote. The vote is already scaled by the cue's
// weight; its sign carries the direction.
type cue struct {
	vote   float64
	detail string
}

var signalAssumptions = []string{
	"assumes historical price patterns persist into the near future",
	"assumes the indicator snapshot reflects the current market state",
}

var signalLimitations = []string{
	"technical indicators only; fundamentals and news are not considered",
	"not validated against live execution or transaction costs",
}

// Generate combines trend, momentum, MACD, and Bollinger cues into one
// signal. A nil bundle is a caller-contract violation.
func (g *Generator) Generate(ind *domain.IndicatorBundle, horizon domain.TimeHorizon) (*domain.Signal, error) {
	if ind == nil {
		return nil, ErrNilIndicators
	}
	if horizon == "" {
		horizon = domain.HorizonMedium
	}

	cues := []cue{
		trendCue(ind),
		momentumCue(ind),
		macdCue(ind),
		bollingerCue(ind),
	}

	var net float64
	for _, c := range cues {
		net += c.vote
	}

	signalType := domain.SignalNeutral
	switch {
	case net >= neutralBand:
		signalType = domain.SignalBullish
	case net <= -neutralBand:
		signalType = domain.SignalBearish
	}

	confidence := neutralConfidence
	if signalType != domain.SignalNeutral {
		confidence = confidenceBase + confidenceSlope*(math.Abs(net)/maxVoteWeight)
		if confidence > confidenceCap {
			confidence = confidenceCap
		}
	}

	return &domain.Signal{
		Ticker:    ind.Ticker,
		Timestamp: ind.Timestamp,
		Strength: domain.SignalStrength{
			SignalType: signalType,
			Confidence: confidence,
			Label:      strengthLabel(signalType, confidence),
		},
		Reasoning:   buildReasoning(ind, cues, signalType),
		TimeHorizon: horizon,
	}, nil
}

func trendCue(ind *domain.IndicatorBundle) cue {
	switch {
	case ind.SMAShort > ind.SMALong:
		return cue{
			vote:   trendWeight,
			detail: fmt.Sprintf("%d-day SMA (%.2f) above %d-day SMA (%.2f): uptrend", smaShortPeriod, ind.SMAShort, smaLongPeriod, ind.SMALong),
		}
	case ind.SMAShort < ind.SMALong:
		return cue{
			vote:   -trendWeight,
			detail: fmt.Sprintf("%d-day SMA (%.2f) below %d-day SMA (%.2f): downtrend", smaShortPeriod, ind.SMAShort, smaLongPeriod, ind.SMALong),
		}
	}
	return cue{}
}

func momentumCue(ind *domain.IndicatorBundle) cue {
	switch {
	case ind.RSI < rsiOversold:
		return cue{
			vote:   momentumWeight,
			detail: fmt.Sprintf("RSI %.1f below %.0f: oversold, rebound potential", ind.RSI, rsiOversold),
		}
	case ind.RSI > rsiOverbought:
		return cue{
			vote:   -momentumWeight,
			detail: fmt.Sprintf("RSI %.1f above %.0f: overbought, pullback risk", ind.RSI, rsiOverbought),
		}
	}
	return cue{}
}

func macdCue(ind *domain.IndicatorBundle) cue {
	switch {
	case ind.MACD > ind.MACDSignal:
		return cue{
			vote:   macdWeight,
			detail: fmt.Sprintf("MACD (%.3f) above signal line (%.3f): bullish momentum", ind.MACD, ind.MACDSignal),
		}
	case ind.MACD < ind.MACDSignal:
		return cue{
			vote:   -macdWeight,
			detail: fmt.Sprintf("MACD (%.3f) below signal line (%.3f): bearish momentum", ind.MACD, ind.MACDSignal),
		}
	}
	return cue{}
}

func bollingerCue(ind *domain.IndicatorBundle) cue {
	price := ind.CurrentPrice
	switch {
	case price <= ind.BollingerLower*(1+bollingerProximity):
		return cue{
			vote:   bollingerWeight,
			detail: fmt.Sprintf("price %.2f at or below lower Bollinger band (%.2f): stretched to the downside", price, ind.BollingerLower),
		}
	case price >= ind.BollingerUpper*(1-bollingerProximity):
		return cue{
			vote:   -bollingerWeight,
			detail: fmt.Sprintf("price %.2f at or above upper Bollinger band (%.2f): stretched to the upside", price, ind.BollingerUpper),
		}
	}
	return cue{}
}

func buildReasoning(ind *domain.IndicatorBundle, cues []cue, signalType domain.SignalType) domain.SignalReasoning {
	reasoning := domain.SignalReasoning{
		PrimaryFactors:       []string{},
		ContradictingFactors: []string{},
		SupportingIndicators: map[string]float64{
			"sma_short":      ind.SMAShort,
			"sma_long":       ind.SMALong,
			"rsi":            ind.RSI,
			"macd":           ind.MACD,
			"macd_signal":    ind.MACDSignal,
			"macd_histogram": ind.MACDHistogram,
			"bollinger_upper": ind.BollingerUpper,
			"bollinger_lower": ind.BollingerLower,
			"current_price":   ind.CurrentPrice,
		},
		Assumptions: append([]string(nil), signalAssumptions...),
		Limitations: append([]string(nil), signalLimitations...),
	}

	if signalType == domain.SignalNeutral {
		reasoning.PrimaryFactors = append(reasoning.PrimaryFactors, "technical cues are mixed with no dominant direction")
		for _, c := range cues {
			if c.vote != 0 {
				reasoning.ContradictingFactors = append(reasoning.ContradictingFactors, c.detail)
			}
		}
		return reasoning
	}

	sign := 1.0
	if signalType == domain.SignalBearish {
		sign = -1.0
	}

	agreeing := make([]cue, 0, len(cues))
	for _, c := range cues {
		switch {
		case c.vote == 0:
		case c.vote*sign > 0:
			agreeing = append(agreeing, c)
		default:
			reasoning.ContradictingFactors = append(reasoning.ContradictingFactors, c.detail)
		}
	}

	// Strongest contribution first.
	sort.SliceStable(agreeing, func(i, j int) bool {
		return math.Abs(agreeing[i].vote) > math.Abs(agreeing[j].vote)
	})
	for _, c := range agreeing {
		reasoning.PrimaryFactors = append(reasoning.PrimaryFactors, c.detail)
	}
	return reasoning
}

func strengthLabel(signalType domain.SignalType, confidence float64) string {
	if signalType == domain.SignalNeutral {
		return "flat"
	}
	switch {
	case confidence >= 0.85:
		return "very strong"
	case confidence >= 0.70:
		return "strong"
	case confidence >= 0.50:
		return "moderate"
	}
	return "weak"
}
