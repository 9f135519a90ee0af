package analysis

import (
	"errors"
	"fmt"
	"math"

	"stock-pulse/internal/domain"
)

var ErrNilSignal = errors.New("signal is required")

// RiskEngine enumerates risk factors for a signal and decides whether
// the signal is safe to surface as actionable for a given tolerance.
// Stateless and fully deterministic: identical inputs always produce
// identical assessments.
type RiskEngine struct{}

func NewRiskEngine() *RiskEngine {
	return &RiskEngine{}
}

// AssessRisk evaluates every detection rule in fixed order, derives the
// overall tier from the matched factors, and applies the actionability
// gates. Nil inputs and unknown tolerances are caller-contract
// violations.
func (e *RiskEngine) AssessRisk(sig *domain.Signal, ind *domain.IndicatorBundle, tolerance domain.RiskTolerance) (*domain.RiskAssessment, error) {
	if sig == nil {
		return nil, ErrNilSignal
	}
	if ind == nil {
		return nil, ErrNilIndicators
	}
	if !tolerance.IsValid() {
		return nil, fmt.Errorf("unknown risk tolerance %q", tolerance)
	}

	factors := detectRiskFactors(ind)
	overall := overallRisk(factors)

	return &domain.RiskAssessment{
		OverallRisk:  overall,
		RiskFactors:  factors,
		IsActionable: isActionable(sig, overall, tolerance),
	}, nil
}

func detectRiskFactors(ind *domain.IndicatorBundle) []domain.RiskFactor {
	factors := make([]domain.RiskFactor, 0, 4)

	if ind.BollingerMiddle > 0 {
		width := (ind.BollingerUpper - ind.BollingerLower) / ind.BollingerMiddle
		if width > volatilityWidthMax {
			factors = append(factors, domain.RiskFactor{
				Name:        "High Volatility",
				Severity:    domain.SeverityModerate,
				Description: fmt.Sprintf("Bollinger band width is %.1f%% of the middle band (limit %.0f%%)", width*100, volatilityWidthMax*100),
			})
		}
	}

	if ind.RSI >= rsiExtremeHigh {
		factors = append(factors, domain.RiskFactor{
			Name:        "Extreme Overbought",
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("RSI %.1f at or above %.0f", ind.RSI, rsiExtremeHigh),
		})
	}
	if ind.RSI <= rsiExtremeLow {
		factors = append(factors, domain.RiskFactor{
			Name:        "Extreme Oversold",
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("RSI %.1f at or below %.0f", ind.RSI, rsiExtremeLow),
		})
	}

	if ind.CurrentPrice > ind.BollingerUpper || ind.CurrentPrice < ind.BollingerLower {
		factors = append(factors, domain.RiskFactor{
			Name:        "Price Outside Bands",
			Severity:    domain.SeverityModerate,
			Description: fmt.Sprintf("price %.2f is outside the Bollinger bands [%.2f, %.2f]", ind.CurrentPrice, ind.BollingerLower, ind.BollingerUpper),
		})
	}

	if ind.CurrentPrice > 0 && math.Abs(ind.MACDHistogram) > macdExtremeFraction*ind.CurrentPrice {
		factors = append(factors, domain.RiskFactor{
			Name:        "MACD Extreme",
			Severity:    domain.SeverityModerate,
			Description: fmt.Sprintf("MACD histogram %.3f exceeds %.0f%% of price", ind.MACDHistogram, macdExtremeFraction*100),
		})
	}

	return factors
}

func overallRisk(factors []domain.RiskFactor) domain.RiskLevel {
	if len(factors) == 0 {
		return domain.RiskLow
	}
	if len(factors) >= highRiskFactorCount {
		return domain.RiskHigh
	}
	for _, f := range factors {
		if f.Severity == domain.SeverityHigh {
			return domain.RiskHigh
		}
	}
	return domain.RiskModerate
}

// isActionable applies the gates in order: neutral signals never pass,
// low-confidence signals never pass, and conservative users are blocked
// from HIGH-risk signals regardless of confidence.
func isActionable(sig *domain.Signal, overall domain.RiskLevel, tolerance domain.RiskTolerance) bool {
	if sig.Strength.SignalType == domain.SignalNeutral {
		return false
	}
	if sig.Strength.Confidence < actionableConfidenceMin {
		return false
	}
	if overall == domain.RiskHigh && tolerance == domain.ToleranceConservative {
		return false
	}
	return true
}
