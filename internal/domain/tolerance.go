package domain

import (
	"fmt"
	"strings"
)

// RiskTolerance is the user-level setting that gates which risk tiers
// are surfaced as actionable.
type RiskTolerance string

const (
	ToleranceConservative RiskTolerance = "conservative"
	ToleranceModerate     RiskTolerance = "moderate"
	ToleranceAggressive   RiskTolerance = "aggressive"
)

func (t RiskTolerance) IsValid() bool {
	switch t {
	case ToleranceConservative, ToleranceModerate, ToleranceAggressive:
		return true
	}
	return false
}

// ParseRiskTolerance converts user input into a RiskTolerance. Unknown
// values are rejected, never coerced to a default.
func ParseRiskTolerance(raw string) (RiskTolerance, error) {
	t := RiskTolerance(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown risk tolerance %q (expected conservative, moderate, or aggressive)", raw)
	}
	return t, nil
}

// ParseTimeHorizon converts user input into a TimeHorizon. An empty
// value defaults to medium_term; anything else unknown is rejected.
func ParseTimeHorizon(raw string) (TimeHorizon, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return HorizonMedium, nil
	}
	h := TimeHorizon(trimmed)
	switch h {
	case HorizonShort, HorizonMedium, HorizonLong:
		return h, nil
	}
	return "", fmt.Errorf("unknown time horizon %q", raw)
}
