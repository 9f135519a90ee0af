package analysis

// Every numeric cutoff used by the pipeline lives in this file so each
// threshold can be audited and tuned without touching algorithm code.

// Indicator calculation windows.
const (
	smaShortPeriod   = 20
	smaLongPeriod    = 50
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	bollingerPeriod  = 20
	bollingerStdDevs = 2.0
)

// MinimumHistory is the shortest price series that yields a fully
// populated indicator bundle. It matches the longest moving average;
// shorter input produces no bundle at all.
const MinimumHistory = smaLongPeriod

// Signal generation. Each cue contributes a signed vote scaled by its
// weight; the net sum against maxVoteWeight drives direction and
// confidence.
const (
	trendWeight     = 1.0
	momentumWeight  = 0.9
	macdWeight      = 0.8
	bollingerWeight = 0.7
	maxVoteWeight   = trendWeight + momentumWeight + macdWeight + bollingerWeight

	rsiOversold   = 30.0
	rsiOverbought = 70.0

	// A close within this fraction of a Bollinger band counts as "near"
	// the band.
	bollingerProximity = 0.02

	// Net votes inside the dead band produce a NEUTRAL signal.
	neutralBand = 0.5

	confidenceBase    = 0.35
	confidenceSlope   = 0.60
	neutralConfidence = 0.30

	// Hard ceiling on confidence. Never exceeded regardless of how
	// extreme the indicator inputs are.
	confidenceCap = 0.95
)

// Risk assessment.
const (
	// Band width relative to the middle band above which volatility is
	// flagged.
	volatilityWidthMax = 0.12

	rsiExtremeHigh = 85.0
	rsiExtremeLow  = 15.0

	// MACD histogram magnitude relative to price above which momentum is
	// considered stretched.
	macdExtremeFraction = 0.02

	// Tier boundaries: zero factors is LOW, one moderate factor is
	// MODERATE, highRiskFactorCount or more (or any high-severity
	// factor) is HIGH.
	highRiskFactorCount = 2

	// Signals below this confidence are never actionable.
	actionableConfidenceMin = 0.75
)
