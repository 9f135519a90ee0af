package domain

import "time"

// PricePoint is one daily OHLCV observation for a ticker. Points are
// produced by the market-data provider, ordered ascending by timestamp
// with no duplicates, and never mutated after collection.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// IndicatorBundle is the fixed-shape output of the indicator calculator.
// A bundle is either fully populated or absent entirely; partial bundles
// are never produced.
type IndicatorBundle struct {
	Ticker          string    `json:"ticker"`
	Timestamp       time.Time `json:"timestamp"`
	SMAShort        float64   `json:"sma_short"`
	SMALong         float64   `json:"sma_long"`
	RSI             float64   `json:"rsi"`
	MACD            float64   `json:"macd"`
	MACDSignal      float64   `json:"macd_signal"`
	MACDHistogram   float64   `json:"macd_histogram"`
	BollingerUpper  float64   `json:"bollinger_upper"`
	BollingerMiddle float64   `json:"bollinger_middle"`
	BollingerLower  float64   `json:"bollinger_lower"`
	CurrentPrice    float64   `json:"current_price"`
}

type SignalType string

const (
	SignalBullish SignalType = "BULLISH"
	SignalBearish SignalType = "BEARISH"
	SignalNeutral SignalType = "NEUTRAL"
)

type TimeHorizon string

const (
	HorizonShort  TimeHorizon = "short_term"
	HorizonMedium TimeHorizon = "medium_term"
	HorizonLong   TimeHorizon = "long_term"
)

// SignalStrength carries the directional call and its bounded confidence.
// Confidence never reaches 1.0; the generator caps it at 0.95.
type SignalStrength struct {
	SignalType SignalType `json:"signal_type"`
	Confidence float64    `json:"confidence"`
	Label      string     `json:"label"`
}

// SignalReasoning is the structured rationale attached to every signal.
// Primary factors are ordered strongest first.
type SignalReasoning struct {
	PrimaryFactors       []string           `json:"primary_factors"`
	SupportingIndicators map[string]float64 `json:"supporting_indicators"`
	ContradictingFactors []string           `json:"contradicting_factors"`
	Assumptions          []string           `json:"assumptions"`
	Limitations          []string           `json:"limitations"`
}

type Signal struct {
	Ticker      string          `json:"ticker"`
	Timestamp   time.Time       `json:"timestamp"`
	Strength    SignalStrength  `json:"strength"`
	Reasoning   SignalReasoning `json:"reasoning"`
	TimeHorizon TimeHorizon     `json:"time_horizon"`
}

type FactorSeverity string

const (
	SeverityModerate FactorSeverity = "moderate"
	SeverityHigh     FactorSeverity = "high"
)

// RiskFactor is a named risk contributor detected by an explicit rule.
type RiskFactor struct {
	Name        string         `json:"name"`
	Severity    FactorSeverity `json:"severity"`
	Description string         `json:"description"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// RiskAssessment is the risk engine's verdict for one signal. Factors
// keep their detection order. Identical inputs always produce an
// identical assessment.
type RiskAssessment struct {
	OverallRisk  RiskLevel    `json:"overall_risk"`
	RiskFactors  []RiskFactor `json:"risk_factors"`
	IsActionable bool         `json:"is_actionable"`
}

// Analysis bundles one full pipeline run for the orchestration layer.
type Analysis struct {
	ID           int64            `json:"id,omitempty"`
	Ticker       string           `json:"ticker"`
	Signal       *Signal          `json:"signal"`
	Assessment   *RiskAssessment  `json:"assessment"`
	Indicators   *IndicatorBundle `json:"indicators"`
	Tolerance    RiskTolerance    `json:"risk_tolerance"`
	AnomalyScore *float64         `json:"anomaly_score,omitempty"`
	CreatedAt    time.Time        `json:"created_at,omitempty"`
}

// AnalysisFilter narrows persisted analysis queries.
type AnalysisFilter struct {
	Ticker     string
	SignalType SignalType
	Actionable *bool
	Limit      int
}

// SupportedTickers maps watchlist tickers to company names.
var SupportedTickers = map[string]string{
	"AAPL": "Apple",
	"MSFT": "Microsoft",
	"GOOG": "Alphabet",
	"AMZN": "Amazon",
	"NVDA": "NVIDIA",
	"META": "Meta Platforms",
	"TSLA": "Tesla",
	"JPM":  "JPMorgan Chase",
	"V":    "Visa",
	"XOM":  "Exxon Mobil",
}

// Watchlist lists the supported tickers in a stable order.
var Watchlist = []string{"AAPL", "MSFT", "GOOG", "AMZN", "NVDA", "META", "TSLA", "JPM", "V", "XOM"}
