package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stock-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// AnalysisRepository persists finished pipeline results. Persistence is
// strictly an orchestration concern; the analytical core never sees
// this layer.
type AnalysisRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAnalysisRepository(pool PgxPool, tracer trace.Tracer) *AnalysisRepository {
	return &AnalysisRepository{pool: pool, tracer: tracer}
}

func (r *AnalysisRepository) RunMigrations(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id            BIGSERIAL PRIMARY KEY,
			ticker        TEXT             NOT NULL,
			signal_type   TEXT             NOT NULL,
			confidence    DOUBLE PRECISION NOT NULL,
			label         TEXT             NOT NULL,
			horizon       TEXT             NOT NULL,
			tolerance     TEXT             NOT NULL,
			overall_risk  TEXT             NOT NULL,
			actionable    BOOLEAN          NOT NULL,
			signal_ts     TIMESTAMPTZ      NOT NULL,
			reasoning     JSONB            NOT NULL,
			risk_factors  JSONB            NOT NULL,
			indicators    JSONB            NOT NULL,
			anomaly_score DOUBLE PRECISION,
			created_at    TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_analyses_ticker_created
			ON analyses (ticker, created_at DESC);
	`)
	return err
}

func (r *AnalysisRepository) InsertAnalysis(ctx context.Context, a *domain.Analysis) (*domain.Analysis, error) {
	if a == nil || a.Signal == nil || a.Assessment == nil {
		return nil, fmt.Errorf("analysis is incomplete")
	}

	_, span := r.tracer.Start(ctx, "analysis-repo.insert-analysis")
	defer span.End()

	reasoning, err := json.Marshal(a.Signal.Reasoning)
	if err != nil {
		return nil, fmt.Errorf("encode reasoning: %w", err)
	}
	factors, err := json.Marshal(a.Assessment.RiskFactors)
	if err != nil {
		return nil, fmt.Errorf("encode risk factors: %w", err)
	}
	indicators, err := json.Marshal(a.Indicators)
	if err != nil {
		return nil, fmt.Errorf("encode indicators: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO analyses
		     (ticker, signal_type, confidence, label, horizon, tolerance,
		      overall_risk, actionable, signal_ts, reasoning, risk_factors,
		      indicators, anomaly_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at`,
		a.Ticker,
		string(a.Signal.Strength.SignalType),
		a.Signal.Strength.Confidence,
		a.Signal.Strength.Label,
		string(a.Signal.TimeHorizon),
		string(a.Tolerance),
		string(a.Assessment.OverallRisk),
		a.Assessment.IsActionable,
		a.Signal.Timestamp.UTC(),
		reasoning,
		factors,
		indicators,
		a.AnomalyScore,
	)

	out := *a
	var createdAt time.Time
	if err := row.Scan(&out.ID, &createdAt); err != nil {
		return nil, err
	}
	out.CreatedAt = createdAt.UTC()
	return &out, nil
}

func (r *AnalysisRepository) ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.Analysis, error) {
	_, span := r.tracer.Start(ctx, "analysis-repo.list-analyses")
	defer span.End()

	args := make([]any, 0, 4)
	var sb strings.Builder
	sb.WriteString(
		`SELECT id, ticker, signal_type, confidence, label, horizon, tolerance,
		        overall_risk, actionable, signal_ts, reasoning, risk_factors,
		        indicators, anomaly_score, created_at
		 FROM analyses
		 WHERE 1=1`)

	if filter.Ticker != "" {
		args = append(args, strings.ToUpper(filter.Ticker))
		sb.WriteString(fmt.Sprintf(" AND ticker = $%d", len(args)))
	}
	if filter.SignalType != "" {
		args = append(args, string(filter.SignalType))
		sb.WriteString(fmt.Sprintf(" AND signal_type = $%d", len(args)))
	}
	if filter.Actionable != nil {
		args = append(args, *filter.Actionable)
		sb.WriteString(fmt.Sprintf(" AND actionable = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := make([]domain.Analysis, 0, limit)
	for rows.Next() {
		var (
			a           domain.Analysis
			signalType  string
			confidence  float64
			label       string
			horizon     string
			tolerance   string
			overallRisk string
			actionable  bool
			signalTS    time.Time
			reasoning   []byte
			factors     []byte
			indicators  []byte
			createdAt   time.Time
		)
		if err := rows.Scan(
			&a.ID, &a.Ticker, &signalType, &confidence, &label, &horizon,
			&tolerance, &overallRisk, &actionable, &signalTS, &reasoning,
			&factors, &indicators, &a.AnomalyScore, &createdAt,
		); err != nil {
			return nil, err
		}

		sig := &domain.Signal{
			Ticker:    a.Ticker,
			Timestamp: signalTS.UTC(),
			Strength: domain.SignalStrength{
				SignalType: domain.SignalType(signalType),
				Confidence: confidence,
				Label:      label,
			},
			TimeHorizon: domain.TimeHorizon(horizon),
		}
		if err := json.Unmarshal(reasoning, &sig.Reasoning); err != nil {
			return nil, fmt.Errorf("decode reasoning: %w", err)
		}

		assessment := &domain.RiskAssessment{
			OverallRisk:  domain.RiskLevel(overallRisk),
			IsActionable: actionable,
		}
		if err := json.Unmarshal(factors, &assessment.RiskFactors); err != nil {
			return nil, fmt.Errorf("decode risk factors: %w", err)
		}

		if len(indicators) > 0 && string(indicators) != "null" {
			var bundle domain.IndicatorBundle
			if err := json.Unmarshal(indicators, &bundle); err != nil {
				return nil, fmt.Errorf("decode indicators: %w", err)
			}
			a.Indicators = &bundle
		}

		a.Signal = sig
		a.Assessment = assessment
		a.Tolerance = domain.RiskTolerance(tolerance)
		a.CreatedAt = createdAt.UTC()
		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}
