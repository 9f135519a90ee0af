package repository

import (
	"context"
	"errors"
	"time"

	"stock-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

// SSHUser is a profile authorized to use the SSH dashboard. The stored
// risk tolerance feeds the risk engine for that user's analyses.
type SSHUser struct {
	ID          int64
	Username    string
	Fingerprint string
	PublicKey   string
	Tolerance   domain.RiskTolerance
	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

type SSHUserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSSHUserRepository(pool PgxPool, tracer trace.Tracer) *SSHUserRepository {
	return &SSHUserRepository{pool: pool, tracer: tracer}
}

func (r *SSHUserRepository) RunMigrations(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ssh_users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT        NOT NULL,
			fingerprint   TEXT        NOT NULL UNIQUE,
			public_key    TEXT        NOT NULL,
			tolerance     TEXT        NOT NULL DEFAULT 'moderate',
			is_active     BOOLEAN     NOT NULL DEFAULT TRUE,
			last_login_at TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

// FindByFingerprint returns the active user owning the key, or nil when
// no such user exists.
func (r *SSHUserRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*SSHUser, error) {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.find-by-fingerprint")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT id, username, fingerprint, public_key, tolerance, is_active, last_login_at, created_at
		 FROM ssh_users
		 WHERE fingerprint = $1 AND is_active = TRUE`,
		fingerprint,
	)

	var u SSHUser
	var tolerance string
	var lastLogin *time.Time
	err := row.Scan(&u.ID, &u.Username, &u.Fingerprint, &u.PublicKey, &tolerance, &u.IsActive, &lastLogin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	parsed, err := domain.ParseRiskTolerance(tolerance)
	if err != nil {
		// A bad row is a data problem, not a reason to lock the user
		// out with a default they did not choose.
		return nil, err
	}
	u.Tolerance = parsed
	u.LastLoginAt = lastLogin
	return &u, nil
}

func (r *SSHUserRepository) RecordLogin(ctx context.Context, userID int64) error {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.record-login")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE ssh_users SET last_login_at = NOW() WHERE id = $1`,
		userID,
	)
	return err
}
