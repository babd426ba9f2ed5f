package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresLedger is a Ledger backed by Postgres. Used when no Redis address
// is configured; single-row upserts give the required per-key visibility.
type PostgresLedger struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresLedger returns a Ledger persisting to the given database.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db, now: time.Now}
}

// Revoke inserts a revocation record for jti. Revoking an already revoked
// jti is a no-op.
func (l *PostgresLedger) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	now := l.now().UTC()
	var expires sql.NullTime
	if ttl > 0 {
		expires = sql.NullTime{Time: now.Add(ttl), Valid: true}
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, revoked_at, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, now, expires)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether jti has a revocation record.
func (l *PostgresLedger) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := l.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return revoked, nil
}

// BumpEpoch upserts now as the user's revocation epoch, truncated to second
// resolution to match token iat claims.
func (l *PostgresLedger) BumpEpoch(ctx context.Context, userID string) error {
	epoch := l.now().UTC().Truncate(time.Second)
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO revocation_epochs (user_id, epoch)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET epoch = EXCLUDED.epoch`,
		userID, epoch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// EpochFor returns the user's revocation epoch, or the zero time when never bumped.
func (l *PostgresLedger) EpochFor(ctx context.Context, userID string) (time.Time, error) {
	var epoch time.Time
	err := l.db.QueryRowContext(ctx,
		`SELECT epoch FROM revocation_epochs WHERE user_id = $1`, userID).Scan(&epoch)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return epoch.UTC(), nil
}

// PruneExpired deletes revocation records whose tokens have expired. Hygiene
// only: expired tokens are rejected before the ledger is consulted.
func (l *PostgresLedger) PruneExpired(ctx context.Context) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at IS NOT NULL AND expires_at < $1`,
		l.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
