// Package revocation persists revoked token identifiers and per-user
// revocation epochs, and answers membership queries for the token verifier.
package revocation

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps backend I/O failures. Callers must fail the whole
// verification when the ledger is unreachable; treating failure as "not
// revoked" would accept revoked tokens.
var ErrUnavailable = errors.New("revocation ledger unavailable")

// Ledger records revoked token identifiers (jti) and per-user revocation
// epochs. Implementations must be linearizable per key: a Revoke or
// BumpEpoch that returns is visible to every subsequent query on the same
// key, from any goroutine.
type Ledger interface {
	// Revoke records jti as revoked. ttl bounds how long the record must be
	// retained; it may match the token's remaining lifetime since expired
	// tokens are rejected before the ledger is consulted. ttl <= 0 keeps the
	// record indefinitely.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// BumpEpoch records the current instant as the user's revocation epoch.
	// Tokens issued at or before the epoch are void.
	BumpEpoch(ctx context.Context, userID string) error
	// EpochFor returns the user's revocation epoch, or the zero time when
	// the epoch has never been bumped.
	EpochFor(ctx context.Context, userID string) (time.Time, error)
}
