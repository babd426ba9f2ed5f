package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger is an in-process Ledger for development and tests. A single
// mutex gives per-key linearizability.
type MemoryLedger struct {
	mu      sync.Mutex
	revoked map[string]time.Time // jti -> retention deadline; zero means keep forever
	epochs  map[string]time.Time

	// Now is the clock used for epochs and retention; nil means time.Now.
	Now func() time.Time
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		revoked: make(map[string]time.Time),
		epochs:  make(map[string]time.Time),
	}
}

func (l *MemoryLedger) clock() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Revoke records jti as revoked until its retention deadline passes.
func (l *MemoryLedger) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var deadline time.Time
	if ttl > 0 {
		deadline = l.clock().Add(ttl)
	}
	l.revoked[jti] = deadline
	return nil
}

// IsRevoked reports whether jti is revoked and its retention has not lapsed.
func (l *MemoryLedger) IsRevoked(ctx context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	deadline, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if !deadline.IsZero() && l.clock().After(deadline) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}

// BumpEpoch records the current instant as the user's revocation epoch,
// truncated to second resolution to match token iat claims.
func (l *MemoryLedger) BumpEpoch(ctx context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.epochs[userID] = l.clock().UTC().Truncate(time.Second)
	return nil
}

// EpochFor returns the user's revocation epoch, or the zero time when never bumped.
func (l *MemoryLedger) EpochFor(ctx context.Context, userID string) (time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epochs[userID], nil
}
