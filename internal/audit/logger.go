// Package audit records authentication events for the compliance trail.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"corebank/backend/internal/audit/domain"
	auditrepo "corebank/backend/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger records one authentication event. Record is best-effort:
// failures are logged and never affect the caller's outcome.
type AuditLogger interface {
	Record(ctx context.Context, userID string, action domain.Action, success bool, reason string)
}

// Logger implements AuditLogger using the audit repository and an optional
// IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns an AuditLogger persisting to repo, using ipExtractor for
// the client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// Record writes one audit entry. Best-effort: errors are logged, not returned.
func (l *Logger) Record(ctx context.Context, userID string, action domain.Action, success bool, reason string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Success:   success,
		Reason:    reason,
		ClientIP:  ip,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Insert(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}

// Nop is an AuditLogger that discards everything. Used in tests and when the
// audit table is not provisioned.
type Nop struct{}

func (Nop) Record(context.Context, string, domain.Action, bool, string) {}
