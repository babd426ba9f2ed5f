// Package repository persists audit entries.
package repository

import (
	"context"

	"corebank/backend/internal/audit/domain"
)

// Repository is the persistence boundary for the audit trail.
type Repository interface {
	Insert(ctx context.Context, e *domain.Entry) error
}
