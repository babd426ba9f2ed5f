package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"corebank/backend/internal/audit/domain"
)

// Postgres implements Repository over an audit_logs table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Repository backed by the given database.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Insert appends an audit entry. A missing ID is filled with a fresh UUID.
func (r *Postgres) Insert(ctx context.Context, e *domain.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	var userID sql.NullString
	if e.UserID != "" {
		userID = sql.NullString{String: e.UserID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, success, reason, client_ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, userID, e.Action, e.Success, e.Reason, e.ClientIP, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
