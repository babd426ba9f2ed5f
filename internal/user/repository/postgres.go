package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"corebank/backend/internal/user/domain"
)

const userColumns = `id, email, full_name, role, password_hash, active, suspended, verified, created_at, updated_at`

// Postgres implements Repository over a users table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Repository backed by the given database.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// GetByEmail looks up a user by exact email match. The query compares the
// raw string; "Test@Example.com" and "test@example.com" are different users.
func (r *Postgres) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByID looks up a user by primary key.
func (r *Postgres) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *Postgres) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)
	var u domain.User
	err := r.db.QueryRowContext(ctx, q, value).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash,
		&u.Active, &u.Suspended, &u.Verified, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by %s: %w", column, err)
	}
	return &u, nil
}

// Create inserts a new user. A missing ID is filled with a fresh UUID.
func (r *Postgres) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Email, u.FullName, u.Role, u.PasswordHash,
		u.Active, u.Suspended, u.Verified, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
