package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const userColumns = `
	id, email, password_hash, first_name, last_name, role, status,
	google_calendar_token, google_calendar_enabled, last_login_at,
	created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{NewBaseRepository(db)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			role, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			user.ID,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.Role,
			user.Status,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, "user", `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, "user", `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			first_name = $1,
			last_name = $2,
			role = $3,
			status = $4,
			updated_at = $5
		WHERE id = $6
	`
	user.UpdatedAt = time.Now()

	return r.exec(ctx, "update", "user", query,
		user.FirstName,
		user.LastName,
		user.Role,
		user.Status,
		user.UpdatedAt,
		user.ID,
	)
}

func (r *userRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	var w where
	if filters != nil {
		if filters.Role != "" {
			w.add("role = ?", filters.Role)
		}
		if filters.Status != "" {
			w.add("status = ?", filters.Status)
		}
		if filters.SearchTerm != "" {
			pattern := "%" + filters.SearchTerm + "%"
			w.add("(email ILIKE ? OR first_name || ' ' || last_name ILIKE ?)", pattern, pattern)
		}
	}

	query := `SELECT ` + userColumns + ` FROM users` + w.String() + ` ORDER BY created_at DESC`

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, "update password of", "user", query, hash, id)
}

// UpdateCalendar stores the (already encrypted) calendar token and sync flag.
func (r *userRepository) UpdateCalendar(ctx context.Context, id uuid.UUID, token string, enabled bool) error {
	query := `
		UPDATE users
		SET google_calendar_token = $1, google_calendar_enabled = $2, updated_at = NOW()
		WHERE id = $3
	`
	return r.exec(ctx, "update calendar settings of", "user", query, token, enabled, id)
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, "update", "user", `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
}
