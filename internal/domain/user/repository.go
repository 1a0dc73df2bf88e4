package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines user data access interface
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByIDs returns the users that exist among ids, in ascending id order
	GetByIDs(ctx context.Context, ids []int64) ([]*User, error)
}

type repository struct {
	db *sqlx.DB
}

const userSelectColumns = `id, username, display_name, avatar_url, is_verified, user_type, is_banned, created_at`

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetByID returns user by ID
func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userSelectColumns + ` FROM users WHERE id = $1`

	var u User
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository get: %w", err)
	}
	return &u, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []int64) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}

	query := `SELECT ` + userSelectColumns + ` FROM users WHERE id = ANY($1) ORDER BY id`

	users := []*User{}
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("user repository get by ids: %w", err)
	}
	return users, nil
}
