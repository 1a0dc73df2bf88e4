package message

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines direct message data access
type Repository interface {
	Create(ctx context.Context, msg *Message) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new message repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts msg and fills in its generated id and timestamp
func (r *repository) Create(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content, is_read)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, msg.SenderID, msg.ReceiverID, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("message repository create: %w", err)
	}
	return nil
}

