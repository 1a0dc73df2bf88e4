package audience

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository runs the read-only audience queries, each scoped to one creator
type Repository interface {
	SubscribersByStatus(ctx context.Context, creatorID int64, status SubscriptionStatus, now time.Time) ([]int64, error)
	AllSubscribers(ctx context.Context, creatorID int64) ([]int64, error)
	Followers(ctx context.Context, creatorID int64) ([]int64, error)
	SpentAtLeast(ctx context.Context, creatorID int64, threshold float64) ([]int64, error)
	PaidMediaBuyers(ctx context.Context, creatorID int64) ([]int64, error)
	TipSenders(ctx context.Context, creatorID int64) ([]int64, error)
	SubscribedSince(ctx context.Context, creatorID int64, since time.Time) ([]int64, error)
	SubscribedBefore(ctx context.Context, creatorID int64, before time.Time) ([]int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new audience repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SubscribersByStatus(ctx context.Context, creatorID int64, status SubscriptionStatus, now time.Time) ([]int64, error) {
	var query string
	args := []interface{}{creatorID}

	switch status {
	case StatusActive:
		query = `SELECT DISTINCT subscriber_id FROM subscriptions WHERE creator_id = $1 AND status = 'active' AND end_date > $2`
		args = append(args, now)
	case StatusExpired:
		query = `SELECT DISTINCT subscriber_id FROM subscriptions WHERE creator_id = $1 AND status = 'active' AND end_date <= $2`
		args = append(args, now)
	case StatusCancelled:
		query = `SELECT DISTINCT subscriber_id FROM subscriptions WHERE creator_id = $1 AND status = 'cancelled'`
	default:
		return nil, fmt.Errorf("subscription status %q: %w", status, ErrUnknownFilter)
	}

	return r.selectIDs(ctx, "subscribers by status", query, args...)
}

func (r *repository) AllSubscribers(ctx context.Context, creatorID int64) ([]int64, error) {
	query := `SELECT DISTINCT subscriber_id FROM subscriptions WHERE creator_id = $1`
	return r.selectIDs(ctx, "all subscribers", query, creatorID)
}

func (r *repository) Followers(ctx context.Context, creatorID int64) ([]int64, error) {
	query := `SELECT follower_id FROM follows WHERE creator_id = $1`
	return r.selectIDs(ctx, "followers", query, creatorID)
}

func (r *repository) SpentAtLeast(ctx context.Context, creatorID int64, threshold float64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM transactions
		WHERE creator_id = $1 AND status = 'completed'
		GROUP BY user_id
		HAVING SUM(amount) >= $2
	`
	return r.selectIDs(ctx, "spent at least", query, creatorID, threshold)
}

func (r *repository) PaidMediaBuyers(ctx context.Context, creatorID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT p.buyer_id
		FROM paid_link_purchases p
		JOIN paid_links l ON l.id = p.paid_link_id
		WHERE l.creator_id = $1 AND p.status = 'completed'
	`
	return r.selectIDs(ctx, "paid media buyers", query, creatorID)
}

func (r *repository) TipSenders(ctx context.Context, creatorID int64) ([]int64, error) {
	query := `SELECT DISTINCT sender_id FROM tips WHERE creator_id = $1`
	return r.selectIDs(ctx, "tip senders", query, creatorID)
}

func (r *repository) SubscribedSince(ctx context.Context, creatorID int64, since time.Time) ([]int64, error) {
	query := `SELECT DISTINCT subscriber_id FROM subscriptions WHERE creator_id = $1 AND created_at >= $2`
	return r.selectIDs(ctx, "subscribed since", query, creatorID, since)
}

func (r *repository) SubscribedBefore(ctx context.Context, creatorID int64, before time.Time) ([]int64, error) {
	query := `SELECT DISTINCT subscriber_id FROM subscriptions WHERE creator_id = $1 AND created_at < $2`
	return r.selectIDs(ctx, "subscribed before", query, creatorID, before)
}

func (r *repository) selectIDs(ctx context.Context, op, query string, args ...interface{}) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("audience repository %s: %w", op, err)
	}
	return ids, nil
}
