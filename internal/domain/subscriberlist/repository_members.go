package subscriberlist

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

func (r *repository) AddMember(ctx context.Context, member *ListMember) error {
	query := `
		INSERT INTO list_members (list_id, user_id, added_by)
		VALUES ($1, $2, $3)
		RETURNING id, added_at
	`

	err := r.db.QueryRowxContext(ctx, query, member.ListID, member.UserID, member.AddedBy).
		Scan(&member.ID, &member.AddedAt)
	if err != nil {
		return mapListDBError(err)
	}
	return nil
}

// AddMembers inserts all userIDs in one statement. Rows that already exist are
// skipped, so only the newly created members are returned.
func (r *repository) AddMembers(ctx context.Context, listID int64, userIDs []int64, addedBy AddedBy) ([]*ListMember, error) {
	if len(userIDs) == 0 {
		return []*ListMember{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO list_members (list_id, user_id, added_by)
		SELECT $1, u.id, $3 FROM unnest($2::bigint[]) WITH ORDINALITY AS u(id, ord)
		ORDER BY u.ord
		ON CONFLICT (list_id, user_id) DO NOTHING
		RETURNING id, list_id, user_id, added_at, added_by
	`

	members := []*ListMember{}
	if err := tx.SelectContext(ctx, &members, query, listID, pq.Array(userIDs), addedBy); err != nil {
		return nil, mapListDBError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) ExistingMemberIDs(ctx context.Context, listID int64, userIDs []int64) ([]int64, error) {
	if len(userIDs) == 0 {
		return []int64{}, nil
	}

	query := `SELECT user_id FROM list_members WHERE list_id = $1 AND user_id = ANY($2)`

	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, listID, pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("list members existing: %w", err)
	}
	return ids, nil
}

// RemoveMember deletes the row if present; a missing row is not an error
func (r *repository) RemoveMember(ctx context.Context, listID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM list_members WHERE list_id = $1 AND user_id = $2`, listID, userID)
	if err != nil {
		return fmt.Errorf("list members remove: %w", err)
	}
	return nil
}

// RecountMembers recomputes member_count from the membership rows
func (r *repository) RecountMembers(ctx context.Context, listID int64) (int, error) {
	query := `
		UPDATE subscriber_lists
		SET member_count = (SELECT COUNT(*) FROM list_members WHERE list_id = $1)
		WHERE id = $1
		RETURNING member_count
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, listID); err != nil {
		return 0, fmt.Errorf("list members recount: %w", err)
	}
	return count, nil
}

func (r *repository) ListMembers(ctx context.Context, listID int64, limit, offset int) ([]*MemberWithProfile, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM list_members WHERE list_id = $1`, listID); err != nil {
		return nil, 0, fmt.Errorf("list members count: %w", err)
	}

	query := `
		SELECT lm.id, lm.list_id, lm.user_id, lm.added_at, lm.added_by,
			u.username, u.display_name, u.avatar_url, u.is_verified, u.user_type
		FROM list_members lm
		JOIN users u ON u.id = lm.user_id
		WHERE lm.list_id = $1
		ORDER BY lm.added_at DESC, lm.id DESC
		LIMIT $2 OFFSET $3
	`

	members := []*MemberWithProfile{}
	if err := r.db.SelectContext(ctx, &members, query, listID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list members page: %w", err)
	}
	return members, total, nil
}

// AllMemberIDs returns every member in insertion order
func (r *repository) AllMemberIDs(ctx context.Context, listID int64) ([]int64, error) {
	query := `SELECT user_id FROM list_members WHERE list_id = $1 ORDER BY added_at, id`

	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, listID); err != nil {
		return nil, fmt.Errorf("list members all: %w", err)
	}
	return ids, nil
}
