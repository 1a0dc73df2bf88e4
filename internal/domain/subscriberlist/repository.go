package subscriberlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"

	constraintListName   = "subscriber_lists_creator_name_key"
	constraintListMember = "list_members_list_user_key"
)

// Repository defines list and membership data access
type Repository interface {
	Create(ctx context.Context, list *SubscriberList) error
	GetByID(ctx context.Context, id int64) (*SubscriberList, error)
	Update(ctx context.Context, list *SubscriberList) error
	Delete(ctx context.Context, id int64) error
	ListByCreator(ctx context.Context, creatorID int64, filter ListFilter) ([]*SubscriberList, error)
	CountByType(ctx context.Context, creatorID int64, listType ListType) (int, error)
	ExistsByName(ctx context.Context, creatorID int64, name string, excludeID int64) (bool, error)
	ListByType(ctx context.Context, listType ListType) ([]*SubscriberList, error)
	SetMemberCount(ctx context.Context, id int64, count int) error

	AddMember(ctx context.Context, member *ListMember) error
	AddMembers(ctx context.Context, listID int64, userIDs []int64, addedBy AddedBy) ([]*ListMember, error)
	ExistingMemberIDs(ctx context.Context, listID int64, userIDs []int64) ([]int64, error)
	RemoveMember(ctx context.Context, listID, userID int64) error
	RecountMembers(ctx context.Context, listID int64) (int, error)
	ListMembers(ctx context.Context, listID int64, limit, offset int) ([]*MemberWithProfile, int, error)
	AllMemberIDs(ctx context.Context, listID int64) ([]int64, error)
}

type repository struct {
	db *sqlx.DB
}

const listSelectColumns = `id, creator_id, name, description, list_type, is_active, member_count, filters, created_at, updated_at`

// NewRepository creates new subscriber list repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, list *SubscriberList) error {
	query := `
		INSERT INTO subscriber_lists (creator_id, name, description, list_type, is_active, member_count, filters)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		list.CreatorID,
		list.Name,
		list.Description,
		list.ListType,
		list.IsActive,
		list.MemberCount,
		list.Filters,
	).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return mapListDBError(err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*SubscriberList, error) {
	query := `SELECT ` + listSelectColumns + ` FROM subscriber_lists WHERE id = $1`

	var list SubscriberList
	if err := r.db.GetContext(ctx, &list, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("subscriber list get: %w", err)
	}
	return &list, nil
}

func (r *repository) Update(ctx context.Context, list *SubscriberList) error {
	query := `
		UPDATE subscriber_lists
		SET name = $2, description = $3, is_active = $4, filters = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		list.ID,
		list.Name,
		list.Description,
		list.IsActive,
		list.Filters,
	).Scan(&list.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrListNotFound
		}
		return mapListDBError(err)
	}
	return nil
}

// Delete removes the list's members and then the list in one transaction
func (r *repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM list_members WHERE list_id = $1`, id); err != nil {
		return fmt.Errorf("subscriber list delete members: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM subscriber_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("subscriber list delete: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrListNotFound
	}

	return tx.Commit()
}

func (r *repository) ListByCreator(ctx context.Context, creatorID int64, filter ListFilter) ([]*SubscriberList, error) {
	conditions := []string{"creator_id = $1"}
	args := []interface{}{creatorID}

	if filter.ListType != nil {
		args = append(args, *filter.ListType)
		conditions = append(conditions, fmt.Sprintf("list_type = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}

	query := `SELECT ` + listSelectColumns + ` FROM subscriber_lists
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_at DESC, id DESC`

	lists := []*SubscriberList{}
	if err := r.db.SelectContext(ctx, &lists, query, args...); err != nil {
		return nil, fmt.Errorf("subscriber list by creator: %w", err)
	}
	return lists, nil
}

func (r *repository) CountByType(ctx context.Context, creatorID int64, listType ListType) (int, error) {
	query := `SELECT COUNT(*) FROM subscriber_lists WHERE creator_id = $1 AND list_type = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, creatorID, listType); err != nil {
		return 0, fmt.Errorf("subscriber list count: %w", err)
	}
	return count, nil
}

func (r *repository) ExistsByName(ctx context.Context, creatorID int64, name string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM subscriber_lists WHERE creator_id = $1 AND name = $2 AND id <> $3)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, creatorID, name, excludeID); err != nil {
		return false, fmt.Errorf("subscriber list name check: %w", err)
	}
	return exists, nil
}

func (r *repository) ListByType(ctx context.Context, listType ListType) ([]*SubscriberList, error) {
	query := `SELECT ` + listSelectColumns + ` FROM subscriber_lists WHERE list_type = $1 ORDER BY id`

	lists := []*SubscriberList{}
	if err := r.db.SelectContext(ctx, &lists, query, listType); err != nil {
		return nil, fmt.Errorf("subscriber list by type: %w", err)
	}
	return lists, nil
}

func (r *repository) SetMemberCount(ctx context.Context, id int64, count int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE subscriber_lists SET member_count = $2 WHERE id = $1`, id, count)
	if err != nil {
		return fmt.Errorf("subscriber list set count: %w", err)
	}
	return nil
}

func mapListDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch {
	case pqErr.Code == pqUniqueViolation && pqErr.Constraint == constraintListName:
		return fmt.Errorf("%w: %w", ErrDuplicateName, err)
	case pqErr.Code == pqUniqueViolation && pqErr.Constraint == constraintListMember:
		return fmt.Errorf("%w: %w", ErrDuplicateMember, err)
	case pqErr.Code == pqForeignKeyViolation && strings.HasPrefix(pqErr.Constraint, "list_members_user_id"):
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	case pqErr.Code == pqForeignKeyViolation && strings.HasPrefix(pqErr.Constraint, "list_members_list_id"):
		return fmt.Errorf("%w: %w", ErrListNotFound, err)
	default:
		return err
	}
}
