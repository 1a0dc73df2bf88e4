package subscriberlist

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "postgres")), mock
}

var listColumns = []string{"id", "creator_id", "name", "description", "list_type", "is_active", "member_count", "filters", "created_at", "updated_at"}

func TestMapListDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate name", &pq.Error{Code: "23505", Constraint: "subscriber_lists_creator_name_key"}, ErrDuplicateName},
		{"duplicate member", &pq.Error{Code: "23505", Constraint: "list_members_list_user_key"}, ErrDuplicateMember},
		{"unknown user", &pq.Error{Code: "23503", Constraint: "list_members_user_id_fkey"}, ErrUserNotFound},
		{"missing list", &pq.Error{Code: "23503", Constraint: "list_members_list_id_fkey"}, ErrListNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapListDBError(tc.err)
			assert.ErrorIs(t, mapped, tc.want)

			var pqErr *pq.Error
			assert.ErrorAs(t, mapped, &pqErr, "original driver error stays reachable")
		})
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, mapListDBError(plain))
}

func TestCreateMapsDuplicateName(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subscriber_lists")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "subscriber_lists_creator_name_key"})

	err := repo.Create(context.Background(), &SubscriberList{CreatorID: 42, Name: "VIP", ListType: ListTypeCustom})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestGetByIDScansFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM subscriber_lists WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(listColumns).
			AddRow(7, 42, "active", nil, "smart", true, 3, []byte(`{"subscription_status":"active","period":"this_month"}`), now, now))

	list, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, list.Filters)
	assert.Equal(t, audience.StatusActive, list.Filters.SubscriptionStatus)
	assert.Equal(t, audience.PeriodThisMonth, list.Filters.Period)
	assert.False(t, list.Description.Valid)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM subscriber_lists WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(listColumns))

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestDeleteRemovesMembersFirst(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM list_members WHERE list_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subscriber_lists WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingListRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM list_members")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subscriber_lists")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), 7), ErrListNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByCreatorAppliesFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	custom := ListTypeCustom
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("WHERE creator_id = $1 AND list_type = $2 AND is_active = $3")).
		WithArgs(int64(42), custom, active).
		WillReturnRows(sqlmock.NewRows(listColumns))

	lists, err := repo.ListByCreator(context.Background(), 42, ListFilter{ListType: &custom, IsActive: &active})
	require.NoError(t, err)
	assert.Empty(t, lists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecountMembersUsesLiveCount(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SET member_count = (SELECT COUNT(*) FROM list_members WHERE list_id = $1)")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"member_count"}).AddRow(2))

	n, err := repo.RecountMembers(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAddMembersSkipsConflicts(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (list_id, user_id) DO NOTHING")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "list_id", "user_id", "added_at", "added_by"}).
			AddRow(11, 7, 102, now, "manual"))
	mock.ExpectCommit()

	members, err := repo.AddMembers(context.Background(), 7, []int64{101, 102}, AddedByManual)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int64(102), members[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
