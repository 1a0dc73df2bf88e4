package subscriberlist

import (
	"database/sql"
	"time"

	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
	"github.com/creatorhub/creatorhub-api/internal/domain/user"
)

// ListType distinguishes curated from computed lists
type ListType string

const (
	ListTypeSmart  ListType = "smart"
	ListTypeCustom ListType = "custom"
)

// AddedBy records how a member row was created
type AddedBy string

const (
	AddedByManual AddedBy = "manual"
	AddedByAuto   AddedBy = "auto"
)

// SubscriberList is a named audience owned by a creator.
// MemberCount is a denormalized display value recomputed after each mutation;
// nothing should rely on it for correctness.
type SubscriberList struct {
	ID          int64             `db:"id"`
	CreatorID   int64             `db:"creator_id"`
	Name        string            `db:"name"`
	Description sql.NullString    `db:"description"`
	ListType    ListType          `db:"list_type"`
	IsActive    bool              `db:"is_active"`
	MemberCount int               `db:"member_count"`
	Filters     *audience.Filters `db:"filters"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
}

// IsCustom reports whether membership is stored explicitly
func (l *SubscriberList) IsCustom() bool {
	return l.ListType == ListTypeCustom
}

// IsOwnedBy checks ownership
func (l *SubscriberList) IsOwnedBy(creatorID int64) bool {
	return l.CreatorID == creatorID
}

// ListMember is one explicit membership row of a custom list
type ListMember struct {
	ID      int64     `db:"id" json:"id"`
	ListID  int64     `db:"list_id" json:"list_id"`
	UserID  int64     `db:"user_id" json:"user_id"`
	AddedAt time.Time `db:"added_at" json:"added_at"`
	AddedBy AddedBy   `db:"added_by" json:"added_by"`
}

// MemberWithProfile is a membership row joined with the member's user record
type MemberWithProfile struct {
	ListMember
	Username    string         `db:"username"`
	DisplayName string         `db:"display_name"`
	AvatarURL   sql.NullString `db:"avatar_url"`
	IsVerified  bool           `db:"is_verified"`
	UserType    user.Type      `db:"user_type"`
}

// Profile projects the joined user columns
func (m *MemberWithProfile) Profile() user.Profile {
	u := user.User{
		ID:          m.UserID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		AvatarURL:   m.AvatarURL,
		IsVerified:  m.IsVerified,
		UserType:    m.UserType,
	}
	return u.ToProfile()
}
