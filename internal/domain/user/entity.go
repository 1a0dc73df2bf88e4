package user

import (
	"database/sql"
	"time"
)

// Type represents the account type (matches users.user_type)
type Type string

const (
	TypeCreator Type = "creator"
	TypeFan     Type = "fan"
	TypeAdmin   Type = "admin"
)

// User represents a user account as seen by the list service.
// Accounts are owned by the auth service; this service only reads them.
type User struct {
	ID          int64          `db:"id"`
	Username    string         `db:"username"`
	DisplayName string         `db:"display_name"`
	AvatarURL   sql.NullString `db:"avatar_url"`
	IsVerified  bool           `db:"is_verified"`
	UserType    Type           `db:"user_type"`
	IsBanned    bool           `db:"is_banned"`
	CreatedAt   time.Time      `db:"created_at"`
}

// IsCreator returns true if user can own lists
func (u *User) IsCreator() bool {
	return u.UserType == TypeCreator
}

// Profile is the public projection joined onto list members and previews
type Profile struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	IsVerified  bool    `json:"is_verified"`
	UserType    Type    `json:"user_type"`
}

// ToProfile converts entity to its public projection
func (u *User) ToProfile() Profile {
	p := Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		IsVerified:  u.IsVerified,
		UserType:    u.UserType,
	}
	if u.AvatarURL.Valid {
		p.AvatarURL = &u.AvatarURL.String
	}
	return p
}
