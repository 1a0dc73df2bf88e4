package subscriberlist

import (
	"math"
	"time"

	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
	"github.com/creatorhub/creatorhub-api/internal/domain/user"
)

// Pagination bounds for GET /lists/{id}/members
const (
	DefaultMembersLimit = 20
	MaxMembersLimit     = 100
)

// CreateListRequest for POST /lists
type CreateListRequest struct {
	Name        string            `json:"name" validate:"required,notblank,min=3,max=50"`
	Description *string           `json:"description" validate:"omitempty,max=200"`
	ListType    ListType          `json:"list_type" validate:"required,list_type"`
	Filters     *audience.Filters `json:"filters" validate:"omitempty"`
}

// UpdateListRequest for PATCH /lists/{id}. Filters replace the stored document wholesale.
type UpdateListRequest struct {
	Name        *string           `json:"name" validate:"omitempty,notblank,min=3,max=50"`
	Description *string           `json:"description" validate:"omitempty,max=200"`
	Filters     *audience.Filters `json:"filters" validate:"omitempty"`
}

// AddMemberRequest for POST /lists/{id}/members
type AddMemberRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// AddMembersBulkRequest for POST /lists/{id}/members/bulk
type AddMembersBulkRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required,min=1,max=1000,dive,gt=0"`
}

// SendMessageRequest for POST /lists/{id}/send-message
type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// PreviewRequest for POST /lists/preview-smart
type PreviewRequest struct {
	Filters audience.Filters `json:"filters"`
}

// ListFilter narrows ListLists; nil fields are not applied
type ListFilter struct {
	ListType *ListType
	IsActive *bool
}

// ListResponse represents a list in API responses
type ListResponse struct {
	ID          int64             `json:"id"`
	CreatorID   int64             `json:"creator_id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	ListType    ListType          `json:"list_type"`
	IsActive    bool              `json:"is_active"`
	MemberCount int               `json:"member_count"`
	Filters     *audience.Filters `json:"filters,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ListResponseFromEntity converts entity to response
func ListResponseFromEntity(l *SubscriberList) *ListResponse {
	resp := &ListResponse{
		ID:          l.ID,
		CreatorID:   l.CreatorID,
		Name:        l.Name,
		ListType:    l.ListType,
		IsActive:    l.IsActive,
		MemberCount: l.MemberCount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Description.Valid {
		resp.Description = &l.Description.String
	}
	if l.ListType == ListTypeSmart {
		resp.Filters = l.Filters
	}
	return resp
}

// MemberResponse is a member row with its profile
type MemberResponse struct {
	ID      int64        `json:"id"`
	UserID  int64        `json:"user_id"`
	AddedAt time.Time    `json:"added_at"`
	AddedBy AddedBy      `json:"added_by"`
	User    user.Profile `json:"user"`
}

// MembersPage is one page of list members
type MembersPage struct {
	Members    []MemberResponse `json:"members"`
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

func newMembersPage(rows []*MemberWithProfile, total, page, limit int) *MembersPage {
	members := make([]MemberResponse, 0, len(rows))
	for _, m := range rows {
		members = append(members, MemberResponse{
			ID:      m.ID,
			UserID:  m.UserID,
			AddedAt: m.AddedAt,
			AddedBy: m.AddedBy,
			User:    m.Profile(),
		})
	}
	return &MembersPage{
		Members:    members,
		TotalCount: total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		Page:       page,
		Limit:      limit,
	}
}

// BulkSendResult reports a fan-out outcome. MessageIDs follow member order.
type BulkSendResult struct {
	SentCount   int     `json:"sent_count"`
	FailedCount int     `json:"failed_count"`
	MessageIDs  []int64 `json:"message_ids"`
}
