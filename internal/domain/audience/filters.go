package audience

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/creatorhub/creatorhub-api/internal/pkg/validator"
)

// SubscriptionStatus selects subscribers by the state of their subscription to the creator
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"    // status active, end date in the future
	StatusExpired   SubscriptionStatus = "expired"   // still marked active, end date passed
	StatusCancelled SubscriptionStatus = "cancelled" // status cancelled
)

// RelationshipType widens or replaces the subscriber set with followers.
// Unset means subscribers only.
type RelationshipType string

const (
	RelationshipFollower RelationshipType = "follower"
	RelationshipBoth     RelationshipType = "both"
)

// SpendingType selects users by transaction history with the creator
type SpendingType string

const (
	SpendingMoreThan  SpendingType = "spent_more_than"
	SpendingPaidMedia SpendingType = "purchased_paid_media"
	SpendingSentTips  SpendingType = "sent_tips"
)

// DefaultSpendThreshold applies when spent_more_than carries no value
const DefaultSpendThreshold = 50.0

// Period selects subscribers by when their subscription was created
type Period string

const (
	PeriodNewSubscribers Period = "new_subscribers" // last 30 days
	PeriodThisMonth      Period = "this_month"      // since the 1st of the current month
	PeriodLongTerm       Period = "long_term"       // more than 6 months ago
)

// SpendingFilter is the spending predicate category
type SpendingFilter struct {
	Type  SpendingType `json:"type" validate:"required,oneof=spent_more_than purchased_paid_media sent_tips"`
	Value *float64     `json:"value,omitempty" validate:"omitempty,gte=0"`
}

// Threshold returns the spend threshold, defaulting to DefaultSpendThreshold
func (s *SpendingFilter) Threshold() float64 {
	if s.Value == nil {
		return DefaultSpendThreshold
	}
	return *s.Value
}

// Filters is the predicate document stored on a smart list.
// Every populated category restricts the audience; categories are combined with AND.
type Filters struct {
	SubscriptionStatus SubscriptionStatus `json:"subscription_status,omitempty" validate:"omitempty,oneof=active expired cancelled"`
	RelationshipType   RelationshipType   `json:"relationship_type,omitempty" validate:"omitempty,oneof=follower both"`
	Spending           *SpendingFilter    `json:"spending,omitempty"`
	Period             Period             `json:"period,omitempty" validate:"omitempty,oneof=new_subscribers this_month long_term"`
}

// HasRelationship reports whether the subscription/relationship category is populated
func (f Filters) HasRelationship() bool {
	return f.SubscriptionStatus != "" || f.RelationshipType != ""
}

// HasSpending reports whether the spending category is populated
func (f Filters) HasSpending() bool {
	return f.Spending != nil && f.Spending.Type != ""
}

// HasPeriod reports whether the period category is populated
func (f Filters) HasPeriod() bool {
	return f.Period != ""
}

// IsEmpty reports whether no category is populated
func (f Filters) IsEmpty() bool {
	return !f.HasRelationship() && !f.HasSpending() && !f.HasPeriod()
}

// Validate returns per-field errors keyed by JSON path, or nil
func (f Filters) Validate() map[string]string {
	return validator.Validate(&f)
}

// Value stores the document as JSONB
func (f Filters) Value() (driver.Value, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the document from a JSONB column
func (f *Filters) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = Filters{}
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("audience filters: unsupported scan type %T", src)
	}
}
