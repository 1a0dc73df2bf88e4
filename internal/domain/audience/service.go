package audience

import (
	"context"
	"fmt"
	"time"

	"github.com/creatorhub/creatorhub-api/internal/domain/user"
)

// PreviewSize is the number of resolved users returned by Preview
const PreviewSize = 10

// UserReader loads user profiles for previews
type UserReader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*user.User, error)
}

// Preview is the read-only summary of a filter document
type Preview struct {
	MemberCount int            `json:"member_count"`
	Preview     []user.Profile `json:"preview"`
}

// Service evaluates smart list filters against live subscription, follow and transaction data
type Service struct {
	repo  Repository
	users UserReader
	now   func() time.Time
}

// NewService creates audience service
func NewService(repo Repository, users UserReader) *Service {
	return &Service{repo: repo, users: users, now: time.Now}
}

// WithClock overrides the time source; used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ResolveSmartMembers returns the users matching every populated category of f.
// No populated category resolves to the empty set. Any query failure aborts the
// whole resolution with a *ResolutionError. The set carries no ordering.
func (s *Service) ResolveSmartMembers(ctx context.Context, creatorID int64, f Filters) (UserSet, error) {
	now := s.now().UTC()

	var result UserSet
	apply := func(set UserSet) {
		if result == nil {
			result = set
			return
		}
		result = result.Intersect(set)
	}

	if f.HasRelationship() {
		set, err := s.resolveRelationship(ctx, creatorID, f, now)
		if err != nil {
			return nil, &ResolutionError{Category: "relationship", Err: err}
		}
		apply(set)
	}

	if f.HasSpending() {
		set, err := s.resolveSpending(ctx, creatorID, f.Spending)
		if err != nil {
			return nil, &ResolutionError{Category: "spending", Err: err}
		}
		apply(set)
	}

	if f.HasPeriod() {
		set, err := s.resolvePeriod(ctx, creatorID, f.Period, now)
		if err != nil {
			return nil, &ResolutionError{Category: "period", Err: err}
		}
		apply(set)
	}

	if result == nil {
		return NewUserSet(), nil
	}
	return result, nil
}

// Preview resolves f and returns the member count plus the first PreviewSize users by id
func (s *Service) Preview(ctx context.Context, creatorID int64, f Filters) (*Preview, error) {
	set, err := s.ResolveSmartMembers(ctx, creatorID, f)
	if err != nil {
		return nil, err
	}

	ids := set.Sorted()
	if len(ids) > PreviewSize {
		ids = ids[:PreviewSize]
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load preview profiles: %w", err)
	}

	preview := &Preview{MemberCount: set.Len(), Preview: make([]user.Profile, 0, len(users))}
	for _, u := range users {
		preview.Preview = append(preview.Preview, u.ToProfile())
	}
	return preview, nil
}

// resolveRelationship builds the subscriber base (by status, or every subscriber)
// and applies relationship_type: follower replaces it, both unions it with followers.
func (s *Service) resolveRelationship(ctx context.Context, creatorID int64, f Filters, now time.Time) (UserSet, error) {
	if f.RelationshipType == RelationshipFollower {
		followers, err := s.repo.Followers(ctx, creatorID)
		if err != nil {
			return nil, err
		}
		return NewUserSet(followers...), nil
	}

	var (
		subscribers []int64
		err         error
	)
	if f.SubscriptionStatus != "" {
		subscribers, err = s.repo.SubscribersByStatus(ctx, creatorID, f.SubscriptionStatus, now)
	} else {
		subscribers, err = s.repo.AllSubscribers(ctx, creatorID)
	}
	if err != nil {
		return nil, err
	}
	base := NewUserSet(subscribers...)

	switch f.RelationshipType {
	case "":
		return base, nil
	case RelationshipBoth:
		followers, err := s.repo.Followers(ctx, creatorID)
		if err != nil {
			return nil, err
		}
		return base.Union(NewUserSet(followers...)), nil
	default:
		return nil, fmt.Errorf("relationship type %q: %w", f.RelationshipType, ErrUnknownFilter)
	}
}

func (s *Service) resolveSpending(ctx context.Context, creatorID int64, sf *SpendingFilter) (UserSet, error) {
	var (
		ids []int64
		err error
	)
	switch sf.Type {
	case SpendingMoreThan:
		ids, err = s.repo.SpentAtLeast(ctx, creatorID, sf.Threshold())
	case SpendingPaidMedia:
		ids, err = s.repo.PaidMediaBuyers(ctx, creatorID)
	case SpendingSentTips:
		ids, err = s.repo.TipSenders(ctx, creatorID)
	default:
		err = fmt.Errorf("spending type %q: %w", sf.Type, ErrUnknownFilter)
	}
	if err != nil {
		return nil, err
	}
	return NewUserSet(ids...), nil
}

func (s *Service) resolvePeriod(ctx context.Context, creatorID int64, p Period, now time.Time) (UserSet, error) {
	var (
		ids []int64
		err error
	)
	switch p {
	case PeriodNewSubscribers:
		ids, err = s.repo.SubscribedSince(ctx, creatorID, now.AddDate(0, 0, -30))
	case PeriodThisMonth:
		ids, err = s.repo.SubscribedSince(ctx, creatorID, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
	case PeriodLongTerm:
		ids, err = s.repo.SubscribedBefore(ctx, creatorID, now.AddDate(0, -6, 0))
	default:
		err = fmt.Errorf("period %q: %w", p, ErrUnknownFilter)
	}
	if err != nil {
		return nil, err
	}
	return NewUserSet(ids...), nil
}
