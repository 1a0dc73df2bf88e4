package subscriberlist

import (
	"context"

	"github.com/creatorhub/creatorhub-api/internal/pkg/logger"
)

// AddMember adds one user to a custom list
func (s *Service) AddMember(ctx context.Context, listID, creatorID, userID int64) (*ListMember, error) {
	if _, err := s.customList(ctx, listID, creatorID); err != nil {
		return nil, err
	}

	member := &ListMember{ListID: listID, UserID: userID, AddedBy: AddedByManual}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	s.recount(ctx, listID)
	return member, nil
}

// AddMembersBulk adds the ids that are not members yet and returns only the new rows
func (s *Service) AddMembersBulk(ctx context.Context, listID, creatorID int64, userIDs []int64) ([]*ListMember, error) {
	if _, err := s.customList(ctx, listID, creatorID); err != nil {
		return nil, err
	}

	candidates := dedupe(userIDs)
	existing, err := s.repo.ExistingMemberIDs(ctx, listID, candidates)
	if err != nil {
		return nil, err
	}

	skip := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		skip[id] = struct{}{}
	}
	fresh := make([]int64, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := skip[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return nil, ErrNoNewMembers
	}

	members, err := s.repo.AddMembers(ctx, listID, fresh, AddedByManual)
	if err != nil {
		return nil, err
	}
	// concurrent adds may have claimed every id between the check and the insert
	if len(members) == 0 {
		return nil, ErrNoNewMembers
	}

	s.recount(ctx, listID)
	return members, nil
}

// RemoveMember is idempotent; removing a non-member succeeds
func (s *Service) RemoveMember(ctx context.Context, listID, creatorID, userID int64) error {
	if _, err := s.customList(ctx, listID, creatorID); err != nil {
		return err
	}

	if err := s.repo.RemoveMember(ctx, listID, userID); err != nil {
		return err
	}

	s.recount(ctx, listID)
	return nil
}

// ListMembers returns one page of members, most recently added first.
// page is 1-indexed; limit is clamped to MaxMembersLimit.
func (s *Service) ListMembers(ctx context.Context, listID, creatorID int64, page, limit int) (*MembersPage, error) {
	if _, err := s.customList(ctx, listID, creatorID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultMembersLimit
	}
	if limit > MaxMembersLimit {
		limit = MaxMembersLimit
	}

	rows, total, err := s.repo.ListMembers(ctx, listID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return newMembersPage(rows, total, page, limit), nil
}

func (s *Service) customList(ctx context.Context, listID, creatorID int64) (*SubscriberList, error) {
	list, err := s.GetList(ctx, listID, creatorID)
	if err != nil {
		return nil, err
	}
	if !list.IsCustom() {
		return nil, ErrNotCustomList
	}
	return list, nil
}

// recount refreshes the cached member_count. The membership change has already
// been committed, so a failure here only leaves the display value stale until
// the next mutation or reconcile run.
func (s *Service) recount(ctx context.Context, listID int64) {
	if _, err := s.repo.RecountMembers(ctx, listID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Int64("list_id", listID).Msg("Failed to recount list members")
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
