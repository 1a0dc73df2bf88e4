package subscriberlist

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
	"github.com/creatorhub/creatorhub-api/internal/domain/message"
	"github.com/creatorhub/creatorhub-api/internal/domain/user"
)

// memRepo is an in-memory Repository
type memRepo struct {
	lists         map[int64]*SubscriberList
	members       []*ListMember
	nextListID    int64
	nextMember    int64
	clock         time.Time
	recounts      int
	recountErr    error
	memberInserts int
}

func newMemRepo() *memRepo {
	return &memRepo{
		lists: map[int64]*SubscriberList{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memRepo) Create(_ context.Context, list *SubscriberList) error {
	r.nextListID++
	list.ID = r.nextListID
	list.CreatedAt = r.tick()
	list.UpdatedAt = list.CreatedAt
	cp := *list
	r.lists[list.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*SubscriberList, error) {
	l, ok := r.lists[id]
	if !ok {
		return nil, ErrListNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, list *SubscriberList) error {
	if _, ok := r.lists[list.ID]; !ok {
		return ErrListNotFound
	}
	list.UpdatedAt = r.tick()
	cp := *list
	r.lists[list.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.lists[id]; !ok {
		return ErrListNotFound
	}
	kept := r.members[:0]
	for _, m := range r.members {
		if m.ListID != id {
			kept = append(kept, m)
		}
	}
	r.members = kept
	delete(r.lists, id)
	return nil
}

func (r *memRepo) ListByCreator(_ context.Context, creatorID int64, filter ListFilter) ([]*SubscriberList, error) {
	out := []*SubscriberList{}
	for _, l := range r.lists {
		if l.CreatorID != creatorID {
			continue
		}
		if filter.ListType != nil && l.ListType != *filter.ListType {
			continue
		}
		if filter.IsActive != nil && l.IsActive != *filter.IsActive {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) CountByType(_ context.Context, creatorID int64, listType ListType) (int, error) {
	n := 0
	for _, l := range r.lists {
		if l.CreatorID == creatorID && l.ListType == listType {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ExistsByName(_ context.Context, creatorID int64, name string, excludeID int64) (bool, error) {
	for _, l := range r.lists {
		if l.CreatorID == creatorID && l.Name == name && l.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ListByType(_ context.Context, listType ListType) ([]*SubscriberList, error) {
	out := []*SubscriberList{}
	for _, l := range r.lists {
		if l.ListType == listType {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) SetMemberCount(_ context.Context, id int64, count int) error {
	r.lists[id].MemberCount = count
	return nil
}

func (r *memRepo) isMember(listID, userID int64) bool {
	for _, m := range r.members {
		if m.ListID == listID && m.UserID == userID {
			return true
		}
	}
	return false
}

func (r *memRepo) AddMember(_ context.Context, member *ListMember) error {
	if r.isMember(member.ListID, member.UserID) {
		return ErrDuplicateMember
	}
	r.nextMember++
	r.memberInserts++
	member.ID = r.nextMember
	member.AddedAt = r.tick()
	cp := *member
	r.members = append(r.members, &cp)
	return nil
}

func (r *memRepo) AddMembers(ctx context.Context, listID int64, userIDs []int64, addedBy AddedBy) ([]*ListMember, error) {
	out := []*ListMember{}
	for _, id := range userIDs {
		if r.isMember(listID, id) {
			continue
		}
		m := &ListMember{ListID: listID, UserID: id, AddedBy: addedBy}
		if err := r.AddMember(ctx, m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memRepo) ExistingMemberIDs(_ context.Context, listID int64, userIDs []int64) ([]int64, error) {
	out := []int64{}
	for _, id := range userIDs {
		if r.isMember(listID, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *memRepo) RemoveMember(_ context.Context, listID, userID int64) error {
	kept := r.members[:0]
	for _, m := range r.members {
		if m.ListID == listID && m.UserID == userID {
			continue
		}
		kept = append(kept, m)
	}
	r.members = kept
	return nil
}

func (r *memRepo) RecountMembers(ctx context.Context, listID int64) (int, error) {
	r.recounts++
	if r.recountErr != nil {
		return 0, r.recountErr
	}
	ids, _ := r.AllMemberIDs(ctx, listID)
	if l, ok := r.lists[listID]; ok {
		l.MemberCount = len(ids)
	}
	return len(ids), nil
}

func (r *memRepo) ListMembers(_ context.Context, listID int64, limit, offset int) ([]*MemberWithProfile, int, error) {
	all := []*MemberWithProfile{}
	for _, m := range r.members {
		if m.ListID == listID {
			all = append(all, &MemberWithProfile{ListMember: *m, Username: "user", UserType: user.TypeFan})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AddedAt.After(all[j].AddedAt) })

	total := len(all)
	if offset >= total {
		return []*MemberWithProfile{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memRepo) AllMemberIDs(_ context.Context, listID int64) ([]int64, error) {
	ids := []int64{}
	for _, m := range r.members {
		if m.ListID == listID {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

// stubResolver returns a fixed audience for any filters
type stubResolver struct {
	set audience.UserSet
	err error
}

func (s *stubResolver) ResolveSmartMembers(context.Context, int64, audience.Filters) (audience.UserSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

func (s *stubResolver) Preview(_ context.Context, _ int64, _ audience.Filters) (*audience.Preview, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &audience.Preview{MemberCount: s.set.Len(), Preview: []user.Profile{}}, nil
}

// stubUsers behaves like the SQL repository: ascending ids, unknown ids skipped
type stubUsers struct {
	missing map[int64]bool
}

func (u stubUsers) GetByIDs(_ context.Context, ids []int64) ([]*user.User, error) {
	out := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		if u.missing[id] {
			continue
		}
		out = append(out, &user.User{ID: id, Username: "fan", DisplayName: "Fan", UserType: user.TypeFan})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// recordingSender stores messages and fails for recipients listed in failFor
type recordingSender struct {
	mu      sync.Mutex
	nextID  int64
	sent    []*message.Message
	failFor map[int64]bool
}

func (s *recordingSender) SendDirect(_ context.Context, senderID, receiverID int64, content string) (*message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failFor[receiverID] {
		return nil, errors.New("insert failed")
	}
	s.nextID++
	msg := &message.Message{ID: s.nextID, SenderID: senderID, ReceiverID: receiverID, Content: content}
	s.sent = append(s.sent, msg)
	return msg, nil
}

func newTestService(repo *memRepo, resolver AudienceResolver) *Service {
	if resolver == nil {
		resolver = &stubResolver{set: audience.NewUserSet()}
	}
	return NewService(repo, resolver, stubUsers{}, 3)
}

func strPtr(s string) *string { return &s }

// budgetGate admits the first budget calls and counts every call it sees
type budgetGate struct {
	budget int
	calls  int
}

func (g *budgetGate) Allow(context.Context, int64) bool {
	g.calls++
	return g.calls <= g.budget
}
