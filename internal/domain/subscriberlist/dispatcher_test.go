package subscriberlist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
)

func TestSendMessageToCustomList(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	list, _ := svc.CreateList(ctx, 42, &CreateListRequest{Name: "VIP", ListType: ListTypeCustom})
	_, _ = svc.AddMembersBulk(ctx, list.ID, 42, []int64{101, 102})

	sender := &recordingSender{}
	result, err := NewDispatcher(svc, sender, 1).SendMessageToList(ctx, list.ID, 42, "Hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if result.SentCount != 2 || result.FailedCount != 0 {
		t.Fatalf("expected 2 sent 0 failed, got %+v", result)
	}
	if len(result.MessageIDs) != 2 || result.MessageIDs[0] != sender.sent[0].ID || result.MessageIDs[1] != sender.sent[1].ID {
		t.Fatalf("unexpected message ids %v", result.MessageIDs)
	}
	for i, want := range []int64{101, 102} {
		msg := sender.sent[i]
		if msg.SenderID != 42 || msg.ReceiverID != want || msg.Content != "Hello" {
			t.Fatalf("unexpected message %+v", msg)
		}
	}
}

func TestSendMessageIsolatesFailures(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)
	ctx := context.Background()

	list, _ := svc.CreateList(ctx, 42, &CreateListRequest{Name: "VIP", ListType: ListTypeCustom})
	_, _ = svc.AddMembersBulk(ctx, list.ID, 42, []int64{101, 102, 103})

	sender := &recordingSender{failFor: map[int64]bool{102: true}}
	result, err := NewDispatcher(svc, sender, 4).SendMessageToList(ctx, list.ID, 42, "Hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.SentCount != 2 || result.FailedCount != 1 || len(result.MessageIDs) != 2 {
		t.Fatalf("expected 2 sent 1 failed, got %+v", result)
	}
}

func TestSendMessageToEmptyListInsertsNothing(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)
	ctx := context.Background()

	list, _ := svc.CreateList(ctx, 42, &CreateListRequest{Name: "VIP", ListType: ListTypeCustom})

	sender := &recordingSender{}
	_, err := NewDispatcher(svc, sender, 1).SendMessageToList(ctx, list.ID, 42, "Hello")
	if !errors.Is(err, ErrEmptyList) {
		t.Fatalf("expected ErrEmptyList, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected zero inserts, got %d", len(sender.sent))
	}
}

func TestSendMessageToSmartListResolvesFilters(t *testing.T) {
	resolver := &stubResolver{set: audience.NewUserSet(205, 201, 203)}
	svc := newTestService(newMemRepo(), resolver)
	ctx := context.Background()

	list, _ := svc.CreateList(ctx, 42, &CreateListRequest{
		Name:     "active",
		ListType: ListTypeSmart,
		Filters:  &audience.Filters{SubscriptionStatus: audience.StatusActive},
	})

	sender := &recordingSender{}
	result, err := NewDispatcher(svc, sender, 1).SendMessageToList(ctx, list.ID, 42, "New drop")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.SentCount != 3 {
		t.Fatalf("expected 3 sent, got %+v", result)
	}
	if sender.sent[0].ReceiverID != 201 || sender.sent[2].ReceiverID != 205 {
		t.Fatalf("expected ascending recipient order, got %d..%d", sender.sent[0].ReceiverID, sender.sent[2].ReceiverID)
	}
}

func TestSendMessageResolutionFailure(t *testing.T) {
	resolver := &stubResolver{err: &audience.ResolutionError{Category: "spending", Err: errors.New("timeout")}}
	svc := newTestService(newMemRepo(), resolver)
	ctx := context.Background()

	list, _ := svc.CreateList(ctx, 42, &CreateListRequest{
		Name:     "spenders",
		ListType: ListTypeSmart,
		Filters:  &audience.Filters{Spending: &audience.SpendingFilter{Type: audience.SpendingSentTips}},
	})

	sender := &recordingSender{}
	_, err := NewDispatcher(svc, sender, 1).SendMessageToList(ctx, list.ID, 42, "Thanks")
	if !errors.Is(err, audience.ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("expected no sends after resolution failure")
	}
}

func TestSendMessageValidation(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)
	ctx := context.Background()

	list, _ := svc.CreateList(ctx, 42, &CreateListRequest{Name: "VIP", ListType: ListTypeCustom})
	_, _ = svc.AddMember(ctx, list.ID, 42, 101)
	d := NewDispatcher(svc, &recordingSender{}, 1)

	for _, text := range []string{"", "   ", strings.Repeat("x", 501)} {
		var vErr *ValidationError
		if _, err := d.SendMessageToList(ctx, list.ID, 42, text); !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for %d chars, got %v", len(text), err)
		}
	}

	if _, err := d.SendMessageToList(ctx, list.ID, 42, strings.Repeat("é", 500)); err != nil {
		t.Fatalf("500 characters should be accepted: %v", err)
	}
	if _, err := d.SendMessageToList(ctx, list.ID, 7, "Hello"); !errors.Is(err, ErrListNotFound) {
		t.Fatalf("expected ErrListNotFound for foreign creator, got %v", err)
	}
}

func TestSendGateOnlyCountsAcceptedSends(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)
	ctx := context.Background()

	empty, _ := svc.CreateList(ctx, 42, &CreateListRequest{Name: "empty", ListType: ListTypeCustom})
	vip, _ := svc.CreateList(ctx, 42, &CreateListRequest{Name: "VIP", ListType: ListTypeCustom})
	_, _ = svc.AddMembersBulk(ctx, vip.ID, 42, []int64{101})

	gate := &budgetGate{budget: 1}
	sender := &recordingSender{}
	d := NewDispatcher(svc, sender, 1).WithSendGate(gate)

	if _, err := d.SendMessageToList(ctx, 999, 42, "Hello"); !errors.Is(err, ErrListNotFound) {
		t.Fatalf("expected ErrListNotFound, got %v", err)
	}
	if _, err := d.SendMessageToList(ctx, vip.ID, 42, "   "); err == nil {
		t.Fatal("expected blank message to be rejected")
	}
	if _, err := d.SendMessageToList(ctx, empty.ID, 42, "Hello"); !errors.Is(err, ErrEmptyList) {
		t.Fatalf("expected ErrEmptyList, got %v", err)
	}
	if gate.calls != 0 {
		t.Fatalf("rejected sends consumed %d admissions", gate.calls)
	}

	if _, err := d.SendMessageToList(ctx, vip.ID, 42, "Hello"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := d.SendMessageToList(ctx, vip.ID, 42, "Hello"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one stored message, got %d", len(sender.sent))
	}
}
