package subscriberlist

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/creatorhub/creatorhub-api/internal/domain/message"
	"github.com/creatorhub/creatorhub-api/internal/pkg/logger"
	"github.com/creatorhub/creatorhub-api/internal/pkg/metrics"
)

// MessageSender persists one direct message; satisfied by *message.Service
type MessageSender interface {
	SendDirect(ctx context.Context, senderID, receiverID int64, content string) (*message.Message, error)
}

// SendGate admits or rejects one bulk send for a creator; satisfied by *middleware.RateLimiter
type SendGate interface {
	Allow(ctx context.Context, creatorID int64) bool
}

// Dispatcher fans a message out to every member of a list
type Dispatcher struct {
	lists   *Service
	sender  MessageSender
	gate    SendGate
	workers int
}

// NewDispatcher creates a dispatcher running at most workers sends at a time
func NewDispatcher(lists *Service, sender MessageSender, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{lists: lists, sender: sender, workers: workers}
}

// WithSendGate makes every accepted bulk send consume one admission from gate.
// Sends rejected earlier (unknown list, invalid message, empty audience) do not.
func (d *Dispatcher) WithSendGate(gate SendGate) *Dispatcher {
	d.gate = gate
	return d
}

// SendMessageToList sends text from creatorID to each resolved member.
// Each recipient is an independent task: failures are counted, never returned,
// and there is no rollback of messages already stored.
func (d *Dispatcher) SendMessageToList(ctx context.Context, listID, creatorID int64, text string) (*BulkSendResult, error) {
	list, err := d.lists.GetList(ctx, listID, creatorID)
	if err != nil {
		return nil, err
	}

	if err := message.ValidateContent(text); err != nil {
		return nil, newValidationError("message", err.Error())
	}

	members, err := d.lists.ResolveMembers(ctx, list)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrEmptyList
	}
	if d.gate != nil && !d.gate.Allow(ctx, creatorID) {
		return nil, ErrRateLimited
	}

	start := time.Now()
	log := logger.FromContext(ctx)

	// the batch outlives a disconnected client
	sendCtx := context.WithoutCancel(ctx)

	ids := make([]int64, len(members))
	sent := make([]bool, len(members))

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, recipientID := range members {
		g.Go(func() error {
			msg, err := d.sender.SendDirect(sendCtx, creatorID, recipientID, text)
			if err != nil {
				log.Warn().Err(err).
					Int64("list_id", listID).
					Int64("recipient_id", recipientID).
					Msg("Bulk send to recipient failed")
				return nil
			}
			ids[i] = msg.ID
			sent[i] = true
			return nil
		})
	}
	g.Wait()

	result := &BulkSendResult{MessageIDs: make([]int64, 0, len(members))}
	for i := range members {
		if sent[i] {
			result.SentCount++
			result.MessageIDs = append(result.MessageIDs, ids[i])
		} else {
			result.FailedCount++
		}
	}

	took := time.Since(start)
	metrics.RecordBulkSend(result.SentCount, result.FailedCount, took)
	log.Info().
		Int64("list_id", listID).
		Int("sent", result.SentCount).
		Int("failed", result.FailedCount).
		Dur("took", took).
		Msg("Bulk send finished")

	return result, nil
}
