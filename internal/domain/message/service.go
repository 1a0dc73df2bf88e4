package message

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/creatorhub/creatorhub-api/internal/pkg/logger"
)

// Service persists direct messages and notifies recipients
type Service struct {
	repo      Repository
	publisher Publisher
}

// NewService creates message service; publisher may be nil
func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// SendDirect stores one message from sender to receiver.
// A failed realtime publish is logged; the stored message still counts as sent.
func (s *Service) SendDirect(ctx context.Context, senderID, receiverID int64, content string) (*Message, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, ErrCannotMessageSelf
	}

	msg := &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishNewMessage(ctx, msg); err != nil {
			logger.FromContext(ctx).Warn().Err(err).
				Int64("message_id", msg.ID).
				Int64("receiver_id", receiverID).
				Msg("Failed to publish message event")
		}
	}

	return msg, nil
}

// ValidateContent checks a message body is non-blank and within MaxContentLength characters
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}
