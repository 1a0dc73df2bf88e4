package message

import "errors"

var (
	ErrEmptyContent      = errors.New("message content is empty")
	ErrContentTooLong    = errors.New("message content is too long")
	ErrCannotMessageSelf = errors.New("cannot send a message to yourself")
)
