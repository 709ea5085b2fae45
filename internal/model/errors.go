package model

import "errors"

// Error messages
const (
	ErrMsgPlayerNotFound = "player not found"
	ErrMsgPlayerExists   = "player already exists"
	ErrMsgItemNotFound   = "item not found"
	ErrMsgDuplicateItem  = "player already owns item"
	ErrMsgInvalidInput   = "invalid input"
	ErrMsgNoOpReward     = "reward produced no effective changes"
)

// Domain errors shared by every layer. Wrap them with
// fmt.Errorf("%w: %s", model.ErrXxx, details) to add context.
var (
	ErrPlayerNotFound = errors.New(ErrMsgPlayerNotFound)
	ErrPlayerExists   = errors.New(ErrMsgPlayerExists)
	ErrItemNotFound   = errors.New(ErrMsgItemNotFound)
	ErrDuplicateItem  = errors.New(ErrMsgDuplicateItem)
	ErrInvalidInput   = errors.New(ErrMsgInvalidInput)
	ErrNoOpReward     = errors.New(ErrMsgNoOpReward)
)
