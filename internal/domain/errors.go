package domain

import "errors"

var (
	ErrEmptyTitle        = errors.New("room title is empty")
	ErrUnknownStreamType = errors.New("unknown stream type")
	ErrConfirmationUsed  = errors.New("delete confirmation already used")
)
