package view

import (
	"context"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
)

// ListAPI is what the room list needs from the backend.
type ListAPI interface {
	CreateRoom(ctx context.Context, title string) (string, error)
	RemoveRoom(ctx context.Context, uuid string) error
	ListRooms(ctx context.Context) ([]domain.Room, error)
}

// QueryAPI is what the room detail needs from the backend.
type QueryAPI interface {
	QueryRoom(ctx context.Context, uuid string) (*domain.Room, error)
}

// RoomAPI is the full live room backend.
type RoomAPI interface {
	ListAPI
	QueryAPI
}

// ErrorHandler receives errors a view cannot return to a caller, such as
// failures of background refreshes.
type ErrorHandler func(err error)
