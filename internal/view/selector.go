package view

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/nav"
	pkglog "github.com/weiawesome/wes-io-live/liveroom-console/pkg/log"
)

// RouteKind names the view a Route points at.
type RouteKind int

const (
	RouteList RouteKind = iota
	RouteDetail
)

func (k RouteKind) String() string {
	if k == RouteDetail {
		return "detail"
	}
	return "list"
}

// Route is the view to show and, for the detail view, its room.
type Route struct {
	Kind   RouteKind
	RoomID string
}

// Selector picks the list or detail view from the navigation store.
type Selector struct {
	nav    *nav.Store
	logger zerolog.Logger

	mu   sync.Mutex
	last string
}

// NewSelector creates a selector over store.
func NewSelector(store *nav.Store, logger zerolog.Logger) *Selector {
	return &Selector{nav: store, logger: logger}
}

// Route returns the detail route for a selected room, the list route otherwise.
// The id is forwarded unvalidated.
func (s *Selector) Route() Route {
	id, ok := s.nav.SelectedRoomID()

	s.mu.Lock()
	if id != s.last {
		s.logger.Debug().Str(pkglog.FieldRoomID, id).Msg("selected room changed")
		s.last = id
	}
	s.mu.Unlock()

	if !ok {
		return Route{Kind: RouteList}
	}
	return Route{Kind: RouteDetail, RoomID: id}
}
