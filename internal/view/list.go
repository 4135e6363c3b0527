package view

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/nav"
	pkglog "github.com/weiawesome/wes-io-live/liveroom-console/pkg/log"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultRoomTitle    = "My Live Room"
)

// ListOptions configures a RoomList.
type ListOptions struct {
	API          ListAPI
	Nav          *nav.Store
	PollInterval time.Duration
	DefaultTitle string
	OnError      ErrorHandler
	Logger       zerolog.Logger
}

// RoomList keeps the polled room collection and the create form.
//
// Each refresh owns the single outstanding list request: starting another
// cancels it, and a generation counter drops any response that arrives after
// it was superseded or after Stop.
type RoomList struct {
	api      ListAPI
	nav      *nav.Store
	interval time.Duration
	onError  ErrorHandler
	logger   zerolog.Logger

	mu       sync.Mutex
	title    string
	rooms    []domain.Room
	gen      uint64
	cancel   context.CancelFunc
	started  bool
	stopped  bool
	stopOnce sync.Once

	refreshCh chan struct{}
	changed   chan struct{}
	quit      chan struct{}
	doneCh    chan struct{}
}

// NewRoomList creates a room list. Call Start to begin polling.
func NewRoomList(opts ListOptions) *RoomList {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	title := opts.DefaultTitle
	if title == "" {
		title = DefaultRoomTitle
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(error) {}
	}

	return &RoomList{
		api:       opts.API,
		nav:       opts.Nav,
		interval:  interval,
		onError:   onError,
		logger:    opts.Logger.With().Str(pkglog.FieldView, "list").Logger(),
		title:     title,
		rooms:     []domain.Room{},
		refreshCh: make(chan struct{}, 1),
		changed:   make(chan struct{}, 1),
		quit:      make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start lists rooms immediately and then on every poll interval until Stop
// or ctx is done.
func (l *RoomList) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started || l.stopped {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	go l.run(ctx)
}

// Stop cancels the timer and any in-flight request, waits for the poll loop
// to exit and clears the room collection. Responses that arrive later are
// dropped. Done is closed afterwards even if Start was never called.
func (l *RoomList) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		started := l.started
		if l.cancel != nil {
			l.cancel()
			l.cancel = nil
		}
		l.rooms = []domain.Room{}
		l.mu.Unlock()

		close(l.quit)
		if started {
			<-l.doneCh
		} else {
			close(l.doneCh)
		}
	})
}

// Done returns a channel that is closed once the poll loop has exited.
func (l *RoomList) Done() <-chan struct{} {
	return l.doneCh
}

// Changes signals after each refresh that altered the room collection.
func (l *RoomList) Changes() <-chan struct{} {
	return l.changed
}

// Rooms returns a copy of the current room collection, in backend order.
func (l *RoomList) Rooms() []domain.Room {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.rooms)
}

// Title returns the create form title.
func (l *RoomList) Title() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.title
}

// SetTitle edits the create form title.
func (l *RoomList) SetTitle(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.title = title
}

// Create creates a room titled with the trimmed form title and selects it.
// On failure the form keeps its title.
func (l *RoomList) Create(ctx context.Context) (string, error) {
	title := strings.TrimSpace(l.Title())
	if title == "" {
		return "", domain.ErrEmptyTitle
	}

	uuid, err := l.api.CreateRoom(ctx, title)
	if err != nil {
		return "", err
	}

	l.logger.Info().
		Str(pkglog.FieldLogType, pkglog.LogTypeAudit).
		Str(pkglog.FieldRoomID, uuid).
		Str("title", title).
		Msg("room created")

	l.nav.Select(uuid)
	return uuid, nil
}

// Manage selects room for the detail view.
func (l *RoomList) Manage(room domain.Room) {
	l.nav.Select(room.UUID)
}

// PrepareDelete returns the confirmation a delete has to pass through.
// Nothing is sent until Confirm is called.
func (l *RoomList) PrepareDelete(uuid string) *DeleteConfirmation {
	return &DeleteConfirmation{list: l, uuid: uuid}
}

// RefreshNow asks the poll loop for an out-of-cycle refresh and restarts
// the interval.
func (l *RoomList) RefreshNow() {
	select {
	case l.refreshCh <- struct{}{}:
	default:
	}
}

func (l *RoomList) run(ctx context.Context) {
	defer close(l.doneCh)

	l.refresh(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.refresh(ctx)
		case <-l.refreshCh:
			ticker.Reset(l.interval)
			l.refresh(ctx)
		}
	}
}

// refresh issues a list request without waiting for it.
func (l *RoomList) refresh(parent context.Context) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.mu.Unlock()

	go func() {
		defer cancel()

		rooms, err := l.api.ListRooms(ctx)

		l.mu.Lock()
		current := gen == l.gen && !l.stopped
		changed := false
		if current && err == nil {
			if rooms == nil {
				rooms = []domain.Room{}
			}
			changed = !slices.Equal(l.rooms, rooms)
			l.rooms = rooms
		}
		l.mu.Unlock()

		if !current {
			l.logger.Debug().Uint64("generation", gen).Msg("dropping stale room list")
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.onError(err)
			return
		}

		l.logger.Debug().Int(pkglog.FieldCount, len(rooms)).Msg("room list refreshed")
		if changed {
			select {
			case l.changed <- struct{}{}:
			default:
			}
		}
	}()
}

// DeleteConfirmation is the second step of a delete. It can be used once.
type DeleteConfirmation struct {
	list *RoomList
	uuid string

	mu   sync.Mutex
	used bool
}

// RoomID returns the room the confirmation would delete.
func (d *DeleteConfirmation) RoomID() string {
	return d.uuid
}

// Confirm sends the remove request. On success the list refreshes at once;
// on failure nothing local changes.
func (d *DeleteConfirmation) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.used {
		d.mu.Unlock()
		return domain.ErrConfirmationUsed
	}
	d.used = true
	d.mu.Unlock()

	if err := d.list.api.RemoveRoom(ctx, d.uuid); err != nil {
		return err
	}

	d.list.logger.Info().
		Str(pkglog.FieldLogType, pkglog.LogTypeAudit).
		Str(pkglog.FieldRoomID, d.uuid).
		Msg("room removed")

	d.list.RefreshNow()
	return nil
}

// Cancel discards the confirmation.
func (d *DeleteConfirmation) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.used = true
}
