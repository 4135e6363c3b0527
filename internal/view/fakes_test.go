package view

import (
	"context"
	"slices"
	"sync"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
)

// fakeAPI is an in-memory backend. Calls honour ctx unless a gate is set.
type fakeAPI struct {
	mu sync.Mutex

	rooms     []domain.Room
	nullList  bool
	listErr   error
	createErr error
	removeErr error
	queryErr  error

	createCalls int
	removeCalls int
	listCalls   int
	queryCalls  int
	titles      []string

	// listGate, when set, makes ListRooms wait for it and ignore ctx.
	listGate    chan struct{}
	listStarted chan struct{}

	// queryGates make QueryRoom for an id wait for the channel.
	queryGates   map[string]chan struct{}
	queryStarted chan string
}

func newFakeAPI(rooms ...domain.Room) *fakeAPI {
	return &fakeAPI{
		rooms:        rooms,
		listStarted:  make(chan struct{}, 16),
		queryGates:   make(map[string]chan struct{}),
		queryStarted: make(chan string, 16),
	}
}

func (f *fakeAPI) CreateRoom(ctx context.Context, title string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.titles = append(f.titles, title)
	if f.createErr != nil {
		return "", f.createErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := "room-" + title
	f.rooms = append(f.rooms, domain.Room{UUID: id, Title: title, Secret: "s-" + title})
	return id, nil
}

func (f *fakeAPI) RemoveRoom(ctx context.Context, uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	if f.removeErr != nil {
		return f.removeErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.rooms = slices.DeleteFunc(f.rooms, func(r domain.Room) bool { return r.UUID == uuid })
	return nil
}

func (f *fakeAPI) ListRooms(ctx context.Context) ([]domain.Room, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	f.mu.Unlock()

	if gate != nil {
		f.listStarted <- struct{}{}
		<-gate
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.nullList {
		return nil, nil
	}
	return slices.Clone(f.rooms), nil
}

func (f *fakeAPI) QueryRoom(ctx context.Context, uuid string) (*domain.Room, error) {
	f.mu.Lock()
	f.queryCalls++
	gate := f.queryGates[uuid]
	f.mu.Unlock()

	if gate != nil {
		f.queryStarted <- uuid
		<-gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	for _, r := range f.rooms {
		if r.UUID == uuid {
			room := r
			return &room, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeAPI) counts() (create, remove, list int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.removeCalls, f.listCalls
}

// total is the number of backend calls of any kind.
func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls + f.removeCalls + f.listCalls + f.queryCalls
}

type testError string

func (e testError) Error() string { return string(e) }

const errNotFound = testError("room not found")

type fakeClipboard struct {
	mu      sync.Mutex
	err     error
	written []string
}

func (c *fakeClipboard) Write(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.written = append(c.written, text)
	return nil
}

type note struct {
	ok  bool
	msg string
	err error
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *fakeNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{ok: true, msg: msg})
}

func (n *fakeNotifier) Failure(msg string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{msg: msg, err: err})
}

func (n *fakeNotifier) all() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.notes)
}
