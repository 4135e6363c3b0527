package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/backendtest"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/token"
	pkglog "github.com/weiawesome/wes-io-live/liveroom-console/pkg/log"
)

func newClient(t *testing.T, srv *backendtest.Server, tok string) *RoomClient {
	t.Helper()
	return NewRoomClient(Options{
		BaseURL:    srv.URL + "/",
		PathPrefix: backendtest.PathPrefix,
		Tokens:     token.NewStaticProvider(tok),
		Logger:     pkglog.Nop(),
	})
}

func TestRoomLifecycle(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv, srv.Token)
	ctx := context.Background()

	uuid, err := c.CreateRoom(ctx, "My Room")
	require.NoError(t, err)
	assert.NotEmpty(t, uuid)

	rooms, err := c.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, uuid, rooms[0].UUID)
	assert.Equal(t, "My Room", rooms[0].Title)

	room, err := c.QueryRoom(ctx, uuid)
	require.NoError(t, err)
	assert.Equal(t, uuid, room.UUID)
	assert.NotEmpty(t, room.Secret)
	assert.NotEmpty(t, room.CreatedAt)

	require.NoError(t, c.RemoveRoom(ctx, uuid))

	rooms, err = c.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
	assert.NotNil(t, rooms)
}

func TestListRoomsNullIsEmpty(t *testing.T) {
	srv := backendtest.New(t)
	srv.Seed(domain.Room{UUID: "a", Title: "A"})
	srv.ReturnNullList(true)
	c := newClient(t, srv, srv.Token)

	rooms, err := c.ListRooms(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
}

func TestRemoveTwiceSurfacesNotFound(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv, srv.Token)
	ctx := context.Background()

	uuid, err := c.CreateRoom(ctx, "dup")
	require.NoError(t, err)

	require.NoError(t, c.RemoveRoom(ctx, uuid))
	err = c.RemoveRoom(ctx, uuid)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 2, srv.Calls("remove"))
}

func TestQueryUnknownRoom(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv, srv.Token)

	_, err := c.QueryRoom(context.Background(), "not-a-uuid")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestBadTokenIsUnauthorized(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv, "not-the-token")

	_, err := c.ListRooms(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestMissingTokenNeverReachesBackend(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv, "")

	_, err := c.ListRooms(context.Background())
	assert.ErrorIs(t, err, token.ErrMissingToken)
	assert.Zero(t, srv.Calls("list"))
}

func TestInjectedFailure(t *testing.T) {
	srv := backendtest.New(t)
	srv.FailNext("create", http.StatusInternalServerError)
	c := newClient(t, srv, srv.Token)

	_, err := c.CreateRoom(context.Background(), "boom")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Empty(t, srv.Rooms())

	_, err = c.CreateRoom(context.Background(), "ok")
	require.NoError(t, err)
}

func TestEveryRequestCarriesRequestID(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv, srv.Token)
	ctx := context.Background()

	_, err := c.ListRooms(ctx)
	require.NoError(t, err)
	_, err = c.ListRooms(pkglog.WithRequestID(ctx, "fixed"))
	require.NoError(t, err)

	ids := srv.RequestIDs()
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, "fixed", ids[1])
}

func TestCanceledContext(t *testing.T) {
	srv := backendtest.New(t)
	c := newClient(t, srv, srv.Token)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListRooms(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryCallerCancelDoesNotFailSharedQuery(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"uuid":"r1","title":"Show","secret":"s"}}`))
	}))
	defer srv.Close()
	defer close(release)

	c := NewRoomClient(Options{BaseURL: srv.URL, PathPrefix: backendtest.PathPrefix, Logger: pkglog.Nop()})

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.QueryRoom(first, "r1")
		firstErr <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("query not issued")
	}

	type result struct {
		room *domain.Room
		err  error
	}
	second := make(chan result, 1)
	go func() {
		room, err := c.QueryRoom(context.Background(), "r1")
		second <- result{room, err}
	}()
	// Give the second caller time to join the flight.
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	release <- struct{}{}
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, "Show", res.room.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never got the room")
	}
	assert.Equal(t, int32(1), calls.Load())
}
