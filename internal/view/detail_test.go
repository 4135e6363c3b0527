package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/nav"
)

var testEnv = domain.Environment{Host: "media.test", Scheme: "http"}

type detailFixture struct {
	api      *fakeAPI
	nav      *nav.Store
	clip     *fakeClipboard
	notifier *fakeNotifier
	detail   *RoomDetail
}

func newDetailFixture(rooms ...domain.Room) *detailFixture {
	f := &detailFixture{
		api:      newFakeAPI(rooms...),
		nav:      nav.NewStore(),
		clip:     &fakeClipboard{},
		notifier: &fakeNotifier{},
	}
	f.detail = NewRoomDetail(DetailOptions{
		API:         f.api,
		Nav:         f.nav,
		Environment: testEnv,
		Clipboard:   f.clip,
		Notifier:    f.notifier,
		Logger:      zerolog.Nop(),
	})
	return f
}

func TestNewDetailDefaults(t *testing.T) {
	f := newDetailFixture()

	snap := f.detail.Snapshot()
	assert.Equal(t, StateUnloaded, snap.State)
	assert.Equal(t, domain.StreamTypeRTMP, snap.StreamType)
	assert.True(t, snap.URLs.IsZero())
}

func TestLoadDerivesURLs(t *testing.T) {
	f := newDetailFixture(domain.Room{UUID: "r1", Title: "Show", Secret: "abc"})

	require.NoError(t, f.detail.Load(context.Background(), "r1"))

	snap := f.detail.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.Equal(t, "Show", snap.Room.Title)

	p := f.detail.Panel()
	assert.Equal(t, domain.StreamTypeRTMP, p.Type)
	assert.True(t, p.KeyRequired)
	assert.Equal(t, "rtmp://media.test/live/", p.Server)
	assert.Equal(t, "r1?secret=abc", p.StreamKey)
	assert.Equal(t, "http://media.test/live/r1.m3u8", p.M3U8URL)
	assert.NotEmpty(t, p.HLSPlayer)
}

func TestLoadWithoutSecretLeavesURLsEmpty(t *testing.T) {
	f := newDetailFixture(domain.Room{UUID: "r1", Title: "Show"})

	require.NoError(t, f.detail.Load(context.Background(), "r1"))

	snap := f.detail.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.True(t, snap.URLs.IsZero())
	assert.Empty(t, f.detail.Panel().Server)
}

func TestLoadFailure(t *testing.T) {
	f := newDetailFixture()

	err := f.detail.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, errNotFound)

	snap := f.detail.Snapshot()
	assert.Equal(t, StateLoadFailed, snap.State)
	assert.ErrorIs(t, snap.Err, errNotFound)
	assert.Equal(t, "missing", snap.RoomID)
}

func TestFailedReloadClearsCredentials(t *testing.T) {
	f := newDetailFixture(domain.Room{UUID: "r1", Title: "Show", Secret: "abc"})
	require.NoError(t, f.detail.Load(context.Background(), "r1"))
	require.NotEmpty(t, f.detail.Panel().StreamKey)

	f.api.mu.Lock()
	f.api.queryErr = errors.New("backend down")
	f.api.mu.Unlock()

	err := f.detail.Load(context.Background(), "r1")
	assert.EqualError(t, err, "backend down")

	snap := f.detail.Snapshot()
	assert.Equal(t, StateLoadFailed, snap.State)
	assert.True(t, snap.URLs.IsZero())
	assert.Empty(t, snap.Room.Title)
	assert.Empty(t, f.detail.Panel().Server)
}

func TestSupersededLoadIsDropped(t *testing.T) {
	f := newDetailFixture(
		domain.Room{UUID: "a", Title: "A", Secret: "sa"},
		domain.Room{UUID: "b", Title: "B", Secret: "sb"},
	)
	gate := make(chan struct{})
	f.api.queryGates["a"] = gate

	first := make(chan error, 1)
	go func() { first <- f.detail.Load(context.Background(), "a") }()

	select {
	case id := <-f.api.queryStarted:
		require.Equal(t, "a", id)
	case <-time.After(waitFor):
		t.Fatal("query for a not issued")
	}

	require.NoError(t, f.detail.Load(context.Background(), "b"))
	close(gate)
	require.NoError(t, <-first)

	snap := f.detail.Snapshot()
	assert.Equal(t, "b", snap.RoomID)
	assert.Equal(t, "B", snap.Room.Title)
	assert.Equal(t, "b?secret=sb", snap.URLs.RTMPStreamKey)
}

func TestSwitchStreamType(t *testing.T) {
	f := newDetailFixture(domain.Room{UUID: "r1", Secret: "abc"})
	require.NoError(t, f.detail.Load(context.Background(), "r1"))

	calls := f.api.total()

	require.NoError(t, f.detail.SwitchStreamType("srt"))
	p := f.detail.Panel()
	assert.Equal(t, domain.StreamTypeSRT, p.Type)
	assert.False(t, p.KeyRequired)
	assert.Empty(t, p.StreamKey)
	assert.Equal(t, "srt://media.test:10080?streamid=#!::r=live/r1,secret=abc,m=publish", p.Server)
	assert.Equal(t, "http://media.test/live/r1.m3u8", p.M3U8URL)

	err := f.detail.SwitchStreamType("webrtc")
	assert.ErrorIs(t, err, domain.ErrUnknownStreamType)
	assert.Equal(t, domain.StreamTypeSRT, f.detail.StreamType())

	require.NoError(t, f.detail.SwitchStreamType("rtmp"))
	assert.Equal(t, "rtmp://media.test/live/", f.detail.Panel().Server)
	require.NoError(t, f.detail.SwitchStreamType("srt"))

	assert.Equal(t, calls, f.api.total())
}

func TestSetEnvironmentRederivesURLs(t *testing.T) {
	f := newDetailFixture(domain.Room{UUID: "r1", Secret: "abc"})
	require.NoError(t, f.detail.Load(context.Background(), "r1"))

	f.detail.SetEnvironment(domain.Environment{Host: "cdn.test", Scheme: "https"})

	assert.Equal(t, "https://cdn.test/live/r1.m3u8", f.detail.Panel().M3U8URL)
}

func TestFieldValue(t *testing.T) {
	f := newDetailFixture(domain.Room{UUID: "r1", Secret: "abc"})
	require.NoError(t, f.detail.Load(context.Background(), "r1"))

	v, ok := f.detail.FieldValue(FieldServer)
	require.True(t, ok)
	assert.Equal(t, "rtmp://media.test/live/", v)

	v, ok = f.detail.FieldValue(FieldKey)
	require.True(t, ok)
	assert.Equal(t, "r1?secret=abc", v)

	require.NoError(t, f.detail.SwitchStreamType("srt"))
	v, _ = f.detail.FieldValue(FieldServer)
	srt, _ := f.detail.FieldValue(FieldSRT)
	assert.Equal(t, srt, v)

	_, ok = f.detail.FieldValue(Field("password"))
	assert.False(t, ok)
}

func TestCopyToClipboard(t *testing.T) {
	f := newDetailFixture()

	f.detail.CopyToClipboard(context.Background(), "rtmp://media.test/live/")

	assert.Equal(t, []string{"rtmp://media.test/live/"}, f.clip.written)
	notes := f.notifier.all()
	require.Len(t, notes, 1)
	assert.True(t, notes[0].ok)
	assert.Equal(t, "copied to clipboard", notes[0].msg)
}

func TestCopyFailureIsNotified(t *testing.T) {
	f := newDetailFixture()
	f.clip.err = errors.New("no clipboard utility")

	f.detail.CopyToClipboard(context.Background(), "text")

	notes := f.notifier.all()
	require.Len(t, notes, 1)
	assert.False(t, notes[0].ok)
	assert.EqualError(t, notes[0].err, "no clipboard utility")
}

func TestCopyNothing(t *testing.T) {
	f := newDetailFixture()

	f.detail.CopyToClipboard(context.Background(), "")

	assert.Empty(t, f.clip.written)
	notes := f.notifier.all()
	require.Len(t, notes, 1)
	assert.False(t, notes[0].ok)
	assert.ErrorIs(t, notes[0].err, ErrNothingToCopy)
}

func TestBackClearsSelection(t *testing.T) {
	f := newDetailFixture()
	f.nav.Select("r1")

	f.detail.Back()

	_, ok := f.nav.SelectedRoomID()
	assert.False(t, ok)
	assert.Zero(t, f.api.total())
}
