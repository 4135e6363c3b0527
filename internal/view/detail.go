package view

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/clipboard"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/nav"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/notify"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/urlbuilder"
	pkglog "github.com/weiawesome/wes-io-live/liveroom-console/pkg/log"
)

var ErrNothingToCopy = errors.New("nothing to copy yet")

// DetailState tracks the room query.
type DetailState int

const (
	StateUnloaded DetailState = iota
	StateLoading
	StateLoaded
	StateLoadFailed
)

func (s DetailState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadFailed:
		return "load_failed"
	default:
		return "unloaded"
	}
}

// Field names a copyable value of the detail view.
type Field string

const (
	FieldServer Field = "server"
	FieldKey    Field = "key"
	FieldM3U8   Field = "m3u8"
	FieldSRT    Field = "srt"
)

// Panel is the credential panel for the active stream type.
type Panel struct {
	Type        domain.StreamType
	Server      string
	StreamKey   string
	KeyRequired bool
	HLSPlayer   string
	M3U8URL     string
}

// DetailSnapshot is a consistent copy of the detail view state.
type DetailSnapshot struct {
	RoomID     string
	State      DetailState
	Room       domain.Room
	URLs       domain.URLBundle
	StreamType domain.StreamType
	Err        error
}

// DetailOptions configures a RoomDetail.
type DetailOptions struct {
	API         QueryAPI
	Nav         *nav.Store
	Builder     urlbuilder.Builder
	Environment domain.Environment
	Clipboard   clipboard.Service
	Notifier    notify.Notifier
	Logger      zerolog.Logger
}

// RoomDetail shows one room's publish and playback credentials.
type RoomDetail struct {
	api      QueryAPI
	nav      *nav.Store
	builder  urlbuilder.Builder
	clip     clipboard.Service
	notifier notify.Notifier
	logger   zerolog.Logger

	mu         sync.Mutex
	gen        uint64
	roomID     string
	state      DetailState
	room       domain.Room
	urls       domain.URLBundle
	env        domain.Environment
	streamType domain.StreamType
	loadErr    error
}

// NewRoomDetail creates an unloaded detail view showing RTMP instructions.
func NewRoomDetail(opts DetailOptions) *RoomDetail {
	builder := opts.Builder
	if builder == nil {
		builder = urlbuilder.Default{}
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.Disabled{}
	}

	return &RoomDetail{
		api:        opts.API,
		nav:        opts.Nav,
		builder:    builder,
		clip:       clip,
		notifier:   opts.Notifier,
		logger:     opts.Logger.With().Str(pkglog.FieldView, "detail").Logger(),
		env:        opts.Environment,
		streamType: domain.StreamTypeRTMP,
	}
}

// Load queries roomID once and replaces the room state. A load overtaken by
// a newer one is dropped without error.
func (d *RoomDetail) Load(ctx context.Context, roomID string) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	if roomID != d.roomID {
		d.room = domain.Room{}
		d.urls = domain.URLBundle{}
	}
	d.roomID = roomID
	d.state = StateLoading
	d.loadErr = nil
	d.mu.Unlock()

	room, err := d.api.QueryRoom(ctx, roomID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen {
		d.logger.Debug().Str(pkglog.FieldRoomID, roomID).Msg("dropping superseded room query")
		return nil
	}

	if err != nil {
		// A failed state never shows credentials from an earlier load.
		d.state = StateLoadFailed
		d.loadErr = err
		d.room = domain.Room{}
		d.urls = domain.URLBundle{}
		return err
	}

	d.room = *room
	d.state = StateLoaded
	d.urls = urlbuilder.Derive(d.builder, &d.room, d.roomID, d.env)

	d.logger.Debug().Str(pkglog.FieldRoomID, roomID).Bool("has_secret", d.room.Secret != "").Msg("room loaded")
	return nil
}

// SetEnvironment replaces the network context and re-derives the URLs.
func (d *RoomDetail) SetEnvironment(env domain.Environment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.env = env
	if d.state == StateLoaded {
		d.urls = urlbuilder.Derive(d.builder, &d.room, d.roomID, d.env)
	}
}

// SwitchStreamType selects the RTMP or SRT panel.
func (d *RoomDetail) SwitchStreamType(kind string) error {
	st, err := domain.ParseStreamType(kind)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamType != st {
		d.logger.Debug().Str(pkglog.FieldStreamType, string(st)).Msg("stream type switched")
	}
	d.streamType = st
	return nil
}

// StreamType returns the selected stream type.
func (d *RoomDetail) StreamType() domain.StreamType {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streamType
}

// Panel returns the one credential panel for the selected stream type.
// Fields stay empty until the room is loaded.
func (d *RoomDetail) Panel() Panel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return panelFor(d.streamType, d.urls)
}

func panelFor(st domain.StreamType, urls domain.URLBundle) Panel {
	if st == domain.StreamTypeSRT {
		return Panel{
			Type:      domain.StreamTypeSRT,
			Server:    urls.SRTPublishURL,
			HLSPlayer: urls.HLSPlayer,
			M3U8URL:   urls.M3U8URL,
		}
	}
	return Panel{
		Type:        domain.StreamTypeRTMP,
		Server:      urls.RTMPServer,
		StreamKey:   urls.RTMPStreamKey,
		KeyRequired: true,
		HLSPlayer:   urls.HLSPlayer,
		M3U8URL:     urls.M3U8URL,
	}
}

// FieldValue returns the value a copy command refers to.
func (d *RoomDetail) FieldValue(f Field) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch f {
	case FieldServer:
		if d.streamType == domain.StreamTypeSRT {
			return d.urls.SRTPublishURL, true
		}
		return d.urls.RTMPServer, true
	case FieldKey:
		return d.urls.RTMPStreamKey, true
	case FieldM3U8:
		return d.urls.M3U8URL, true
	case FieldSRT:
		return d.urls.SRTPublishURL, true
	default:
		return "", false
	}
}

// CopyToClipboard writes text to the clipboard and reports the outcome
// through the notifier. It never fails to the caller.
func (d *RoomDetail) CopyToClipboard(ctx context.Context, text string) {
	if text == "" {
		d.notify(false, "copy failed:", ErrNothingToCopy)
		return
	}
	if err := d.clip.Write(ctx, text); err != nil {
		d.notify(false, "copy failed:", err)
		return
	}
	d.notify(true, "copied to clipboard", nil)
}

func (d *RoomDetail) notify(ok bool, msg string, err error) {
	if d.notifier == nil {
		return
	}
	if ok {
		d.notifier.Success(msg)
		return
	}
	d.notifier.Failure(msg, err)
}

// Back clears the selection so the list view takes over.
func (d *RoomDetail) Back() {
	d.nav.Clear()
}

// Snapshot returns a copy of the view state.
func (d *RoomDetail) Snapshot() DetailSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DetailSnapshot{
		RoomID:     d.roomID,
		State:      d.state,
		Room:       d.room,
		URLs:       d.urls,
		StreamType: d.streamType,
		Err:        d.loadErr,
	}
}
