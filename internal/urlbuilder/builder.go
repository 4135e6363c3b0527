package urlbuilder

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
)

const (
	defaultRTMPPort = 1935
	defaultSRTPort  = 10080
)

// Options carries per-stream inputs to a Builder.
type Options struct {
	Publish string // publish secret
}

// Builder turns a stream path into publish and playback URLs.
type Builder interface {
	Build(streamPath string, opts Options, env domain.Environment) domain.URLBundle
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(streamPath string, opts Options, env domain.Environment) domain.URLBundle

func (f BuilderFunc) Build(streamPath string, opts Options, env domain.Environment) domain.URLBundle {
	return f(streamPath, opts, env)
}

// RoomStreamPath returns the stream path a room publishes to.
func RoomStreamPath(roomID string) string {
	return "live/" + roomID
}

// Derive computes the bundle for room, or the zero bundle while the room
// has no secret yet.
func Derive(b Builder, room *domain.Room, roomID string, env domain.Environment) domain.URLBundle {
	if b == nil || room == nil || room.Secret == "" {
		return domain.URLBundle{}
	}
	return b.Build(RoomStreamPath(roomID), Options{Publish: room.Secret}, env)
}

// Default builds URLs for a single-host deployment where RTMP, SRT and HLS
// are served from env.Host.
type Default struct{}

// Build implements Builder.
func (Default) Build(streamPath string, opts Options, env domain.Environment) domain.URLBundle {
	app, stream := path.Split(path.Clean("/" + streamPath))
	app = path.Clean(app)

	scheme := env.Scheme
	if scheme == "" {
		scheme = "http"
	}
	rtmpPort := env.RTMPPort
	if rtmpPort == 0 {
		rtmpPort = defaultRTMPPort
	}
	srtPort := env.SRTPort
	if srtPort == 0 {
		srtPort = defaultSRTPort
	}

	httpHost := env.Host
	if env.HTTPPort != 0 && !isDefaultHTTPPort(scheme, env.HTTPPort) {
		httpHost = net.JoinHostPort(env.Host, strconv.Itoa(env.HTTPPort))
	}
	rtmpHost := env.Host
	if rtmpPort != defaultRTMPPort {
		rtmpHost = net.JoinHostPort(env.Host, strconv.Itoa(rtmpPort))
	}

	streamKey := stream
	if opts.Publish != "" {
		streamKey += "?secret=" + url.QueryEscape(opts.Publish)
	}

	m3u8 := (&url.URL{Scheme: scheme, Host: httpHost, Path: path.Join(app, stream) + ".m3u8"}).String()
	player := (&url.URL{
		Scheme:   scheme,
		Host:     httpHost,
		Path:     "/players/srs_player.html",
		RawQuery: url.Values{"autostart": {"true"}, "url": {m3u8}}.Encode(),
	}).String()

	streamID := "#!::r=" + path.Join(app, stream)[1:]
	if opts.Publish != "" {
		streamID += ",secret=" + opts.Publish
	}
	srt := fmt.Sprintf("srt://%s?streamid=%s,m=publish",
		net.JoinHostPort(env.Host, strconv.Itoa(srtPort)), streamID)

	return domain.URLBundle{
		RTMPServer:    fmt.Sprintf("rtmp://%s%s/", rtmpHost, app),
		RTMPStreamKey: streamKey,
		HLSPlayer:     player,
		M3U8URL:       m3u8,
		SRTPublishURL: srt,
	}
}

func isDefaultHTTPPort(scheme string, port int) bool {
	return (scheme == "http" && port == 80) || (scheme == "https" && port == 443)
}
