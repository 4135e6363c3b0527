package domain

import "fmt"

// Room represents a live room as the backend reports it.
type Room struct {
	UUID      string `json:"uuid"`
	Title     string `json:"title"`
	Secret    string `json:"secret,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// StreamType selects which publish instructions the detail view shows.
type StreamType string

const (
	StreamTypeRTMP StreamType = "rtmp"
	StreamTypeSRT  StreamType = "srt"
)

// ParseStreamType validates s as a stream type.
func ParseStreamType(s string) (StreamType, error) {
	switch StreamType(s) {
	case StreamTypeRTMP, StreamTypeSRT:
		return StreamType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStreamType, s)
	}
}

// URLBundle holds the publish and playback URLs derived for a room.
type URLBundle struct {
	RTMPServer    string `json:"rtmp_server,omitempty"`
	RTMPStreamKey string `json:"rtmp_stream_key,omitempty"`
	HLSPlayer     string `json:"hls_player,omitempty"`
	M3U8URL       string `json:"m3u8_url,omitempty"`
	SRTPublishURL string `json:"srt_publish_url,omitempty"`
}

// IsZero reports whether no URL has been derived.
func (b URLBundle) IsZero() bool {
	return b == URLBundle{}
}

// Environment is the ambient network context URLs are built against.
type Environment struct {
	Host     string `mapstructure:"host"`
	Scheme   string `mapstructure:"scheme"`
	HTTPPort int    `mapstructure:"http_port"`
	RTMPPort int    `mapstructure:"rtmp_port"`
	SRTPort  int    `mapstructure:"srt_port"`
}

// CreateRoomRequest is the body of a create call.
type CreateRoomRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateRoomResponse is the data of a create call.
type CreateRoomResponse struct {
	UUID string `json:"uuid"`
}

// RoomIDRequest is the body of remove and query calls.
type RoomIDRequest struct {
	UUID string `json:"uuid" binding:"required"`
}

// ListRoomsResponse is the data of a list call. Rooms may be null.
type ListRoomsResponse struct {
	Rooms []Room `json:"rooms"`
}
