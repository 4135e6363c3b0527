package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/token"
	pkglog "github.com/weiawesome/wes-io-live/liveroom-console/pkg/log"
	"github.com/weiawesome/wes-io-live/liveroom-console/pkg/response"
)

const (
	pathCreate = "/create"
	pathRemove = "/remove"
	pathList   = "/list"
	pathQuery  = "/query"
)

// APIError is returned when the backend answers with a non-2xx status or an
// unsuccessful envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("live room service returned %d %s: %s", e.Status, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("live room service returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("live room service returned status: %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Options configures a RoomClient.
type Options struct {
	BaseURL    string
	PathPrefix string
	Timeout    time.Duration
	Tokens     token.Provider
	Transport  http.RoundTripper
	Logger     zerolog.Logger
}

// RoomClient wraps the live room HTTP API.
type RoomClient struct {
	endpoint   string
	httpClient *http.Client
	tokens     token.Provider
	sf         singleflight.Group
}

// NewRoomClient creates a new live room client. Every call goes through the
// logging transport, which stamps an X-Request-ID.
func NewRoomClient(opts Options) *RoomClient {
	return &RoomClient{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/" + strings.Trim(opts.PathPrefix, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: pkglog.Transport(opts.Logger, opts.Transport),
		},
		tokens: opts.Tokens,
	}
}

// CreateRoom creates a room and returns its uuid.
func (c *RoomClient) CreateRoom(ctx context.Context, title string) (string, error) {
	var data domain.CreateRoomResponse
	if err := c.post(ctx, pathCreate, domain.CreateRoomRequest{Title: title}, &data); err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	if data.UUID == "" {
		return "", errors.New("failed to create room: response carried no uuid")
	}
	return data.UUID, nil
}

// RemoveRoom deletes a room.
func (c *RoomClient) RemoveRoom(ctx context.Context, uuid string) error {
	if err := c.post(ctx, pathRemove, domain.RoomIDRequest{UUID: uuid}, nil); err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}
	return nil
}

// ListRooms returns every room. A null or missing list yields an empty slice.
func (c *RoomClient) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var data domain.ListRoomsResponse
	if err := c.post(ctx, pathList, struct{}{}, &data); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if data.Rooms == nil {
		return []domain.Room{}, nil
	}
	return data.Rooms, nil
}

// QueryRoom fetches one room including its secret. Concurrent queries for
// the same uuid share a single request. The shared request is detached from
// any one caller's cancellation; each caller stops waiting when its own ctx
// is done.
func (c *RoomClient) QueryRoom(ctx context.Context, uuid string) (*domain.Room, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(uuid, func() (interface{}, error) {
		var room domain.Room
		if err := c.post(flightCtx, pathQuery, domain.RoomIDRequest{UUID: uuid}, &room); err != nil {
			return nil, err
		}
		return &room, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to query room: %w", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("failed to query room: %w", res.Err)
	}

	// Callers may mutate their copy.
	room := *res.Val.(*domain.Room)
	return &room, nil
}

func (c *RoomClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		auth, err := c.tokens.Header()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	env, decodeErr := response.Decode(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if decodeErr != nil {
		return decodeErr
	}
	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: "unsuccessful response"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return env.Into(out)
}
