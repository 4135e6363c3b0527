// Package backendtest runs an in-process live room backend for tests.
package backendtest

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
	"github.com/weiawesome/wes-io-live/liveroom-console/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-live/liveroom-console/pkg/log"
	"github.com/weiawesome/wes-io-live/liveroom-console/pkg/middleware"
	"github.com/weiawesome/wes-io-live/liveroom-console/pkg/response"
)

const PathPrefix = "/terraform/v1/live/room"

// Server is a fake live room backend keeping rooms in memory, in creation order.
type Server struct {
	*httptest.Server

	// Token is a valid bearer token for this server.
	Token string

	mu         sync.Mutex
	rooms      []domain.Room
	calls      map[string]int
	failures   map[string]int
	nullList   bool
	requestIDs []string
}

// New starts a server and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := jwt.NewManager([]byte("backendtest-signing-key"), "backendtest", time.Hour)
	tok, err := tokens.Generate("operator")
	if err != nil {
		t.Fatalf("backendtest: failed to mint token: %v", err)
	}

	s := &Server{
		Token:    tok,
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(pkglog.Nop()))
	r.Use(s.record)

	auth := middleware.NewAuthMiddleware(tokens)
	api := r.Group(PathPrefix, auth.RequireAuth(), s.injectFailure)
	{
		api.POST("/create", s.create)
		api.POST("/remove", s.remove)
		api.POST("/list", s.list)
		api.POST("/query", s.query)
	}

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed inserts rooms as if they had been created earlier.
func (s *Server) Seed(rooms ...domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = append(s.rooms, rooms...)
}

// Rooms returns the stored rooms.
func (s *Server) Rooms() []domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Room(nil), s.rooms...)
}

// Calls returns how many requests reached endpoint ("create", "list", ...).
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// RequestIDs returns the X-Request-ID of every request seen.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// FailNext makes the next request to endpoint answer with status.
func (s *Server) FailNext(endpoint string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = status
}

// ReturnNullList makes list answer {"rooms": null}.
func (s *Server) ReturnNullList(null bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nullList = null
}

func (s *Server) record(c *gin.Context) {
	endpoint := endpointOf(c.Request.URL.Path)
	s.mu.Lock()
	s.calls[endpoint]++
	s.requestIDs = append(s.requestIDs, c.GetHeader("X-Request-ID"))
	s.mu.Unlock()
	c.Next()
}

func (s *Server) injectFailure(c *gin.Context) {
	endpoint := endpointOf(c.Request.URL.Path)
	s.mu.Lock()
	status, ok := s.failures[endpoint]
	delete(s.failures, endpoint)
	s.mu.Unlock()

	if ok {
		response.Error(c, status, "INJECTED", "injected failure")
		return
	}
	c.Next()
}

func (s *Server) create(c *gin.Context) {
	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	room := domain.Room{
		UUID:      uuid.New().String(),
		Title:     req.Title,
		Secret:    strings.ReplaceAll(uuid.New().String(), "-", ""),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.rooms = append(s.rooms, room)
	s.mu.Unlock()

	l := pkglog.Ctx(c.Request.Context())
	l.Debug().
		Str("subject", middleware.GetSubject(c)).
		Str(pkglog.FieldRoomID, room.UUID).
		Msg("room created")

	response.Success(c, domain.CreateRoomResponse{UUID: room.UUID})
}

func (s *Server) remove(c *gin.Context) {
	var req domain.RoomIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, room := range s.rooms {
		if room.UUID == req.UUID {
			s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
			l := pkglog.Ctx(c.Request.Context())
			l.Debug().Str(pkglog.FieldRoomID, req.UUID).Msg("room removed")
			response.Success(c, gin.H{"uuid": req.UUID})
			return
		}
	}
	response.NotFound(c, "room not found")
}

func (s *Server) list(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nullList {
		response.Success(c, gin.H{"rooms": nil})
		return
	}

	rooms := make([]domain.Room, len(s.rooms))
	for i, room := range s.rooms {
		room.Secret = ""
		rooms[i] = room
	}
	response.Success(c, domain.ListRoomsResponse{Rooms: rooms})
}

func (s *Server) query(c *gin.Context) {
	var req domain.RoomIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.UUID == req.UUID {
			response.Success(c, room)
			return
		}
	}
	response.NotFound(c, "room not found")
}

func endpointOf(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
