package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/clipboard"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/nav"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/notify"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/urlbuilder"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/view"
	pkglog "github.com/weiawesome/wes-io-live/liveroom-console/pkg/log"
)

// Options wires the console to its collaborators.
type Options struct {
	API          view.RoomAPI
	Builder      urlbuilder.Builder
	Clipboard    clipboard.Service
	Environment  domain.Environment
	PollInterval time.Duration
	DefaultTitle string
	Language     string
	Out          io.Writer
	Logger       zerolog.Logger
}

// Console runs the live room screens on a line-oriented terminal.
//
// One goroutine (Run) owns the active view and all rendering. Network calls
// run on their own goroutines and report back through events.
type Console struct {
	opts     Options
	out      *syncWriter
	logger   zerolog.Logger
	nav      *nav.Store
	selector *view.Selector
	notifier notify.Notifier

	events chan event

	route      view.Route
	viewCtx    context.Context
	viewCancel context.CancelFunc
	list       *view.RoomList
	detail     *view.RoomDetail
	pending    *view.DeleteConfirmation
}

type event struct {
	owner interface{}
	err   error
	// render redraws the owner view after the event.
	render bool
}

// New creates a console. Nothing runs until Run.
func New(opts Options) *Console {
	out := &syncWriter{w: opts.Out}
	if opts.Out == nil {
		out.w = io.Discard
	}

	store := nav.NewStore()
	return &Console{
		opts:     opts,
		out:      out,
		logger:   opts.Logger,
		nav:      store,
		selector: view.NewSelector(store, opts.Logger),
		notifier: notify.NewWriter(out, opts.Logger),
		events:   make(chan event, 16),
	}
}

// Nav exposes the navigation store, mostly for tests and embedding.
func (c *Console) Nav() *nav.Store {
	return c.nav
}

// Run processes commands from in until EOF, "quit" or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	navCh, unsubscribe := c.nav.Subscribe()
	defer unsubscribe()

	view.RenderIntro(c.out, c.opts.Language)
	c.activate(ctx)
	defer c.deactivate()

	for {
		var listChanges <-chan struct{}
		if c.list != nil {
			listChanges = c.list.Changes()
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.handle(line); quit {
				return nil
			}
		case <-navCh:
			c.deactivate()
			c.activate(ctx)
		case <-listChanges:
			c.render()
		case ev := <-c.events:
			if !c.owns(ev.owner) {
				continue
			}
			c.surface(ev.err)
			if ev.render {
				c.render()
			}
		}
	}
}

func (c *Console) activate(ctx context.Context) {
	c.route = c.selector.Route()
	c.viewCtx, c.viewCancel = context.WithCancel(ctx)

	c.logger.Debug().Str(pkglog.FieldView, c.route.Kind.String()).Str(pkglog.FieldRoomID, c.route.RoomID).Msg("activating view")

	switch c.route.Kind {
	case view.RouteDetail:
		d := view.NewRoomDetail(view.DetailOptions{
			API:         c.opts.API,
			Nav:         c.nav,
			Builder:     c.opts.Builder,
			Environment: c.opts.Environment,
			Clipboard:   c.opts.Clipboard,
			Notifier:    c.notifier,
			Logger:      c.logger,
		})
		c.detail = d
		roomID := c.route.RoomID
		c.async(d, true, func(ctx context.Context) error {
			return d.Load(ctx, roomID)
		})
	default:
		var l *view.RoomList
		viewCtx := c.viewCtx
		l = view.NewRoomList(view.ListOptions{
			API:          c.opts.API,
			Nav:          c.nav,
			PollInterval: c.opts.PollInterval,
			DefaultTitle: c.opts.DefaultTitle,
			OnError: func(err error) {
				c.post(viewCtx, l, err, false)
			},
			Logger: c.logger,
		})
		c.list = l
		l.Start(c.viewCtx)
	}

	c.render()
}

func (c *Console) deactivate() {
	if c.viewCancel != nil {
		c.viewCancel()
	}
	if c.list != nil {
		c.list.Stop()
	}
	c.list = nil
	c.detail = nil
	c.pending = nil
}

func (c *Console) owns(owner interface{}) bool {
	switch o := owner.(type) {
	case *view.RoomList:
		return o == c.list
	case *view.RoomDetail:
		return o == c.detail
	default:
		return true
	}
}

// async runs fn off the loop goroutine under the active view's context.
func (c *Console) async(owner interface{}, render bool, fn func(ctx context.Context) error) {
	ctx := c.viewCtx
	go func() {
		c.post(ctx, owner, fn(ctx), render)
	}()
}

// post hands a result to the loop. Results of a torn-down view are dropped.
func (c *Console) post(ctx context.Context, owner interface{}, err error, render bool) {
	select {
	case c.events <- event{owner: owner, err: err, render: render}:
	case <-ctx.Done():
	}
}

// surface is the error boundary: it reports and never stops the loop.
func (c *Console) surface(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	c.logger.Error().Err(err).Str(pkglog.FieldView, c.route.Kind.String()).Msg("operation failed")
	fmt.Fprintf(c.out, "error: %v\n", err)
}

func (c *Console) render() {
	switch {
	case c.detail != nil:
		view.RenderDetail(c.out, c.detail.Snapshot())
	case c.list != nil:
		view.RenderList(c.out, c.list.Title(), c.list.Rooms())
	}
}

func (c *Console) handle(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(cmd)
	arg = strings.TrimSpace(arg)

	c.logger.Debug().Str(pkglog.FieldCommand, cmd).Msg("command")

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		c.help()
		return false
	}

	var handled bool
	if c.list != nil {
		handled = c.handleList(cmd, arg)
	} else if c.detail != nil {
		handled = c.handleDetail(cmd, arg)
	}
	if !handled {
		fmt.Fprintf(c.out, "unknown command %q, type 'help'\n", cmd)
	}
	return false
}

func (c *Console) handleList(cmd, arg string) bool {
	l := c.list

	switch cmd {
	case "title":
		l.SetTitle(arg)
		c.render()
	case "create":
		if arg != "" {
			l.SetTitle(arg)
		}
		c.async(l, false, func(ctx context.Context) error {
			_, err := l.Create(ctx)
			return err
		})
	case "refresh":
		l.RefreshNow()
	case "manage":
		room, ok := c.resolveRoom(arg)
		if !ok {
			fmt.Fprintf(c.out, "no such room %q\n", arg)
			return true
		}
		l.Manage(room)
	case "delete":
		room, ok := c.resolveRoom(arg)
		if !ok {
			fmt.Fprintf(c.out, "no such room %q\n", arg)
			return true
		}
		if c.pending != nil {
			c.pending.Cancel()
		}
		c.pending = l.PrepareDelete(room.UUID)
		fmt.Fprintf(c.out, "Delete room %s (%s)? Type 'yes' to confirm or 'no' to cancel.\n", room.UUID, room.Title)
	case "yes":
		if c.pending == nil {
			fmt.Fprintln(c.out, "nothing to confirm")
			return true
		}
		p := c.pending
		c.pending = nil
		c.async(l, false, p.Confirm)
	case "no":
		if c.pending != nil {
			c.pending.Cancel()
			c.pending = nil
			fmt.Fprintln(c.out, "delete cancelled")
		}
	default:
		return false
	}
	return true
}

func (c *Console) handleDetail(cmd, arg string) bool {
	d := c.detail

	switch cmd {
	case "rtmp", "srt":
		if err := d.SwitchStreamType(cmd); err != nil {
			c.surface(err)
			return true
		}
		c.render()
	case "copy":
		text, ok := d.FieldValue(view.Field(strings.ToLower(arg)))
		if !ok {
			fmt.Fprintln(c.out, "usage: copy <server|key|m3u8|srt>")
			return true
		}
		c.async(d, false, func(ctx context.Context) error {
			d.CopyToClipboard(ctx, text)
			return nil
		})
	case "reload":
		roomID := c.route.RoomID
		c.async(d, true, func(ctx context.Context) error {
			return d.Load(ctx, roomID)
		})
	case "back":
		d.Back()
	default:
		return false
	}
	return true
}

// resolveRoom accepts a uuid or a row index. Unknown uuids are passed
// through so the backend has the final word.
func (c *Console) resolveRoom(ref string) (domain.Room, bool) {
	if ref == "" {
		return domain.Room{}, false
	}
	rooms := c.list.Rooms()
	ref = strings.TrimPrefix(ref, "#")
	if i, err := strconv.Atoi(ref); err == nil {
		if i < 0 || i >= len(rooms) {
			return domain.Room{}, false
		}
		return rooms[i], true
	}
	for _, room := range rooms {
		if room.UUID == ref {
			return room, true
		}
	}
	return domain.Room{UUID: ref}, true
}

func (c *Console) help() {
	fmt.Fprintln(c.out, "Room list: title <text> | create [title] | delete <uuid|#> | yes | no | manage <uuid|#> | refresh")
	fmt.Fprintln(c.out, "Room detail: rtmp | srt | copy <server|key|m3u8|srt> | reload | back")
	fmt.Fprintln(c.out, "Anywhere: help | quit")
}

// syncWriter serialises writes from the loop and from notifier callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
