package hub

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/room"
)

var ErrNoCodeAvailable = errors.New("no free room code")

// maxCodeAttempts bounds collision retries; the code space holds 67600 codes.
const maxCodeAttempts = 1000

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	HostID   string
	HostName string
	Reply    chan CreateResult
}

type CreateResult struct {
	Room *room.Room
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room // nil when unknown
}

// RemoveRoom only removes Code if it still maps to Room.
type RemoveRoom struct {
	Code string
	Room *room.Room
}

type ListRooms struct {
	Reply chan []room.Summary
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ListRooms) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

// Hub is the room registry. Its goroutine is the only owner of the code -> room map,
// so code generation and insertion never race with another creation.
type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*room.Room
	opts    room.Options
	newCode func() (string, error)
	log     *zap.Logger
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, opts room.Options) *Hub {
	return newHub(parent, opts, GenerateCode)
}

func newHub(parent context.Context, opts room.Options, gen func() (string, error)) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		rooms:   make(map[string]*room.Room),
		newCode: gen,
		log:     opts.Logger,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	opts.OnEmpty = func(code string, r *room.Room) {
		h.send(RemoveRoom{Code: code, Room: r})
	}
	h.opts = opts

	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) send(m HubMsg) bool {
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code, err := h.uniqueCode()
				if err != nil {
					h.log.Error("room creation failed", zap.Error(err))
					msg.Reply <- CreateResult{Err: err}
					break
				}
				r := room.New(h.ctx, code, msg.HostID, msg.HostName, h.opts)
				h.rooms[code] = r
				msg.Reply <- CreateResult{Room: r}

			case GetRoom:
				msg.Reply <- h.rooms[NormalizeCode(msg.Code)] // May be nil

			case RemoveRoom:
				if r, ok := h.rooms[msg.Code]; ok && r == msg.Room {
					delete(h.rooms, msg.Code)
					h.log.Info("room removed", zap.String("room", msg.Code), zap.Int("rooms", len(h.rooms)))
				}

			case ListRooms:
				out := make([]room.Summary, 0, len(h.rooms))
				for _, r := range h.rooms {
					out = append(out, r.Summary())
				}
				slices.SortFunc(out, func(a, b room.Summary) int { return strings.Compare(a.Code, b.Code) })
				msg.Reply <- out

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// shutdown cancels the hub first so rooms blocked on RemoveRoom can return, then
// waits for every room goroutine to exit.
func (h *Hub) shutdown() {
	h.cancel()
	for _, r := range h.rooms {
		r.Stop()
	}
	for _, r := range h.rooms {
		<-r.Stopped()
	}
	clear(h.rooms)
}

func (h *Hub) uniqueCode() (string, error) {
	for range maxCodeAttempts {
		code, err := h.newCode()
		if err != nil {
			return "", err
		}
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
		h.log.Debug("collision on code, regenerating", zap.String("code", code))
	}
	return "", ErrNoCodeAvailable
}

// Create registers a new room hosted by hostID.
func (h *Hub) Create(ctx context.Context, hostID, hostName string) (*room.Room, error) {
	reply := make(chan CreateResult, 1)
	if !h.send(CreateRoom{HostID: hostID, HostName: hostName, Reply: reply}) {
		return nil, context.Canceled
	}
	select {
	case res := <-reply:
		return res.Room, res.Err
	case <-h.ctx.Done():
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get resolves code case-insensitively. It returns nil for unknown codes.
func (h *Hub) Get(ctx context.Context, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	if !h.send(GetRoom{Code: code, Reply: reply}) {
		return nil
	}
	select {
	case r := <-reply:
		return r
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (h *Hub) List(ctx context.Context) []room.Summary {
	reply := make(chan []room.Summary, 1)
	if !h.send(ListRooms{Reply: reply}) {
		return nil
	}
	select {
	case out := <-reply:
		return out
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops every room and returns once their goroutines have exited.
func (h *Hub) Shutdown() {
	h.send(ShutdownHub{})
	<-h.done
}
