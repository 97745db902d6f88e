package room

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/engine"
	"github.com/DoyleJ11/blockroyale-backend/internal/results"
	"github.com/DoyleJ11/blockroyale-backend/internal/types"
)

const recordTimeout = 5 * time.Second

type Options struct {
	Gateway  Gateway
	Logger   *zap.Logger
	Recorder results.Recorder // optional
	Rand     *rand.Rand       // optional, used for target selection

	// Pending, when set, counts result writes still in flight.
	Pending *sync.WaitGroup

	// OnEmpty is called from the room goroutine once the last player has left.
	OnEmpty func(code string, r *Room)
}

// Room owns one engine.State. Every mutation runs on the room goroutine, so
// commands from different players never interleave.
type Room struct {
	code    string
	inbox   chan Msg
	state   engine.State
	gw      Gateway
	log     *zap.Logger
	rec     results.Recorder
	rng     *rand.Rand
	pending *sync.WaitGroup
	onEmpty func(string, *Room)
	summary atomic.Pointer[Summary]
	stopped chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates the room with its founder as host and starts its loop.
func New(parent context.Context, code, hostID, hostName string, opts Options) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		gw:      opts.Gateway,
		log:     opts.Logger,
		rec:     opts.Recorder,
		rng:     opts.Rand,
		pending: opts.Pending,
		onEmpty: opts.OnEmpty,
		stopped: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	r.log = r.log.With(zap.String("room", code))
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	events, state := engine.Create(code, hostID, hostName)
	r.state = state
	r.publish()
	r.emit(events)
	r.log.Info("room created", zap.String("host", hostID))

	go r.loop()
	return r
}

func (r *Room) loop() {
	defer close(r.stopped)
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- r.apply(engine.Command{Type: engine.CmdJoin, ConnID: msg.ConnID, Name: msg.Name})

			case Leave:
				_ = r.apply(engine.Command{Type: engine.CmdLeave, ConnID: msg.ConnID})

			case FromClient:
				_ = r.apply(msg.Cmd)

			case GetState:
				// a clone, so the caller never shares maps with the loop
				msg.Reply <- View{State: r.state.Clone()}

			case Shutdown:
				r.cancel()
				return
			}

			if r.ctx.Err() != nil {
				return
			}
		}
	}
}

func (r *Room) apply(cmd engine.Command) error {
	events, next, err := engine.Apply(r.state, cmd, r.rng)
	if err != nil {
		if isAdvisory(err) {
			r.gw.Send(cmd.ConnID, types.Error(err.Error()))
		} else {
			r.log.Debug("command ignored",
				zap.String("cmd", string(cmd.Type)),
				zap.String("conn", cmd.ConnID),
				zap.Error(err),
			)
		}
		return err
	}

	r.state = next
	r.publish()
	r.emit(events)
	return nil
}

func isAdvisory(err error) bool {
	return errors.Is(err, engine.ErrRoomFull) ||
		errors.Is(err, engine.ErrGameInProgress) ||
		errors.Is(err, engine.ErrRoomNotFound)
}

func (r *Room) emit(events []engine.Event) {
	for _, e := range events {
		switch e.Type {
		case engine.EvtPlayerJoined:
			r.gw.JoinGroup(e.ConnID, r.code)
			if e.Host {
				r.gw.Send(e.ConnID, types.RoomCreated(r.code))
			} else {
				r.gw.Send(e.ConnID, types.RoomJoined(r.code))
			}

		case engine.EvtPlayerLeft:
			r.gw.LeaveGroup(e.ConnID, r.code)

		case engine.EvtRosterChanged:
			r.gw.Broadcast(r.code, types.Roster(e.Names))

		case engine.EvtRoomEmpty:
			r.log.Info("room empty, closing")
			if r.onEmpty != nil {
				r.onEmpty(r.code, r)
			}
			r.cancel()

		case engine.EvtGameStarted:
			r.log.Info("game started", zap.Int("players", len(r.state.Players)))
			r.gw.Broadcast(r.code, types.GameStart())

		case engine.EvtGarbageSent:
			r.gw.Send(e.ConnID, types.ReceiveGarbage(e.Amount))

		case engine.EvtSpectating:
			r.gw.Send(e.ConnID, types.SpectateMode())

		case engine.EvtGameOver:
			r.log.Info("game over", zap.Strings("ranking", e.Names))
			r.gw.Broadcast(r.code, types.GameOver(e.Names))
			r.record(e.Names)

		case engine.EvtBoardUpdated:
			r.gw.Broadcast(r.code, types.SpectatorUpdate(e.ConnID, e.Name, e.Grid))
		}
	}
}

func (r *Room) record(ranking []string) {
	if r.rec == nil {
		return
	}
	m := results.Match{Code: r.code, Ranking: slices.Clone(ranking), FinishedAt: time.Now().UTC()}
	rec, log, pending := r.rec, r.log, r.pending
	if pending != nil {
		pending.Add(1)
	}
	go func() {
		if pending != nil {
			defer pending.Done()
		}
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := rec.Record(ctx, m); err != nil {
			log.Warn("failed to record match", zap.Error(err))
		}
	}()
}

func (r *Room) publish() {
	r.summary.Store(&Summary{Code: r.code, Status: r.state.Status, Players: r.state.Roster()})
}

func (r *Room) Code() string { return r.code }

// Summary returns the state as of the last applied command.
func (r *Room) Summary() Summary { return *r.summary.Load() }

// Done is closed once the room stopped, either emptied or shut down.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Stopped closes once the room goroutine has returned.
func (r *Room) Stopped() <-chan struct{} { return r.stopped }

// Send delivers m unless the room has already stopped.
func (r *Room) Send(m Msg) bool {
	select {
	case r.inbox <- m:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// Join adds connID to the roster. A stopped room reports engine.ErrRoomNotFound.
func (r *Room) Join(ctx context.Context, connID, name string) error {
	reply := make(chan error, 1)
	if !r.Send(Join{ConnID: connID, Name: name, Reply: reply}) {
		return engine.ErrRoomNotFound
	}
	select {
	case err := <-reply:
		return err
	case <-r.ctx.Done():
		return engine.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) Leave(connID string) { r.Send(Leave{ConnID: connID}) }

func (r *Room) Submit(cmd engine.Command) bool { return r.Send(FromClient{Cmd: cmd}) }

func (r *Room) State(ctx context.Context) (engine.State, error) {
	reply := make(chan View, 1)
	if !r.Send(GetState{Reply: reply}) {
		return engine.State{}, engine.ErrRoomNotFound
	}
	select {
	case v := <-reply:
		return v.State, nil
	case <-r.ctx.Done():
		return engine.State{}, engine.ErrRoomNotFound
	case <-ctx.Done():
		return engine.State{}, ctx.Err()
	}
}

// Stop ends the room loop without touching the roster.
func (r *Room) Stop() { r.cancel() }
