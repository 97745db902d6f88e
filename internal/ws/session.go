package ws

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/blockroyale-backend/internal/engine"
	"github.com/DoyleJ11/blockroyale-backend/internal/hub"
	"github.com/DoyleJ11/blockroyale-backend/internal/room"
	"github.com/DoyleJ11/blockroyale-backend/internal/types"
)

// session routes one connection's events. It is only used from that connection's
// reader goroutine.
type session struct {
	id   string
	hub  *hub.Hub
	gw   *Gateway
	log  *zap.Logger
	room *room.Room // the room this connection is a member of, if any
}

func (s *session) handle(ctx context.Context, in types.Inbound) {
	switch m := in.(type) {
	case types.CreateRoom:
		r, err := s.hub.Create(ctx, s.id, m.Name)
		if err != nil {
			s.log.Error("create room", zap.Error(err))
			s.gw.Send(s.id, types.Error("could not create room"))
			return
		}
		s.moveTo(r)

	case types.JoinRoom:
		r := s.hub.Get(ctx, m.RoomID)
		if r == nil {
			s.gw.Send(s.id, types.Error(engine.ErrRoomNotFound.Error()))
			return
		}
		err := r.Join(ctx, s.id, m.Name)
		switch {
		case errors.Is(err, engine.ErrRoomNotFound):
			// emptied between lookup and join
			s.gw.Send(s.id, types.Error(err.Error()))
			return
		case err != nil:
			// the room already told the caller
			return
		}
		s.moveTo(r)

	case types.StartGame:
		s.submit(ctx, m.RoomID, engine.Command{Type: engine.CmdStart})

	case types.SendGarbage:
		s.submit(ctx, m.RoomID, engine.Command{Type: engine.CmdAttack, Lines: m.Lines})

	case types.PlayerDied:
		s.submit(ctx, m.RoomID, engine.Command{Type: engine.CmdDied})

	case types.UpdateBoard:
		s.submit(ctx, m.RoomID, engine.Command{Type: engine.CmdBoard, Grid: m.Grid})

	case types.LeaveRoom:
		r := s.hub.Get(ctx, m.RoomID)
		if r == nil {
			return
		}
		r.Leave(s.id)
		if r == s.room {
			s.room = nil
		}
	}
}

// moveTo records r as the current room, leaving the previous one.
func (s *session) moveTo(r *room.Room) {
	if s.room != nil && s.room != r {
		s.room.Leave(s.id)
	}
	s.room = r
}

// submit forwards cmd to the room; unknown rooms are ignored.
func (s *session) submit(ctx context.Context, code string, cmd engine.Command) {
	r := s.hub.Get(ctx, code)
	if r == nil {
		s.log.Debug("event for unknown room", zap.String("room", code), zap.String("cmd", string(cmd.Type)))
		return
	}
	cmd.ConnID = s.id
	r.Submit(cmd)
}

func (s *session) disconnect() {
	if s.room != nil {
		s.room.Leave(s.id)
		s.room = nil
	}
}
