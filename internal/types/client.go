package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrBadJSON = errors.New("bad json")
var ErrUnknownType = errors.New("unknown type")

const (
	TypeCreateRoom  = "create_room"
	TypeJoinRoom    = "join_room"
	TypeStartGame   = "start_game"
	TypeSendGarbage = "send_garbage"
	TypePlayerDied  = "player_died"
	TypeUpdateBoard = "update_board"
	TypeLeaveRoom   = "leave_room"
)

// ClientMessage is the raw frame as sent by the browser.
type ClientMessage struct {
	Type   string          `json:"type"`
	RoomID string          `json:"roomId,omitempty"`
	Name   string          `json:"name,omitempty"`
	Lines  int             `json:"lines,omitempty"`
	Grid   json.RawMessage `json:"grid,omitempty"`
}

// Inbound is one validated client event.
type Inbound interface{ isInbound() }

type CreateRoom struct {
	Name string
}

// JoinRoom carries the code as typed; unknown codes are answered by the registry.
type JoinRoom struct {
	RoomID string
	Name   string
}

type StartGame struct {
	RoomID string `validate:"required"`
}

type SendGarbage struct {
	RoomID string `validate:"required"`
	Lines  int    `validate:"gte=0"`
}

type PlayerDied struct {
	RoomID string `validate:"required"`
}

type UpdateBoard struct {
	RoomID string          `validate:"required"`
	Grid   json.RawMessage `validate:"required"`
}

type LeaveRoom struct {
	RoomID string `validate:"required"`
}

func (CreateRoom) isInbound()  {}
func (JoinRoom) isInbound()    {}
func (StartGame) isInbound()   {}
func (SendGarbage) isInbound() {}
func (PlayerDied) isInbound()  {}
func (UpdateBoard) isInbound() {}
func (LeaveRoom) isInbound()   {}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses and validates a single client frame.
func Decode(data []byte) (Inbound, error) {
	var cm ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}

	var in Inbound
	switch cm.Type {
	case TypeCreateRoom:
		in = CreateRoom{Name: cm.Name}
	case TypeJoinRoom:
		in = JoinRoom{RoomID: cm.RoomID, Name: cm.Name}
	case TypeStartGame:
		in = StartGame{RoomID: cm.RoomID}
	case TypeSendGarbage:
		in = SendGarbage{RoomID: cm.RoomID, Lines: cm.Lines}
	case TypePlayerDied:
		in = PlayerDied{RoomID: cm.RoomID}
	case TypeUpdateBoard:
		in = UpdateBoard{RoomID: cm.RoomID, Grid: cm.Grid}
	case TypeLeaveRoom:
		in = LeaveRoom{RoomID: cm.RoomID}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cm.Type)
	}

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", cm.Type, err)
	}
	return in, nil
}
