package room

import (
	"github.com/DoyleJ11/blockroyale-backend/internal/engine"
	"github.com/DoyleJ11/blockroyale-backend/internal/types"
)

// Gateway is the transport the room talks through. Sends are fire-and-forget.
type Gateway interface {
	Send(connID string, msg types.ServerMessage)
	Broadcast(group string, msg types.ServerMessage)
	JoinGroup(connID, group string)
	LeaveGroup(connID, group string)
}

type Msg interface{ isRoomMsg() }

type Join struct {
	ConnID string
	Name   string
	Reply  chan error // nil on success
}

func (Join) isRoomMsg() {}

// Leave covers both an explicit leave and a dropped connection.
type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type View struct {
	State engine.State
}

// Summary is the lock-free public view used for room listings.
type Summary struct {
	Code    string        `json:"code"`
	Status  engine.Status `json:"status"`
	Players []string      `json:"players"`
}
