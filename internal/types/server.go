package types

import "encoding/json"

const (
	TypeRoomCreated     = "room_created"
	TypeRoomJoined      = "room_joined"
	TypeUpdateLobby     = "update_lobby"
	TypeGameStart       = "game_start"
	TypeReceiveGarbage  = "receive_garbage"
	TypeSpectateMode    = "spectate_mode"
	TypeGameOver        = "game_over"
	TypeSpectatorUpdate = "spectator_update"
	TypeError           = "error"
)

type ServerMessage struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	IsHost  *bool           `json:"isHost,omitempty"`
	Players []string        `json:"players,omitempty"`
	Amount  int             `json:"amount,omitempty"`
	Ranking []string        `json:"ranking,omitempty"`
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Grid    json.RawMessage `json:"grid,omitempty"`
	Msg     string          `json:"msg,omitempty"`
}

func RoomCreated(code string) ServerMessage {
	host := true
	return ServerMessage{Type: TypeRoomCreated, RoomID: code, IsHost: &host}
}

func RoomJoined(code string) ServerMessage {
	host := false
	return ServerMessage{Type: TypeRoomJoined, RoomID: code, IsHost: &host}
}

func Roster(names []string) ServerMessage {
	return ServerMessage{Type: TypeUpdateLobby, Players: names}
}

func GameStart() ServerMessage { return ServerMessage{Type: TypeGameStart} }

func ReceiveGarbage(amount int) ServerMessage {
	return ServerMessage{Type: TypeReceiveGarbage, Amount: amount}
}

func SpectateMode() ServerMessage { return ServerMessage{Type: TypeSpectateMode} }

func GameOver(ranking []string) ServerMessage {
	return ServerMessage{Type: TypeGameOver, Ranking: ranking}
}

func SpectatorUpdate(id, name string, grid json.RawMessage) ServerMessage {
	return ServerMessage{Type: TypeSpectatorUpdate, ID: id, Name: name, Grid: grid}
}

func Error(msg string) ServerMessage {
	return ServerMessage{Type: TypeError, Msg: msg}
}
