package engine

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
)

// Advisory errors are reported back to the caller. Everything else is a silent no-op.
var ErrRoomNotFound = errors.New("room not found")
var ErrGameInProgress = errors.New("game already in progress")
var ErrRoomFull = errors.New("room is full")

var ErrNotHost = errors.New("only the host can start the game")
var ErrNotInRoom = errors.New("connection is not in this room")
var ErrWrongStatus = errors.New("command not allowed in current status")
var ErrAlreadyDead = errors.New("player already eliminated")
var ErrUnsupportedCommand = errors.New("unsupported command")

// MaxPlayers caps the roster while the room is waiting.
const MaxPlayers = 10

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
)

type PlayerState struct {
	Name  string
	Alive bool
}

type State struct {
	Code       string
	Host       string
	Status     Status
	Players    map[string]*PlayerState
	Order      []string // connection ids in join order
	DeathOrder []string // names, earliest eliminated first
}

type CommandType string

const (
	CmdJoin   CommandType = "Join"
	CmdLeave  CommandType = "Leave"
	CmdStart  CommandType = "Start"
	CmdAttack CommandType = "Attack"
	CmdDied   CommandType = "Died"
	CmdBoard  CommandType = "Board"
)

/*
	CmdJoin   -> EvtPlayerJoined -> EvtRosterChanged
	CmdLeave  -> EvtPlayerLeft -> EvtRosterChanged | EvtRoomEmpty
	CmdStart  -> EvtGameStarted
	CmdAttack -> EvtGarbageSent (nothing when the amount is 0 or no one is left to hit)
	CmdDied   -> EvtSpectating -> EvtGameOver (when at most one player is still alive)
	CmdBoard  -> EvtBoardUpdated
*/

type Command struct {
	Type   CommandType
	ConnID string
	Name   string
	Lines  int
	Grid   json.RawMessage
}

type EventType string

const (
	EvtPlayerJoined  EventType = "PlayerJoined"
	EvtPlayerLeft    EventType = "PlayerLeft"
	EvtRosterChanged EventType = "RosterChanged"
	EvtRoomEmpty     EventType = "RoomEmpty"
	EvtGameStarted   EventType = "GameStarted"
	EvtGarbageSent   EventType = "GarbageSent"
	EvtSpectating    EventType = "Spectating"
	EvtGameOver      EventType = "GameOver"
	EvtBoardUpdated  EventType = "BoardUpdated"
)

type Event struct {
	Type   EventType
	ConnID string // subject of the event; for EvtGarbageSent the target
	Name   string
	Host   bool
	Amount int
	Names  []string // roster or ranking
	Grid   json.RawMessage
}

// Create builds the initial state of a room whose only player is its host.
func Create(code, hostID, hostName string) ([]Event, State) {
	s := NewState(code, hostID)
	s.Players[hostID] = &PlayerState{Name: hostName, Alive: true}
	s.Order = append(s.Order, hostID)

	events := []Event{
		{Type: EvtPlayerJoined, ConnID: hostID, Name: hostName, Host: true},
		{Type: EvtRosterChanged, Names: s.Roster()},
	}
	return events, s
}

// Apply validates cmd against s and returns the resulting events and state.
// On error the returned state is s untouched.
func Apply(s State, cmd Command, rng *rand.Rand) ([]Event, State, error) {
	switch cmd.Type {
	case CmdJoin:
		if s.Status != StatusWaiting {
			return nil, s, ErrGameInProgress
		}
		if len(s.Players) >= MaxPlayers {
			return nil, s, ErrRoomFull
		}
		newState := s.Clone()
		if _, ok := newState.Players[cmd.ConnID]; !ok {
			newState.Order = append(newState.Order, cmd.ConnID)
		}
		newState.Players[cmd.ConnID] = &PlayerState{Name: cmd.Name, Alive: true}

		events := []Event{
			{Type: EvtPlayerJoined, ConnID: cmd.ConnID, Name: cmd.Name},
			{Type: EvtRosterChanged, Names: newState.Roster()},
		}
		return events, newState, nil

	case CmdLeave:
		if _, ok := s.Players[cmd.ConnID]; !ok {
			return nil, s, ErrNotInRoom
		}
		newState := s.Clone()
		delete(newState.Players, cmd.ConnID)
		newState.Order = removeID(newState.Order, cmd.ConnID)

		events := []Event{{Type: EvtPlayerLeft, ConnID: cmd.ConnID}}
		if len(newState.Players) == 0 {
			events = append(events, Event{Type: EvtRoomEmpty})
		} else {
			events = append(events, Event{Type: EvtRosterChanged, Names: newState.Roster()})
		}
		return events, newState, nil

	case CmdStart:
		if cmd.ConnID != s.Host {
			return nil, s, ErrNotHost
		}
		if s.Status != StatusWaiting {
			return nil, s, ErrWrongStatus
		}
		newState := s.Clone()
		newState.Status = StatusPlaying
		newState.DeathOrder = []string{}
		for _, p := range newState.Players {
			p.Alive = true
		}
		return []Event{{Type: EvtGameStarted}}, newState, nil

	case CmdAttack:
		// not gated on status: garbage sent from the lobby still reaches a living opponent
		if _, ok := s.Players[cmd.ConnID]; !ok {
			return nil, s, ErrNotInRoom
		}
		amount := GarbageFor(cmd.Lines)
		if amount == 0 {
			return nil, s, nil
		}
		target, ok := SelectTarget(s, cmd.ConnID, rng)
		if !ok {
			return nil, s, nil
		}
		return []Event{{Type: EvtGarbageSent, ConnID: target, Amount: amount}}, s, nil

	case CmdDied:
		if s.Status != StatusPlaying {
			return nil, s, ErrWrongStatus
		}
		p, ok := s.Players[cmd.ConnID]
		if !ok {
			return nil, s, ErrNotInRoom
		}
		if !p.Alive {
			return nil, s, ErrAlreadyDead
		}
		newState := s.Clone()
		RecordDeath(&newState, cmd.ConnID)

		events := []Event{{Type: EvtSpectating, ConnID: cmd.ConnID}}
		if ranking, ended := CheckGameEnd(&newState); ended {
			events = append(events, Event{Type: EvtGameOver, Names: ranking})
		}
		return events, newState, nil

	case CmdBoard:
		p, ok := s.Players[cmd.ConnID]
		if !ok {
			return nil, s, ErrNotInRoom
		}
		return []Event{{Type: EvtBoardUpdated, ConnID: cmd.ConnID, Name: p.Name, Grid: cmd.Grid}}, s, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}
