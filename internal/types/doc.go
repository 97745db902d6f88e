// Package types is the websocket wire contract.
//
// Client -> Server (flat JSON objects tagged by "type"):
//
//	create_room:  name
//	join_room:    roomId, name
//	start_game:   roomId
//	send_garbage: roomId, lines
//	player_died:  roomId
//	update_board: roomId, grid (any JSON, relayed untouched)
//	leave_room:   roomId
//
// Server -> Client:
//
//	room_created:     roomId, isHost=true
//	room_joined:      roomId, isHost=false
//	update_lobby:     players (names in join order)
//	game_start:       {}
//	receive_garbage:  amount
//	spectate_mode:    {}
//	game_over:        ranking (winner first)
//	spectator_update: id, name, grid
//	error:            msg
package types
