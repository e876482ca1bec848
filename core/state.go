package core

import "checkers-tcp-server/protocol"

// GameState is the per-session lifecycle phase that governs which
// opcodes the connection may send (spec.md §4.2).
type GameState int

const (
	NotLoggedIn GameState = iota
	InLobby
	InRoomWaiting
	InGame
)

func (g GameState) String() string {
	switch g {
	case NotLoggedIn:
		return "NotLoggedIn"
	case InLobby:
		return "InLobby"
	case InRoomWaiting:
		return "InRoomWaiting"
	case InGame:
		return "InGame"
	default:
		return "Unknown"
	}
}

// ConnState tracks transport liveness, orthogonal to GameState.
type ConnState int

const (
	Connected ConnState = iota
	Disconnected
	Reconnecting
	Timeout
	Removed
)

func (c ConnState) String() string {
	switch c {
	case Connected:
		return "Connected"
	case Disconnected:
		return "Disconnected"
	case Reconnecting:
		return "Reconnecting"
	case Timeout:
		return "Timeout"
	case Removed:
		return "Removed"
	default:
		return "Unknown"
	}
}

// RoomState is a room's visible lifecycle phase (spec.md §3/§4.4).
type RoomState int

const (
	Waiting RoomState = iota
	Active
	Paused
	Finished
)

func (r RoomState) String() string {
	switch r {
	case Waiting:
		return "Waiting"
	case Active:
		return "Active"
	case Paused:
		return "Paused"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// whitelist is the per-state set of legal inbound opcodes, exactly the
// table in spec.md §4.2.
var whitelist = map[GameState]map[protocol.OpCode]bool{
	NotLoggedIn: set(protocol.Login, protocol.Ping, protocol.Pong, protocol.ReconnectRequest, protocol.Error),
	InLobby: set(protocol.CreateRoom, protocol.JoinRoom, protocol.ListRooms, protocol.Ping, protocol.Pong,
		protocol.ReconnectRequest, protocol.Error),
	InRoomWaiting: set(protocol.LeaveRoom, protocol.JoinRoom, protocol.ListRooms, protocol.Ping, protocol.Pong,
		protocol.ReconnectRequest, protocol.Error),
	InGame: set(protocol.Move, protocol.MultiMove, protocol.LeaveRoom, protocol.ListRooms, protocol.Ping,
		protocol.Pong, protocol.ReconnectRequest, protocol.Error),
}

func set(ops ...protocol.OpCode) map[protocol.OpCode]bool {
	m := make(map[protocol.OpCode]bool, len(ops))
	for _, op := range ops {
		m[op] = true
	}
	return m
}

// IsAllowed reports whether op may be received while in state g.
func IsAllowed(g GameState, op protocol.OpCode) bool {
	allowed, ok := whitelist[g]
	if !ok {
		return false
	}
	return allowed[op]
}
