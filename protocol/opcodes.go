// Package protocol implements the DENTCP framed-line wire protocol: pure
// encode/decode over byte slices, with no socket I/O of its own.
package protocol

// OpCode is the closed set of operation codes carried in a frame's OP
// field. Unknown values are a protocol violation, not an application
// error.
type OpCode int

const (
	Login     OpCode = 1
	LoginOk   OpCode = 2
	LoginFail OpCode = 3

	CreateRoom  OpCode = 4
	JoinRoom    OpCode = 5
	RoomJoined  OpCode = 6
	RoomFull    OpCode = 7
	RoomFail    OpCode = 8
	RoomCreated OpCode = 20
	LeaveRoom   OpCode = 14
	RoomLeft    OpCode = 15
	ListRooms   OpCode = 18
	RoomsList   OpCode = 19

	GameStart   OpCode = 9
	Move        OpCode = 10
	MultiMove   OpCode = 21
	InvalidMove OpCode = 11
	GameState   OpCode = 12
	GameEnd     OpCode = 13
	GamePaused  OpCode = 28
	GameResumed OpCode = 29

	Ping OpCode = 16
	Pong OpCode = 17

	PlayerDisconnected  OpCode = 22
	PlayerReconnecting  OpCode = 23
	PlayerReconnected   OpCode = 24
	ReconnectRequest    OpCode = 25
	ReconnectOk         OpCode = 26
	ReconnectFail       OpCode = 27

	Error OpCode = 500
)

// validOpcodes is the closed set accepted by Decode. Built once so
// IsValidOpcode is O(1).
var validOpcodes = map[OpCode]bool{
	Login: true, LoginOk: true, LoginFail: true,
	CreateRoom: true, JoinRoom: true, RoomJoined: true, RoomFull: true,
	RoomFail: true, RoomCreated: true, LeaveRoom: true, RoomLeft: true,
	ListRooms: true, RoomsList: true,
	GameStart: true, Move: true, MultiMove: true, InvalidMove: true,
	GameState: true, GameEnd: true, GamePaused: true, GameResumed: true,
	Ping: true, Pong: true,
	PlayerDisconnected: true, PlayerReconnecting: true, PlayerReconnected: true,
	ReconnectRequest: true, ReconnectOk: true, ReconnectFail: true,
	Error: true,
}

// IsValidOpcode reports whether op is in the closed protocol set.
func IsValidOpcode(op OpCode) bool {
	return validOpcodes[op]
}
