package core

import (
	"sync"
	"time"

	"checkers-tcp-server/game"
	"checkers-tcp-server/protocol"
	"checkers-tcp-server/util"
)

// Room is the server-side record of a two-seat game instance (spec.md
// §3/§4.4).
type Room struct {
	Name         string
	Owner        string
	Player1      string
	Player2      string
	PlayersCount int

	Game        *game.State
	GameStarted bool

	State               RoomState
	PausedAt            time.Time
	DisconnectedPlayer  string
	WaitingForReconnect bool

	slotIdx int
	mu      sync.Mutex
}

// JoinResult is the closed set of join() outcomes spec.md §4.4 names.
type JoinResult int

const (
	JoinOk                   JoinResult = 0
	JoinRoomNotFound         JoinResult = -1
	JoinRoomFull             JoinResult = -2
	JoinAlreadyInThisRoom    JoinResult = -3
	JoinAlreadyInAnotherRoom JoinResult = -4
	JoinClientNotFound       JoinResult = -5
)

// NewRoom creates a room with creator recorded as owner but not seated
// (spec.md §4.4: create does not auto-join).
func NewRoom(name, creator string, slotIdx int) *Room {
	return &Room{
		Name:    name,
		Owner:   creator,
		State:   Waiting,
		slotIdx: slotIdx,
	}
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// Join seats player in the first free slot. Caller holds r's lock.
// When the second seat fills, the game is initialized and the room
// transitions to Active. sessions resolves the full closed set of
// join() outcomes spec.md §4.4 names (original_source/Server/server.c
// join_room, lines 965-1037): a name with no logged-in session cannot
// be seated, and a session already seated in a different room cannot
// be double-seated here.
func (r *Room) Join(sessions *SessionRegistry, player string) JoinResult {
	playerSess := sessions.FindByID(player)
	if playerSess == nil {
		return JoinClientNotFound
	}
	if r.Player1 == player || r.Player2 == player {
		return JoinAlreadyInThisRoom
	}

	playerSess.mu.Lock()
	currentRoom := playerSess.CurrentRoom
	playerSess.mu.Unlock()
	if currentRoom != "" && currentRoom != r.Name {
		return JoinAlreadyInAnotherRoom
	}

	if r.PlayersCount >= 2 {
		return JoinRoomFull
	}
	if r.Player1 == "" {
		r.Player1 = player
	} else {
		r.Player2 = player
	}
	r.PlayersCount++

	if r.PlayersCount == 2 {
		r.Game = game.InitGame(r.Player1, r.Player2)
		r.GameStarted = true
		r.State = Active
	}
	return JoinOk
}

// Broadcast sends a frame to both seated players.
func (r *Room) Broadcast(sessions *SessionRegistry, op protocol.OpCode, data string) {
	for _, id := range []string{r.Player1, r.Player2} {
		if id == "" {
			continue
		}
		if s := sessions.FindByID(id); s != nil {
			s.Send(op, data)
		}
	}
}

// SendTo sends a frame to one named player if seated.
func (r *Room) SendTo(sessions *SessionRegistry, player string, op protocol.OpCode, data string) {
	if player != r.Player1 && player != r.Player2 {
		return
	}
	if s := sessions.FindByID(player); s != nil {
		s.Send(op, data)
	}
}

// Opponent returns the other seated player's id, or "" if player is
// not seated or has no opponent.
func (r *Room) Opponent(player string) string {
	switch player {
	case r.Player1:
		return r.Player2
	case r.Player2:
		return r.Player1
	default:
		return ""
	}
}

// Pause transitions Active -> Paused, recording who disconnected.
func (r *Room) Pause(who string) {
	if r.State != Active {
		return
	}
	r.State = Paused
	r.PausedAt = time.Now()
	r.DisconnectedPlayer = who
	r.WaitingForReconnect = true
}

// Resume transitions Paused -> Active.
func (r *Room) Resume() {
	if r.State != Paused {
		return
	}
	r.State = Active
	r.DisconnectedPlayer = ""
	r.WaitingForReconnect = false
}

// Finish transitions any state -> Finished.
func (r *Room) Finish(reason string) {
	r.State = Finished
	if r.Game != nil {
		r.Game.Active = false
	}
	util.Info("Room", "room=%s finished reason=%s", r.Name, reason)
}
