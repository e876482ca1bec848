package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"checkers-tcp-server/game"
	"checkers-tcp-server/protocol"
	"checkers-tcp-server/util"
)

// handleReconnectRequest implements the socket hand-over protocol of
// spec.md §4.7. sess is the temporary session the new connection
// arrived on; data is "room,player" (in-game/waiting) or "player"
// (lobby).
func (srv *Server) handleReconnectRequest(sess *Session, data string) {
	var roomName, player string
	if idx := strings.IndexByte(data, ','); idx >= 0 {
		roomName, player = data[:idx], data[idx+1:]
	} else {
		player = data
	}
	if player == "" {
		sess.Send(protocol.ReconnectFail, "Invalid format")
		return
	}

	preserved := srv.sessions.FindByID(player)
	if preserved == nil {
		sess.Send(protocol.ReconnectFail, "Unknown session")
		return
	}

	preserved.mu.Lock()
	if !preserved.LoggedIn || (preserved.ConnState != Disconnected && preserved.ConnState != Timeout) {
		state := preserved.ConnState
		preserved.mu.Unlock()
		sess.Send(protocol.ReconnectFail, "Session is not eligible for reconnect: "+state.String())
		return
	}

	preserved.ConnState = Reconnecting
	oldConn := preserved.Conn
	preserved.Conn = sess.Conn
	preserved.ConnID = sess.ConnID
	preserved.MissedPongs = 0
	preserved.DisconnectAt = time.Time{}
	preserved.Active = true
	gameState := preserved.GameState
	currentRoom := preserved.CurrentRoom
	preserved.mu.Unlock()

	if oldConn != nil {
		oldConn.Close()
	}

	// Invalidate the temporary slot the new connection arrived on; its
	// socket has been adopted by preserved, so do not close it.
	sess.Active = false
	srv.sessions.Remove(sess)

	preserved.mu.Lock()
	preserved.ConnState = Connected
	preserved.mu.Unlock()

	util.Info("Server", "session id=%s reconnected", player)

	switch gameState {
	case InLobby:
		preserved.Send(protocol.ReconnectOk, "lobby")
		preserved.Send(protocol.LoginOk, player)

	case InRoomWaiting:
		if roomName == "" {
			roomName = currentRoom
		}
		room := srv.rooms.Find(roomName)
		if room == nil {
			preserved.mu.Lock()
			preserved.GameState = InLobby
			preserved.CurrentRoom = ""
			preserved.mu.Unlock()
			preserved.Send(protocol.ReconnectFail, "Room was closed")
			preserved.Send(protocol.LoginOk, player)
			return
		}
		room.Lock()
		count := room.PlayersCount
		room.Unlock()
		preserved.Send(protocol.ReconnectOk, roomName)
		preserved.Send(protocol.RoomJoined, csv(roomName, strconv.Itoa(count)))

	case InGame:
		if roomName == "" {
			roomName = currentRoom
		}
		room := srv.rooms.Find(roomName)
		if room == nil || (room.Player1 != player && room.Player2 != player) {
			preserved.mu.Lock()
			preserved.GameState = InLobby
			preserved.CurrentRoom = ""
			preserved.mu.Unlock()
			preserved.Send(protocol.ReconnectFail, "Room was closed")
			preserved.Send(protocol.LoginOk, player)
			return
		}

		room.Lock()
		wasPaused := room.State == Paused
		if wasPaused {
			room.Resume()
		}
		opp := room.Opponent(player)
		var wire []byte
		if room.Game != nil {
			wire, _ = json.Marshal(game.BoardToWire(room.Game))
		}
		room.Unlock()

		preserved.Send(protocol.ReconnectOk, roomName)
		if wasPaused {
			preserved.Send(protocol.GameResumed, roomName)
			preserved.Send(protocol.GameState, string(wire))
			if oppSess := srv.sessions.FindByID(opp); oppSess != nil {
				oppSess.Send(protocol.PlayerReconnected, csv(roomName, player))
				oppSess.Send(protocol.GameResumed, roomName)
			}
		} else {
			preserved.Send(protocol.GameState, string(wire))
		}

	default:
		preserved.mu.Lock()
		preserved.GameState = InLobby
		preserved.CurrentRoom = ""
		preserved.mu.Unlock()
		preserved.Send(protocol.ReconnectFail, "Session state unrecognized")
		preserved.Send(protocol.LoginOk, player)
	}
}
