package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"checkers-tcp-server/config"
	"checkers-tcp-server/game"
	"checkers-tcp-server/protocol"
	"checkers-tcp-server/util"
)

// Server owns the two registries, the listener, and the heartbeat
// loop. One process owns exactly one Server (spec.md §1 Non-goals: no
// horizontal scaling).
type Server struct {
	cfg      *config.Config
	sessions *SessionRegistry
	rooms    *RoomRegistry

	listener net.Listener
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:      cfg,
		sessions: NewSessionRegistry(cfg.MaxClients),
		rooms:    NewRoomRegistry(cfg.MaxRooms),
	}
}

// Serve binds the listener, spawns the heartbeat loop, and accepts
// connections until ctx is cancelled (SIGINT/SIGTERM per spec.md §6).
func (srv *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", srv.cfg.Bind, srv.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv.listener = ln
	util.Info("Server", "listening on %s", addr)

	go srv.heartbeatLoop(ctx)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				util.Info("Server", "listener closed, shutting down")
				return nil
			default:
				util.Warn("Server", "accept error: %v", err)
				continue
			}
		}
		go srv.handleConn(conn)
	}
}

// handleConn is the per-connection read loop (spec.md §4.5): reserve a
// slot, reassemble newline-terminated frames into one decode per
// iteration, dispatch or eagerly disconnect on violation.
func (srv *Server) handleConn(conn net.Conn) {
	sess := NewSession(conn, -1)
	idx := srv.sessions.Add(sess)
	if idx < 0 {
		util.Warn("Server", "session registry full, rejecting connection from %s", conn.RemoteAddr())
		conn.Close()
		return
	}
	util.Debug("Server", "accepted conn=%s slot=%d", sess.ConnID, idx)

	// A genuinely bounded reassembly buffer (original_source/Server/server.c
	// :1524-1536 fills a fixed array byte by byte and rejects the instant
	// it's full): bufio.Reader.ReadBytes keeps appending internal slices
	// until it finds '\n' regardless of the reader's initial size, so a
	// peer that withholds '\n' could grow unbounded past any post-hoc
	// length check. Growth here is capped at maxFrame+one read's worth,
	// and checked immediately after every read.
	maxFrame := 2 * protocol.BufferSize
	buf := make([]byte, 0, maxFrame+protocol.BufferSize)
	chunk := make([]byte, protocol.BufferSize)

	for {
		line, ok := nextFrame(&buf)
		if !ok {
			n, err := conn.Read(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
				if len(buf) > maxFrame {
					sess.Send(protocol.Error, "Buffer overflow")
					srv.disconnectMalicious(sess)
					return
				}
			}
			if err != nil {
				srv.onRecvFailure(sess)
				return
			}
			continue
		}

		// Re-locate the slot by current socket identity: a reconnect
		// handler may have adopted this slot's session onto a new
		// socket, in which case this goroutine no longer owns it.
		current := srv.sessions.FindByID(sess.ID)
		if sess.LoggedIn && (current == nil || current.Conn != conn) {
			util.Debug("Server", "conn=%s ownership transferred, exiting without closing socket", sess.ConnID)
			return
		}

		line = trimFrame(line)
		frame, reason := protocol.Decode(line)
		if reason != protocol.ReasonNone {
			sess.Send(protocol.Error, reason.String())
			exceeded := sess.RecordInvalidMessage(srv.cfg.MaxViolations)
			util.Warn("Server", "conn=%s decode failure: %s", sess.ConnID, reason)
			if exceeded {
				srv.disconnectMalicious(sess)
				return
			}
			continue
		}

		if !IsAllowed(sess.GameState, frame.Op) {
			sess.Send(protocol.Error, fmt.Sprintf("Operation not allowed in state %s", sess.GameState))
			exceeded := sess.RecordUnknownOp(srv.cfg.MaxViolations)
			util.Warn("Server", "conn=%s rejected op=%d in state=%s", sess.ConnID, frame.Op, sess.GameState)
			if exceeded {
				srv.disconnectMalicious(sess)
				return
			}
			continue
		}

		srv.dispatch(sess, frame)

		if sess.ConnState == Removed {
			return
		}
	}
}

func trimFrame(line []byte) []byte {
	n := len(line)
	for n > 0 && (line[n-1] == '\n' || line[n-1] == '\r') {
		n--
	}
	return line[:n]
}

// nextFrame pulls one newline-terminated frame off the front of *buf,
// compacting the remainder forward so the buffer's contents never
// exceed what is genuinely still pending. Returns ok=false when no
// complete frame is buffered yet.
func nextFrame(buf *[]byte) ([]byte, bool) {
	i := bytes.IndexByte(*buf, '\n')
	if i < 0 {
		return nil, false
	}
	line := append([]byte(nil), (*buf)[:i+1]...)
	remaining := len(*buf) - (i + 1)
	copy(*buf, (*buf)[i+1:])
	*buf = (*buf)[:remaining]
	return line, true
}

// disconnectMalicious implements spec.md §4.5's eager-disconnect path
// for a session that exceeded its violation budget
// (original_source/Server/protocol.c:71-103 disconnect_malicious_client).
// The session's slot is removed immediately, with no reconnect grace
// period, so its room is torn down through the permanent branch of
// handleRoomOnDisconnect rather than paused for a reconnect that can
// never arrive.
func (srv *Server) disconnectMalicious(sess *Session) {
	sess.mu.Lock()
	wasLoggedIn := sess.LoggedIn
	sess.ConnState = Removed
	sess.Active = false
	sess.mu.Unlock()

	if wasLoggedIn {
		srv.handleRoomOnDisconnect(sess, true)
	}

	srv.sessions.Remove(sess)
	if sess.Conn != nil {
		sess.Conn.Close()
	}
	util.Info("Server", "conn=%s removed (malicious)", sess.ConnID)
}

// onRecvFailure implements spec.md §4.5 step 5 / §4.7's disconnect
// pathway.
func (srv *Server) onRecvFailure(sess *Session) {
	if sess.Conn != nil {
		sess.Conn.Close()
	}

	if !sess.LoggedIn {
		srv.sessions.Remove(sess)
		util.Debug("Server", "conn=%s anonymous disconnect, slot reclaimed", sess.ConnID)
		return
	}

	sess.mu.Lock()
	sess.Active = false
	sess.ConnState = Disconnected
	sess.DisconnectAt = time.Now()
	sess.Conn = nil
	sess.mu.Unlock()

	util.Info("Server", "session id=%s disconnected, preserved for reconnect", sess.ID)

	srv.handleRoomOnDisconnect(sess, false)
}

// handleRoomOnDisconnect applies sess's seated room's disconnect
// transition. When permanent is false (ordinary recv failure, session
// preserved for reconnect per spec.md §4.7) an Active room pauses and
// a Waiting room just notifies the opponent. When permanent is true
// (the session's slot is being removed with no reconnect possible,
// e.g. disconnectMalicious) an Active room instead finishes outright
// so it never sits Paused waiting for a reconnect that cannot happen.
func (srv *Server) handleRoomOnDisconnect(sess *Session, permanent bool) {
	sess.mu.Lock()
	roomName := sess.CurrentRoom
	id := sess.ID
	sess.mu.Unlock()
	if roomName == "" {
		return
	}
	room := srv.rooms.Find(roomName)
	if room == nil {
		return
	}

	if permanent {
		room.Lock()
		state := room.State
		opp := room.Opponent(id)
		room.Unlock()
		if state == Active {
			srv.finishGame(room, roomName, opp, "opponent_disconnected")
			return
		}
		room.Lock()
		defer room.Unlock()
		if opp != "" {
			room.SendTo(srv.sessions, opp, protocol.PlayerDisconnected, csv(roomName, id))
		}
		return
	}

	room.Lock()
	defer room.Unlock()
	switch room.State {
	case Active:
		room.Pause(id)
		opp := room.Opponent(id)
		room.SendTo(srv.sessions, opp, protocol.PlayerDisconnected, csv(room.Name, id))
		room.SendTo(srv.sessions, opp, protocol.GamePaused, room.Name)
	case Waiting:
		opp := room.Opponent(id)
		if opp != "" {
			room.SendTo(srv.sessions, opp, protocol.PlayerDisconnected, id)
		}
	}
}

func csv(parts ...string) string {
	return strings.Join(parts, ",")
}

// dispatch routes a decoded, whitelist-approved frame to its handler
// (spec.md §4.8).
func (srv *Server) dispatch(sess *Session, f protocol.Frame) {
	data := string(f.Data)
	switch f.Op {
	case protocol.Login:
		srv.handleLogin(sess, data)
	case protocol.CreateRoom:
		srv.handleCreateRoom(sess, data)
	case protocol.JoinRoom:
		srv.handleJoinRoom(sess, data)
	case protocol.LeaveRoom:
		srv.handleLeaveRoom(sess, data)
	case protocol.Move:
		srv.handleMove(sess, data)
	case protocol.MultiMove:
		srv.handleMultiMove(sess, data)
	case protocol.ListRooms:
		srv.handleListRooms(sess)
	case protocol.Ping:
		sess.Send(protocol.Pong, "")
	case protocol.Pong:
		sess.UpdateHeartbeat()
	case protocol.ReconnectRequest:
		srv.handleReconnectRequest(sess, data)
	default:
		util.Warn("Server", "conn=%s whitelisted op=%d has no handler", sess.ConnID, f.Op)
	}
}

// --- operation handlers ---

func (srv *Server) handleLogin(sess *Session, id string) {
	if id == "" {
		sess.Send(protocol.LoginFail, "Name cannot be empty")
		return
	}
	if !util.IsValidClientID(id) {
		sess.Send(protocol.LoginFail, "Invalid client id")
		return
	}
	if !srv.sessions.BindID(id, sess) {
		sess.Send(protocol.LoginFail, "Client ID already in use")
		return
	}
	sess.mu.Lock()
	sess.ID = id
	sess.LoggedIn = true
	sess.GameState = InLobby
	sess.mu.Unlock()
	sess.Send(protocol.LoginOk, id)
	util.Info("Server", "conn=%s logged in as %s", sess.ConnID, id)
}

func (srv *Server) handleCreateRoom(sess *Session, data string) {
	parts := strings.SplitN(data, ",", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		sess.Send(protocol.RoomFail, "Invalid format")
		return
	}
	player, room := parts[0], parts[1]
	if !util.IsValidRoomName(room) {
		sess.Send(protocol.RoomFail, "Invalid room name")
		return
	}
	if _, ok := srv.rooms.Create(room, player); !ok {
		sess.Send(protocol.RoomFail, "Room already exists or server is full")
		return
	}
	sess.Send(protocol.RoomCreated, room)
	util.Info("Server", "room=%s created by=%s", room, player)
}

func (srv *Server) handleJoinRoom(sess *Session, data string) {
	parts := strings.SplitN(data, ",", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		sess.Send(protocol.RoomFail, "Invalid format")
		return
	}
	player, roomName := parts[0], parts[1]

	room := srv.rooms.Find(roomName)
	if room == nil {
		sess.Send(protocol.RoomFail, "Room not found")
		return
	}

	room.Lock()
	result := room.Join(srv.sessions, player)
	var count int
	var becamePaired bool
	if result == JoinOk {
		count = room.PlayersCount
		becamePaired = room.PlayersCount == 2
	}
	room.Unlock()

	switch result {
	case JoinClientNotFound:
		sess.Send(protocol.RoomFail, "Client not found")
		return
	case JoinAlreadyInAnotherRoom:
		sess.Send(protocol.RoomFail, "Already in another room")
		return
	case JoinAlreadyInThisRoom:
		sess.Send(protocol.RoomFail, "Already in this room")
		return
	case JoinRoomFull:
		sess.Send(protocol.RoomFull, "Room is full")
		return
	}

	sess.mu.Lock()
	sess.CurrentRoom = roomName
	if becamePaired {
		sess.GameState = InGame
	} else {
		sess.GameState = InRoomWaiting
	}
	sess.mu.Unlock()

	sess.Send(protocol.RoomJoined, csv(roomName, strconv.Itoa(count)))

	if becamePaired {
		room.Lock()
		p1, p2, turn := room.Player1, room.Player2, room.Game.CurrentTurn
		wire := game.BoardToWire(room.Game)
		room.Unlock()

		for _, id := range []string{p1, p2} {
			if s := srv.sessions.FindByID(id); s != nil {
				s.mu.Lock()
				s.GameState = InGame
				s.mu.Unlock()
			}
		}

		payload, _ := json.Marshal(wire)
		room.Broadcast(srv.sessions, protocol.GameStart, csv(roomName, p1, p2, turn))
		room.Broadcast(srv.sessions, protocol.GameState, string(payload))
		util.Info("Server", "room=%s paired, game started turn=%s", roomName, turn)
	}
}

func (srv *Server) handleLeaveRoom(sess *Session, data string) {
	parts := strings.SplitN(data, ",", 2)
	if len(parts) != 2 {
		sess.Send(protocol.Error, "Invalid format")
		return
	}
	roomName, player := parts[0], parts[1]
	room := srv.rooms.Find(roomName)
	if room == nil {
		sess.Send(protocol.Error, "Room not found")
		return
	}

	room.Lock()
	opp := room.Opponent(player)
	room.Unlock()
	srv.rooms.Destroy(room)

	if oppSess := srv.sessions.FindByID(opp); oppSess != nil {
		oppSess.mu.Lock()
		oppSess.CurrentRoom = ""
		oppSess.GameState = InLobby
		oppSess.mu.Unlock()
		oppSess.Send(protocol.RoomLeft, csv(roomName, player))
	}

	sess.mu.Lock()
	sess.CurrentRoom = ""
	sess.GameState = InLobby
	sess.mu.Unlock()
	sess.Send(protocol.RoomLeft, csv(roomName, player))
	util.Info("Server", "room=%s destroyed by explicit leave of %s", roomName, player)
}

func (srv *Server) handleMove(sess *Session, data string) {
	parts := strings.Split(data, ",")
	if len(parts) != 6 {
		sess.Send(protocol.Error, "Invalid format")
		return
	}
	roomName, player := parts[0], parts[1]
	coords, ok := parseInts(parts[2:6])
	if !ok {
		sess.Send(protocol.Error, "Invalid format")
		return
	}

	room := srv.rooms.Find(roomName)
	if room == nil {
		sess.Send(protocol.Error, "Game not found")
		return
	}

	room.Lock()
	if room.Game == nil || !room.Game.Active {
		room.Unlock()
		sess.Send(protocol.Error, "Game not found")
		return
	}
	if !game.ValidateMove(room.Game, coords[0], coords[1], coords[2], coords[3], player) {
		room.Unlock()
		sess.Send(protocol.InvalidMove, "Illegal move")
		return
	}
	game.ApplyMove(room.Game, coords[0], coords[1], coords[2], coords[3])
	game.ChangeTurn(room.Game)
	wire := game.BoardToWire(room.Game)
	over, winner := game.CheckGameOver(room.Game)
	roomNameCopy := room.Name
	room.Unlock()

	payload, _ := json.Marshal(wire)
	room.Broadcast(srv.sessions, protocol.GameState, string(payload))

	if over {
		srv.finishGame(room, roomNameCopy, winner, "no_pieces")
	}
}

func (srv *Server) handleMultiMove(sess *Session, data string) {
	parts := strings.Split(data, ",")
	if len(parts) < 4 {
		sess.Send(protocol.Error, "Invalid format")
		return
	}
	// k is the number of points on the jump path (spec.md §4.8/§6), not
	// the number of moves: a path of k points performs k-1 moves, e.g.
	// k=3 points r1,c1,r2,c2,r3,c3 is two chained jumps.
	roomName, player := parts[0], parts[1]
	k, err := strconv.Atoi(parts[2])
	if err != nil || k < 2 || k > 20 {
		sess.Send(protocol.Error, "Invalid format")
		return
	}
	coordParts := parts[3:]
	if len(coordParts) != 2*k {
		sess.Send(protocol.Error, "Invalid format")
		return
	}
	coords, ok := parseInts(coordParts)
	if !ok {
		sess.Send(protocol.Error, "Invalid format")
		return
	}

	room := srv.rooms.Find(roomName)
	if room == nil {
		sess.Send(protocol.Error, "Game not found")
		return
	}

	room.Lock()
	if room.Game == nil || !room.Game.Active {
		room.Unlock()
		sess.Send(protocol.Error, "Game not found")
		return
	}
	for i := 0; i < k-1; i++ {
		fr, fc := coords[2*i], coords[2*i+1]
		tr, tc := coords[2*i+2], coords[2*i+3]
		if !game.ValidateMove(room.Game, fr, fc, tr, tc, player) {
			room.Unlock()
			sess.Send(protocol.InvalidMove, fmt.Sprintf("Illegal move at step %d", i+1))
			return
		}
		game.ApplyMove(room.Game, fr, fc, tr, tc)
	}
	game.ChangeTurn(room.Game)
	wire := game.BoardToWire(room.Game)
	over, winner := game.CheckGameOver(room.Game)
	roomNameCopy := room.Name
	room.Unlock()

	payload, _ := json.Marshal(wire)
	room.Broadcast(srv.sessions, protocol.GameState, string(payload))

	if over {
		srv.finishGame(room, roomNameCopy, winner, "no_pieces")
	}
}

func (srv *Server) finishGame(room *Room, roomName, winner, reason string) {
	room.Lock()
	room.Finish(reason)
	room.Unlock()
	srv.rooms.Destroy(room)

	room.Broadcast(srv.sessions, protocol.GameEnd, csv(winner, reason))
	for _, id := range []string{room.Player1, room.Player2} {
		if s := srv.sessions.FindByID(id); s != nil {
			s.mu.Lock()
			s.CurrentRoom = ""
			s.GameState = InLobby
			s.mu.Unlock()
		}
	}
	util.Info("Server", "room=%s game over winner=%s reason=%s", roomName, winner, reason)
}

func (srv *Server) handleListRooms(sess *Session) {
	entries := srv.rooms.ListNonEmpty()
	out := make([]protocol.RoomListEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.RoomListEntry{ID: e.SlotIdx, Name: e.Name, Players: e.Players})
	}
	payload, _ := json.Marshal(out)
	sess.Send(protocol.RoomsList, string(payload))
}

func parseInts(parts []string) ([]int, bool) {
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
