package core

import (
	"context"
	"time"

	"checkers-tcp-server/protocol"
	"checkers-tcp-server/util"
)

// heartbeatAction is one snapshot-time decision the sweep defers to
// its act phase (spec.md §4.6).
type heartbeatAction struct {
	sess   *Session
	remove bool
	pause  bool
}

// heartbeatLoop runs the single long-lived heartbeat task on
// PingInterval cadence until ctx is cancelled.
func (srv *Server) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(srv.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.heartbeatSweep()
			srv.sweepPausedRooms()
		}
	}
}

// heartbeatSweep implements spec.md §4.6: snapshot under the registry
// lock, release it, then act on each session under its own lock.
func (srv *Server) heartbeatSweep() {
	now := time.Now()
	var actions []heartbeatAction

	for _, s := range srv.sessions.Snapshot() {
		s.mu.Lock()
		switch {
		case s.ConnState == Reconnecting || s.ConnState == Removed:
			// skip: a reconnect handler is mid-swap, or already gone

		case s.Conn != nil && !s.AwaitingPong:
			s.Send(protocol.Ping, "")
			s.AwaitingPong = true

		case s.AwaitingPong && now.Sub(s.LastPongAt) > srv.cfg.PongTimeout:
			s.AwaitingPong = false
			s.MissedPongs++
			if s.MissedPongs >= srv.cfg.MaxMissedPongs && s.ConnState == Connected {
				s.ConnState = Disconnected
				s.DisconnectAt = now
				if s.Conn != nil {
					s.Conn.Close()
				}
				s.Conn = nil
			}

		case s.ConnState == Disconnected && now.Sub(s.DisconnectAt) > srv.cfg.LongDisconnect:
			actions = append(actions, heartbeatAction{sess: s, remove: true})

		case s.ConnState == Disconnected:
			actions = append(actions, heartbeatAction{sess: s, pause: true})
		}
		s.mu.Unlock()
	}

	for _, a := range actions {
		srv.actOnHeartbeat(a)
	}
}

// actOnHeartbeat re-validates preconditions under fresh locks before
// acting, since state may have changed between snapshot and act.
func (srv *Server) actOnHeartbeat(a heartbeatAction) {
	a.sess.mu.Lock()
	if a.sess.ConnState == Reconnecting || a.sess.ConnState == Removed {
		a.sess.mu.Unlock()
		return
	}
	if a.remove && a.sess.ConnState != Disconnected {
		a.sess.mu.Unlock()
		return
	}
	roomName := a.sess.CurrentRoom
	id := a.sess.ID
	a.sess.mu.Unlock()

	if a.remove {
		srv.escalateLongDisconnect(a.sess, id, roomName)
		return
	}
	if a.pause && roomName != "" {
		srv.pauseRoomForDisconnect(roomName, id)
	}
}

// pauseRoomForDisconnect mirrors the room-pause half of
// onRecvFailure, for a disconnect the heartbeat sweep detects (missed
// pongs) rather than an immediate recv error. A no-op if the room is
// already Paused.
func (srv *Server) pauseRoomForDisconnect(roomName, id string) {
	room := srv.rooms.Find(roomName)
	if room == nil {
		return
	}
	room.Lock()
	defer room.Unlock()
	if room.State != Active {
		return
	}
	room.Pause(id)
	opp := room.Opponent(id)
	room.SendTo(srv.sessions, opp, protocol.PlayerDisconnected, csv(room.Name, id))
	room.SendTo(srv.sessions, opp, protocol.GamePaused, room.Name)
}

// escalateLongDisconnect implements spec.md §4.7's long-disconnect
// escalation.
func (srv *Server) escalateLongDisconnect(sess *Session, id, roomName string) {
	if roomName != "" {
		if room := srv.rooms.Find(roomName); room != nil {
			room.Lock()
			opp := room.Opponent(id)
			room.Unlock()
			srv.finishGame(room, roomName, opp, "opponent_timeout")
		}
	}

	sess.mu.Lock()
	sess.ConnState = Removed
	sess.mu.Unlock()
	srv.sessions.Remove(sess)
	util.Info("Server", "session id=%s removed after long disconnect", id)
}

// sweepPausedRooms implements spec.md §4.6 step 3: any Paused room
// whose pause has outlasted LongDisconnect escalates its disconnected
// member.
func (srv *Server) sweepPausedRooms() {
	now := time.Now()
	for _, room := range srv.rooms.Snapshot() {
		room.Lock()
		stale := room.State == Paused && now.Sub(room.PausedAt) >= srv.cfg.LongDisconnect
		who := room.DisconnectedPlayer
		name := room.Name
		room.Unlock()
		if !stale {
			continue
		}
		if sess := srv.sessions.FindByID(who); sess != nil {
			srv.escalateLongDisconnect(sess, who, name)
		}
	}
}
