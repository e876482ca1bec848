package core

import (
	"net"
	"sync"
	"time"

	"checkers-tcp-server/protocol"
	"checkers-tcp-server/util"

	"github.com/google/uuid"
)

// Violations accumulates the counters that drive eager disconnect
// (spec.md §4.2, §4.5): the policy rejection or decode failure that
// brings a counter up to MaxViolations terminates the connection.
type Violations struct {
	InvalidMessages int
	UnknownOps      int
	LastViolationAt time.Time
}

// Session is the server-side record of one logical client (spec.md
// §3). It survives socket loss for up to LongDisconnect seconds once
// logged in.
type Session struct {
	ID          string
	ConnID      string // opaque uuid assigned at accept; a reconnect replaces it with the new connection's id
	Conn        net.Conn
	Active      bool
	LoggedIn    bool
	CurrentRoom string
	GameState   GameState
	ConnState   ConnState

	LastPongAt   time.Time
	DisconnectAt time.Time
	MissedPongs  int
	AwaitingPong bool
	Violations   Violations

	slotIdx int
	mu      sync.Mutex
}

// NewSession wraps a freshly accepted socket in an anonymous,
// not-logged-in session.
func NewSession(conn net.Conn, slotIdx int) *Session {
	now := time.Now()
	return &Session{
		ConnID:     uuid.NewString(),
		Conn:       conn,
		Active:     true,
		GameState:  NotLoggedIn,
		ConnState:  Connected,
		LastPongAt: now,
		slotIdx:    slotIdx,
	}
}

// Lock/Unlock expose the per-session lock to callers (registries,
// heartbeat sweep) that must serialize field access per spec.md §5.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Send encodes and writes a frame to the session's current socket.
// Must be called with the session unlocked or already holding the lock
// depending on caller; Send itself takes no lock beyond the write
// syscall, matching spec.md §5's note that socket writes are not
// serialized across tasks.
func (s *Session) Send(op protocol.OpCode, data string) {
	conn := s.Conn
	if conn == nil {
		return
	}
	if _, err := conn.Write(protocol.Encode(op, data)); err != nil {
		util.Debug("Session", "write failed id=%s conn=%s op=%d: %v", s.ID, s.ConnID, op, err)
	}
}

// RecordUnknownOp increments the policy-violation counter and reports
// whether it has now reached max.
func (s *Session) RecordUnknownOp(max int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Violations.UnknownOps++
	s.Violations.LastViolationAt = time.Now()
	return s.Violations.UnknownOps >= max
}

// RecordInvalidMessage increments the decode-failure counter and
// reports whether it has now reached max.
func (s *Session) RecordInvalidMessage(max int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Violations.InvalidMessages++
	s.Violations.LastViolationAt = time.Now()
	return s.Violations.InvalidMessages >= max
}

// UpdateHeartbeat is called on PONG receipt: resets missed-pong
// accounting and, if the session was Disconnected or Reconnecting,
// promotes it back to Connected (spec.md §4.6). Timeout and Removed
// are left as they are.
func (s *Session) UpdateHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastPongAt = time.Now()
	s.MissedPongs = 0
	s.AwaitingPong = false
	if s.ConnState == Disconnected || s.ConnState == Reconnecting {
		s.ConnState = Connected
	}
}
