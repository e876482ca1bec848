package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// registerSession logs in name against reg so Room.Join can resolve it
// to a session (spec.md §4.4: join requires a real logged-in client).
func registerSession(t *testing.T, reg *SessionRegistry, name string) *Session {
	t.Helper()
	s := NewSession(nil, -1)
	require.GreaterOrEqual(t, reg.Add(s), 0)
	require.True(t, reg.BindID(name, s))
	s.ID = name
	s.LoggedIn = true
	return s
}

func TestRoomJoinPairsAndStartsGame(t *testing.T) {
	sessions := NewSessionRegistry(4)
	registerSession(t, sessions, "alice")
	registerSession(t, sessions, "bob")

	r := NewRoom("lobby1", "alice", 0)
	require.Equal(t, JoinOk, r.Join(sessions, "alice"))
	require.Equal(t, Waiting, r.State, "second seat still empty, room stays Waiting")

	require.Equal(t, JoinOk, r.Join(sessions, "bob"))
	require.Equal(t, Active, r.State)
	require.True(t, r.GameStarted)
	require.NotNil(t, r.Game)
	require.Equal(t, "alice", r.Game.CurrentTurn)
}

func TestRoomJoinRejectsFullRoom(t *testing.T) {
	sessions := NewSessionRegistry(4)
	registerSession(t, sessions, "alice")
	registerSession(t, sessions, "bob")
	registerSession(t, sessions, "carol")

	r := NewRoom("lobby1", "alice", 0)
	r.Join(sessions, "alice")
	r.Join(sessions, "bob")
	require.Equal(t, JoinRoomFull, r.Join(sessions, "carol"))
}

func TestRoomJoinRejectsSameSeatTwice(t *testing.T) {
	sessions := NewSessionRegistry(4)
	registerSession(t, sessions, "alice")

	r := NewRoom("lobby1", "alice", 0)
	r.Join(sessions, "alice")
	require.Equal(t, JoinAlreadyInThisRoom, r.Join(sessions, "alice"))
}

func TestRoomJoinRejectsUnknownClient(t *testing.T) {
	sessions := NewSessionRegistry(4)
	r := NewRoom("lobby1", "alice", 0)
	require.Equal(t, JoinClientNotFound, r.Join(sessions, "ghost"),
		"join() must reject a name with no logged-in session (spec.md §4.4)")
}

func TestRoomJoinRejectsClientAlreadyInAnotherRoom(t *testing.T) {
	sessions := NewSessionRegistry(4)
	carol := registerSession(t, sessions, "carol")
	carol.CurrentRoom = "lobby-other"

	r := NewRoom("lobby1", "alice", 0)
	require.Equal(t, JoinAlreadyInAnotherRoom, r.Join(sessions, "carol"))
}

func TestRoomPauseResumeGuards(t *testing.T) {
	sessions := NewSessionRegistry(4)
	registerSession(t, sessions, "alice")
	registerSession(t, sessions, "bob")

	r := NewRoom("lobby1", "alice", 0)
	r.Join(sessions, "alice")
	r.Join(sessions, "bob")

	r.Pause("alice")
	require.Equal(t, Paused, r.State)
	require.Equal(t, "alice", r.DisconnectedPlayer)

	r.Resume()
	require.Equal(t, Active, r.State)
	require.Equal(t, "", r.DisconnectedPlayer)
}

func TestRoomPauseNoopUnlessActive(t *testing.T) {
	r := NewRoom("lobby1", "alice", 0)
	r.Pause("alice")
	require.Equal(t, Waiting, r.State, "pause on a non-Active room must be a no-op")
}

func TestRoomOpponent(t *testing.T) {
	sessions := NewSessionRegistry(4)
	registerSession(t, sessions, "alice")
	registerSession(t, sessions, "bob")

	r := NewRoom("lobby1", "alice", 0)
	r.Join(sessions, "alice")
	r.Join(sessions, "bob")
	require.Equal(t, "bob", r.Opponent("alice"))
	require.Equal(t, "alice", r.Opponent("bob"))
	require.Equal(t, "", r.Opponent("carol"))
}
