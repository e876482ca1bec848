package core

import (
	"testing"

	"checkers-tcp-server/protocol"

	"github.com/stretchr/testify/require"
)

func TestWhitelistMatchesSpecTable(t *testing.T) {
	require.True(t, IsAllowed(NotLoggedIn, protocol.Login))
	require.False(t, IsAllowed(NotLoggedIn, protocol.CreateRoom))

	require.True(t, IsAllowed(InLobby, protocol.CreateRoom))
	require.True(t, IsAllowed(InLobby, protocol.JoinRoom))
	require.False(t, IsAllowed(InLobby, protocol.Move))

	require.True(t, IsAllowed(InRoomWaiting, protocol.LeaveRoom))
	require.True(t, IsAllowed(InRoomWaiting, protocol.JoinRoom))
	require.False(t, IsAllowed(InRoomWaiting, protocol.Move))

	require.True(t, IsAllowed(InGame, protocol.Move))
	require.True(t, IsAllowed(InGame, protocol.MultiMove))
	require.False(t, IsAllowed(InGame, protocol.CreateRoom))
}

func TestAllStatesAllowLivenessAndReconnectOps(t *testing.T) {
	for _, g := range []GameState{NotLoggedIn, InLobby, InRoomWaiting, InGame} {
		require.True(t, IsAllowed(g, protocol.Ping), g.String())
		require.True(t, IsAllowed(g, protocol.Pong), g.String())
		require.True(t, IsAllowed(g, protocol.ReconnectRequest), g.String())
		require.True(t, IsAllowed(g, protocol.Error), g.String())
	}
}
