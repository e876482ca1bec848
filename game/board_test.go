package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitGameStartingPosition(t *testing.T) {
	s := InitGame("alice", "bob")
	require.Equal(t, "alice", s.CurrentTurn)
	require.True(t, s.Active)
	require.Equal(t, White, s.Board[5][0])
	require.Equal(t, Black, s.Board[0][1])
	require.Equal(t, Empty, s.Board[4][4])
}

func TestValidateMoveRejectsWrongTurn(t *testing.T) {
	s := InitGame("alice", "bob")
	require.False(t, ValidateMove(s, 2, 1, 3, 2, "bob"))
}

func TestValidateMoveSimpleForwardStep(t *testing.T) {
	s := InitGame("alice", "bob")
	require.True(t, ValidateMove(s, 5, 0, 4, 1, "alice"))
}

func TestValidateMoveRejectsNonDiagonal(t *testing.T) {
	s := InitGame("alice", "bob")
	require.False(t, ValidateMove(s, 5, 0, 4, 0, "alice"))
}

func TestApplyMoveCapturesJumpedPiece(t *testing.T) {
	s := InitGame("alice", "bob")
	s.Board[4][3] = Black
	require.True(t, ValidateMove(s, 5, 2, 3, 4, "alice"))
	info := ApplyMove(s, 5, 2, 3, 4)
	require.True(t, info.Captured)
	require.Equal(t, Empty, s.Board[4][3])
	require.Equal(t, White, s.Board[3][4])
}

func TestApplyMovePromotesToKing(t *testing.T) {
	s := InitGame("alice", "bob")
	s.Board = Board{}
	s.Board[1][0] = White
	ApplyMove(s, 1, 0, 0, 1)
	require.Equal(t, WhiteKing, s.Board[0][1])
}

func TestChangeTurnIsInvolutive(t *testing.T) {
	s := InitGame("alice", "bob")
	before := s.CurrentTurn
	ChangeTurn(s)
	ChangeTurn(s)
	require.Equal(t, before, s.CurrentTurn)
}

func TestCheckGameOverWhenOneSideHasNoPieces(t *testing.T) {
	s := InitGame("alice", "bob")
	s.Board = Board{}
	s.Board[0][0] = White
	over, winner := CheckGameOver(s)
	require.True(t, over)
	require.Equal(t, "alice", winner)
}

func TestCheckGameOverStillPlaying(t *testing.T) {
	s := InitGame("alice", "bob")
	over, _ := CheckGameOver(s)
	require.False(t, over)
}

func TestBoardToWireShape(t *testing.T) {
	s := InitGame("alice", "bob")
	wire := BoardToWire(s)
	require.Equal(t, "alice", wire.CurrentTurn)
	require.Equal(t, "alice", wire.Player1)
	require.Equal(t, "bob", wire.Player2)
	require.Equal(t, White, wire.Board[5][0])
}
