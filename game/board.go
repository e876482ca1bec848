// Package game implements the board-rules module spec.md treats as an
// external collaborator: move validation, move application, turn
// changes, and game-over detection for checkers. The core server never
// reaches into a board directly — it only calls these functions.
package game

import "checkers-tcp-server/protocol"

const BoardSize = 8

// Cell codes, opaque to the core server except as integers it passes
// through the wire (spec.md §3).
const (
	Empty     = 0
	White     = 1
	WhiteKing = 2
	Black     = 3
	BlackKing = 4
)

// Board is the 8x8 grid of cell codes.
type Board [BoardSize][BoardSize]int

// State is the full per-room game instance: board plus the two
// player names, whose turn it is, each player's color, and whether the
// game is still being played.
type State struct {
	Board        Board
	Player1      string
	Player2      string
	CurrentTurn  string
	Player1Color int
	Player2Color int
	Active       bool
}

// NewBoard returns the standard checkers starting position: black on
// rows 0-2, white on rows 5-7, matching original_source/Server/game.c's
// init_game layout exactly (row-major, dark squares only).
func NewBoard() Board {
	return Board{
		{0, Black, 0, Black, 0, Black, 0, Black},
		{Black, 0, Black, 0, Black, 0, Black, 0},
		{0, Black, 0, Black, 0, Black, 0, Black},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{White, 0, White, 0, White, 0, White, 0},
		{0, White, 0, White, 0, White, 0, White},
		{White, 0, White, 0, White, 0, White, 0},
	}
}

// InitGame builds a fresh game state for the named players with
// player1 seated White and moving first, per spec.md §4.3.
func InitGame(player1, player2 string) *State {
	return &State{
		Board:        NewBoard(),
		Player1:      player1,
		Player2:      player2,
		CurrentTurn:  player1,
		Player1Color: White,
		Player2Color: Black,
		Active:       true,
	}
}

func inBounds(r, c int) bool {
	return r >= 0 && r < BoardSize && c >= 0 && c < BoardSize
}

func isWhite(piece int) bool { return piece == White || piece == WhiteKing }
func isBlack(piece int) bool { return piece == Black || piece == BlackKing }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// colorOf returns the color a given player is playing.
func colorOf(s *State, player string) int {
	if player == s.Player1 {
		return s.Player1Color
	}
	return s.Player2Color
}

// ValidateMove reports whether moving the piece at (fr,fc) to (tr,tc) is
// legal for player right now: it must be player's turn, both squares in
// bounds, the destination empty, the piece owned by player's color, and
// the move geometry either a simple forward diagonal step or a single
// diagonal jump over an adjacent opponent piece (kings move either
// direction). Mirrors original_source/Server/game.c's validate_move;
// mandatory-jump rules are not enforced there and aren't here either.
func ValidateMove(s *State, fr, fc, tr, tc int, player string) bool {
	if s.CurrentTurn != player {
		return false
	}
	if !inBounds(fr, fc) || !inBounds(tr, tc) {
		return false
	}
	if s.Board[tr][tc] != Empty {
		return false
	}
	piece := s.Board[fr][fc]
	if piece == Empty {
		return false
	}

	playerColor := colorOf(s, player)
	belongsToPlayer := (playerColor == White && isWhite(piece)) || (playerColor == Black && isBlack(piece))
	if !belongsToPlayer {
		return false
	}

	rowDiff := tr - fr
	colDiff := abs(tc - fc)

	switch {
	case piece == White:
		if rowDiff == -1 && colDiff == 1 {
			return true
		}
		if rowDiff == -2 && colDiff == 2 {
			return isBlack(s.Board[(fr+tr)/2][(fc+tc)/2])
		}
		return false
	case piece == Black:
		if rowDiff == 1 && colDiff == 1 {
			return true
		}
		if rowDiff == 2 && colDiff == 2 {
			return isWhite(s.Board[(fr+tr)/2][(fc+tc)/2])
		}
		return false
	default: // king, either color
		if abs(rowDiff) == 1 && colDiff == 1 {
			return true
		}
		if abs(rowDiff) == 2 && colDiff == 2 {
			mid := s.Board[(fr+tr)/2][(fc+tc)/2]
			if playerColor == White {
				return isBlack(mid)
			}
			return isWhite(mid)
		}
		return false
	}
}

// CaptureInfo reports what ApplyMove did, for callers that want to know
// whether a jump occurred (e.g. to decide whether a chained MultiMove
// step may continue jumping the same piece).
type CaptureInfo struct {
	Captured bool
	Promoted bool
}

// ApplyMove moves the piece at (fr,fc) to (tr,tc), removing a jumped
// piece if the move spans two rows, and promoting to king on reaching
// the back rank. Caller must have already validated the move.
func ApplyMove(s *State, fr, fc, tr, tc int) CaptureInfo {
	piece := s.Board[fr][fc]
	s.Board[tr][tc] = piece
	s.Board[fr][fc] = Empty

	var info CaptureInfo
	if abs(tr-fr) == 2 {
		midRow, midCol := (fr+tr)/2, (fc+tc)/2
		s.Board[midRow][midCol] = Empty
		info.Captured = true
	}

	if piece == White && tr == 0 {
		s.Board[tr][tc] = WhiteKing
		info.Promoted = true
	} else if piece == Black && tr == BoardSize-1 {
		s.Board[tr][tc] = BlackKing
		info.Promoted = true
	}

	return info
}

// ChangeTurn swaps whose move it is. Involutive: applying it twice
// returns the turn to its original value (spec.md §8).
func ChangeTurn(s *State) {
	if s.CurrentTurn == s.Player1 {
		s.CurrentTurn = s.Player2
	} else {
		s.CurrentTurn = s.Player1
	}
}

// CheckGameOver reports whether one side has no pieces left, and if so
// names the survivor.
func CheckGameOver(s *State) (over bool, winner string) {
	whiteCount, blackCount := 0, 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			switch {
			case isWhite(s.Board[r][c]):
				whiteCount++
			case isBlack(s.Board[r][c]):
				blackCount++
			}
		}
	}
	if whiteCount == 0 {
		return true, s.Player2
	}
	if blackCount == 0 {
		return true, s.Player1
	}
	return false, ""
}

// BoardToWire renders the JSON shape spec.md §4.3/§4.8 specifies for
// GameState frames.
func BoardToWire(s *State) protocol.GameStateWire {
	wire := protocol.GameStateWire{
		CurrentTurn: s.CurrentTurn,
		Player1:     s.Player1,
		Player2:     s.Player2,
	}
	wire.Board = s.Board
	return wire
}
