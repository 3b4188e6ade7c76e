package gridgame

import (
	"errors"
	"fmt"

	"github.com/ancarodev/ancaro-server/internal/apperror"
	"github.com/ancarodev/ancaro-server/internal/entity"
)

var ErrInvalidRules = errors.New("invalid game rules")

// Rules describes one board shape: an R by C grid where the first player
// to fill winLength cells in a row, column or diagonal wins. All winning
// line patterns are precomputed once; outcome detection is a scan over
// that list, so the first (lowest-index) completed pattern always wins
// the tie-break.
type Rules struct {
	Rows      int
	Cols      int
	WinLength int

	patterns [][]int
}

func NewRules(rows, cols, winLength int) (*Rules, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: board %dx%d", ErrInvalidRules, rows, cols)
	}

	if winLength < 2 || (winLength > rows && winLength > cols) {
		return nil, fmt.Errorf("%w: win length %d does not fit %dx%d board", ErrInvalidRules, winLength, rows, cols)
	}

	return &Rules{
		Rows:      rows,
		Cols:      cols,
		WinLength: winLength,
		patterns:  generatePatterns(rows, cols, winLength),
	}, nil
}

func (that *Rules) Cells() int {
	return that.Rows * that.Cols
}

// DetectOutcome - scans the precomputed patterns and reports the winner
// with the completed line, a draw on a full board, or neither while the
// game is still in progress. Side-effect-free and deterministic for a
// given board.
func (that *Rules) DetectOutcome(board entity.Board) (string, []int) {
	for _, line := range that.patterns {
		mark := board[line[0]]
		if mark == entity.EmptyCell {
			continue
		}

		complete := true
		for _, cell := range line[1:] {
			if board[cell] != mark {
				complete = false
				break
			}
		}

		if complete {
			return mark, append([]int(nil), line...)
		}
	}

	if board.IsFull() {
		return entity.WinnerDraw, nil
	}

	return "", nil
}

// MakeTurn - applies one move to the room: validates that the game is
// running and it is the mark's turn, places the mark, then either flips
// the turn or finishes the game. Exactly one of those happens on success;
// nothing changes on failure. Callers must hold the room lock.
func (that *Rules) MakeTurn(room *entity.Room, mark string, cell int) error {
	if !room.IsActive() {
		return apperror.ErrGameNotActive
	}

	if room.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if err := room.Board.Place(cell, mark); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	that.updateRoomStatus(room, mark)

	return nil
}

// updateRoomStatus - checks the game outcome after a successful placement.
func (that *Rules) updateRoomStatus(room *entity.Room, mark string) {
	winner, line := that.DetectOutcome(room.Board)

	switch winner {
	case entity.PlayerX, entity.PlayerO:
		room.Winner = winner
		room.WinningLine = line
		room.Status = entity.StatusFinished
		room.Turn = ""
	case entity.WinnerDraw:
		room.Winner = entity.WinnerDraw
		room.Status = entity.StatusFinished
		room.Turn = ""
	default:
		room.Turn = toggleMark(mark)
	}
}

func toggleMark(currentMark string) string {
	if currentMark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}

// generatePatterns - enumerates every winning line on the grid in a fixed
// order: rows first, then columns, then both diagonal directions.
func generatePatterns(rows, cols, winLength int) [][]int {
	var patterns [][]int

	// horizontal runs
	for r := 0; r < rows; r++ {
		for c := 0; c+winLength <= cols; c++ {
			line := make([]int, winLength)
			for k := range line {
				line[k] = r*cols + c + k
			}
			patterns = append(patterns, line)
		}
	}

	// vertical runs
	for r := 0; r+winLength <= rows; r++ {
		for c := 0; c < cols; c++ {
			line := make([]int, winLength)
			for k := range line {
				line[k] = (r+k)*cols + c
			}
			patterns = append(patterns, line)
		}
	}

	// down-right diagonals
	for r := 0; r+winLength <= rows; r++ {
		for c := 0; c+winLength <= cols; c++ {
			line := make([]int, winLength)
			for k := range line {
				line[k] = (r+k)*cols + c + k
			}
			patterns = append(patterns, line)
		}
	}

	// down-left diagonals
	for r := 0; r+winLength <= rows; r++ {
		for c := winLength - 1; c < cols; c++ {
			line := make([]int, winLength)
			for k := range line {
				line[k] = (r+k)*cols + c - k
			}
			patterns = append(patterns, line)
		}
	}

	return patterns
}
