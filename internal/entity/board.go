package entity

import (
	"fmt"

	"github.com/ancarodev/ancaro-server/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"

	PlayerX    = "X"
	PlayerO    = "O"
	WinnerDraw = "draw"

	EmptyCell = ""
)

// Board is a flat row-major sequence of cells. The empty cell is the
// empty string, which the browser client treats as falsy.
type Board []string

func NewBoard(cells int) Board {
	board := make(Board, cells)
	for i := range board {
		board[i] = EmptyCell
	}

	return board
}

// Place - puts a mark into a cell, rejecting out-of-range and occupied cells.
func (that Board) Place(cell int, mark string) error {
	if cell < 0 || cell >= len(that) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that[cell] = mark

	return nil
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Clear - empties every cell in place; the cell count never changes.
func (that Board) Clear() {
	for i := range that {
		that[i] = EmptyCell
	}
}

func (that Board) Clone() Board {
	return append(Board(nil), that...)
}
