package apperror

import "errors"

var (
	ErrRoomFull      = errors.New("room already has two players")
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotInRoom     = errors.New("connection is not bound to this room")
	ErrGameNotActive = errors.New("game is not active")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidCell   = errors.New("invalid cell index")
)
