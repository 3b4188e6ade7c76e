package entity

import "sync"

// Room holds everything one game session needs: the board, the slot
// assignments and the turn/status bookkeeping. Every mutating transition
// for a room must run while holding its lock; the embedded mutex is the
// per-room serialization point required by the protocol.
type Room struct {
	sync.Mutex

	ID          string
	Board       Board
	Players     map[string]string // connection id -> slot
	Turn        string
	Status      string
	Winner      string
	WinningLine []int
}

func NewRoom(id string, cells int) *Room {
	return &Room{
		ID:      id,
		Board:   NewBoard(cells),
		Players: make(map[string]string, 2),
		Turn:    PlayerX,
		Status:  StatusWaiting,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

// SlotOf - returns the slot bound to a connection, if any.
func (that *Room) SlotOf(connID string) (string, bool) {
	slot, ok := that.Players[connID]
	return slot, ok
}

// FreeSlot - picks the first unassigned slot, X before O.
func (that *Room) FreeSlot() (string, bool) {
	taken := make(map[string]bool, len(that.Players))
	for _, slot := range that.Players {
		taken[slot] = true
	}

	if !taken[PlayerX] {
		return PlayerX, true
	}

	if !taken[PlayerO] {
		return PlayerO, true
	}

	return "", false
}

func (that *Room) PlayerCount() int {
	return len(that.Players)
}

// RoomState is an immutable copy of a room's public state. Transitions
// return it so the transport can broadcast after the room lock is
// released, never during.
type RoomState struct {
	Board       []string
	Turn        string
	Status      string
	Winner      string
	WinningLine []int
	Players     int
}

func (that RoomState) XIsNext() bool {
	return that.Turn == PlayerX
}

// Snapshot - copies the public state; callers must hold the room lock.
func (that *Room) Snapshot() RoomState {
	state := RoomState{
		Board:   that.Board.Clone(),
		Turn:    that.Turn,
		Status:  that.Status,
		Winner:  that.Winner,
		Players: len(that.Players),
	}

	if len(that.WinningLine) > 0 {
		state.WinningLine = append([]int(nil), that.WinningLine...)
	}

	return state
}
