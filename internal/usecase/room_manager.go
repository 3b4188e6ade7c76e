package usecase

import (
	"fmt"
	"log/slog"

	"github.com/ancarodev/ancaro-server/internal/apperror"
	"github.com/ancarodev/ancaro-server/internal/entity"
	"github.com/ancarodev/ancaro-server/internal/gridgame"
)

type roomRegistry interface {
	GetOrCreate(id string) *entity.Room
	Get(id string) (*entity.Room, error)
	Remove(id string)
}

// RoomManager is the authority for room state: every transition goes
// through it, runs under the target room's lock, and returns a snapshot
// the transport broadcasts after the lock is released.
type RoomManager struct {
	logger *slog.Logger
	rules  *gridgame.Rules
	rooms  roomRegistry
}

func NewRoomManager(logger *slog.Logger, rules *gridgame.Rules, rooms roomRegistry) *RoomManager {
	return &RoomManager{
		logger: logger,
		rules:  rules,
		rooms:  rooms,
	}
}

type JoinResult struct {
	Slot    string
	Started bool
	State   entity.RoomState
}

// JoinRoom - binds a connection to the first free slot of a room,
// creating the room on first join. The second join starts the game with X
// to move. A full room rejects the join and stays untouched.
func (that *RoomManager) JoinRoom(roomID, connID string) (*JoinResult, error) {
	room := that.rooms.GetOrCreate(roomID)

	room.Lock()
	defer room.Unlock()

	if slot, ok := room.SlotOf(connID); ok {
		return &JoinResult{Slot: slot, State: room.Snapshot()}, nil
	}

	slot, ok := room.FreeSlot()
	if !ok {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, roomID)
	}

	room.Players[connID] = slot

	started := room.PlayerCount() == 2
	if started {
		room.Status = entity.StatusActive
		room.Turn = entity.PlayerX
	}

	return &JoinResult{Slot: slot, Started: started, State: room.Snapshot()}, nil
}

// MakeMove - applies a validated move for the connection's slot. Any
// rejection leaves the room unchanged; callers must not broadcast on
// error.
func (that *RoomManager) MakeMove(roomID, connID string, cell int) (entity.RoomState, error) {
	room, err := that.rooms.Get(roomID)
	if err != nil {
		return entity.RoomState{}, fmt.Errorf("failed to get room: %w", err)
	}

	room.Lock()
	defer room.Unlock()

	slot, ok := room.SlotOf(connID)
	if !ok {
		return entity.RoomState{}, fmt.Errorf("%w: room %s", apperror.ErrNotInRoom, roomID)
	}

	if err = that.rules.MakeTurn(room, slot, cell); err != nil {
		return entity.RoomState{}, fmt.Errorf("failed to make turn: %w", err)
	}

	return room.Snapshot(), nil
}

// ResetGame - clears the board and winner and hands the first move back
// to X. The room goes active again only if both players are present. The
// reset is applied from any state so both clients always converge on the
// same fresh snapshot.
func (that *RoomManager) ResetGame(roomID, connID string) (entity.RoomState, error) {
	room, err := that.rooms.Get(roomID)
	if err != nil {
		return entity.RoomState{}, fmt.Errorf("failed to get room: %w", err)
	}

	room.Lock()
	defer room.Unlock()

	if _, ok := room.SlotOf(connID); !ok {
		return entity.RoomState{}, fmt.Errorf("%w: room %s", apperror.ErrNotInRoom, roomID)
	}

	that.resetRoom(room)

	return room.Snapshot(), nil
}

type LeaveResult struct {
	Left  bool // false when the connection was not in the room
	Empty bool
	State entity.RoomState
}

// LeaveRoom - releases the connection's slot. Idempotent: leaving twice,
// or leaving a room that no longer exists, is a no-op. An active game
// drops back to waiting with the board retained; a finished one is
// cleared so the next joiner starts fresh. The last player out makes the
// room eligible for eviction.
func (that *RoomManager) LeaveRoom(roomID, connID string) LeaveResult {
	log := that.logger.With("method", "LeaveRoom")

	room, err := that.rooms.Get(roomID)
	if err != nil {
		return LeaveResult{}
	}

	room.Lock()

	if _, ok := room.SlotOf(connID); !ok {
		room.Unlock()
		return LeaveResult{}
	}

	delete(room.Players, connID)

	empty := room.PlayerCount() == 0
	if !empty {
		switch {
		case room.IsActive():
			room.Status = entity.StatusWaiting
		case room.IsFinished():
			that.resetRoom(room)
		}
	}

	state := room.Snapshot()
	room.Unlock()

	if empty {
		that.rooms.Remove(roomID)
		log.Info("room emptied and evicted", "roomID", roomID)
	}

	return LeaveResult{Left: true, Empty: empty, State: state}
}

// resetRoom - fresh board, X to move; callers must hold the room lock.
func (that *RoomManager) resetRoom(room *entity.Room) {
	room.Board.Clear()
	room.Winner = ""
	room.WinningLine = nil
	room.Turn = entity.PlayerX

	if room.PlayerCount() == 2 {
		room.Status = entity.StatusActive
	} else {
		room.Status = entity.StatusWaiting
	}
}
